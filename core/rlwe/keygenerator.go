package rlwe

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// KeyGenerator is a structure that stores the elements required to create new keys,
// as well as a memory buffer for intermediate values.
type KeyGenerator struct {
	*Encryptor
}

// NewKeyGenerator creates a new [KeyGenerator], from which the secret and public keys, as well as [EvaluationKey].
func NewKeyGenerator(params ParameterProvider) *KeyGenerator {
	return &KeyGenerator{
		Encryptor: NewEncryptor(params, nil),
	}
}

// GenSecretKeyNew generates a new [SecretKey] with the distribution specified in the crypto parameters.
func (kgen KeyGenerator) GenSecretKeyNew() (sk *SecretKey) {
	sk = NewSecretKey(kgen.params)
	kgen.GenSecretKey(sk)
	return
}

// GenSecretKey generates a [SecretKey] from the distribution specified in the crypto parameters.
func (kgen KeyGenerator) GenSecretKey(sk *SecretKey) {
	kgen.genSecretKeyFromSampler(kgen.xsSampler, sk)
}

// GenSecretKeyWithHammingWeightNew generates a new [SecretKey] with exactly hw non-zero coefficients.
func (kgen KeyGenerator) GenSecretKeyWithHammingWeightNew(hw int) (sk *SecretKey, err error) {
	sk = NewSecretKey(kgen.params)
	var sampler ring.Sampler
	if sampler, err = ring.NewSampler(kgen.prng, kgen.params.RingQ(), ring.Ternary{H: hw}); err != nil {
		return nil, fmt.Errorf("cannot GenSecretKeyWithHammingWeightNew: %w", err)
	}
	kgen.genSecretKeyFromSampler(sampler, sk)
	return
}

func (kgen KeyGenerator) genSecretKeyFromSampler(sampler ring.Sampler, sk *SecretKey) {

	ringQP := kgen.params.RingQP()

	buff := kgen.buffQ[0]
	sampler.Read(buff)

	ringQP.ExtendBasisSmallNormAndCenter(buff, sk.Value.Q, sk.Value.P)
	ringQP.NTT(sk.Value, sk.Value)
	ringQP.MForm(sk.Value, sk.Value)

	sk.Tag = NewKeyTag(sk.Value.Q)
}

// GenPublicKeyNew generates a new public key from the provided [SecretKey].
func (kgen KeyGenerator) GenPublicKeyNew(sk *SecretKey) (pk *PublicKey) {
	pk = NewPublicKey(kgen.params)
	kgen.GenPublicKey(sk, pk)
	return
}

// GenPublicKey generates a public key (-a*s + t*e, a) over QP from the provided [SecretKey].
func (kgen KeyGenerator) GenPublicKey(sk *SecretKey, pk *PublicKey) {

	ringQP := kgen.params.RingQP()

	kgen.uniformSampler.Read(pk.Value[1])

	ringQP.MulCoeffsMontgomery(pk.Value[1], sk.Value, pk.Value[0])
	ringQP.Neg(pk.Value[0], pk.Value[0])

	e := kgen.buffQP[0]
	kgen.genErrorQP(e)
	ringQP.Add(pk.Value[0], e, pk.Value[0])

	pk.Tag = sk.Tag
}

// GenKeyPairNew generates a new [SecretKey] and a corresponding public key.
func (kgen KeyGenerator) GenKeyPairNew() (sk *SecretKey, pk *PublicKey) {
	sk = kgen.GenSecretKeyNew()
	return sk, kgen.GenPublicKeyNew(sk)
}

// GenRelinearizationKeyNew generates a new [RelinearizationKey], an [EvaluationKey] from s^2 to s.
func (kgen KeyGenerator) GenRelinearizationKeyNew(sk *SecretKey) (rlk *RelinearizationKey) {
	rlk = NewRelinearizationKey(kgen.params)
	kgen.GenRelinearizationKey(sk, rlk)
	return
}

// GenRelinearizationKey generates an [EvaluationKey] from s^2 to s and writes it on rlk.
func (kgen KeyGenerator) GenRelinearizationKey(sk *SecretKey, rlk *RelinearizationKey) {
	s2 := kgen.buffQP[1]
	kgen.params.RingQP().MulCoeffsMontgomery(sk.Value, sk.Value, s2)
	kgen.genEvaluationKey(s2, sk.Value, &rlk.EvaluationKey)
	rlk.SourceTag = sk.Tag
	rlk.TargetTag = sk.Tag
}

// GenGaloisKeyNew generates a new [GaloisKey], enabling the automorphism X^{i} -> X^{i * galEl}.
func (kgen KeyGenerator) GenGaloisKeyNew(galEl uint64, sk *SecretKey) (gk *GaloisKey) {
	gk = NewGaloisKey(kgen.params)
	kgen.GenGaloisKey(galEl, sk, gk)
	return
}

// GenGaloisKey generates a [GaloisKey] from sigma(s) to s, where sigma is the
// automorphism X^{i} -> X^{i * galEl}, and writes it on gk.
func (kgen KeyGenerator) GenGaloisKey(galEl uint64, sk *SecretKey, gk *GaloisKey) {

	index := ring.AutomorphismNTTIndex(kgen.params.N(), kgen.params.NthRoot(), galEl)

	sigmaS := kgen.buffQP[1]
	kgen.params.RingQP().AutomorphismNTTWithIndex(sk.Value, index, sigmaS)

	kgen.genEvaluationKey(sigmaS, sk.Value, &gk.EvaluationKey)

	gk.GaloisElement = galEl
	gk.NthRoot = kgen.params.NthRoot()
	gk.SourceTag = sk.Tag
	gk.TargetTag = sk.Tag
}

// GenGaloisKeysNew generates the [GaloisKey] objects for all galois elements in galEls, and
// returns the resulting keys in a newly allocated []*[GaloisKey].
func (kgen KeyGenerator) GenGaloisKeysNew(galEls []uint64, sk *SecretKey) (gks []*GaloisKey) {
	gks = make([]*GaloisKey, len(galEls))
	for i, galEl := range galEls {
		gks[i] = kgen.GenGaloisKeyNew(galEl, sk)
	}
	return
}

// GenEvaluationKeyNew generates a new [EvaluationKey], that will re-encrypt a [Ciphertext] encrypted under the input key into the output key.
// The key is generated for the key-switching technique of the parameters.
func (kgen KeyGenerator) GenEvaluationKeyNew(skIn, skOut *SecretKey) (evk *EvaluationKey) {
	evk = NewEvaluationKey(kgen.params)
	kgen.GenEvaluationKey(skIn, skOut, evk)
	return
}

// GenEvaluationKey generates an [EvaluationKey] from skIn to skOut and writes it on evk.
func (kgen KeyGenerator) GenEvaluationKey(skIn, skOut *SecretKey, evk *EvaluationKey) {
	kgen.genEvaluationKey(skIn.Value, skOut.Value, evk)
	evk.SourceTag = skIn.Tag
	evk.TargetTag = skOut.Tag
}

// GenEvaluationKeyForPublicKeyNew generates a new [EvaluationKey] from skIn to the
// secret key of pkOut, using only the public key of the target: each element of
// the gadget is encrypted as (v*pk_0 + e_0 + g_i*s_in, v*pk_1 + e_1).
// It is the re-encryption key generation of proxy re-encryption.
func (kgen KeyGenerator) GenEvaluationKeyForPublicKeyNew(skIn *SecretKey, pkOut *PublicKey) (evk *EvaluationKey) {

	evk = NewEvaluationKey(kgen.params)

	ringQP := kgen.params.RingQP()

	v := kgen.buffQP[1]
	e := kgen.buffQP[0]

	for i := range evk.Value {

		b, a := evk.Value[i][0], evk.Value[i][1]

		buff := kgen.buffQ[0]
		kgen.xsSampler.Read(buff)
		ringQP.ExtendBasisSmallNormAndCenter(buff, v.Q, v.P)
		ringQP.NTT(v, v)
		ringQP.MForm(v, v)

		ringQP.MulCoeffsMontgomery(v, pkOut.Value[0], b)
		kgen.genErrorQP(e)
		ringQP.Add(b, e, b)

		ringQP.MulCoeffsMontgomery(v, pkOut.Value[1], a)
		kgen.genErrorQP(e)
		ringQP.Add(a, e, a)

		kgen.params.AddGadgetTimesPoly(i, skIn.Value, b)

		ringQP.MForm(a, a)
		ringQP.MForm(b, b)
	}

	evk.SourceTag = skIn.Tag
	evk.TargetTag = pkOut.Tag

	return
}

// genEvaluationKey writes on evk the encryptions under sOut of the gadget vector times sIn.
// sIn and sOut are in the NTT and Montgomery domain.
func (kgen KeyGenerator) genEvaluationKey(sIn, sOut ringqp.Poly, evk *EvaluationKey) {

	ringQP := kgen.params.RingQP()

	e := kgen.buffQP[0]

	for i := range evk.Value {

		b, a := evk.Value[i][0], evk.Value[i][1]

		// a is sampled directly in the NTT domain
		kgen.uniformSampler.Read(a)

		ringQP.MulCoeffsMontgomery(a, sOut, b)
		ringQP.Neg(b, b)

		kgen.genErrorQP(e)
		ringQP.Add(b, e, b)

		kgen.params.AddGadgetTimesPoly(i, sIn, b)

		ringQP.MForm(a, a)
		ringQP.MForm(b, b)
	}

	evk.Technique = kgen.params.KeySwitchTechnique()
}

// genErrorQP samples an error at the maximum level, scaled by the error scale,
// and writes it on e over QP in the NTT domain.
func (kgen KeyGenerator) genErrorQP(e ringqp.Poly) {
	ringQP := kgen.params.RingQP()
	buff := kgen.buffQ[0]
	kgen.sampleError(kgen.params.MaxLevelQ(), buff)
	ringQP.ExtendBasisSmallNormAndCenter(buff, e.Q, e.P)
	ringQP.NTT(e, e)
}
