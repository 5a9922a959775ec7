package rlwe

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// EncryptionKey is an interface for encryption keys. Valid encryption
// keys are the [SecretKey] and [PublicKey] types.
type EncryptionKey interface {
	isEncryptionKey()
}

func (sk *SecretKey) isEncryptionKey() {}

func (pk *PublicKey) isEncryptionKey() {}

// Encryptor a generic RLWE encryption struct. Fresh ciphertexts are in the NTT
// domain and their errors are multiples of the error scale of the parameters.
type Encryptor struct {
	params Parameters
	*encryptorBuffers

	encKey         EncryptionKey
	prng           sampling.PRNG
	xeSampler      ring.Sampler
	xsSampler      ring.Sampler
	basisExtender  *ring.BasisExtender
	uniformSampler ringqp.UniformSampler
}

type encryptorBuffers struct {
	buffQ  [2]ring.Poly
	buffQP [3]ringqp.Poly
}

// NewEncryptor creates a new [Encryptor] from either a public key or a private key.
// A nil key returns an [Encryptor] that can only be used by the [KeyGenerator].
func NewEncryptor(params ParameterProvider, key EncryptionKey) *Encryptor {

	p := *params.GetRLWEParameters()

	enc := newEncryptor(p)

	switch key := key.(type) {
	case *PublicKey:
		if key.Value[0].Q.N() != p.N() || key.LevelQ() != p.MaxLevelQ() || key.LevelP() != p.MaxLevelP() {
			// Sanity check
			panic(fmt.Errorf("cannot NewEncryptor: public key does not match the parameters"))
		}
	case *SecretKey:
		if key.Value.Q.N() != p.N() || key.LevelQ() != p.MaxLevelQ() {
			// Sanity check
			panic(fmt.Errorf("cannot NewEncryptor: secret key does not match the parameters"))
		}
	case nil:
		return enc
	default:
		// Sanity check
		panic(fmt.Errorf("key must be either *rlwe.PublicKey, *rlwe.SecretKey or nil but have %T", key))
	}

	enc.encKey = key
	return enc
}

func newEncryptor(params Parameters) *Encryptor {

	prng := sampling.NewPRNG()

	xeSampler, err := ring.NewSampler(prng, params.RingQ(), params.Xe())

	// Sanity check, this error should not happen.
	if err != nil {
		panic(fmt.Errorf("newEncryptor: %w", err))
	}

	xsSampler, err := ring.NewSampler(prng, params.RingQ(), params.Xs())

	// Sanity check, this error should not happen.
	if err != nil {
		panic(fmt.Errorf("newEncryptor: %w", err))
	}

	ringQP := params.RingQP()

	return &Encryptor{
		params:    params,
		prng:      prng,
		xeSampler: xeSampler,
		xsSampler: xsSampler,
		encryptorBuffers: &encryptorBuffers{
			buffQ:  [2]ring.Poly{params.RingQ().NewPoly(), params.RingQ().NewPoly()},
			buffQP: [3]ringqp.Poly{ringQP.NewPoly(), ringQP.NewPoly(), ringQP.NewPoly()},
		},
		uniformSampler: ringqp.NewUniformSampler(prng, *ringQP),
		basisExtender:  params.CRTTables().NewBasisExtender(),
	}
}

// GetRLWEParameters returns the underlying [Parameters].
func (enc Encryptor) GetRLWEParameters() *Parameters {
	return &enc.params
}

// EncryptNew encrypts the input plaintext using the stored encryption key and returns the result
// on a newly allocated [Ciphertext] at the level of the plaintext.
func (enc Encryptor) EncryptNew(pt *Plaintext) (ct *Ciphertext, err error) {
	ct = NewCiphertext(enc.params, 1, pt.Level())
	return ct, enc.Encrypt(pt, ct)
}

// Encrypt encrypts the input plaintext using the stored encryption key and writes the result on ct.
// The output [Ciphertext] [MetaData] will match the [Plaintext] [MetaData], except for the domain,
// which is always NTT, and the key tag, which is the tag of the encryption key.
// The encryption is done at the level min(pt.Level(), ct.Level()).
func (enc Encryptor) Encrypt(pt *Plaintext, ct *Ciphertext) (err error) {

	if pt == nil {
		return enc.EncryptZero(ct)
	}

	level := min(pt.Level(), ct.Level())
	ct.Resize(1, level)

	if err = enc.EncryptZero(ct); err != nil {
		return
	}

	tag := ct.KeyTag
	*ct.MetaData = *pt.MetaData
	ct.IsNTT = true
	ct.KeyTag = tag

	ringQ := enc.params.RingQ().AtLevel(level)

	if pt.IsNTT {
		ringQ.Add(ct.Value[0], pt.Value, ct.Value[0])
	} else {
		buff := enc.buffQ[0]
		buff.Resize(level)
		ringQ.NTT(pt.Value, buff)
		ringQ.Add(ct.Value[0], buff, ct.Value[0])
	}

	return
}

// EncryptZero generates an encryption of zero under the stored encryption key and writes the result on ct.
func (enc Encryptor) EncryptZero(ct *Ciphertext) (err error) {

	if ct.Degree() != 1 {
		return fmt.Errorf("cannot EncryptZero: ct must be of degree 1 but is %d", ct.Degree())
	}

	ct.IsNTT = true

	switch key := enc.encKey.(type) {
	case *SecretKey:
		enc.encryptZeroSk(key, ct)
		ct.KeyTag = key.Tag
	case *PublicKey:
		enc.encryptZeroPk(key, ct)
		ct.KeyTag = key.Tag
	default:
		return fmt.Errorf("cannot EncryptZero: encryptor has no encryption key")
	}

	return
}

// encryptZeroSk generates (-a*s + t*e, a) with a uniform.
func (enc Encryptor) encryptZeroSk(sk *SecretKey, ct *Ciphertext) {

	level := ct.Level()
	ringQ := enc.params.RingQ().AtLevel(level)

	c0, c1 := ct.Value[0], ct.Value[1]

	enc.uniformSampler.Read(ringqp.Poly{Q: c1})

	ringQ.MulCoeffsMontgomery(c1, sk.Value.Q, c0)
	ringQ.Neg(c0, c0)

	e := enc.buffQ[1]
	e.Resize(level)
	enc.sampleError(level, e)
	ringQ.NTT(e, e)
	ringQ.Add(c0, e, c0)
}

// encryptZeroPk generates (u*pk_0 + t*e_0, u*pk_1 + t*e_1) with u sampled from the
// secret distribution. If the parameters have an auxiliary modulus, the encryption
// is done over QP and divided by P, which removes most of the error.
func (enc Encryptor) encryptZeroPk(pk *PublicKey, ct *Ciphertext) {

	levelQ := ct.Level()
	levelP := enc.params.MaxLevelP()

	ringQP := enc.params.RingQP().AtLevel(levelQ, levelP)

	u := enc.buffQP[2]
	e := enc.buffQ[1]
	e.Resize(levelQ)

	enc.xsSampler.AtLevel(levelQ).Read(e)
	ringQP.ExtendBasisSmallNormAndCenter(e, u.Q, u.P)
	ringQP.NTT(u, u)
	ringQP.MForm(u, u)

	if levelP < 0 {

		ringQ := ringQP.RingQ

		for i := 0; i < 2; i++ {
			ringQ.MulCoeffsMontgomery(u.Q, pk.Value[i].Q, ct.Value[i])
			enc.sampleError(levelQ, e)
			ringQ.NTT(e, e)
			ringQ.Add(ct.Value[i], e, ct.Value[i])
		}

		return
	}

	c := [2]ringqp.Poly{enc.buffQP[0], enc.buffQP[1]}

	ringQP.MulCoeffsMontgomery(u, pk.Value[0], c[0])
	ringQP.MulCoeffsMontgomery(u, pk.Value[1], c[1])

	for i := 0; i < 2; i++ {

		// u is not needed anymore and holds the error over QP
		enc.sampleError(levelQ, e)
		ringQP.ExtendBasisSmallNormAndCenter(e, u.Q, u.P)
		ringQP.NTT(u, u)
		ringQP.Add(c[i], u, c[i])

		if enc.params.ErrorScale() > 1 {
			enc.basisExtender.ModDownQPtoQNTTLSB(levelQ, c[i].Q, c[i].P, ct.Value[i])
		} else {
			enc.basisExtender.ModDownQPtoQNTT(levelQ, c[i].Q, c[i].P, ct.Value[i])
		}
	}
}

// sampleError samples an error in the coefficient domain at the given level
// and multiplies it by the error scale.
func (enc Encryptor) sampleError(level int, e ring.Poly) {
	enc.xeSampler.AtLevel(level).Read(e)
	if t := enc.params.ErrorScale(); t > 1 {
		enc.params.RingQ().AtLevel(level).MulScalar(e, t, e)
	}
}

// ShallowCopy creates a shallow copy of this [Encryptor] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [Encryptor] can be used concurrently.
func (enc Encryptor) ShallowCopy() *Encryptor {
	return NewEncryptor(enc.params, enc.encKey)
}

// WithKey creates a shallow copy of the receiver [Encryptor] with the new key,
// in which all the read-only data-structures and the buffers are shared with the receiver.
func (enc Encryptor) WithKey(key EncryptionKey) *Encryptor {
	switch key.(type) {
	case *SecretKey, *PublicKey, nil:
	default:
		// Sanity check
		panic(fmt.Errorf("key must be either *rlwe.PublicKey, *rlwe.SecretKey or nil but have %T", key))
	}
	enc.encKey = key
	return &enc
}
