package rlwe

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

var flagParamString = flag.String("params", "", "specify the test cryptographic parameters as a JSON string. Overrides -short and -long.")

func testString(params Parameters, levelQ int, opname string) string {
	return fmt.Sprintf("%s/logN=%d/Qi=%d/Pi=%d/KS=%s",
		opname,
		params.LogN(),
		levelQ+1,
		params.PCount(),
		params.KeySwitchTechnique())
}

// log2Std returns the log2 of the standard deviation of p, given in the coefficient domain.
func log2Std(params Parameters, level int, p ring.Poly) float64 {
	return ringqp.Ring{RingQ: params.RingQ().AtLevel(level)}.Log2OfStandardDeviation(ringqp.Poly{Q: p})
}

// keySwitchNoiseBound is an upper bound on the log2 of the standard deviation
// of the error added by a key switching.
func keySwitchNoiseBound(params Parameters) float64 {
	if params.KeySwitchTechnique() == BV {
		return float64(params.LogN() + params.RelinWindow() + 4)
	}
	return float64(params.LogN())
}

func TestRLWE(t *testing.T) {

	var err error

	defaultParamsLiteral := testInsecure

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err = json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			t.Fatal(err)
		}
		defaultParamsLiteral = []ParametersLiteral{jsonParams} // the custom test suite reads the parameters from the -params flag
	}

	for _, paramsLit := range defaultParamsLiteral {

		var params Parameters
		if params, err = NewParametersFromLiteral(paramsLit); err != nil {
			t.Fatal(err)
		}

		tc := NewTestContext(params)

		testParameters(tc, t)
		testKeyGenerator(tc, t)

		for _, level := range []int{0, params.MaxLevel()} {

			for _, testSet := range []func(tc *TestContext, level int, t *testing.T){
				testEncryptor,
				testApplyEvaluationKey,
				testRelinearize,
				testAutomorphism,
			} {
				testSet(tc, level, t)
				runtime.GC()
			}
		}
	}

	testUserDefinedParameters(t)
	testParametersErrors(t)
}

type TestContext struct {
	params Parameters
	kgen   *KeyGenerator
	enc    *Encryptor
	dec    *Decryptor
	sk     *SecretKey
	pk     *PublicKey
	eval   *Evaluator
}

func NewTestContext(params Parameters) (tc *TestContext) {

	kgen := NewKeyGenerator(params)

	sk, pk := kgen.GenKeyPairNew()

	return &TestContext{
		params: params,
		kgen:   kgen,
		sk:     sk,
		pk:     pk,
		enc:    NewEncryptor(params, sk),
		dec:    NewDecryptor(params, sk),
		eval:   NewEvaluator(params, nil),
	}
}

// newRandomPlaintext returns a plaintext with uniform coefficients at the given level.
func newRandomPlaintext(params Parameters, level int) (pt *Plaintext) {
	pt = NewPlaintext(params, level)
	ring.NewUniformSampler(sampling.NewPRNG(), params.RingQ()).AtLevel(level).Read(pt.Value)
	return
}

func testParameters(tc *TestContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, params.MaxLevelQ(), "Parameters/ModInvGaloisElement"), func(t *testing.T) {

		mask := params.NthRoot() - 1

		for i := 1; i < params.N()>>1; i++ {
			galEl := params.GaloisElement(i)
			inv := params.ModInvGaloisElement(galEl)
			require.Equal(t, uint64(1), (inv*galEl)&mask)
		}
	})

	t.Run(testString(params, params.MaxLevelQ(), "Parameters/AuxiliaryModulus"), func(t *testing.T) {
		switch params.KeySwitchTechnique() {
		case BV:
			require.Equal(t, 0, params.PCount())
			require.Nil(t, params.RingP())
		case GHS:
			require.GreaterOrEqual(t, params.LogP(), params.LogQ())
		case HYBRID:
			require.Greater(t, params.PCount(), 0)
			require.NoError(t, CheckModuli(params.Q(), params.P()))
		}
	})

	t.Run(testString(params, params.MaxLevelQ(), "Parameters/GadgetDigits"), func(t *testing.T) {

		switch params.KeySwitchTechnique() {
		case BV:
			var windows int
			for _, logqi := range params.LogQi() {
				windows += (logqi + params.RelinWindow() - 1) / params.RelinWindow()
			}
			require.Equal(t, windows, params.GadgetDigits(params.MaxLevelQ()))
			require.Equal(t, (params.LogQi()[0]+params.RelinWindow()-1)/params.RelinWindow(), params.GadgetDigits(0))
		case GHS:
			require.Equal(t, 1, params.GadgetDigits(params.MaxLevelQ()))
			require.Equal(t, 1, params.GadgetDigits(0))
		case HYBRID:
			dnum := params.NumLargeDigits()
			alpha := (params.QCount() + dnum - 1) / dnum
			require.Equal(t, params.MaxLevelQ()/alpha+1, params.GadgetDigits(params.MaxLevelQ()))
			require.LessOrEqual(t, params.GadgetDigits(params.MaxLevelQ()), dnum)
			require.Equal(t, 1, params.GadgetDigits(0))
		}
	})

	t.Run(testString(params, params.MaxLevelQ(), "Parameters/Marshaller"), func(t *testing.T) {

		data, err := json.Marshal(params)
		require.NoError(t, err)

		var paramsRec Parameters
		require.NoError(t, json.Unmarshal(data, &paramsRec))
		require.True(t, params.Equal(&paramsRec))

		// The generated auxiliary modulus must be stable through the literal
		paramsRec, err = NewParametersFromLiteral(params.ParametersLiteral())
		require.NoError(t, err)
		require.True(t, params.Equal(&paramsRec))
	})

	t.Run(testString(params, params.MaxLevelQ(), "Parameters/CRTTables"), func(t *testing.T) {

		crt := params.CRTTables()

		require.Equal(t, params.KeySwitchTechnique(), crt.Technique())

		if params.PCount() == 0 {
			require.Nil(t, crt.NewBasisExtender())
			return
		}

		P := params.PBigInt()
		for i, qi := range params.Q() {
			require.Equal(t, new(big.Int).Mod(P, new(big.Int).SetUint64(qi)).Uint64(), crt.PModQ()[i])
		}

		be0 := crt.NewBasisExtender()
		be1 := crt.NewBasisExtender()
		require.False(t, be0 == be1)
	})
}

func testKeyGenerator(tc *TestContext, t *testing.T) {

	params := tc.params
	kgen := tc.kgen
	sk := tc.sk
	pk := tc.pk

	freshBound := math.Log2(params.NoiseFreshSK()) + 1

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/GenSecretKey/HammingWeight"), func(t *testing.T) {

		hw := 16

		skH, err := kgen.GenSecretKeyWithHammingWeightNew(hw)
		require.NoError(t, err)

		ringQ := params.RingQ()
		s := ringQ.NewPoly()
		ringQ.IMForm(skH.Value.Q, s)
		ringQ.INTT(s, s)

		for i := range s.Coeffs {
			var nonZeros int
			for _, c := range s.Coeffs[i] {
				if c != 0 {
					nonZeros++
				}
			}
			require.Equal(t, hw, nonZeros)
		}
	})

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/GenSecretKey/Tag"), func(t *testing.T) {
		require.False(t, sk.Tag.IsZero())
		require.Equal(t, sk.Tag, NewKeyTag(sk.Value.Q))
		require.Equal(t, sk.Tag, pk.Tag)
		require.NotEqual(t, sk.Tag, kgen.GenSecretKeyNew().Tag)
	})

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/GenPublicKey"), func(t *testing.T) {
		require.GreaterOrEqual(t, freshBound, NoisePublicKey(pk, sk, params))
	})

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/GenEvaluationKey"), func(t *testing.T) {
		skOut := kgen.GenSecretKeyNew()
		evk := kgen.GenEvaluationKeyNew(sk, skOut)
		require.Equal(t, params.KeySwitchTechnique(), evk.Technique)
		require.Equal(t, params.GadgetDigits(params.MaxLevelQ()), evk.Digits())
		require.Equal(t, sk.Tag, evk.SourceTag)
		require.Equal(t, skOut.Tag, evk.TargetTag)
		require.GreaterOrEqual(t, freshBound, NoiseEvaluationKey(evk, sk, skOut, params))
	})

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/GenRelinearizationKey"), func(t *testing.T) {
		rlk := kgen.GenRelinearizationKeyNew(sk)
		require.GreaterOrEqual(t, freshBound, NoiseRelinearizationKey(rlk, sk, params))
	})

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/GenGaloisKey"), func(t *testing.T) {
		gk := kgen.GenGaloisKeyNew(params.GaloisElement(1), sk)
		require.Equal(t, params.GaloisElement(1), gk.GaloisElement)
		require.Equal(t, params.NthRoot(), gk.NthRoot)
		require.GreaterOrEqual(t, freshBound, NoiseGaloisKey(gk, sk, params))
	})

	t.Run(testString(params, params.MaxLevelQ(), "KeyGenerator/MemEvaluationKeySet"), func(t *testing.T) {

		galEls := []uint64{params.GaloisElement(3), params.GaloisElement(1), params.GaloisElementForComplexConjugation()}

		evk := NewMemEvaluationKeySet(nil, kgen.GenGaloisKeysNew(galEls, sk)...)

		list := evk.GetGaloisKeysList()
		require.Len(t, list, len(galEls))
		for i := 1; i < len(list); i++ {
			require.Less(t, list[i-1], list[i])
		}

		_, err := evk.GetRelinearizationKey()
		require.Error(t, err)

		_, err = evk.GetGaloisKey(params.GaloisElement(2))
		require.Error(t, err)
	})
}

func testEncryptor(tc *TestContext, level int, t *testing.T) {

	params := tc.params
	kgen := tc.kgen
	sk, pk := tc.sk, tc.pk
	enc := tc.enc
	dec := tc.dec

	t.Run(testString(params, level, "Encryptor/Encrypt/Sk"), func(t *testing.T) {

		pt := newRandomPlaintext(params, level)

		ct, err := enc.EncryptNew(pt)
		require.NoError(t, err)
		require.True(t, ct.IsNTT)
		require.Equal(t, level, ct.Level())
		require.Equal(t, sk.Tag, ct.KeyTag)

		have := decryptNew(dec, ct, t)
		require.False(t, have.IsNTT)

		params.RingQ().AtLevel(level).Sub(have.Value, pt.Value, have.Value)

		require.GreaterOrEqual(t, math.Log2(params.NoiseFreshSK())+1, log2Std(params, level, have.Value))
	})

	t.Run(testString(params, level, "Encryptor/Encrypt/Pk"), func(t *testing.T) {

		pt := newRandomPlaintext(params, level)

		ct, err := enc.WithKey(pk).EncryptNew(pt)
		require.NoError(t, err)
		require.Equal(t, pk.Tag, ct.KeyTag)

		have := decryptNew(dec, ct, t)

		params.RingQ().AtLevel(level).Sub(have.Value, pt.Value, have.Value)

		require.GreaterOrEqual(t, float64(params.LogN()), log2Std(params, level, have.Value))
	})

	t.Run(testString(params, level, "Encryptor/EncryptZero"), func(t *testing.T) {

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		have := decryptNew(dec, ct, t)
		require.GreaterOrEqual(t, math.Log2(params.NoiseFreshSK())+1, log2Std(params, level, have.Value))

		require.Error(t, enc.EncryptZero(NewCiphertext(params, 2, level)))
		require.Error(t, NewEncryptor(params, nil).EncryptZero(ct))
	})

	t.Run(testString(params, level, "Encryptor/ShallowCopy"), func(t *testing.T) {
		enc1 := enc.WithKey(pk)
		enc2 := enc1.ShallowCopy()
		require.True(t, enc1.params.Equal(&enc2.params))
		require.True(t, enc1.encKey == enc2.encKey)
		require.False(t, enc1.encryptorBuffers == enc2.encryptorBuffers)
		require.False(t, (enc1.basisExtender == enc2.basisExtender) && enc1.basisExtender != nil)
	})

	t.Run(testString(params, level, "Encryptor/WithKey"), func(t *testing.T) {
		sk2 := kgen.GenSecretKeyNew()
		enc1 := NewEncryptor(params, sk)
		enc2 := enc1.WithKey(sk2)
		require.True(t, enc1.encKey == sk)
		require.True(t, enc2.encKey == sk2)
		require.True(t, enc1.encryptorBuffers == enc2.encryptorBuffers)
	})

	t.Run(testString(params, level, "Decryptor/ShallowCopy"), func(t *testing.T) {

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		dec1 := dec.ShallowCopy()
		require.True(t, decryptNew(dec1, ct, t).Equal(decryptNew(dec, ct, t)))
	})

	t.Run(testString(params, level, "Decryptor/KeyTagMismatch"), func(t *testing.T) {

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		_, err := dec.WithKey(kgen.GenSecretKeyNew()).DecryptNew(ct)
		require.True(t, errors.Is(err, ErrKeyTagMismatch))

		// A key of unknown tag decrypts anything.
		untagged := sk.CopyNew()
		untagged.Tag = KeyTag{}
		require.True(t, decryptNew(dec.WithKey(untagged), ct, t).Equal(decryptNew(dec, ct, t)))
	})
}

func testApplyEvaluationKey(tc *TestContext, level int, t *testing.T) {

	params := tc.params
	sk := tc.sk
	pk := tc.pk
	kgen := tc.kgen
	eval := tc.eval
	enc := tc.enc

	bound := keySwitchNoiseBound(params)

	t.Run(testString(params, level, "Evaluator/ApplyEvaluationKey"), func(t *testing.T) {

		skOut := kgen.GenSecretKeyNew()

		pt := newRandomPlaintext(params, level)

		ct, err := enc.EncryptNew(pt)
		require.NoError(t, err)

		require.NoError(t, eval.ApplyEvaluationKey(ct, kgen.GenEvaluationKeyNew(sk, skOut), ct))
		require.Equal(t, skOut.Tag, ct.KeyTag)

		have := decryptNew(NewDecryptor(params, skOut), ct, t)

		params.RingQ().AtLevel(level).Sub(have.Value, pt.Value, have.Value)

		require.GreaterOrEqual(t, bound, log2Std(params, level, have.Value))
	})

	t.Run(testString(params, level, "Evaluator/ApplyEvaluationKey/PublicKeyTarget"), func(t *testing.T) {

		skOut, pkOut := kgen.GenKeyPairNew()

		evk := kgen.GenEvaluationKeyForPublicKeyNew(sk, pkOut)
		require.Equal(t, pkOut.Tag, evk.TargetTag)

		pt := newRandomPlaintext(params, level)

		ct, err := enc.WithKey(pk).EncryptNew(pt)
		require.NoError(t, err)

		require.NoError(t, eval.ApplyEvaluationKey(ct, evk, ct))

		have := decryptNew(NewDecryptor(params, skOut), ct, t)

		params.RingQ().AtLevel(level).Sub(have.Value, pt.Value, have.Value)

		// The encryptions of the gadget carry the error of the public key
		require.GreaterOrEqual(t, bound+8, log2Std(params, level, have.Value))
	})

	t.Run(testString(params, level, "Evaluator/ApplyEvaluationKey/KeyTagMismatch"), func(t *testing.T) {

		evk := kgen.GenEvaluationKeyNew(kgen.GenSecretKeyNew(), sk)

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		err := eval.ApplyEvaluationKey(ct, evk, ct)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrKeyTagMismatch))

		// An unknown tag is not checked
		ct.KeyTag = KeyTag{}
		require.NoError(t, eval.ApplyEvaluationKey(ct, evk, ct))
	})

	t.Run(testString(params, level, "Evaluator/ApplyEvaluationKey/TechniqueMismatch"), func(t *testing.T) {

		evk := kgen.GenEvaluationKeyNew(sk, kgen.GenSecretKeyNew())
		evk.Technique = (evk.Technique + 1) % 3

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		err := eval.ApplyEvaluationKey(ct, evk, ct)
		require.True(t, errors.Is(err, ErrTechniqueMismatch))
	})
}

func testRelinearize(tc *TestContext, level int, t *testing.T) {

	params := tc.params
	sk := tc.sk
	kgen := tc.kgen
	enc := tc.enc
	dec := tc.dec

	eval := tc.eval.WithKey(NewMemEvaluationKeySet(kgen.GenRelinearizationKeyNew(sk)))

	t.Run(testString(params, level, "Evaluator/Relinearize"), func(t *testing.T) {

		ringQ := params.RingQ().AtLevel(level)

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		// (c0 + c1*s)^2 = c0^2 + 2*c0*c1*s + c1^2*s^2
		ct2 := NewCiphertext(params, 2, level)
		ringQ.MulCoeffsBarrett(ct.Value[0], ct.Value[0], ct2.Value[0])
		ringQ.MulCoeffsBarrett(ct.Value[0], ct.Value[1], ct2.Value[1])
		ringQ.Add(ct2.Value[1], ct2.Value[1], ct2.Value[1])
		ringQ.MulCoeffsBarrett(ct.Value[1], ct.Value[1], ct2.Value[2])
		ct2.KeyTag = ct.KeyTag

		want := decryptNew(dec, ct2, t)

		ctOut := NewCiphertext(params, 1, level)
		require.NoError(t, eval.Relinearize(ct2, ctOut))
		require.Equal(t, 1, ctOut.Degree())

		have := decryptNew(dec, ctOut, t)

		ringQ.Sub(have.Value, want.Value, have.Value)

		require.GreaterOrEqual(t, keySwitchNoiseBound(params), log2Std(params, level, have.Value))
	})

	t.Run(testString(params, level, "Evaluator/Relinearize/InvalidDegree"), func(t *testing.T) {
		ct := NewCiphertext(params, 1, level)
		require.Error(t, eval.Relinearize(ct, ct))
	})

	t.Run(testString(params, level, "Evaluator/Relinearize/MissingKey"), func(t *testing.T) {
		ct := NewCiphertext(params, 2, level)
		require.Error(t, tc.eval.Relinearize(ct, ct))
	})
}

func testAutomorphism(tc *TestContext, level int, t *testing.T) {

	params := tc.params
	sk := tc.sk
	kgen := tc.kgen
	enc := tc.enc
	dec := tc.dec

	galEls := []uint64{params.GaloisElement(1), params.GaloisElement(-3), params.GaloisElementForComplexConjugation()}

	eval := tc.eval.WithKey(NewMemEvaluationKeySet(nil, kgen.GenGaloisKeysNew(galEls, sk)...))

	bound := keySwitchNoiseBound(params)

	t.Run(testString(params, level, "Evaluator/Automorphism"), func(t *testing.T) {

		ringQ := params.RingQ().AtLevel(level)

		pt := newRandomPlaintext(params, level)

		ct, err := enc.EncryptNew(pt)
		require.NoError(t, err)

		for _, galEl := range galEls {

			ctOut := NewCiphertext(params, 1, level)
			require.NoError(t, eval.Automorphism(ct, galEl, ctOut))
			require.Equal(t, ct.KeyTag, ctOut.KeyTag)

			want := ringQ.NewPoly()
			ringQ.Automorphism(pt.Value, galEl, want)

			have := decryptNew(dec, ctOut, t)

			ringQ.Sub(have.Value, want, have.Value)

			assert.GreaterOrEqual(t, bound, log2Std(params, level, have.Value))
		}
	})

	t.Run(testString(params, level, "Evaluator/AutomorphismHoisted"), func(t *testing.T) {

		ringQ := params.RingQ().AtLevel(level)

		pt := newRandomPlaintext(params, level)

		ct, err := enc.EncryptNew(pt)
		require.NoError(t, err)

		decomp := eval.DecomposeNTTNew(ct)
		require.Equal(t, level, decomp.LevelQ)

		for _, galEl := range galEls {

			ctHoisted := NewCiphertext(params, 1, level)
			require.NoError(t, eval.AutomorphismHoisted(ct, decomp, galEl, ctHoisted))

			ctPlain := NewCiphertext(params, 1, level)
			require.NoError(t, eval.Automorphism(ct, galEl, ctPlain))

			// Both results decrypt to the same message, up to the key-switching error
			have := decryptNew(dec, ctHoisted, t)
			want := decryptNew(dec, ctPlain, t)

			ringQ.Sub(have.Value, want.Value, have.Value)

			assert.GreaterOrEqual(t, bound+1, log2Std(params, level, have.Value))
		}
	})

	t.Run(testString(params, level, "Evaluator/Automorphism/Identity"), func(t *testing.T) {

		ct := NewCiphertext(params, 1, level)
		require.NoError(t, enc.EncryptZero(ct))

		ctOut := NewCiphertext(params, 1, level)
		require.NoError(t, eval.Automorphism(ct, 1, ctOut))
		require.True(t, ct.Equal(ctOut))
	})

	t.Run(testString(params, level, "Evaluator/Automorphism/MissingKey"), func(t *testing.T) {
		ct := NewCiphertext(params, 1, level)
		require.Error(t, eval.Automorphism(ct, params.GaloisElement(5), ct))
	})

	t.Run(testString(params, level, "Evaluator/ShallowCopy"), func(t *testing.T) {
		eval1 := eval.ShallowCopy()
		require.False(t, eval1.EvaluatorBuffers == eval.EvaluatorBuffers)
		require.Equal(t, eval.GetGaloisKeysList(), eval1.GetGaloisKeysList())
		for _, galEl := range galEls {
			require.Equal(t, eval.AutomorphismIndex(galEl), eval1.AutomorphismIndex(galEl))
		}
	})
}

func testUserDefinedParameters(t *testing.T) {

	t.Run("Parameters/UnmarshalJSON", func(t *testing.T) {

		var err error
		// checks that parameters can be unmarshalled without error
		dataWithLogModuli := []byte(`{"LogN":13,"LogQ":[50,50],"LogP":[60]}`)
		var paramsWithLogModuli Parameters
		err = json.Unmarshal(dataWithLogModuli, &paramsWithLogModuli)
		require.Nil(t, err)
		require.Equal(t, 2, paramsWithLogModuli.QCount())
		require.Equal(t, 1, paramsWithLogModuli.PCount())
		require.Equal(t, HYBRID, paramsWithLogModuli.KeySwitchTechnique())
		require.Equal(t, DefaultXe, paramsWithLogModuli.Xe()) // Omitting Xe should result in Default being used
		require.Equal(t, DefaultXs, paramsWithLogModuli.Xs()) // Omitting Xs should result in Default being used

		// checks that the technique is read from its name
		dataWithTechnique := []byte(`{"LogN":13,"LogQ":[50,50],"KeySwitchTechnique":"BV","RelinWindow":20}`)
		var paramsWithTechnique Parameters
		err = json.Unmarshal(dataWithTechnique, &paramsWithTechnique)
		require.Nil(t, err)
		require.Equal(t, BV, paramsWithTechnique.KeySwitchTechnique())
		require.Equal(t, 20, paramsWithTechnique.RelinWindow())
		require.Nil(t, paramsWithTechnique.P())

		// checks that one can provide custom parameters for the secret-key and error distributions
		dataWithCustomSecrets := []byte(`{"LogN":13,"LogQ":[50,50],"LogP":[60],"Xs":{"Type":"Ternary", "H":192},"Xe":{"Type":"DiscreteGaussian","Sigma":6.6,"Bound":39.6}}`)
		var paramsWithCustomSecrets Parameters
		err = json.Unmarshal(dataWithCustomSecrets, &paramsWithCustomSecrets)
		require.Nil(t, err)
		require.Equal(t, ring.DiscreteGaussian{Sigma: 6.6, Bound: 39.6}, paramsWithCustomSecrets.Xe())
		require.Equal(t, ring.Ternary{H: 192}, paramsWithCustomSecrets.Xs())
		require.Equal(t, 192, paramsWithCustomSecrets.XsHammingWeight())

		// an unknown technique is rejected
		var paramsInvalid Parameters
		require.Error(t, json.Unmarshal([]byte(`{"LogN":13,"LogQ":[50,50],"KeySwitchTechnique":"BGV"}`), &paramsInvalid))
	})

	t.Run("Parameters/KeySwitchTechnique/Text", func(t *testing.T) {
		for _, ks := range []KeySwitchTechnique{HYBRID, BV, GHS} {
			data, err := ks.MarshalText()
			require.NoError(t, err)
			var rec KeySwitchTechnique
			require.NoError(t, rec.UnmarshalText(data))
			require.Equal(t, ks, rec)
			require.Equal(t, ks.String(), string(data))
		}
	})
}

func testParametersErrors(t *testing.T) {

	for _, tt := range []struct {
		name string
		lit  ParametersLiteral
	}{
		{"EmptyQ", ParametersLiteral{LogN: logN}},
		{"BothQAndLogQ", ParametersLiteral{LogN: logN, Q: qi, LogQ: []int{40}}},
		{"LogNTooSmall", ParametersLiteral{LogN: 2, Q: qi}},
		{"NotPrime", ParametersLiteral{LogN: logN, Q: []uint64{qi[0] + 2}}},
		{"NotDistinct", ParametersLiteral{LogN: logN, Q: []uint64{qi[0], qi[0]}}},
		{"QAndPNotDisjoint", ParametersLiteral{LogN: logN, Q: qi, P: qi[:1]}},
		{"BVWithP", ParametersLiteral{LogN: logN, Q: qi, P: pj, KeySwitchTechnique: BV}},
		{"BVInvalidWindow", ParametersLiteral{LogN: logN, Q: qi, KeySwitchTechnique: BV, RelinWindow: 64}},
		{"GHSPTooSmall", ParametersLiteral{LogN: logN, Q: qi, P: pj[:1], KeySwitchTechnique: GHS}},
		{"HYBRIDTooManyDigits", ParametersLiteral{LogN: logN, Q: qi, P: pj, KeySwitchTechnique: HYBRID, NumLargeDigits: len(qi) + 1}},
		{"HYBRIDPTooSmall", ParametersLiteral{LogN: logN, Q: qi, P: pj[:1], KeySwitchTechnique: HYBRID, NumLargeDigits: 1}},
		{"InvalidTechnique", ParametersLiteral{LogN: logN, Q: qi, KeySwitchTechnique: 7}},
	} {
		t.Run("Parameters/Errors/"+tt.name, func(t *testing.T) {
			_, err := NewParametersFromLiteral(tt.lit)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}
}

func TestScale(t *testing.T) {

	t.Run("Float", func(t *testing.T) {
		s0 := NewScale(math.Exp2(40))
		s1 := NewScale(math.Exp2(20))

		require.InDelta(t, 60.0, s0.Mul(s1).Log2(), 1e-9)
		require.InDelta(t, 20.0, s0.Div(s1).Log2(), 1e-9)
		require.Equal(t, 1, s0.Cmp(s1))
		require.True(t, s0.Max(s1).Equal(s0))
		require.True(t, s0.Min(s1).Equal(s1))
		require.True(t, s0.InDelta(NewScale(math.Exp2(40)+1), -30))
	})

	t.Run("ModT", func(t *testing.T) {
		s0 := NewScaleModT(3, 17)
		s1 := NewScaleModT(6, 17)

		require.Equal(t, uint64(1), s0.Mul(s1).Uint64())
		require.Equal(t, uint64(1), s1.Div(s1).Uint64())
		// 3 * 6^-1 = 3 * 3 = 9 mod 17
		require.Equal(t, uint64(9), s0.Div(s1).Uint64())
	})

	t.Run("Marshaller", func(t *testing.T) {
		for _, s := range []Scale{NewScale(math.Exp2(45) + 0.5), NewScaleModT(12, 65537)} {
			data, err := json.Marshal(s)
			require.NoError(t, err)
			var rec Scale
			require.NoError(t, json.Unmarshal(data, &rec))
			require.True(t, s.Equal(rec))
			require.Equal(t, s.Mod, rec.Mod)
		}
	})
}

func TestKeyTag(t *testing.T) {

	p := ring.NewPoly(16, 1)
	for i := range p.Coeffs {
		for j := range p.Coeffs[i] {
			p.Coeffs[i][j] = uint64(i*16 + j)
		}
	}

	tag := NewKeyTag(p)
	require.False(t, tag.IsZero())
	require.Equal(t, tag, NewKeyTag(p.CopyNew()))

	p.Coeffs[0][0]++
	require.NotEqual(t, tag, NewKeyTag(p))

	require.NoError(t, CheckKeyTags(tag, tag))
	require.NoError(t, CheckKeyTags(tag, KeyTag{}))
	require.True(t, errors.Is(CheckKeyTags(tag, NewKeyTag(p)), ErrKeyTagMismatch))

	require.Equal(t, tag, MergeKeyTags(tag, KeyTag{}))
	require.Equal(t, tag, MergeKeyTags(KeyTag{}, tag))

	data, err := json.Marshal(tag)
	require.NoError(t, err)
	var rec KeyTag
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, tag, rec)
}

func decryptNew(dec *Decryptor, ct *Ciphertext, t *testing.T) *Plaintext {
	pt, err := dec.DecryptNew(ct)
	require.NoError(t, err)
	return pt
}
