package rlwe

import (
	"math"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// NoisePublicKey returns the log2 of the standard deviation of the input [PublicKey] with respect to the given [SecretKey] and parameters.
func NoisePublicKey(pk *PublicKey, sk *SecretKey, params Parameters) float64 {

	pk = pk.CopyNew()

	ringQP := params.RingQP().AtLevel(pk.LevelQ(), pk.LevelP())

	// [-as + e] + [as]
	ringQP.MulCoeffsMontgomeryThenAdd(sk.Value, pk.Value[1], pk.Value[0])
	ringQP.INTT(pk.Value[0], pk.Value[0])

	return ringQP.Log2OfStandardDeviation(pk.Value[0])
}

// NoiseEvaluationKey returns the log2 of the largest standard deviation of the errors of
// the input [EvaluationKey] with respect to the given input and output [SecretKey].
func NoiseEvaluationKey(evk *EvaluationKey, skIn, skOut *SecretKey, params Parameters) float64 {
	return noiseGadgetCiphertext(&evk.GadgetCiphertext, skIn.Value, skOut.Value, params)
}

// NoiseRelinearizationKey returns the log2 of the largest standard deviation of the errors
// of the input [RelinearizationKey] with respect to the given [SecretKey].
func NoiseRelinearizationKey(rlk *RelinearizationKey, sk *SecretKey, params Parameters) float64 {
	s2 := params.RingQP().NewPoly()
	params.RingQP().MulCoeffsMontgomery(sk.Value, sk.Value, s2)
	return noiseGadgetCiphertext(&rlk.GadgetCiphertext, s2, sk.Value, params)
}

// NoiseGaloisKey returns the log2 of the largest standard deviation of the errors
// of the input [GaloisKey] with respect to the given [SecretKey].
func NoiseGaloisKey(gk *GaloisKey, sk *SecretKey, params Parameters) float64 {
	sigmaS := params.RingQP().NewPoly()
	index := ring.AutomorphismNTTIndex(params.N(), params.NthRoot(), gk.GaloisElement)
	params.RingQP().AutomorphismNTTWithIndex(sk.Value, index, sigmaS)
	return noiseGadgetCiphertext(&gk.GadgetCiphertext, sigmaS, sk.Value, params)
}

// noiseGadgetCiphertext decrypts each element of the gadget ciphertext with sOut,
// removes g_i*sIn and returns the log2 of the largest standard deviation of the remainders.
func noiseGadgetCiphertext(gct *GadgetCiphertext, sIn, sOut ringqp.Poly, params Parameters) (maxLog2Std float64) {

	ringQP := params.RingQP()

	negSIn := ringQP.NewPoly()
	ringQP.Neg(sIn, negSIn)

	e := ringQP.NewPoly()

	for i := range gct.Value {

		// b + a*sOut = e + g_i*sIn
		ringQP.MulCoeffsMontgomery(gct.Value[i][1], sOut, e)
		ringQP.Add(e, gct.Value[i][0], e)
		ringQP.IMForm(e, e)

		params.AddGadgetTimesPoly(i, negSIn, e)

		ringQP.INTT(e, e)

		maxLog2Std = math.Max(maxLog2Std, ringQP.Log2OfStandardDeviation(e))
	}

	return
}

// Norm returns the log2 of the standard deviation, minimum and maximum absolute norm of
// the decrypted [Ciphertext], before the decoding (i.e. including the error).
func Norm(ct *Ciphertext, dec *Decryptor) (std, min, max float64, err error) {

	params := dec.params

	coeffsBigint := make([]*big.Int, params.N())

	var pt *Plaintext
	if pt, err = dec.DecryptNew(ct); err != nil {
		return
	}

	params.RingQ().AtLevel(ct.Level()).PolyToBigintCentered(pt.Value, 1, coeffsBigint)

	std, min, max = NormStats(coeffsBigint)
	return
}

// NormStats returns the log2 of the standard deviation, minimum and maximum absolute value of a vector.
func NormStats(vec []*big.Int) (float64, float64, float64) {

	vecfloat := make([]*big.Float, len(vec))
	minErr := new(big.Float).SetFloat64(0)
	maxErr := new(big.Float).SetFloat64(0)
	tmp := new(big.Float)
	minErr.SetInt(vec[0])
	minErr.Abs(minErr)
	for i := range vec {
		vecfloat[i] = new(big.Float)
		vecfloat[i].SetInt(vec[i])

		tmp.Abs(vecfloat[i])

		if minErr.Cmp(tmp) == 1 {
			minErr.Set(tmp)
		}

		if maxErr.Cmp(tmp) == -1 {
			maxErr.Set(tmp)
		}
	}

	n := new(big.Float).SetFloat64(float64(len(vec)))

	mean := new(big.Float).SetFloat64(0)

	for _, c := range vecfloat {
		mean.Add(mean, c)
	}

	mean.Quo(mean, n)

	err := new(big.Float).SetFloat64(0)
	for _, c := range vecfloat {
		tmp.Sub(c, mean)
		tmp.Mul(tmp, tmp)
		err.Add(err, tmp)
	}

	err.Quo(err, n)
	err.Sqrt(err)

	x, _ := err.Float64()
	y, _ := minErr.Float64()
	z, _ := maxErr.Float64()

	return math.Log2(x), math.Log2(y), math.Log2(z)
}
