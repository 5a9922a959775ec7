package multiparty

import (
	"math"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

// NoisePublicKey returns the standard deviation of the error of a collective public key
// generated by nbParties parties.
func NoisePublicKey(params rlwe.Parameters, nbParties int) (std float64) {
	return math.Sqrt(float64(nbParties)) * params.NoiseFreshSK() * float64(params.ErrorScale())
}

// NoiseEvaluationKey returns the standard deviation of the error of each element of a
// collective [rlwe.EvaluationKey] or [rlwe.GaloisKey].
func NoiseEvaluationKey(params rlwe.Parameters, nbParties int) (std float64) {
	return NoisePublicKey(params, nbParties)
}

// NoiseRelinearizationKey returns the standard deviation of the error of each element
// of a collective [rlwe.RelinearizationKey].
func NoiseRelinearizationKey(params rlwe.Parameters, nbParties int) (std float64) {

	// s*e0 + u*e1 + e2 + e3, with s, u the sums of nbParties
	// secrets and e0, ..., e3 the sums of nbParties errors.
	H := float64(nbParties * params.XsHammingWeight())
	e := float64(nbParties) * params.NoiseFreshSK() * params.NoiseFreshSK()

	return math.Sqrt(2*e*(H+1)) * float64(params.ErrorScale())
}

// NoiseThresholdDecryption returns the standard deviation of the error of a plaintext
// obtained by the [ThresholdDecryptionProtocol], given the standard deviation of the error
// of the ciphertext and of the noise flooding distribution.
func NoiseThresholdDecryption(params rlwe.Parameters, nbParties int, noiseCt, noiseFlooding float64) (std float64) {
	flood := noiseFlooding * float64(params.ErrorScale())
	return math.Sqrt(noiseCt*noiseCt + float64(nbParties)*flood*flood)
}
