package ckks

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/montanaflynn/stats"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

// PrecisionStats is a struct storing statistic about the precision of a CKKS plaintext
type PrecisionStats struct {
	MINLog2Prec Stats
	MAXLog2Prec Stats
	AVGLog2Prec Stats
	MEDLog2Prec Stats
	STDLog2Prec Stats

	Log2Scale float64
}

// Stats is a struct storing the real, imaginary and L2 norm (modulus)
// about the precision of a complex value.
type Stats struct {
	Real, Imag, L2 float64
}

func (prec PrecisionStats) String() string {
	return fmt.Sprintf(`
┌─────────┬───────┬───────┬───────┐
│    Log2 │ REAL  │ IMAG  │ L2    │
├─────────┼───────┼───────┼───────┤
│MIN Prec │ %5.2f │ %5.2f │ %5.2f │
│MAX Prec │ %5.2f │ %5.2f │ %5.2f │
│AVG Prec │ %5.2f │ %5.2f │ %5.2f │
│MED Prec │ %5.2f │ %5.2f │ %5.2f │
│STD Prec │ %5.2f │ %5.2f │ %5.2f │
└─────────┴───────┴───────┴───────┘
`,
		prec.MINLog2Prec.Real, prec.MINLog2Prec.Imag, prec.MINLog2Prec.L2,
		prec.MAXLog2Prec.Real, prec.MAXLog2Prec.Imag, prec.MAXLog2Prec.L2,
		prec.AVGLog2Prec.Real, prec.AVGLog2Prec.Imag, prec.AVGLog2Prec.L2,
		prec.MEDLog2Prec.Real, prec.MEDLog2Prec.Imag, prec.MEDLog2Prec.L2,
		prec.STDLog2Prec.Real, prec.STDLog2Prec.Imag, prec.STDLog2Prec.L2)
}

// GetPrecisionStats generates a [PrecisionStats] struct from the reference values and the decrypted values.
// have.(type) must be either *[rlwe.Ciphertext], *[rlwe.Plaintext] or []complex128. If not a *[rlwe.Ciphertext],
// then decryptor can be nil.
// The precision of a slot is -log2 of its absolute error, capped at the log2 of the default scale.
func GetPrecisionStats(params Parameters, encoder *Encoder, decryptor *rlwe.Decryptor, want []complex128, have interface{}) (prec PrecisionStats, err error) {

	if len(want) == 0 {
		return prec, fmt.Errorf("cannot GetPrecisionStats: empty reference vector")
	}

	var values []complex128
	if values, err = decodeValues(encoder, decryptor, have, len(want)); err != nil {
		return prec, fmt.Errorf("cannot GetPrecisionStats: %w", err)
	}

	prec.Log2Scale = params.DefaultScale().Log2()

	precReal := make([]float64, len(want))
	precImag := make([]float64, len(want))
	precL2 := make([]float64, len(want))

	log2Prec := func(err float64) float64 {
		if err == 0 {
			return prec.Log2Scale
		}
		return math.Min(-math.Log2(err), prec.Log2Scale)
	}

	for i := range want {
		diff := values[i] - want[i]
		precReal[i] = log2Prec(math.Abs(real(diff)))
		precImag[i] = log2Prec(math.Abs(imag(diff)))
		precL2[i] = log2Prec(cmplx.Abs(diff))
	}

	fill := func(f func(stats.Float64Data) (float64, error), out *Stats) {
		// The slices are not empty, the error is always nil.
		out.Real, _ = f(precReal)
		out.Imag, _ = f(precImag)
		out.L2, _ = f(precL2)
	}

	fill(stats.Min, &prec.MINLog2Prec)
	fill(stats.Max, &prec.MAXLog2Prec)
	fill(stats.Mean, &prec.AVGLog2Prec)
	fill(stats.Median, &prec.MEDLog2Prec)
	fill(stats.StandardDeviation, &prec.STDLog2Prec)

	return
}

func decodeValues(encoder *Encoder, decryptor *rlwe.Decryptor, have interface{}, n int) (values []complex128, err error) {

	switch have := have.(type) {
	case *rlwe.Ciphertext:
		if decryptor == nil {
			return nil, fmt.Errorf("a decryptor is needed to decode a *rlwe.Ciphertext")
		}
		var pt *rlwe.Plaintext
		if pt, err = decryptor.DecryptNew(have); err != nil {
			return
		}
		return decodeValues(encoder, nil, pt, n)
	case *rlwe.Plaintext:
		values = make([]complex128, have.Slots())
		if err = encoder.Decode(have, values); err != nil {
			return
		}
	case []complex128:
		values = have
	default:
		return nil, fmt.Errorf("invalid have.(type): must be *rlwe.Ciphertext, *rlwe.Plaintext or []complex128 but is %T", have)
	}

	if len(values) < n {
		return nil, fmt.Errorf("#have=%d < #want=%d", len(values), n)
	}

	return
}
