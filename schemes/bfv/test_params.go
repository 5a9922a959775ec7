package bfv

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

var (
	testLogQ = []int{55, 45, 45}

	// testPlaintextModulus are NTT-friendly primes for N = 2^10, which allow slot packing.
	testPlaintextModulus = []uint64{0x10001, 0xffc001}

	// testInsecure are insecure parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		{
			LogN:               10,
			LogQ:               testLogQ,
			LogP:               []int{61},
			KeySwitchTechnique: rlwe.HYBRID,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.BV,
			RelinWindow:        16,
		},
	}

	// testConvolution multiplies two polynomials with 0/1 coefficients
	// encoded on 12 coefficients, with three 30-bit moduli.
	testConvolution = ParametersLiteral{
		LogN:               10,
		LogQ:               []int{30, 30, 30},
		KeySwitchTechnique: rlwe.HYBRID,
		PlaintextModulus:   65537,
	}
)
