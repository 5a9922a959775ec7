package bgv

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

var (
	testLogQ = []int{55, 45, 45}
	testLogP = []int{61}

	// testPlaintextModulus are NTT-friendly primes for N = 2^10, which allow slot packing.
	testPlaintextModulus = []uint64{0x10001, 0xffc001}

	// testInsecure are insecure parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		{
			LogN:               10,
			LogQ:               testLogQ,
			LogP:               testLogP,
			KeySwitchTechnique: rlwe.HYBRID,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.GHS,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.BV,
			RelinWindow:        16,
		},
	}

	// testCoefficientsOnly uses a plaintext modulus that does not allow slot packing.
	testCoefficientsOnly = ParametersLiteral{
		LogN:               10,
		LogQ:               testLogQ,
		LogP:               testLogP,
		KeySwitchTechnique: rlwe.HYBRID,
		PlaintextModulus:   256,
	}
)
