package multiparty

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/ckks"
)

var (
	nbParties = 3

	testLogQ = []int{55, 45, 45}

	// testSmudging is the noise flooding of the tests, far below the
	// scale of the CKKS test parameters.
	testSmudging = ring.DiscreteGaussian{Sigma: 1 << 20, Bound: 6 << 20}

	// testInsecureBGV are insecure parameters used for the sole purpose of fast testing,
	// one per key-switching technique.
	testInsecureBGV = []bgv.ParametersLiteral{
		{
			LogN:               10,
			LogQ:               testLogQ,
			LogP:               []int{61},
			KeySwitchTechnique: rlwe.HYBRID,
			PlaintextModulus:   0x10001,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.GHS,
			PlaintextModulus:   0x10001,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.BV,
			RelinWindow:        16,
			PlaintextModulus:   0x10001,
		},
	}

	testInsecureCKKS = []ckks.ParametersLiteral{
		{
			LogN:               10,
			LogQ:               []int{55, 40, 40},
			LogP:               []int{61},
			KeySwitchTechnique: rlwe.HYBRID,
			RescalingTechnique: ckks.ApproxRescale,
			LogDefaultScale:    40,
		},
		{
			LogN:               10,
			LogQ:               []int{55, 40, 40},
			LogP:               []int{61},
			KeySwitchTechnique: rlwe.HYBRID,
			RescalingTechnique: ckks.ExactRescale,
		},
	}
)
