package ckks

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

var (
	testLogQ = []int{55, 40, 40, 40}
	testLogP = []int{61}

	// testRelinWindow keeps the BV key-switching noise around 2^13, well below the
	// 2^40 scale: with base 2^8 digits it reaches 2^17.
	testRelinWindow = 4

	// testInsecure are insecure parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		{
			LogN:               10,
			LogQ:               testLogQ,
			LogP:               testLogP,
			KeySwitchTechnique: rlwe.HYBRID,
			RescalingTechnique: ApproxRescale,
			LogDefaultScale:    40,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			LogP:               testLogP,
			KeySwitchTechnique: rlwe.HYBRID,
			RescalingTechnique: ExactRescale,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.GHS,
			RescalingTechnique: ExactRescale,
		},
		{
			LogN:               10,
			LogQ:               testLogQ,
			KeySwitchTechnique: rlwe.BV,
			RelinWindow:        testRelinWindow,
			RescalingTechnique: ApproxRescale,
			LogDefaultScale:    40,
		},
	}
)
