package rlwe

var (
	logN = 10
	qi   = []uint64{0x200000440001, 0x7fff80001, 0x800280001, 0x7ffd80001, 0x7ffc80001}
	pj   = []uint64{0x3ffffffb80001, 0x4000000800001}

	// testInsecure are insecure parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		// HYBRID, two digits, user defined P
		{
			LogN:               logN,
			Q:                  qi,
			P:                  pj,
			KeySwitchTechnique: HYBRID,
			NumLargeDigits:     3,
		},
		// HYBRID, generated P
		{
			LogN:               logN,
			Q:                  qi,
			KeySwitchTechnique: HYBRID,
			NumLargeDigits:     2,
		},
		// GHS, generated P
		{
			LogN:               logN,
			Q:                  qi,
			KeySwitchTechnique: GHS,
		},
		// BV, base 2^16 windows
		{
			LogN:               logN,
			Q:                  qi,
			KeySwitchTechnique: BV,
			RelinWindow:        16,
		},
	}
)
