package ring

type testParameters struct {
	logN int
	qi   []uint64
	pi   []uint64
}

var testParams = []testParameters{
	{10, Qi60[:3], Pi60[:2]},
	{11, Qi60[:5], Pi60[:3]},
}

// Qi60 are 61-bit NTT-friendly primes close to 2^61 for N up to 2^17.
var Qi60 = []uint64{0x1fffffffffe00001, 0x1fffffffffc80001, 0x1fffffffffb40001, 0x1fffffffff500001,
	0x1fffffffff380001, 0x1fffffffff000001, 0x1ffffffffef00001, 0x1ffffffffee80001}

// Pi60 are the next 61-bit NTT-friendly primes after Qi60.
var Pi60 = []uint64{0x1ffffffff6c80001, 0x1ffffffff6140001, 0x1ffffffff5f40001, 0x1ffffffff5700001}
