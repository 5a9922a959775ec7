package ring

import (
	"math/big"
	"math/bits"
)

// MForm switches a to the Montgomery domain by computing
// a*2^64 mod q, using the Barrett constant of q.
func MForm(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[1])
	r = -(a*bredconstant[0] + mhi) * q
	if r >= q {
		r -= q
	}
	return
}

// MFormLazy is identical to MForm, except that it returns a value in [0, 2q-1].
func MFormLazy(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[1])
	return -(a*bredconstant[0] + mhi) * q
}

// IMForm switches a back from the Montgomery domain by computing
// a*(1/2^64) mod q.
func IMForm(a, q, mredconstant uint64) (r uint64) {
	r, _ = bits.Mul64(a*mredconstant, q)
	r = q - r
	if r >= q {
		r -= q
	}
	return
}

// GenMRedConstant computes the constant qInv = (q^-1) mod 2^64 required for MRed.
func GenMRedConstant(q uint64) (qInv uint64) {
	qInv = 1
	for i := 0; i < 63; i++ {
		qInv *= q
		q *= q
	}
	return
}

// MRed computes x * y * (1/2^64) mod q.
func MRed(x, y, q, mredconstant uint64) (r uint64) {
	mhi, mlo := bits.Mul64(x, y)
	hhi, _ := bits.Mul64(mlo*mredconstant, q)
	r = mhi - hhi + q
	if r >= q {
		r -= q
	}
	return
}

// MRedLazy is identical to MRed except that it returns a value in [0, 2q-1].
func MRedLazy(x, y, q, mredconstant uint64) (r uint64) {
	mhi, mlo := bits.Mul64(x, y)
	hhi, _ := bits.Mul64(mlo*mredconstant, q)
	return mhi - hhi + q
}

// GenBRedConstant computes the constant floor(2^128/q) required for the
// Barrett reduction, as a pair {hi, lo} of 64-bit words.
func GenBRedConstant(q uint64) [2]uint64 {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))
	lo := bigR.Uint64()
	hi := bigR.Rsh(bigR, 64).Uint64()
	return [2]uint64{hi, lo}
}

// BRedAdd computes a mod q.
func BRedAdd(a, q uint64, bredconstant [2]uint64) (r uint64) {
	s0, _ := bits.Mul64(a, bredconstant[0])
	r = a - s0*q
	if r >= q {
		r -= q
	}
	return
}

// BRedAddLazy is identical to BRedAdd except that it returns a value in [0, 2q-1].
func BRedAddLazy(x, q uint64, bredconstant [2]uint64) uint64 {
	s0, _ := bits.Mul64(x, bredconstant[0])
	return x - s0*q
}

// barrettQuotient returns an approximation, by at most a few units from below,
// of floor((hi*2^64 + lo) / q).
func barrettQuotient(hi, lo uint64, bredconstant [2]uint64) uint64 {

	// (lo*ulo) >> 64
	lhi, _ := bits.Mul64(lo, bredconstant[1])

	// (lo*uhi + (lo*ulo)>>64)
	mhi, mlo := bits.Mul64(lo, bredconstant[0])
	s0, carry := bits.Add64(mlo, lhi, 0)
	s1 := mhi + carry

	// + hi*ulo
	mhi, mlo = bits.Mul64(hi, bredconstant[1])
	_, carry = bits.Add64(mlo, s0, 0)
	lhi = mhi + carry

	// hi*uhi + (...)>>64
	return hi*bredconstant[0] + s1 + lhi
}

// BRed computes x*y mod q.
func BRed(x, y, q uint64, bredconstant [2]uint64) (r uint64) {
	hi, lo := bits.Mul64(x, y)
	r = lo - barrettQuotient(hi, lo, bredconstant)*q
	if r >= q {
		r -= q
	}
	return
}

// BRedLazy is identical to BRed except that it returns a value in [0, 2q-1].
func BRedLazy(x, y, q uint64, bredconstant [2]uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return lo - barrettQuotient(hi, lo, bredconstant)*q
}

// BRedWide reduces the 128-bit integer hi*2^64 + lo modulo q.
// It requires hi < q and q < 2^62.
func BRedWide(hi, lo, q uint64, bredconstant [2]uint64) (r uint64) {
	r = lo - barrettQuotient(hi, lo, bredconstant)*q
	for r >= q {
		r -= q
	}
	return
}

// CRed returns a mod q for a in [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// ModExp computes x^e mod q.
func ModExp(x, e, q uint64) (result uint64) {
	result = 1
	x %= q
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			result = mulMod(result, x, q)
		}
		x = mulMod(x, x, q)
	}
	return
}

// ModInverse returns x^-1 mod q for a prime q.
func ModInverse(x, q uint64) uint64 {
	return ModExp(x, q-2, q)
}

func mulMod(x, y, q uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return bits.Rem64(hi, lo, q)
}
