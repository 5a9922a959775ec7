package ring

import (
	"math/bits"

	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// AutomorphismNTTIndex computes the permutation table that applies the
// automorphism X -> X^galEl on a polynomial in the NTT domain.
// galEl must be odd.
func AutomorphismNTTIndex(N int, NthRoot, galEl uint64) (index []uint64) {

	mask := NthRoot - 1
	logN := bits.Len64(uint64(N)) - 1

	index = make([]uint64, N)
	for i := uint64(0); i < uint64(N); i++ {
		// slot i holds the evaluation at psi^(2*bitrev(i)+1)
		e := 2*utils.BitReverse64(i, logN) + 1
		src := ((galEl*e)&mask - 1) >> 1
		index[i] = utils.BitReverse64(src, logN)
	}

	return
}

// AutomorphismNTTWithIndex applies the automorphism X -> X^galEl on p1 in the
// NTT domain using the table returned by AutomorphismNTTIndex, and writes
// the result on p2. p1 and p2 must not share their backing arrays.
func (r Ring) AutomorphismNTTWithIndex(p1 Poly, index []uint64, p2 Poly) {
	for i := 0; i < r.level+1; i++ {
		in, out := p1.Coeffs[i], p2.Coeffs[i]
		for j, idx := range index {
			out[j] = in[idx]
		}
	}
}

// AutomorphismNTT applies the automorphism X -> X^galEl on p1 in the NTT domain and writes the result on p2.
// p1 and p2 must not share their backing arrays.
func (r Ring) AutomorphismNTT(p1 Poly, galEl uint64, p2 Poly) {
	r.AutomorphismNTTWithIndex(p1, AutomorphismNTTIndex(r.N(), r.NthRoot(), galEl), p2)
}

// Automorphism applies the automorphism X -> X^galEl on p1 in the coefficient
// domain and writes the result on p2. p1 and p2 must not share their backing arrays.
func (r Ring) Automorphism(p1 Poly, galEl uint64, p2 Poly) {

	N := uint64(r.N())
	mask := N - 1
	galEl &= 2*N - 1

	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		in, out := p1.Coeffs[i], p2.Coeffs[i]
		for j := uint64(0); j < N; j++ {
			k := j * galEl
			// X^(k mod 2N) = -X^(k mod N) when (k / N) is odd
			if (k/N)&1 == 1 {
				out[k&mask] = CRed(q-in[j], q)
			} else {
				out[k&mask] = in[j]
			}
		}
	}
}
