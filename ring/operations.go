package ring

import (
	"math/big"
)

// Add evaluates p3 = p1 + p2 coefficient-wise in the ring.
func (r Ring) Add(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.Add(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// Sub evaluates p3 = p1 - p2 coefficient-wise in the ring.
func (r Ring) Sub(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.Sub(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// Neg evaluates p2 = -p1 coefficient-wise in the ring.
func (r Ring) Neg(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.Neg(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// Reduce evaluates p2 = p1 mod q_i on each tower.
func (r Ring) Reduce(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.Reduce(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// MulCoeffsBarrett evaluates p3 = p1 * p2 coefficient-wise in the ring.
func (r Ring) MulCoeffsBarrett(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulCoeffsBarrett(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// MulCoeffsMontgomery evaluates p3 = p1 * p2 * 2^-64 coefficient-wise in the ring.
func (r Ring) MulCoeffsMontgomery(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulCoeffsMontgomery(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// MulCoeffsMontgomeryThenAdd evaluates p3 = p3 + p1 * p2 * 2^-64 coefficient-wise in the ring.
func (r Ring) MulCoeffsMontgomeryThenAdd(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulCoeffsMontgomeryThenAdd(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// MulCoeffsMontgomeryThenSub evaluates p3 = p3 - p1 * p2 * 2^-64 coefficient-wise in the ring.
func (r Ring) MulCoeffsMontgomeryThenSub(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulCoeffsMontgomeryThenSub(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// MulCoeffsMontgomeryLazyThenAddLazy evaluates p3 = p3 + p1 * p2 * 2^-64 without modular reduction of the sum.
func (r Ring) MulCoeffsMontgomeryLazyThenAddLazy(p1, p2, p3 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulCoeffsMontgomeryLazyThenAddLazy(p1.Coeffs[i], p2.Coeffs[i], p3.Coeffs[i])
	}
}

// AddScalar evaluates p2 = p1 + scalar coefficient-wise in the ring.
func (r Ring) AddScalar(p1 Poly, scalar uint64, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.AddScalar(p1.Coeffs[i], BRedAdd(scalar, s.Modulus, s.BRedConstant), p2.Coeffs[i])
	}
}

// AddScalarBigint evaluates p2 = p1 + scalar coefficient-wise in the ring.
func (r Ring) AddScalarBigint(p1 Poly, scalar *big.Int, p2 Poly) {
	tmp := new(big.Int)
	for i, s := range r.SubRings[:r.level+1] {
		s.AddScalar(p1.Coeffs[i], tmp.Mod(scalar, new(big.Int).SetUint64(s.Modulus)).Uint64(), p2.Coeffs[i])
	}
}

// MulScalar evaluates p2 = p1 * scalar coefficient-wise in the ring.
func (r Ring) MulScalar(p1 Poly, scalar uint64, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulScalarMontgomery(p1.Coeffs[i], MForm(BRedAdd(scalar, s.Modulus, s.BRedConstant), s.Modulus, s.BRedConstant), p2.Coeffs[i])
	}
}

// MulScalarBigint evaluates p2 = p1 * scalar coefficient-wise in the ring.
// Negative scalars are supported.
func (r Ring) MulScalarBigint(p1 Poly, scalar *big.Int, p2 Poly) {
	tmp := new(big.Int)
	for i, s := range r.SubRings[:r.level+1] {
		si := tmp.Mod(scalar, new(big.Int).SetUint64(s.Modulus)).Uint64()
		s.MulScalarMontgomery(p1.Coeffs[i], MForm(si, s.Modulus, s.BRedConstant), p2.Coeffs[i])
	}
}

// MulScalarBigintThenAdd evaluates p2 = p2 + p1 * scalar coefficient-wise in the ring.
func (r Ring) MulScalarBigintThenAdd(p1 Poly, scalar *big.Int, p2 Poly) {
	tmp := new(big.Int)
	for i, s := range r.SubRings[:r.level+1] {
		si := tmp.Mod(scalar, new(big.Int).SetUint64(s.Modulus)).Uint64()
		s.MulScalarMontgomeryThenAdd(p1.Coeffs[i], MForm(si, s.Modulus, s.BRedConstant), p2.Coeffs[i])
	}
}

// MulRNSScalarMontgomery evaluates p2 = p1 * scalar * 2^-64, where scalar is
// given as one residue per modulus, in the Montgomery domain.
func (r Ring) MulRNSScalarMontgomery(p1 Poly, scalar []uint64, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MulScalarMontgomery(p1.Coeffs[i], scalar[i], p2.Coeffs[i])
	}
}

// MultByMonomial evaluates p2 = p1 * X^k in the coefficient domain.
// Negative values of k are supported.
func (r Ring) MultByMonomial(p1 Poly, k int, p2 Poly) {

	N := r.N()
	k %= 2 * N
	if k < 0 {
		k += 2 * N
	}

	tmp := make([]uint64, N)

	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		for j, c := range p1.Coeffs[i] {
			idx := (j + k) % (2 * N)
			if idx < N {
				tmp[idx] = c
			} else {
				tmp[idx-N] = CRed(q-c, q)
			}
		}
		copy(p2.Coeffs[i], tmp)
	}
}
