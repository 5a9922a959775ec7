package ring

// DivRoundByLastModulusNTT divides the polynomial p0, in the NTT domain, by the
// last modulus of the ring with rounding, and writes the result on p1, whose
// level must be at least the level of the ring minus one.
// buff is a buffer polynomial of the same level as the ring.
func (r Ring) DivRoundByLastModulusNTT(p0, buff, p1 Poly) {

	level := r.level
	sL := r.SubRings[level]
	qL := sL.Modulus

	last := buff.Coeffs[level]
	sL.INTT(p0.Coeffs[level], last)

	// t = [x_L + (q_L-1)/2]_{q_L}, such that x + (q_L-1)/2 - t is divisible by q_L
	half := (qL - 1) >> 1
	sL.AddScalar(last, half, last)

	for i, s := range r.SubRings[:level] {
		tmp := buff.Coeffs[i]
		s.Reduce(last, tmp)
		s.SubScalar(tmp, BRedAdd(half, s.Modulus, s.BRedConstant), tmp)
		s.NTT(tmp, tmp)
		s.Sub(p0.Coeffs[i], tmp, p1.Coeffs[i])
		s.MulScalarMontgomery(p1.Coeffs[i], r.RescaleConstants[level][i], p1.Coeffs[i])
	}
}

// DivRoundByLastModulus is identical to DivRoundByLastModulusNTT, except that
// p0 and p1 are in the coefficient domain.
func (r Ring) DivRoundByLastModulus(p0, buff, p1 Poly) {

	level := r.level
	sL := r.SubRings[level]
	qL := sL.Modulus

	last := buff.Coeffs[level]
	half := (qL - 1) >> 1
	sL.AddScalar(p0.Coeffs[level], half, last)

	for i, s := range r.SubRings[:level] {
		tmp := buff.Coeffs[i]
		s.Reduce(last, tmp)
		s.SubScalar(tmp, BRedAdd(half, s.Modulus, s.BRedConstant), tmp)
		s.Sub(p0.Coeffs[i], tmp, p1.Coeffs[i])
		s.MulScalarMontgomery(p1.Coeffs[i], r.RescaleConstants[level][i], p1.Coeffs[i])
	}
}

// DivFloorByLastModulus divides the polynomial p0, in the coefficient domain,
// by the last modulus of the ring, rounding towards minus infinity.
func (r Ring) DivFloorByLastModulus(p0, p1 Poly) {
	level := r.level
	for i, s := range r.SubRings[:level] {
		tmp := make([]uint64, r.N())
		s.Reduce(p0.Coeffs[level], tmp)
		s.Sub(p0.Coeffs[i], tmp, p1.Coeffs[i])
		s.MulScalarMontgomery(p1.Coeffs[i], r.RescaleConstants[level][i], p1.Coeffs[i])
	}
}

// DivByLastModulusLSBNTT divides the polynomial p0, in the NTT domain, by the
// last modulus q_L of the ring and writes the result on p1. The value
// removed from p0 before the division is delta = t*[t^-1 * p0]_{q_L}
// (centered), so that the output is congruent to p0 * q_L^-1 modulo t and the
// rounding error stays a multiple of t.
func (r Ring) DivByLastModulusLSBNTT(t uint64, p0, buff, p1 Poly) {

	level := r.level
	sL := r.SubRings[level]
	qL := sL.Modulus

	last := buff.Coeffs[level]
	sL.INTT(p0.Coeffs[level], last)

	tInvMont := MForm(ModInverse(t%qL, qL), qL, sL.BRedConstant)
	sL.MulScalarMontgomery(last, tInvMont, last)

	for i, s := range r.SubRings[:level] {
		tmp := buff.Coeffs[i]
		s.CenteredReduceFrom(last, qL, tmp)
		s.MulScalarMontgomery(tmp, MForm(BRedAdd(t, s.Modulus, s.BRedConstant), s.Modulus, s.BRedConstant), tmp)
		s.NTT(tmp, tmp)
		s.Sub(p0.Coeffs[i], tmp, p1.Coeffs[i])
		s.MulScalarMontgomery(p1.Coeffs[i], r.RescaleConstants[level][i], p1.Coeffs[i])
	}
}
