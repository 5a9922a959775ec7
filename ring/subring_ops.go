package ring

// Add evaluates p3 = p1 + p2 mod q.
func (s *SubRing) Add(p1, p2, p3 []uint64) {
	q := s.Modulus
	for j := range p3[:s.N] {
		p3[j] = CRed(p1[j]+p2[j], q)
	}
}

// Sub evaluates p3 = p1 - p2 mod q.
func (s *SubRing) Sub(p1, p2, p3 []uint64) {
	q := s.Modulus
	for j := range p3[:s.N] {
		p3[j] = CRed(p1[j]+q-p2[j], q)
	}
}

// Neg evaluates p2 = -p1 mod q.
func (s *SubRing) Neg(p1, p2 []uint64) {
	q := s.Modulus
	for j := range p2[:s.N] {
		p2[j] = CRed(q-p1[j], q)
	}
}

// Reduce evaluates p2 = p1 mod q for arbitrary 64-bit inputs.
func (s *SubRing) Reduce(p1, p2 []uint64) {
	q, bredconstant := s.Modulus, s.BRedConstant
	for j := range p2[:s.N] {
		p2[j] = BRedAdd(p1[j], q, bredconstant)
	}
}

// MulCoeffsBarrett evaluates p3 = p1 * p2 mod q.
func (s *SubRing) MulCoeffsBarrett(p1, p2, p3 []uint64) {
	q, bredconstant := s.Modulus, s.BRedConstant
	for j := range p3[:s.N] {
		p3[j] = BRed(p1[j], p2[j], q, bredconstant)
	}
}

// MulCoeffsMontgomery evaluates p3 = p1 * p2 * 2^-64 mod q.
func (s *SubRing) MulCoeffsMontgomery(p1, p2, p3 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p3[:s.N] {
		p3[j] = MRed(p1[j], p2[j], q, mredconstant)
	}
}

// MulCoeffsMontgomeryThenAdd evaluates p3 = p3 + p1 * p2 * 2^-64 mod q.
func (s *SubRing) MulCoeffsMontgomeryThenAdd(p1, p2, p3 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p3[:s.N] {
		p3[j] = CRed(p3[j]+MRed(p1[j], p2[j], q, mredconstant), q)
	}
}

// MulCoeffsMontgomeryThenSub evaluates p3 = p3 - p1 * p2 * 2^-64 mod q.
func (s *SubRing) MulCoeffsMontgomeryThenSub(p1, p2, p3 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p3[:s.N] {
		p3[j] = CRed(p3[j]+q-MRed(p1[j], p2[j], q, mredconstant), q)
	}
}

// MulCoeffsMontgomeryLazyThenAddLazy evaluates p3 = p3 + p1 * p2 * 2^-64 mod q
// without the final reductions: each call adds a value in [0, 2q-1] to p3.
// The caller must reduce p3 before it overflows 64 bits.
func (s *SubRing) MulCoeffsMontgomeryLazyThenAddLazy(p1, p2, p3 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p3[:s.N] {
		p3[j] += MRedLazy(p1[j], p2[j], q, mredconstant)
	}
}

// MulScalarMontgomery evaluates p2 = p1 * scalarMont * 2^-64 mod q,
// where scalarMont is given in the Montgomery domain.
func (s *SubRing) MulScalarMontgomery(p1 []uint64, scalarMont uint64, p2 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p2[:s.N] {
		p2[j] = MRed(p1[j], scalarMont, q, mredconstant)
	}
}

// MulScalarMontgomeryThenAdd evaluates p2 = p2 + p1 * scalarMont * 2^-64 mod q.
func (s *SubRing) MulScalarMontgomeryThenAdd(p1 []uint64, scalarMont uint64, p2 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p2[:s.N] {
		p2[j] = CRed(p2[j]+MRed(p1[j], scalarMont, q, mredconstant), q)
	}
}

// AddScalar evaluates p2 = p1 + scalar mod q, for scalar < q.
func (s *SubRing) AddScalar(p1 []uint64, scalar uint64, p2 []uint64) {
	q := s.Modulus
	for j := range p2[:s.N] {
		p2[j] = CRed(p1[j]+scalar, q)
	}
}

// SubScalar evaluates p2 = p1 - scalar mod q, for scalar < q.
func (s *SubRing) SubScalar(p1 []uint64, scalar uint64, p2 []uint64) {
	q := s.Modulus
	for j := range p2[:s.N] {
		p2[j] = CRed(p1[j]+q-scalar, q)
	}
}

// MForm switches p1 to the Montgomery domain: p2 = p1 * 2^64 mod q.
func (s *SubRing) MForm(p1, p2 []uint64) {
	q, bredconstant := s.Modulus, s.BRedConstant
	for j := range p2[:s.N] {
		p2[j] = MForm(p1[j], q, bredconstant)
	}
}

// IMForm switches p1 out of the Montgomery domain: p2 = p1 * 2^-64 mod q.
func (s *SubRing) IMForm(p1, p2 []uint64) {
	q, mredconstant := s.Modulus, s.MRedConstant
	for j := range p2[:s.N] {
		p2[j] = IMForm(p1[j], q, mredconstant)
	}
}

// CenteredReduceFrom reduces a polynomial p1 with coefficients modulo qIn,
// interpreted in the centered range (-qIn/2, qIn/2], modulo q, and writes the result on p2.
func (s *SubRing) CenteredReduceFrom(p1 []uint64, qIn uint64, p2 []uint64) {
	q, bredconstant := s.Modulus, s.BRedConstant
	half := qIn >> 1
	negOffset := q - BRedAdd(qIn, q, bredconstant)
	for j := range p2[:s.N] {
		if c := p1[j]; c > half {
			p2[j] = CRed(BRedAdd(c, q, bredconstant)+negOffset, q)
		} else {
			p2[j] = BRedAdd(c, q, bredconstant)
		}
	}
}

// ReduceFrom reduces a polynomial p1 with coefficients modulo qIn, interpreted
// in [0, qIn), modulo q, and writes the result on p2.
func (s *SubRing) ReduceFrom(p1 []uint64, p2 []uint64) {
	s.Reduce(p1, p2)
}

// DecomposeWindow writes on p2 the w-th base-2^logBase digit of p1, that is (p1 >> (w*logBase)) & (2^logBase - 1).
// A logBase of 0 copies p1.
func DecomposeWindow(p1 []uint64, w, logBase int, p2 []uint64) {
	if logBase == 0 {
		copy(p2, p1)
		return
	}
	shift := uint(w * logBase)
	mask := uint64(1)<<uint(logBase) - 1
	if logBase >= 64 {
		mask = ^uint64(0)
	}
	for j := range p2 {
		p2[j] = (p1[j] >> shift) & mask
	}
}
