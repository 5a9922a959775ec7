package ring

// NTT evaluates p2 = NTT(p1) in Z_q[X]/(X^N+1) with the negacyclic
// Cooley-Tukey butterfly. The output is in bit-reversed order: p2[k] is the
// evaluation of p1 at psi^(2*bitrev(k)+1).
func (s *SubRing) NTT(p1, p2 []uint64) {

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	N := s.N
	q := s.Modulus
	mredconstant := s.MRedConstant
	roots := s.RootsForward

	t := N
	for m := 1; m < N; m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			j1 := 2 * i * t
			psi := roots[m+i]
			for j := j1; j < j1+t; j++ {
				u := p2[j]
				v := MRed(p2[j+t], psi, q, mredconstant)
				p2[j] = CRed(u+v, q)
				p2[j+t] = CRed(u+q-v, q)
			}
		}
	}
}

// INTT evaluates p2 = NTT^-1(p1) in Z_q[X]/(X^N+1) with the Gentleman-Sande
// butterfly. The input is expected in the bit-reversed order produced by NTT.
func (s *SubRing) INTT(p1, p2 []uint64) {

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	N := s.N
	q := s.Modulus
	mredconstant := s.MRedConstant
	roots := s.RootsBackward

	t := 1
	for m := N; m > 1; m >>= 1 {
		h := m >> 1
		for i, j1 := 0, 0; i < h; i, j1 = i+1, j1+2*t {
			psi := roots[h+i]
			for j := j1; j < j1+t; j++ {
				u := p2[j]
				v := p2[j+t]
				p2[j] = CRed(u+v, q)
				p2[j+t] = MRed(u+q-v, psi, q, mredconstant)
			}
		}
		t <<= 1
	}

	for j := range p2[:N] {
		p2[j] = MRed(p2[j], s.NInv, q, mredconstant)
	}
}
