package ringqp

import (
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// UniformSampler samples the uniform component of RLWE samples over R_QP.
// Polynomials are filled at their own levels: the caller sizes the destination
// and an empty P part, as with BV parameters, is left untouched.
type UniformSampler struct {
	ring Ring
	q, p *ring.UniformSampler
}

// NewUniformSampler instantiates a new [UniformSampler] reading its randomness from prng.
// With a keyed prng shared by several parties, the samples are common to all of them.
func NewUniformSampler(prng sampling.PRNG, r Ring) (s UniformSampler) {

	s.ring = r

	if r.RingQ != nil {
		s.q = ring.NewUniformSampler(prng, r.RingQ)
	}

	if r.RingP != nil {
		s.p = ring.NewUniformSampler(prng, r.RingP)
	}

	return
}

// Read fills p with coefficients uniform modulo each of its towers.
func (s UniformSampler) Read(p Poly) {
	readAtLevel(s.q, p.Q)
	readAtLevel(s.p, p.P)
}

// ReadNew returns a new uniform polynomial at the maximum levels of the ring.
func (s UniformSampler) ReadNew() (p Poly) {
	p = s.ring.NewPoly()
	s.Read(p)
	return
}

// ReadVectorNew returns n new uniform polynomials, read one after the other, at the
// maximum levels of the ring: the common polynomials of the n elements of a gadget.
func (s UniformSampler) ReadVectorNew(n int) (v []Poly) {
	v = make([]Poly, n)
	for i := range v {
		v[i] = s.ReadNew()
	}
	return
}

func readAtLevel(s *ring.UniformSampler, pol ring.Poly) {
	if s == nil || pol.Level() < 0 {
		return
	}
	s.AtLevel(pol.Level()).Read(pol)
}
