package ring

import (
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// UniformSampler samples polynomials with coefficients uniformly distributed modulo each tower.
type UniformSampler struct {
	*baseSampler
}

// NewUniformSampler creates a new [UniformSampler].
func NewUniformSampler(prng sampling.PRNG, baseRing *Ring) *UniformSampler {
	return &UniformSampler{baseSampler: newBaseSampler(prng, baseRing)}
}

// AtLevel implements [Sampler].
func (u *UniformSampler) AtLevel(level int) Sampler {
	return &UniformSampler{baseSampler: u.baseSampler.atLevel(level)}
}

// Read implements [Sampler].
func (u *UniformSampler) Read(pol Poly) {
	u.read(pol, false)
}

// ReadNew implements [Sampler].
func (u *UniformSampler) ReadNew() (pol Poly) {
	pol = u.baseRing.NewPoly()
	u.Read(pol)
	return
}

// ReadAndAdd implements [Sampler].
func (u *UniformSampler) ReadAndAdd(pol Poly) {
	u.read(pol, true)
}

func (u *UniformSampler) read(pol Poly, add bool) {
	for i, s := range u.baseRing.SubRings[:u.baseRing.level+1] {
		q, mask := s.Modulus, s.Mask
		coeffs := pol.Coeffs[i]
		for j := range coeffs {
			// rejection sampling in [0, q)
			c := u.uint64() & mask
			for c >= q {
				c = u.uint64() & mask
			}
			if add {
				coeffs[j] = CRed(coeffs[j]+c, q)
			} else {
				coeffs[j] = c
			}
		}
	}
}
