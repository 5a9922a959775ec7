package ring

import (
	"math"

	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// GaussianSampler samples polynomials with coefficients following a
// rounded Gaussian distribution truncated to [-Bound, Bound].
type GaussianSampler struct {
	*baseSampler
	X DiscreteGaussian
}

// NewGaussianSampler creates a new [GaussianSampler].
func NewGaussianSampler(prng sampling.PRNG, baseRing *Ring, X DiscreteGaussian) *GaussianSampler {
	return &GaussianSampler{baseSampler: newBaseSampler(prng, baseRing), X: X}
}

// AtLevel implements [Sampler].
func (g *GaussianSampler) AtLevel(level int) Sampler {
	return &GaussianSampler{baseSampler: g.baseSampler.atLevel(level), X: g.X}
}

// Read implements [Sampler].
func (g *GaussianSampler) Read(pol Poly) {
	g.read(pol, false)
}

// ReadNew implements [Sampler].
func (g *GaussianSampler) ReadNew() (pol Poly) {
	pol = g.baseRing.NewPoly()
	g.Read(pol)
	return
}

// ReadAndAdd implements [Sampler].
func (g *GaussianSampler) ReadAndAdd(pol Poly) {
	g.read(pol, true)
}

func (g *GaussianSampler) read(pol Poly, add bool) {
	sigma, bound := g.X.Sigma, g.X.Bound
	for j := 0; j < g.baseRing.N(); j++ {
		var v float64
		for {
			v = math.Round(sampling.NormFloat64FromPRNG(g.prng, g.buff) * sigma)
			if math.Abs(v) <= bound {
				break
			}
		}
		g.setSigned(pol, j, int64(v), add)
	}
}
