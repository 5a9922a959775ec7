package rlwe

import (
	"math"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// Distribution pairs the parameters of a distribution with its standard
// deviation and the bound of its coefficients.
type Distribution struct {
	ring.DistributionParameters
	Std      float64
	AbsBound float64
}

// NewDistribution returns the [Distribution] of params for the ring of degree 2^logN.
func NewDistribution(params ring.DistributionParameters, logN int) (d Distribution) {
	d.DistributionParameters = params
	switch params := params.(type) {
	case ring.DiscreteGaussian:
		d.Std = params.Sigma
		d.AbsBound = params.Bound
	case ring.Ternary:
		if params.P != 0 {
			d.Std = math.Sqrt(params.P)
		} else {
			d.Std = math.Sqrt(float64(params.H) / math.Exp2(float64(logN)))
		}
		d.AbsBound = 1
	default:
		// Sanity check
		panic("invalid dist")
	}
	return
}
