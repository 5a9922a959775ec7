package ring

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// TernarySampler samples polynomials with coefficients in [-1, 0, 1].
type TernarySampler struct {
	*baseSampler
	X Ternary
}

// NewTernarySampler creates a new [TernarySampler].
func NewTernarySampler(prng sampling.PRNG, baseRing *Ring, X Ternary) (*TernarySampler, error) {
	switch {
	case X.P > 0 && X.P <= 1 && X.H == 0:
	case X.P == 0 && X.H > 0 && X.H <= baseRing.N():
	default:
		return nil, fmt.Errorf("invalid Ternary distribution: exactly one of P in (0, 1] or H in [1, N] must be set")
	}
	return &TernarySampler{baseSampler: newBaseSampler(prng, baseRing), X: X}, nil
}

// AtLevel implements [Sampler].
func (ts *TernarySampler) AtLevel(level int) Sampler {
	return &TernarySampler{baseSampler: ts.baseSampler.atLevel(level), X: ts.X}
}

// Read implements [Sampler].
func (ts *TernarySampler) Read(pol Poly) {
	ts.read(pol, false)
}

// ReadNew implements [Sampler].
func (ts *TernarySampler) ReadNew() (pol Poly) {
	pol = ts.baseRing.NewPoly()
	ts.Read(pol)
	return
}

// ReadAndAdd implements [Sampler].
func (ts *TernarySampler) ReadAndAdd(pol Poly) {
	ts.read(pol, true)
}

func (ts *TernarySampler) read(pol Poly, add bool) {
	if ts.X.H != 0 {
		ts.readSparse(pol, add)
		return
	}

	p := ts.X.P
	for j := 0; j < ts.baseRing.N(); j++ {
		var v int64
		switch u := sampling.Float64FromPRNG(ts.prng, ts.buff); {
		case u < p/2:
			v = -1
		case u < p:
			v = 1
		}
		if v != 0 || !add {
			ts.setSigned(pol, j, v, add)
		}
	}
}

// readSparse samples a ternary polynomial of hamming weight H with a partial Fisher-Yates shuffle.
func (ts *TernarySampler) readSparse(pol Poly, add bool) {

	N := ts.baseRing.N()

	if !add {
		for i := 0; i < ts.baseRing.level+1; i++ {
			clear(pol.Coeffs[i])
		}
	}

	index := make([]int, N)
	for i := range index {
		index[i] = i
	}

	for k := 0; k < ts.X.H; k++ {
		r := ts.uint64()
		j := k + int((r>>1)%uint64(N-k))
		index[k], index[j] = index[j], index[k]
		v := int64(1)
		if r&1 == 1 {
			v = -1
		}
		ts.setSigned(pol, index[k], v, true)
	}
}
