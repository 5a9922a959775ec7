package ring

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

const (
	discreteGaussianName = "DiscreteGaussian"
	ternaryDistName      = "Ternary"
	uniformDistName      = "Uniform"
)

// Sampler is an interface for random polynomial samplers.
type Sampler interface {
	// Read samples a polynomial on pol, in the coefficient domain.
	Read(pol Poly)
	// ReadNew allocates and samples a polynomial at the level of the sampler.
	ReadNew() (pol Poly)
	// ReadAndAdd samples a polynomial and adds it on pol.
	ReadAndAdd(pol Poly)
	// AtLevel returns a sampler operating at the given level, sharing the PRNG of the receiver.
	AtLevel(level int) Sampler
}

// DistributionParameters is an interface for the parameters of the
// distributions of the ring: [DiscreteGaussian], [Ternary] and [Uniform].
type DistributionParameters interface {
	// Type returns a string representation of the distribution name.
	Type() string
	mustBeDist()
}

// DiscreteGaussian represents the parameters of a discrete Gaussian
// distribution with standard deviation Sigma and bounds [-Bound, Bound].
type DiscreteGaussian struct {
	Sigma float64
	Bound float64
}

// Ternary represents the parameters of a distribution with coefficients
// in [-1, 0, 1]. Exactly one of its fields must be non-zero:
//
//   - If P is set, each coefficient is sampled in [-1, 0, 1]
//     with probabilities [0.5*P, 1-P, 0.5*P].
//   - If H is set, the coefficients are sampled uniformly among the
//     ternary polynomials of hamming weight H.
type Ternary struct {
	P float64
	H int
}

// Uniform represents the uniform distribution over the ring.
type Uniform struct{}

// NewSampler returns a [Sampler] of the given distribution over baseRing.
func NewSampler(prng sampling.PRNG, baseRing *Ring, X DistributionParameters) (Sampler, error) {
	switch X := X.(type) {
	case DiscreteGaussian:
		return NewGaussianSampler(prng, baseRing, X), nil
	case Ternary:
		return NewTernarySampler(prng, baseRing, X)
	case Uniform:
		return NewUniformSampler(prng, baseRing), nil
	default:
		return nil, fmt.Errorf("invalid distribution: must be DiscreteGaussian, Ternary or Uniform but is %T", X)
	}
}

type baseSampler struct {
	prng     sampling.PRNG
	baseRing *Ring
	buff     []byte
}

func newBaseSampler(prng sampling.PRNG, baseRing *Ring) *baseSampler {
	return &baseSampler{prng: prng, baseRing: baseRing, buff: make([]byte, 8)}
}

func (b *baseSampler) atLevel(level int) *baseSampler {
	return &baseSampler{prng: b.prng, baseRing: b.baseRing.AtLevel(level), buff: make([]byte, 8)}
}

func (b *baseSampler) uint64() uint64 {
	if _, err := b.prng.Read(b.buff); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return binary.LittleEndian.Uint64(b.buff)
}

// setSigned writes the small signed value v at position j on every tower of pol,
// adding it to the current value if add is true.
func (b *baseSampler) setSigned(pol Poly, j int, v int64, add bool) {
	for i, s := range b.baseRing.SubRings[:b.baseRing.level+1] {
		q := s.Modulus
		var c uint64
		if v < 0 {
			c = q - uint64(-v)
		} else {
			c = uint64(v)
		}
		if add {
			pol.Coeffs[i][j] = CRed(pol.Coeffs[i][j]+c, q)
		} else {
			pol.Coeffs[i][j] = c
		}
	}
}

// Type implements [DistributionParameters].
func (d DiscreteGaussian) Type() string {
	return discreteGaussianName
}

// MarshalJSON implements [json.Marshaler].
func (d DiscreteGaussian) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type         string
		Sigma, Bound float64
	}{d.Type(), d.Sigma, d.Bound})
}

func (d DiscreteGaussian) mustBeDist() {}

// Type implements [DistributionParameters].
func (d Ternary) Type() string {
	return ternaryDistName
}

// MarshalJSON implements [json.Marshaler].
func (d Ternary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string
		P    float64 `json:",omitempty"`
		H    int     `json:",omitempty"`
	}{Type: d.Type(), P: d.P, H: d.H})
}

func (d Ternary) mustBeDist() {}

// Type implements [DistributionParameters].
func (d Uniform) Type() string {
	return uniformDistName
}

// MarshalJSON implements [json.Marshaler].
func (d Uniform) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct{ Type string }{Type: d.Type()})
}

func (d Uniform) mustBeDist() {}

// ParametersFromMap decodes a distribution from its JSON map representation,
// as produced by the MarshalJSON methods of the distributions.
func ParametersFromMap(m map[string]interface{}) (DistributionParameters, error) {

	typ, ok := m["Type"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid distribution: map has no string field Type")
	}

	getFloat := func(key string) float64 {
		f, _ := m[key].(float64)
		return f
	}

	switch typ {
	case uniformDistName:
		return Uniform{}, nil
	case ternaryDistName:
		X := Ternary{P: getFloat("P"), H: int(getFloat("H"))}
		if (X.P == 0) == (X.H == 0) {
			return nil, fmt.Errorf("invalid ternary distribution: exactly one of P and H must be set")
		}
		return X, nil
	case discreteGaussianName:
		return DiscreteGaussian{Sigma: getFloat("Sigma"), Bound: getFloat("Bound")}, nil
	default:
		return nil, fmt.Errorf("invalid distribution type: %s", typ)
	}
}
