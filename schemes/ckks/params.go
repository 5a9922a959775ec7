package ckks

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// RescalingTechnique selects how the scaling factor of the ciphertexts is managed.
type RescalingTechnique int

const (
	// ApproxRescale leaves the rescaling to the user: ciphertexts are only
	// rescaled by explicit calls to [Evaluator.Rescale], and the operands of
	// an addition must be at the same level and depth.
	ApproxRescale = RescalingTechnique(0)
	// ExactRescale tracks a precomputed scaling factor per level and
	// rescales automatically, so that operands at different levels or depths
	// can be combined and every result has depth at most 2.
	ExactRescale = RescalingTechnique(1)
)

var rescalingTechniqueNames = [...]string{"APPROXRESCALE", "EXACTRESCALE"}

func (rs RescalingTechnique) String() string {
	if rs < 0 || int(rs) >= len(rescalingTechniqueNames) {
		return fmt.Sprintf("RescalingTechnique(%d)", int(rs))
	}
	return rescalingTechniqueNames[rs]
}

// MarshalText encodes the rescaling technique as its name.
func (rs RescalingTechnique) MarshalText() ([]byte, error) {
	if rs < 0 || int(rs) >= len(rescalingTechniqueNames) {
		return nil, fmt.Errorf("invalid rescaling technique: %d", int(rs))
	}
	return []byte(rs.String()), nil
}

// UnmarshalText decodes a rescaling technique from its name.
func (rs *RescalingTechnique) UnmarshalText(text []byte) error {
	for i, name := range rescalingTechniqueNames {
		if string(text) == name {
			*rs = RescalingTechnique(i)
			return nil
		}
	}
	return fmt.Errorf("invalid rescaling technique: %q", text)
}

// ScalingFactorDriftBound is the exclusive bound on the ratio, in either direction, between the
// scaling factor of a level and the scaling factor of the top level under [ExactRescale].
const ScalingFactorDriftBound = 2.0

// ParametersLiteral is a literal representation of CKKS parameters.  It has public
// fields and is used to express unchecked user-defined parameters literally into
// Go programs. The [NewParametersFromLiteral] function is used to generate the actual
// checked parameters from the literal representation.
//
// Users must set the polynomial degree (in log_2, LogN) and the coefficient modulus, by either setting
// the Q and P fields to the desired moduli chain, or by setting the LogQ and LogP fields to
// the desired moduli sizes (in log_2).
//
// Under [ApproxRescale], users must also specify the default scale of the plaintexts
// with LogDefaultScale. Under [ExactRescale] the default scale is the scaling
// factor of the top level, that is, the last modulus of Q, and LogDefaultScale is ignored.
//
// See [rlwe.ParametersLiteral] for the key-switching fields and the default values of the other optional fields.
type ParametersLiteral struct {
	LogN               int
	Q                  []uint64                    `json:",omitempty"`
	P                  []uint64                    `json:",omitempty"`
	LogQ               []int                       `json:",omitempty"`
	LogP               []int                       `json:",omitempty"`
	Xe                 ring.DistributionParameters `json:",omitempty"`
	Xs                 ring.DistributionParameters `json:",omitempty"`
	KeySwitchTechnique rlwe.KeySwitchTechnique
	RelinWindow        int `json:",omitempty"`
	NumLargeDigits     int `json:",omitempty"`
	AuxModuliSize      int `json:",omitempty"`
	RescalingTechnique RescalingTechnique
	LogDefaultScale    int
}

// GetRLWEParametersLiteral returns the [rlwe.ParametersLiteral] from the target [ckks.ParameterLiteral].
func (p ParametersLiteral) GetRLWEParametersLiteral() rlwe.ParametersLiteral {
	return rlwe.ParametersLiteral{
		LogN:               p.LogN,
		Q:                  p.Q,
		P:                  p.P,
		LogQ:               p.LogQ,
		LogP:               p.LogP,
		Xe:                 p.Xe,
		Xs:                 p.Xs,
		KeySwitchTechnique: p.KeySwitchTechnique,
		RelinWindow:        p.RelinWindow,
		NumLargeDigits:     p.NumLargeDigits,
		AuxModuliSize:      p.AuxModuliSize,
		DefaultScale:       rlwe.NewScale(math.Exp2(float64(p.LogDefaultScale))),
	}
}

// Parameters represents a parameter set for the CKKS cryptosystem. Its fields are private and
// immutable. See [ParametersLiteral] for user-specified parameters.
type Parameters struct {
	rlwe.Parameters
	rescaling       RescalingTechnique
	logDefaultScale int
	// scalingFactors[l] is the scaling factor of a depth 1 ciphertext at level l under ExactRescale.
	scalingFactors []big.Float
}

// NewParametersFromLiteral instantiate a set of CKKS parameters from a [ParametersLiteral].
// It returns the empty parameters [Parameters]{} and a non-nil error if the specified parameters are invalid.
//
// Under [ExactRescale], the scaling factors of the levels are derived from the moduli chain:
// the top level uses the last modulus of Q, and each lower level uses the square of the
// scaling factor above it divided by the modulus dropped between the two. The method returns an error
// wrapping [rlwe.ErrInvalidParameters] if the ratio between any of these factors and the top one
// leaves [1/ScalingFactorDriftBound, ScalingFactorDriftBound].
//
// See [rlwe.NewParametersFromLiteral] for default values of the other optional fields.
func NewParametersFromLiteral(pl ParametersLiteral) (params Parameters, err error) {

	if pl.RescalingTechnique != ApproxRescale && pl.RescalingTechnique != ExactRescale {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: invalid rescaling technique %d", rlwe.ErrInvalidParameters, pl.RescalingTechnique)
	}

	if pl.RescalingTechnique == ApproxRescale && (pl.LogDefaultScale <= 0 || pl.LogDefaultScale > 128) {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: LogDefaultScale=%d must be in [1, 128]", rlwe.ErrInvalidParameters, pl.LogDefaultScale)
	}

	rlweLit := pl.GetRLWEParametersLiteral()

	if pl.RescalingTechnique == ExactRescale {
		rlweLit.DefaultScale = rlwe.Scale{}
	}

	var rlweParams rlwe.Parameters
	if rlweParams, err = rlwe.NewParametersFromLiteral(rlweLit); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
	}

	params = Parameters{
		Parameters:      rlweParams,
		rescaling:       pl.RescalingTechnique,
		logDefaultScale: pl.LogDefaultScale,
	}

	if pl.RescalingTechnique == ExactRescale {

		if params.scalingFactors, err = GenScalingFactors(rlweParams.Q()); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w: %w", rlwe.ErrInvalidParameters, err)
		}

		rlweLit = rlweParams.ParametersLiteral()
		rlweLit.DefaultScale = rlwe.NewScale(&params.scalingFactors[params.MaxLevel()])

		if params.Parameters, err = rlwe.NewParametersFromLiteral(rlweLit); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
		}

		params.logDefaultScale = int(math.Round(params.DefaultScale().Log2()))
	}

	return
}

// GenScalingFactors returns the scaling factors of the levels of the moduli chain q under
// [ExactRescale]: SF[L-1] = q[L-1] and SF[l-1] = SF[l]^2 / q[l].
// It returns an error if the ratio SF[l]/SF[L-1] is not strictly between 1/ScalingFactorDriftBound
// and ScalingFactorDriftBound for some level l.
func GenScalingFactors(q []uint64) (sf []big.Float, err error) {

	L := len(q)

	sf = make([]big.Float, L)

	sf[L-1].Set(bignum.NewFloat(q[L-1], rlwe.ScalePrecision))

	top := bignum.NewFloat(q[L-1], rlwe.ScalePrecision)

	lo := big.NewFloat(1 / ScalingFactorDriftBound)
	hi := big.NewFloat(ScalingFactorDriftBound)

	ratio := new(big.Float).SetPrec(rlwe.ScalePrecision)

	for l := L - 1; l > 0; l-- {

		sf[l-1].SetPrec(rlwe.ScalePrecision)
		sf[l-1].Mul(&sf[l], &sf[l])
		sf[l-1].Quo(&sf[l-1], bignum.NewFloat(q[l], rlwe.ScalePrecision))

		ratio.Quo(&sf[l-1], top)

		if ratio.Cmp(lo) <= 0 || ratio.Cmp(hi) >= 0 {
			r, _ := ratio.Float64()
			return nil, fmt.Errorf("scaling factor of level %d drifts by a factor %f from the top level, use fewer levels or ApproxRescale", l-1, r)
		}
	}

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() (pLit ParametersLiteral) {
	return ParametersLiteral{
		LogN:               p.LogN(),
		Q:                  p.Q(),
		P:                  p.P(),
		Xe:                 p.Xe(),
		Xs:                 p.Xs(),
		KeySwitchTechnique: p.KeySwitchTechnique(),
		RelinWindow:        p.RelinWindow(),
		NumLargeDigits:     p.NumLargeDigits(),
		AuxModuliSize:      p.AuxModuliSize(),
		RescalingTechnique: p.rescaling,
		LogDefaultScale:    p.logDefaultScale,
	}
}

// GetRLWEParameters returns a pointer to the underlying RLWE parameters.
func (p Parameters) GetRLWEParameters() *rlwe.Parameters {
	return &p.Parameters
}

// RescalingTechnique returns the rescaling technique of the parameters.
func (p Parameters) RescalingTechnique() RescalingTechnique {
	return p.rescaling
}

// ScalingFactor returns the scaling factor of a depth 1 ciphertext at the given level:
// the per-level precomputed factor under [ExactRescale] and the default scale under [ApproxRescale].
func (p Parameters) ScalingFactor(level int) rlwe.Scale {
	if p.rescaling == ExactRescale {
		return rlwe.NewScale(&p.scalingFactors[level])
	}
	return p.DefaultScale()
}

// MaxSlots returns the number of complex slots of a plaintext, N/2.
func (p Parameters) MaxSlots() int {
	return p.N() >> 1
}

// LogMaxSlots returns the log2 of the number of slots.
func (p Parameters) LogMaxSlots() int {
	return p.LogN() - 1
}

// LogDefaultScale returns the log2 of the default plaintext
// scaling factor (rounded to the nearest integer).
func (p Parameters) LogDefaultScale() int {
	return p.logDefaultScale
}

// MaxDepth returns the maximum depth enabled by the parameters.
func (p Parameters) MaxDepth() int {
	return p.MaxLevel()
}

// QLvl returns the product of the moduli at the given level as a [big.Int]
func (p Parameters) QLvl(level int) *big.Int {
	tmp := bignum.NewInt(1)
	for _, qi := range p.Q()[:level+1] {
		tmp.Mul(tmp, bignum.NewInt(qi))
	}
	return tmp
}

// LogQLvl returns the size of the modulus Q in bits at a specific level
func (p Parameters) LogQLvl(level int) int {
	return p.QLvl(level).BitLen()
}

// GaloisElementForRotation returns the Galois element for generating the
// automorphism phi(k): X -> X^{5^k mod 2N} mod (X^{N} + 1), which acts as a
// cyclic rotation by k position to the left on batched plaintexts.
// Providing a negative k will change direction of the cyclic rotation to the right.
func (p Parameters) GaloisElementForRotation(k int) uint64 {
	return p.Parameters.GaloisElement(k)
}

// GaloisElementsForRotations returns the Galois elements of the rotations by each k of ks.
func (p Parameters) GaloisElementsForRotations(ks []int) []uint64 {
	return p.Parameters.GaloisElements(ks)
}

// GaloisElementForComplexConjugation returns the Galois element for generating the
// automorphism X -> X^{-1 mod NthRoot} mod (X^{N} + 1), which conjugates the slots
// of a batched plaintext.
func (p Parameters) GaloisElementForComplexConjugation() uint64 {
	return p.Parameters.GaloisElementForComplexConjugation()
}

// Equal compares two sets of parameters for equality.
func (p Parameters) Equal(other *Parameters) bool {
	return p.Parameters.Equal(&other.Parameters) && p.rescaling == other.rescaling
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(params)
	return
}

// UnmarshalJSON decodes the JSON encoding of a [ParametersLiteral] on the receiver.
func (p *ParametersLiteral) UnmarshalJSON(b []byte) (err error) {
	var pl struct {
		LogN               int
		Q                  []uint64
		P                  []uint64
		LogQ               []int
		LogP               []int
		Xe                 map[string]interface{}
		Xs                 map[string]interface{}
		KeySwitchTechnique rlwe.KeySwitchTechnique
		RelinWindow        int
		NumLargeDigits     int
		AuxModuliSize      int
		RescalingTechnique RescalingTechnique
		LogDefaultScale    int
	}

	if err = json.Unmarshal(b, &pl); err != nil {
		return err
	}

	p.LogN = pl.LogN
	p.Q, p.P, p.LogQ, p.LogP = pl.Q, pl.P, pl.LogQ, pl.LogP
	if pl.Xs != nil {
		if p.Xs, err = ring.ParametersFromMap(pl.Xs); err != nil {
			return err
		}
	}
	if pl.Xe != nil {
		if p.Xe, err = ring.ParametersFromMap(pl.Xe); err != nil {
			return err
		}
	}
	p.KeySwitchTechnique = pl.KeySwitchTechnique
	p.RelinWindow = pl.RelinWindow
	p.NumLargeDigits = pl.NumLargeDigits
	p.AuxModuliSize = pl.AuxModuliSize
	p.RescalingTechnique = pl.RescalingTechnique
	p.LogDefaultScale = pl.LogDefaultScale
	return
}
