package bgv

import (
	"encoding/json"
	"fmt"
	"math"
	"math/bits"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// ParametersLiteral is a literal representation of BGV parameters.  It has public
// fields and is used to express unchecked user-defined parameters literally into
// Go programs. The [NewParametersFromLiteral] function is used to generate the actual
// checked parameters from the literal representation.
//
// Users must set the polynomial degree (LogN) and the coefficient modulus, by either setting
// the Q and P fields to the desired moduli chain, or by setting the LogQ and LogP fields to
// the desired moduli sizes. Users must also specify the plaintext modulus (PlaintextModulus).
//
// Slot packing is available if PlaintextModulus is a prime congruent to 1 mod 2N.
// Otherwise only the coefficient encoding can be used.
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
	PlaintextModulus   uint64
}

// GetRLWEParametersLiteral returns the [rlwe.ParametersLiteral] from the target [bgv.ParametersLiteral].
// The errors of the keys and encryptions are multiples of the plaintext modulus and
// the default scale is 1 mod PlaintextModulus.
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
		ErrorScale:         p.PlaintextModulus,
		DefaultScale:       rlwe.NewScaleModT(1, p.PlaintextModulus),
	}
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
		PlaintextModulus   uint64
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
	p.PlaintextModulus = pl.PlaintextModulus
	return
}

// Parameters represents a parameter set for the BGV cryptosystem. Its fields are private and
// immutable. See [ParametersLiteral] for user-specified parameters.
type Parameters struct {
	rlwe.Parameters
	plaintextModulus uint64
	// ringT is nil if the plaintext modulus does not allow slot packing.
	ringT *ring.Ring
}

// NewParameters instantiates a set of BGV parameters from the generic RLWE parameters and the plaintext modulus t.
// The default scale of rlweParams must be an integer modulo t, as set by [ParametersLiteral.GetRLWEParametersLiteral].
// The BGV evaluator also requires the error scale of rlweParams to be t; scale invariant schemes
// built on these parameters use an error scale of 1.
// It returns the empty parameters [Parameters]{} and a non-nil error wrapping [rlwe.ErrInvalidParameters]
// if the specified parameters are invalid.
func NewParameters(rlweParams rlwe.Parameters, t uint64) (p Parameters, err error) {

	if t < 2 || bits.Len64(t) > rlwe.MaxModuliSize {
		return Parameters{}, fmt.Errorf("%w: PlaintextModulus=%d must be in [2, 2^%d)", rlwe.ErrInvalidParameters, t, rlwe.MaxModuliSize)
	}

	for _, qi := range rlweParams.Q() {
		if utils.GCD(qi, t) != 1 {
			return Parameters{}, fmt.Errorf("%w: PlaintextModulus=%d is not coprime with the modulus %d", rlwe.ErrInvalidParameters, t, qi)
		}
	}

	if es := rlweParams.ErrorScale(); es != 1 && es != t {
		return Parameters{}, fmt.Errorf("%w: ErrorScale=%d must be 1 or PlaintextModulus=%d", rlwe.ErrInvalidParameters, es, t)
	}

	if mod := rlweParams.DefaultScale().Mod; mod == nil || !mod.IsUint64() || mod.Uint64() != t {
		return Parameters{}, fmt.Errorf("%w: the default scale must be an integer modulo PlaintextModulus=%d", rlwe.ErrInvalidParameters, t)
	}

	p = Parameters{Parameters: rlweParams, plaintextModulus: t}

	if ring.IsPrime(t) && t&(rlweParams.NthRoot()-1) == 1 {
		if p.ringT, err = ring.NewRing(rlweParams.N(), []uint64{t}); err != nil {
			return Parameters{}, fmt.Errorf("%w: %w", rlwe.ErrInvalidParameters, err)
		}
	}

	return
}

// NewParametersFromLiteral instantiates a set of BGV parameters from a [ParametersLiteral].
// It returns the empty parameters [Parameters]{} and a non-nil error if the specified parameters are invalid.
//
// See [rlwe.NewParametersFromLiteral] for default values of the optional fields.
func NewParametersFromLiteral(pl ParametersLiteral) (p Parameters, err error) {

	var rlweParams rlwe.Parameters
	if rlweParams, err = rlwe.NewParametersFromLiteral(pl.GetRLWEParametersLiteral()); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
	}

	if p, err = NewParameters(rlweParams, pl.PlaintextModulus); err != nil {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
	}

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {
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
		PlaintextModulus:   p.plaintextModulus,
	}
}

// GetRLWEParameters returns a pointer to the underlying RLWE parameters.
func (p Parameters) GetRLWEParameters() *rlwe.Parameters {
	return &p.Parameters
}

// PlaintextModulus returns the plaintext coefficient modulus t.
func (p Parameters) PlaintextModulus() uint64 {
	return p.plaintextModulus
}

// LogT returns log2(plaintext coefficient modulus).
func (p Parameters) LogT() float64 {
	return math.Log2(float64(p.plaintextModulus))
}

// RingT returns the ring Z_t[X]/(X^N+1) used for slot packing, or nil
// if the plaintext modulus is not a prime congruent to 1 mod 2N.
func (p Parameters) RingT() *ring.Ring {
	return p.ringT
}

// BatchingEnabled returns true if plaintexts can be packed in slots.
func (p Parameters) BatchingEnabled() bool {
	return p.ringT != nil
}

// MaxSlots returns the number of slots of a batched plaintext, N, arranged
// as a 2 x N/2 matrix.
func (p Parameters) MaxSlots() int {
	return p.N()
}

// LogMaxSlots returns the log2 of the number of slots.
func (p Parameters) LogMaxSlots() int {
	return p.LogN()
}

// GaloisElementForColumnRotation returns the Galois element for generating the
// automorphism X -> X^{5^k mod 2N}, which rotates the columns of a batched plaintext
// by k positions to the left. A negative k rotates to the right.
func (p Parameters) GaloisElementForColumnRotation(k int) uint64 {
	return p.Parameters.GaloisElement(k)
}

// GaloisElementsForColumnRotations returns the Galois elements of the column rotations by each k of ks.
func (p Parameters) GaloisElementsForColumnRotations(ks []int) []uint64 {
	return p.Parameters.GaloisElements(ks)
}

// GaloisElementForRowRotation returns the Galois element for generating the
// automorphism X -> X^{-1 mod 2N}, which swaps the two rows of a batched plaintext.
func (p Parameters) GaloisElementForRowRotation() uint64 {
	return p.Parameters.GaloisElementForComplexConjugation()
}

// Equal compares two sets of parameters for equality.
func (p Parameters) Equal(other *Parameters) bool {
	return p.Parameters.Equal(&other.Parameters) && p.plaintextModulus == other.plaintextModulus
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
