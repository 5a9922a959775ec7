package bfv

import (
	"encoding/json"
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
)

// NewParameters instantiate a set of BFV parameters from the generic RLWE parameters and a plaintext modulus t.
// The error scale of rlweParams must be 1 and its default scale an integer modulo t, as set
// by [ParametersLiteral.GetRLWEParametersLiteral].
// It returns the empty parameters Parameters{} and a non-nil error if the specified parameters are invalid.
func NewParameters(rlweParams rlwe.Parameters, t uint64) (p Parameters, err error) {

	if rlweParams.ErrorScale() != 1 {
		return Parameters{}, fmt.Errorf("%w: BFV requires ErrorScale=1 but is %d", rlwe.ErrInvalidParameters, rlweParams.ErrorScale())
	}

	var pbgv bgv.Parameters
	if pbgv, err = bgv.NewParameters(rlweParams, t); err != nil {
		return Parameters{}, err
	}

	return Parameters{pbgv}, nil
}

// NewParametersFromLiteral instantiate a set of BFV parameters from a ParametersLiteral.
// It returns the empty parameters Parameters{} and a non-nil error if the specified parameters are invalid.
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

// ParametersLiteral is a literal representation of BFV parameters.  It has public
// fields and is used to express unchecked user-defined parameters literally into
// Go programs. The [NewParametersFromLiteral] function is used to generate the actual
// checked parameters from the literal representation.
//
// Users must set the polynomial degree (LogN) and the coefficient modulus, by either setting
// the Q and P fields to the desired moduli chain, or by setting the LogQ and LogP fields to
// the desired moduli sizes. Users must also specify the coefficient modulus in plaintext-space
// (PlaintextModulus).
type ParametersLiteral bgv.ParametersLiteral

// GetRLWEParametersLiteral returns the [rlwe.ParametersLiteral] from the target [bfv.ParametersLiteral].
// The message is scaled by floor(Q/t) and the errors are not scaled.
func (p ParametersLiteral) GetRLWEParametersLiteral() rlwe.ParametersLiteral {
	pl := bgv.ParametersLiteral(p).GetRLWEParametersLiteral()
	pl.ErrorScale = 1
	return pl
}

// UnmarshalJSON decodes the JSON encoding of a [ParametersLiteral] on the receiver.
func (p *ParametersLiteral) UnmarshalJSON(b []byte) (err error) {
	return (*bgv.ParametersLiteral)(p).UnmarshalJSON(b)
}

// Parameters represents a parameter set for the BFV cryptosystem. Its fields are private and
// immutable. See [ParametersLiteral] for user-specified parameters.
type Parameters struct {
	bgv.Parameters
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral(p.Parameters.ParametersLiteral())
}

// Equal compares two sets of parameters for equality.
func (p Parameters) Equal(other *Parameters) bool {
	return p.Parameters.Equal(&other.Parameters)
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
