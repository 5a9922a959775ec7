package rlwe

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// ParameterProvider is an interface implemented by the parameters of the
// schemes built on top of this package.
type ParameterProvider interface {
	GetRLWEParameters() *Parameters
}

// Ciphertext is a generic type for RLWE ciphertexts: a vector of polynomials
// (c_0, ..., c_d) in the NTT domain such that c_0 + c_1*s + ... + c_d*s^d is
// the plaintext plus a small error.
type Ciphertext struct {
	*MetaData
	Value []ring.Poly
}

// NewCiphertext returns a new [Ciphertext] with zero values at the given degree and level.
// The level defaults to the maximum level of the parameters.
func NewCiphertext(params ParameterProvider, degree int, level ...int) (ct *Ciphertext) {

	p := params.GetRLWEParameters()

	lvl := p.MaxLevel()
	if len(level) != 0 {
		lvl = level[0]
	}

	ct = &Ciphertext{
		MetaData: &MetaData{
			Scale: p.defaultScale,
			Depth: 1,
			IsNTT: true,
		},
		Value: make([]ring.Poly, degree+1),
	}

	for i := range ct.Value {
		ct.Value[i] = ring.NewPoly(p.N(), lvl)
	}

	return
}

// NewCiphertextAtLevelFromPoly constructs a new [Ciphertext] at a specific level
// where the message is set to the passed poly. No checks are performed on poly and
// the returned Ciphertext will share its backing array of coefficients.
// Returned Ciphertext's MetaData is allocated but empty.
func NewCiphertextAtLevelFromPoly(level int, poly []ring.Poly) (*Ciphertext, error) {

	Value := make([]ring.Poly, len(poly))

	for i := range poly {

		if len(poly[i].Coeffs) < level+1 {
			return nil, fmt.Errorf("cannot NewCiphertextAtLevelFromPoly: poly[%d] level is too small", i)
		}

		Value[i].Coeffs = poly[i].Coeffs[:level+1]
	}

	return &Ciphertext{MetaData: &MetaData{IsNTT: true}, Value: Value}, nil
}

// NewCiphertextRandom generates a new uniformly distributed [Ciphertext] of degree, level.
func NewCiphertextRandom(prng sampling.PRNG, params ParameterProvider, degree, level int) (ct *Ciphertext) {
	ct = NewCiphertext(params, degree, level)
	sampler := ring.NewUniformSampler(prng, params.GetRLWEParameters().RingQ()).AtLevel(level)
	for i := range ct.Value {
		sampler.Read(ct.Value[i])
	}
	return
}

// Degree returns the degree of the target [Ciphertext].
func (ct Ciphertext) Degree() int {
	return len(ct.Value) - 1
}

// Level returns the level of the target [Ciphertext].
func (ct Ciphertext) Level() int {
	return len(ct.Value[0].Coeffs) - 1
}

// Resize resizes the degree and the level of the target [Ciphertext].
// Towers are dropped or zero-allocated at the end of the moduli chain.
func (ct *Ciphertext) Resize(degree, level int) {

	if ct.Degree() > degree {
		ct.Value = ct.Value[:degree+1]
	} else if ct.Degree() < degree {
		for ct.Degree() < degree {
			ct.Value = append(ct.Value, ring.NewPoly(ct.Value[0].N(), level))
		}
	}

	for i := range ct.Value {
		ct.Value[i].Resize(level)
	}
}

// CopyNew creates a deep copy of the target [Ciphertext].
func (ct Ciphertext) CopyNew() *Ciphertext {
	Value := make([]ring.Poly, len(ct.Value))
	for i := range Value {
		Value[i] = ct.Value[i].CopyNew()
	}
	return &Ciphertext{MetaData: ct.MetaData.CopyNew(), Value: Value}
}

// Copy copies ctIn, including its metadata, on the target [Ciphertext].
// The target must have at least the degree of ctIn. The copy is done at the level min(ct.Level(), ctIn.Level()).
func (ct *Ciphertext) Copy(ctIn *Ciphertext) {
	if ct == ctIn {
		return
	}
	for i := range ctIn.Value {
		ct.Value[i].Copy(ctIn.Value[i])
	}
	*ct.MetaData = *ctIn.MetaData
}

// Equal performs a deep equal.
func (ct Ciphertext) Equal(other *Ciphertext) bool {

	if len(ct.Value) != len(other.Value) || !ct.MetaData.Equal(other.MetaData) {
		return false
	}

	for i := range ct.Value {
		if !ct.Value[i].Equal(other.Value[i]) {
			return false
		}
	}

	return true
}

// Plaintext is a common base type for RLWE plaintexts.
type Plaintext struct {
	*MetaData
	Value ring.Poly
}

// NewPlaintext creates a new [Plaintext] at the given level in the coefficient domain.
// The level defaults to the maximum level of the parameters.
func NewPlaintext(params ParameterProvider, level ...int) (pt *Plaintext) {

	p := params.GetRLWEParameters()

	lvl := p.MaxLevel()
	if len(level) != 0 {
		lvl = level[0]
	}

	return &Plaintext{
		MetaData: &MetaData{
			Scale: p.defaultScale,
			Depth: 1,
		},
		Value: ring.NewPoly(p.N(), lvl),
	}
}

// Level returns the level of the target [Plaintext].
func (pt Plaintext) Level() int {
	return pt.Value.Level()
}

// CopyNew creates a deep copy of the target [Plaintext].
func (pt Plaintext) CopyNew() *Plaintext {
	return &Plaintext{MetaData: pt.MetaData.CopyNew(), Value: pt.Value.CopyNew()}
}

// Equal performs a deep equal.
func (pt Plaintext) Equal(other *Plaintext) bool {
	return pt.MetaData.Equal(other.MetaData) && pt.Value.Equal(other.Value)
}
