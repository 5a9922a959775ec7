package ringqp

import (
	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// Poly represents a polynomial of the ring R_QP = R_Q x R_P, given by its
// part modulo Q and its part modulo P. P may be empty (level -1).
type Poly struct {
	Q, P ring.Poly
}

// NewPoly creates a new [Poly] with N coefficients and the given levels.
// A negative levelP leaves the P part empty.
func NewPoly(N, levelQ, levelP int) Poly {
	var Q, P ring.Poly
	if levelQ > -1 {
		Q = ring.NewPoly(N, levelQ)
	}
	if levelP > -1 {
		P = ring.NewPoly(N, levelP)
	}
	return Poly{Q, P}
}

// LevelQ returns the level of the Q part of the polynomial.
func (p Poly) LevelQ() int {
	return p.Q.Level()
}

// LevelP returns the level of the P part of the polynomial, or -1 if it is empty.
func (p Poly) LevelP() int {
	return p.P.Level()
}

// Zero sets all coefficients of the polynomial to zero.
func (p Poly) Zero() {
	p.Q.Zero()
	p.P.Zero()
}

// CopyNew returns a deep copy of the polynomial.
func (p Poly) CopyNew() Poly {
	pc := Poly{Q: p.Q.CopyNew()}
	if p.P.Level() > -1 {
		pc.P = p.P.CopyNew()
	}
	return pc
}

// Copy copies the coefficients of other on p, up to the smallest levels of the two polynomials.
func (p *Poly) Copy(other Poly) {
	p.Q.Copy(other.Q)
	if p.P.Level() > -1 && other.P.Level() > -1 {
		p.P.Copy(other.P)
	}
}

// Equal returns true if the two polynomials have identical levels and coefficients.
func (p Poly) Equal(other Poly) bool {
	return p.Q.Equal(other.Q) && p.P.Equal(other.P)
}
