package ring

import (
	"fmt"
)

// Poly is the RNS representation of a polynomial of Z_Q[X]/(X^N+1):
// one row of N coefficients per active modulus (tower). Coeffs[i] holds the
// residues modulo the i-th modulus of the ring the polynomial belongs to.
// Whether the coefficients are in the coefficient or the NTT domain is
// tracked by the object that owns the polynomial.
type Poly struct {
	Coeffs [][]uint64
}

// NewPoly creates a new polynomial with N coefficients set to zero and Level+1 moduli.
func NewPoly(N, Level int) (pol Poly) {
	buff := make([]uint64, N*(Level+1))
	pol.Coeffs = make([][]uint64, Level+1)
	for i := range pol.Coeffs {
		pol.Coeffs[i] = buff[i*N : (i+1)*N : (i+1)*N]
	}
	return
}

// N returns the number of coefficients of the polynomial.
func (pol Poly) N() int {
	if len(pol.Coeffs) == 0 {
		return 0
	}
	return len(pol.Coeffs[0])
}

// Level returns the index of the last active modulus, that is the number of moduli minus one.
func (pol Poly) Level() int {
	return len(pol.Coeffs) - 1
}

// Resize sets the level of the polynomial. Decreasing the level drops the
// towers above the new level; increasing it allocates zero towers.
func (pol *Poly) Resize(level int) {
	N := pol.N()
	switch {
	case level < pol.Level():
		pol.Coeffs = pol.Coeffs[:level+1]
	case level > pol.Level():
		for i := pol.Level() + 1; i <= level; i++ {
			pol.Coeffs = append(pol.Coeffs, make([]uint64, N))
		}
	}
}

// Zero sets all coefficients of the polynomial to zero.
func (pol Poly) Zero() {
	for i := range pol.Coeffs {
		clear(pol.Coeffs[i])
	}
}

// CopyNew returns a deep copy of the polynomial.
func (pol Poly) CopyNew() (p1 Poly) {
	p1 = NewPoly(pol.N(), pol.Level())
	p1.Copy(pol)
	return
}

// Copy copies the coefficients of p1 on the target polynomial, up to the
// smallest level of the two polynomials.
func (pol *Poly) Copy(p1 Poly) {
	pol.CopyLvl(min(pol.Level(), p1.Level()), p1)
}

// CopyLvl copies the first level+1 towers of p1 on the target polynomial.
func (pol *Poly) CopyLvl(level int, p1 Poly) {
	for i := 0; i < level+1; i++ {
		if &pol.Coeffs[i][0] != &p1.Coeffs[i][0] {
			copy(pol.Coeffs[i], p1.Coeffs[i])
		}
	}
}

// Equal returns true if both polynomials have the same level and the same coefficients.
func (pol Poly) Equal(other Poly) bool {
	if pol.Level() != other.Level() || pol.N() != other.N() {
		return false
	}
	for i := range pol.Coeffs {
		for j := range pol.Coeffs[i] {
			if pol.Coeffs[i][j] != other.Coeffs[i][j] {
				return false
			}
		}
	}
	return true
}

// String implements [fmt.Stringer].
func (pol Poly) String() string {
	return fmt.Sprintf("Poly{N=%d, Level=%d}", pol.N(), pol.Level())
}
