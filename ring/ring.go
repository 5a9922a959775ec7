// Package ring implements RNS-accelerated modular arithmetic for polynomials
// of Z_Q[X]/(X^N+1): number theoretic transform (NTT), fast RNS basis
// conversion, RNS rescaling, automorphisms and uniform, ternary and
// discrete Gaussian sampling.
package ring

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// Ring is a structure that keeps all the variables required to operate on
// polynomials represented in RNS over a chain of NTT-friendly primes. A Ring
// with a single modulus represents the single-modulus polynomial ring.
// A Ring is read-only after its creation and can be shared between goroutines.
type Ring struct {
	SubRings []*SubRing

	// ModulusAtLevel[i] = prod(q_0, ..., q_i)
	ModulusAtLevel []*big.Int

	// RescaleConstants[l][i] = q_l^-1 mod q_i in Montgomery form, for i < l
	RescaleConstants [][]uint64

	level int
}

// NewRing creates a new RNS [Ring] of degree N with the given moduli chain.
// N must be a power of two and each modulus a distinct prime congruent to 1 mod 2N.
func NewRing(N int, Moduli []uint64) (r *Ring, err error) {

	if len(Moduli) == 0 {
		return nil, fmt.Errorf("invalid moduli chain: must contain at least one modulus")
	}

	if !utils.AllDistinct(Moduli) {
		return nil, fmt.Errorf("invalid moduli chain: moduli must be pairwise distinct")
	}

	r = &Ring{
		SubRings: make([]*SubRing, len(Moduli)),
		level:    len(Moduli) - 1,
	}

	for i, qi := range Moduli {
		if r.SubRings[i], err = NewSubRing(N, qi); err != nil {
			return nil, fmt.Errorf("cannot NewRing: %w", err)
		}
	}

	r.ModulusAtLevel = make([]*big.Int, len(Moduli))
	r.ModulusAtLevel[0] = new(big.Int).SetUint64(Moduli[0])
	for i := 1; i < len(Moduli); i++ {
		r.ModulusAtLevel[i] = new(big.Int).Mul(r.ModulusAtLevel[i-1], new(big.Int).SetUint64(Moduli[i]))
	}

	r.RescaleConstants = genRescaleConstants(r.SubRings)

	return
}

// genRescaleConstants returns, for each level l, the values q_l^-1 mod q_i in Montgomery form for i < l.
func genRescaleConstants(s []*SubRing) (constants [][]uint64) {
	constants = make([][]uint64, len(s))
	for l := 1; l < len(s); l++ {
		constants[l] = make([]uint64, l)
		ql := s[l].Modulus
		for i := 0; i < l; i++ {
			qi := s[i].Modulus
			constants[l][i] = MForm(ModInverse(ql%qi, qi), qi, s[i].BRedConstant)
		}
	}
	return
}

// AtLevel returns a shallow copy of the ring restricted to the moduli q_0, ..., q_level.
func (r Ring) AtLevel(level int) *Ring {

	if level < 0 || level > r.MaxLevel() {
		panic(fmt.Errorf("level must be in [0, %d] but is %d", r.MaxLevel(), level))
	}

	r.level = level
	return &r
}

// N returns the ring degree.
func (r Ring) N() int {
	return r.SubRings[0].N
}

// LogN returns log2(N).
func (r Ring) LogN() int {
	return bits.Len64(uint64(r.N()) - 1)
}

// NthRoot returns 2N.
func (r Ring) NthRoot() uint64 {
	return r.SubRings[0].NthRoot
}

// Level returns the level of the ring.
func (r Ring) Level() int {
	return r.level
}

// MaxLevel returns the maximum level of the ring.
func (r Ring) MaxLevel() int {
	return len(r.SubRings) - 1
}

// ModuliChainLength returns the total number of moduli of the ring.
func (r Ring) ModuliChainLength() int {
	return len(r.SubRings)
}

// ModuliChain returns the list of the active moduli.
func (r Ring) ModuliChain() (moduli []uint64) {
	moduli = make([]uint64, r.level+1)
	for i := range moduli {
		moduli[i] = r.SubRings[i].Modulus
	}
	return
}

// Modulus returns the product of the active moduli.
func (r Ring) Modulus() *big.Int {
	return r.ModulusAtLevel[r.level]
}

// NewPoly creates a new polynomial with all coefficients set to zero at the level of the ring.
func (r Ring) NewPoly() Poly {
	return NewPoly(r.N(), r.level)
}

// NTT evaluates p2 = NTT(p1).
func (r Ring) NTT(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.NTT(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// INTT evaluates p2 = INTT(p1).
func (r Ring) INTT(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.INTT(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// MForm switches p1 to the Montgomery domain and writes the result on p2.
func (r Ring) MForm(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.MForm(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// IMForm switches p1 out of the Montgomery domain and writes the result on p2.
func (r Ring) IMForm(p1, p2 Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		s.IMForm(p1.Coeffs[i], p2.Coeffs[i])
	}
}

// Equal checks if p1 = p2 on the active moduli of the ring.
func (r Ring) Equal(p1, p2 Poly) bool {
	for i := 0; i < r.level+1; i++ {
		for j := range p1.Coeffs[i] {
			if p1.Coeffs[i][j] != p2.Coeffs[i][j] {
				return false
			}
		}
	}
	return true
}
