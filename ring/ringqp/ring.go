// Package ringqp implements the ring R_QP, the product of the ring R_Q of the
// ciphertexts and the ring R_P of the auxiliary moduli used by the key switching.
package ringqp

import (
	"math"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// Ring is a structure that implements the operation in the ring R_QP.
// This type is simply a union type between the two Ring types representing
// R_Q and R_P. RingP is nil when there are no auxiliary moduli.
type Ring struct {
	RingQ, RingP *ring.Ring
}

// N returns the ring degree.
func (r Ring) N() int {
	if r.RingQ != nil {
		return r.RingQ.N()
	}

	if r.RingP != nil {
		return r.RingP.N()
	}

	return 0
}

// AtLevel returns a shallow copy of the target ring configured to
// carry on operations at the specified levels.
func (r Ring) AtLevel(levelQ, levelP int) Ring {

	var ringQ, ringP *ring.Ring

	if levelQ > -1 && r.RingQ != nil {
		ringQ = r.RingQ.AtLevel(levelQ)
	}

	if levelP > -1 && r.RingP != nil {
		ringP = r.RingP.AtLevel(levelP)
	}

	return Ring{
		RingQ: ringQ,
		RingP: ringP,
	}
}

// LevelQ returns the level at which the target
// ring operates for the modulus Q.
func (r Ring) LevelQ() int {
	if r.RingQ != nil {
		return r.RingQ.Level()
	}

	return -1
}

// LevelP returns the level at which the target
// ring operates for the modulus P.
func (r Ring) LevelP() int {
	if r.RingP != nil {
		return r.RingP.Level()
	}

	return -1
}

// Modulus returns the product of the active moduli of Q and P.
func (r Ring) Modulus() *big.Int {
	M := big.NewInt(1)
	if r.RingQ != nil {
		M.Mul(M, r.RingQ.Modulus())
	}
	if r.RingP != nil {
		M.Mul(M, r.RingP.Modulus())
	}
	return M
}

// NewPoly creates a new polynomial with all coefficients set to 0.
func (r Ring) NewPoly() Poly {
	return NewPoly(r.N(), r.LevelQ(), r.LevelP())
}

// Equal checks if p1 = p2 on the active moduli of the ring.
func (r Ring) Equal(p1, p2 Poly) (v bool) {
	v = true
	if r.RingQ != nil {
		v = v && r.RingQ.Equal(p1.Q, p2.Q)
	}

	if r.RingP != nil {
		v = v && r.RingP.Equal(p1.P, p2.P)
	}

	return
}

// PolyToBigintCentered reconstructs p1, given in the coefficient domain, by CRT
// over QP and writes every gap-th coefficient, centered in (-QP/2, QP/2], on coeffs.
func (r Ring) PolyToBigintCentered(p1 Poly, gap int, coeffs []*big.Int) {

	QP := r.Modulus()
	QPHalf := new(big.Int).Rsh(QP, 1)

	var crt []*big.Int
	var residues [][]uint64

	tmp := new(big.Int)
	addCRT := func(rr *ring.Ring, p ring.Poly) {
		for i, s := range rr.SubRings[:rr.Level()+1] {
			qi := new(big.Int).SetUint64(s.Modulus)
			c := new(big.Int).Quo(QP, qi)
			c.Mul(c, tmp.ModInverse(tmp.Mod(c, qi), qi))
			crt = append(crt, c)
			residues = append(residues, p.Coeffs[i])
		}
	}

	if r.RingQ != nil {
		addCRT(r.RingQ, p1.Q)
	}

	if r.RingP != nil {
		addCRT(r.RingP, p1.P)
	}

	for i, j := 0, 0; j < r.N(); i, j = i+1, j+gap {

		if coeffs[i] == nil {
			coeffs[i] = new(big.Int)
		}

		coeffs[i].SetUint64(0)
		for k := range crt {
			coeffs[i].Add(coeffs[i], tmp.Mul(tmp.SetUint64(residues[k][j]), crt[k]))
		}

		coeffs[i].Mod(coeffs[i], QP)

		if coeffs[i].Cmp(QPHalf) == 1 {
			coeffs[i].Sub(coeffs[i], QP)
		}
	}
}

// Log2OfStandardDeviation returns base 2 logarithm of the standard deviation of the coefficients
// of the polynomial, given in the coefficient domain.
func (r Ring) Log2OfStandardDeviation(poly Poly) (std float64) {

	N := r.N()

	prec := bignum.DefaultPrecision

	coeffs := make([]*big.Int, N)

	r.PolyToBigintCentered(poly, 1, coeffs)

	mean := bignum.NewFloat(0, prec)
	tmp := bignum.NewFloat(0, prec)

	for i := 0; i < N; i++ {
		mean.Add(mean, tmp.SetInt(coeffs[i]))
	}

	mean.Quo(mean, bignum.NewFloat(N, prec))

	stdFloat := bignum.NewFloat(0, prec)

	for i := 0; i < N; i++ {
		tmp.SetInt(coeffs[i])
		tmp.Sub(tmp, mean)
		tmp.Mul(tmp, tmp)
		stdFloat.Add(stdFloat, tmp)
	}

	stdFloat.Quo(stdFloat, bignum.NewFloat(N-1, prec))

	stdFloat.Sqrt(stdFloat)

	stdF64, _ := stdFloat.Float64()

	return math.Log2(stdF64)
}
