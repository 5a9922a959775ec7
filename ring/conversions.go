package ring

import (
	"math/big"
)

// SetCoefficientsInt64 sets the residues of p from the signed coefficients coeffs.
func (r Ring) SetCoefficientsInt64(coeffs []int64, p Poly) {
	for i, s := range r.SubRings[:r.level+1] {
		q := s.Modulus
		for j, c := range coeffs {
			if c < 0 {
				p.Coeffs[i][j] = CRed(q-BRedAdd(uint64(-c), q, s.BRedConstant), q)
			} else {
				p.Coeffs[i][j] = BRedAdd(uint64(c), q, s.BRedConstant)
			}
		}
	}
}

// SetCoefficientsBigint sets the residues of p from the (possibly negative) coefficients coeffs.
func (r Ring) SetCoefficientsBigint(coeffs []*big.Int, p Poly) {
	tmp := new(big.Int)
	for i, s := range r.SubRings[:r.level+1] {
		qi := new(big.Int).SetUint64(s.Modulus)
		for j, c := range coeffs {
			p.Coeffs[i][j] = tmp.Mod(c, qi).Uint64()
		}
	}
}

// PolyToBigint reconstructs, by CRT, the coefficients of p in [0, Q) and writes
// every gap-th coefficient on coeffs. Q is the product of the active moduli.
func (r Ring) PolyToBigint(p Poly, gap int, coeffs []*big.Int) {
	r.polyToBigint(p, gap, coeffs, false)
}

// PolyToBigintCentered is identical to PolyToBigint, except that the
// coefficients are returned in (-Q/2, Q/2].
func (r Ring) PolyToBigintCentered(p Poly, gap int, coeffs []*big.Int) {
	r.polyToBigint(p, gap, coeffs, true)
}

func (r Ring) polyToBigint(p Poly, gap int, coeffs []*big.Int, centered bool) {

	level := r.level
	Q := r.ModulusAtLevel[level]
	QHalf := new(big.Int).Rsh(Q, 1)

	// crt[i] = (Q/q_i) * ((Q/q_i)^-1 mod q_i)
	crt := make([]*big.Int, level+1)
	for i, s := range r.SubRings[:level+1] {
		qi := new(big.Int).SetUint64(s.Modulus)
		QHat := new(big.Int).Quo(Q, qi)
		QHatInv := new(big.Int).ModInverse(new(big.Int).Mod(QHat, qi), qi)
		crt[i] = QHat.Mul(QHat, QHatInv)
	}

	tmp := new(big.Int)
	for j, k := 0, 0; j < r.N(); j, k = j+gap, k+1 {

		if coeffs[k] == nil {
			coeffs[k] = new(big.Int)
		}

		coeffs[k].SetUint64(0)
		for i := 0; i < level+1; i++ {
			tmp.SetUint64(p.Coeffs[i][j])
			coeffs[k].Add(coeffs[k], tmp.Mul(tmp, crt[i]))
		}

		coeffs[k].Mod(coeffs[k], Q)

		if centered && coeffs[k].Cmp(QHalf) == 1 {
			coeffs[k].Sub(coeffs[k], Q)
		}
	}
}
