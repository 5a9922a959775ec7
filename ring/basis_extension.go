package ring

import (
	"math"
	"math/big"
	"math/bits"
)

// BasisConverter stores the constants of the fast RNS base conversion from a
// source moduli chain {q_i} (product Q) to a target moduli chain {p_j}.
type BasisConverter struct {
	src, dst []*SubRing

	// [(Q/q_i)^-1]_{q_i} in Montgomery form
	qHatInvModq []uint64
	// qHatModp[j][i] = [Q/q_i]_{p_j}
	qHatModp [][]uint64
	// [Q]_{p_j}
	qModp []uint64
	// 1/q_i
	qInv []float64
}

// NewBasisConverter creates a new [BasisConverter] from the moduli of src to the moduli of dst.
func NewBasisConverter(src, dst []*SubRing) (bc *BasisConverter) {

	bc = &BasisConverter{
		src:         src,
		dst:         dst,
		qHatInvModq: make([]uint64, len(src)),
		qHatModp:    make([][]uint64, len(dst)),
		qModp:       make([]uint64, len(dst)),
		qInv:        make([]float64, len(src)),
	}

	Q := big.NewInt(1)
	for _, s := range src {
		Q.Mul(Q, new(big.Int).SetUint64(s.Modulus))
	}

	qHat := make([]*big.Int, len(src))
	tmp := new(big.Int)
	for i, s := range src {
		qi := new(big.Int).SetUint64(s.Modulus)
		qHat[i] = new(big.Int).Quo(Q, qi)
		inv := tmp.ModInverse(tmp.Mod(qHat[i], qi), qi).Uint64()
		bc.qHatInvModq[i] = MForm(inv, s.Modulus, s.BRedConstant)
		bc.qInv[i] = 1 / float64(s.Modulus)
	}

	for j, s := range dst {
		pj := new(big.Int).SetUint64(s.Modulus)
		bc.qHatModp[j] = make([]uint64, len(src))
		for i := range src {
			bc.qHatModp[j][i] = tmp.Mod(qHat[i], pj).Uint64()
		}
		bc.qModp[j] = tmp.Mod(Q, pj).Uint64()
	}

	return
}

// ApproxSwitchCRTBasis converts x, given by its residues in modulo the
// source moduli (coefficient domain), into its residues modulo the target
// moduli, written on out. in must hold one row per source modulus; only the
// first len(out) target moduli are computed.
//
// The result is the residue of x + alpha*Q for some 0 <= alpha < len(in),
// where x is taken in [0, Q).
// in and out must not share their backing arrays.
func (bc *BasisConverter) ApproxSwitchCRTBasis(in, out [][]uint64) {

	src, dst := bc.src, bc.dst[:len(out)]
	y := make([]uint64, len(src))

	for c := range in[0] {

		for i, s := range src {
			y[i] = MRed(in[i][c], bc.qHatInvModq[i], s.Modulus, s.MRedConstant)
		}

		for j, s := range dst {
			out[j][c] = bc.multSum(y, bc.qHatModp[j], s)
		}
	}
}

// SwitchCRTBasisExact is identical to ApproxSwitchCRTBasis, except that the
// overflow alpha*Q is removed with a floating point estimation of alpha, and
// that the converted value is the centered representative of x in (-Q/2, Q/2].
// The estimation is exact unless x/Q is within about len(in)*2^-52 of 1/2.
func (bc *BasisConverter) SwitchCRTBasisExact(in, out [][]uint64) {

	src, dst := bc.src, bc.dst[:len(out)]
	y := make([]uint64, len(src))

	for c := range in[0] {

		var v float64
		for i, s := range src {
			y[i] = MRed(in[i][c], bc.qHatInvModq[i], s.Modulus, s.MRedConstant)
			v += float64(y[i]) * bc.qInv[i]
		}

		// sum(y_i * Q/q_i) = x + alpha*Q, with v ~ alpha + x/Q
		alpha := uint64(math.Round(v))

		for j, s := range dst {
			p := s.Modulus
			r := bc.multSum(y, bc.qHatModp[j], s)
			vQ := BRed(BRedAdd(alpha, p, s.BRedConstant), bc.qModp[j], p, s.BRedConstant)
			out[j][c] = CRed(r+p-vQ, p)
		}
	}
}

// multSum returns sum(y[i] * c[i]) mod p, accumulated on 128 bits
// and reduced with a single Barrett reduction.
func (bc *BasisConverter) multSum(y, c []uint64, s *SubRing) uint64 {

	p, bredconstant := s.Modulus, s.BRedConstant

	var hi, lo, carry uint64
	for i := range y {
		mhi, mlo := bits.Mul64(y[i], c[i])
		lo, carry = bits.Add64(lo, mlo, 0)
		hi += mhi + carry

		// each product is below 2^122: folding every 32 terms prevents overflows
		if i&31 == 31 {
			lo = BRedWide(BRedAdd(hi, p, bredconstant), lo, p, bredconstant)
			hi = 0
		}
	}

	return BRedWide(BRedAdd(hi, p, bredconstant), lo, p, bredconstant)
}

// BasisExtender stores the constants to extend polynomials from Q to P and
// to divide polynomials of QP by P, for every level of Q.
type BasisExtender struct {
	ringQ, ringP *Ring

	// modUpQtoP[l] converts from {q_0, ..., q_l} to P
	modUpQtoP []*BasisConverter
	// modDownPtoQ converts from P to Q
	modDownPtoQ *BasisConverter

	// [P^-1]_{q_i} in Montgomery form
	pInvModq []uint64

	// LSB-preserving division: [t^-1]_{p_j} and [t]_{q_i} in Montgomery form
	errorScale uint64
	tInvModp   []uint64
	tModq      []uint64

	buffQ, buffP Poly
}

// NewBasisExtender creates a new [BasisExtender] between ringQ and ringP.
// If errorScale is larger than one, the extender also supports the division
// by P that keeps the rounding error a multiple of errorScale.
func NewBasisExtender(ringQ, ringP *Ring, errorScale uint64) (be *BasisExtender) {

	be = &BasisExtender{
		ringQ:       ringQ,
		ringP:       ringP,
		modUpQtoP:   make([]*BasisConverter, ringQ.ModuliChainLength()),
		modDownPtoQ: NewBasisConverter(ringP.SubRings, ringQ.SubRings),
		pInvModq:    make([]uint64, ringQ.ModuliChainLength()),
		errorScale:  errorScale,
		buffQ:       NewPoly(ringQ.N(), ringQ.MaxLevel()),
		buffP:       NewPoly(ringP.N(), ringP.MaxLevel()),
	}

	for l := range be.modUpQtoP {
		be.modUpQtoP[l] = NewBasisConverter(ringQ.SubRings[:l+1], ringP.SubRings)
	}

	P := ringP.ModulusAtLevel[ringP.MaxLevel()]
	tmp := new(big.Int)
	for i, s := range ringQ.SubRings {
		qi := new(big.Int).SetUint64(s.Modulus)
		be.pInvModq[i] = MForm(tmp.ModInverse(tmp.Mod(P, qi), qi).Uint64(), s.Modulus, s.BRedConstant)
	}

	if errorScale > 1 {
		be.tInvModp = make([]uint64, ringP.ModuliChainLength())
		for j, s := range ringP.SubRings {
			be.tInvModp[j] = MForm(ModInverse(errorScale%s.Modulus, s.Modulus), s.Modulus, s.BRedConstant)
		}
		be.tModq = make([]uint64, ringQ.ModuliChainLength())
		for i, s := range ringQ.SubRings {
			be.tModq[i] = MForm(BRedAdd(errorScale, s.Modulus, s.BRedConstant), s.Modulus, s.BRedConstant)
		}
	}

	return
}

// ShallowCopy returns a copy of the [BasisExtender] sharing the read-only
// constants of the receiver but with its own buffers.
func (be BasisExtender) ShallowCopy() *BasisExtender {
	be.buffQ = NewPoly(be.ringQ.N(), be.ringQ.MaxLevel())
	be.buffP = NewPoly(be.ringP.N(), be.ringP.MaxLevel())
	return &be
}

// ModUpQtoP extends pQ, given at levelQ in the coefficient domain, to the moduli of P, and writes the result on pP.
// pP is equal to pQ + alpha*Q_levelQ with 0 <= alpha <= levelQ.
func (be *BasisExtender) ModUpQtoP(levelQ int, pQ, pP Poly) {
	be.modUpQtoP[levelQ].ApproxSwitchCRTBasis(pQ.Coeffs[:levelQ+1], pP.Coeffs)
}

// ModDownQPtoQ computes pQ/P from a polynomial of QP given by its parts (pQ, pP) in the coefficient domain,
// at levelQ, and writes the result on out.
func (be *BasisExtender) ModDownQPtoQ(levelQ int, pQ, pP, out Poly) {

	buffQ := be.buffQ

	be.modDownPtoQ.ApproxSwitchCRTBasis(pP.Coeffs, buffQ.Coeffs[:levelQ+1])

	for i, s := range be.ringQ.SubRings[:levelQ+1] {
		s.Sub(pQ.Coeffs[i], buffQ.Coeffs[i], out.Coeffs[i])
		s.MulScalarMontgomery(out.Coeffs[i], be.pInvModq[i], out.Coeffs[i])
	}
}

// ModDownQPtoQNTT is identical to ModDownQPtoQ, except that the inputs and the output are in the NTT domain.
func (be *BasisExtender) ModDownQPtoQNTT(levelQ int, pQ, pP, out Poly) {
	be.modDownNTT(levelQ, pQ, pP, out, false)
}

// ModDownQPtoQNTTLSB is identical to ModDownQPtoQNTT, except that the value
// removed from pQ before the division is a multiple of the error scale t:
// out = (x - t*[t^-1 * x]_P) / P. The output thus keeps the congruence of x*P^-1 modulo t.
func (be *BasisExtender) ModDownQPtoQNTTLSB(levelQ int, pQ, pP, out Poly) {
	if be.errorScale < 2 {
		be.modDownNTT(levelQ, pQ, pP, out, false)
		return
	}
	be.modDownNTT(levelQ, pQ, pP, out, true)
}

func (be *BasisExtender) modDownNTT(levelQ int, pQ, pP, out Poly, lsb bool) {

	ringQ := be.ringQ.AtLevel(levelQ)
	buffQ, buffP := be.buffQ, be.buffP

	be.ringP.INTT(pP, buffP)

	if lsb {
		be.ringP.MulRNSScalarMontgomery(buffP, be.tInvModp, buffP)
	}

	be.modDownPtoQ.ApproxSwitchCRTBasis(buffP.Coeffs, buffQ.Coeffs[:levelQ+1])

	if lsb {
		ringQ.MulRNSScalarMontgomery(buffQ, be.tModq, buffQ)
	}

	ringQ.NTT(buffQ, buffQ)

	for i, s := range ringQ.SubRings[:levelQ+1] {
		s.Sub(pQ.Coeffs[i], buffQ.Coeffs[i], out.Coeffs[i])
		s.MulScalarMontgomery(out.Coeffs[i], be.pInvModq[i], out.Coeffs[i])
	}
}
