package rlwe

import (
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// hybridSwitcher implements the HYBRID decomposition: the towers of Q are
// grouped in digits of alpha consecutive moduli, and each digit is extended
// to the rest of Q and to P. Digit j has gadget [P]_{q_i} on its own towers
// and 0 elsewhere.
type hybridSwitcher struct {
	ringQ, ringP *ring.Ring
	crt          *CRTTables
	alpha        int

	// converters[l][j] extends digit j, restricted to the towers active at
	// level l, to the complement of the digit in Q_l followed by P.
	converters [][]*ring.BasisConverter
}

func newHybridSwitcher(ringQ, ringP *ring.Ring, crt *CRTTables, dnum int) (h *hybridSwitcher) {

	L := ringQ.ModuliChainLength()

	h = &hybridSwitcher{
		ringQ:      ringQ,
		ringP:      ringP,
		crt:        crt,
		alpha:      (L + dnum - 1) / dnum,
		converters: make([][]*ring.BasisConverter, L),
	}

	for l := 0; l < L; l++ {

		beta := h.digits(l)

		h.converters[l] = make([]*ring.BasisConverter, beta)

		for j := 0; j < beta; j++ {

			start, end := h.span(l, j)

			dst := make([]*ring.SubRing, 0, l+1-(end-start)+len(ringP.SubRings))
			dst = append(dst, ringQ.SubRings[:start]...)
			dst = append(dst, ringQ.SubRings[end:l+1]...)
			dst = append(dst, ringP.SubRings...)

			h.converters[l][j] = ring.NewBasisConverter(ringQ.SubRings[start:end], dst)
		}
	}

	return
}

// span returns the range of towers of digit j active at levelQ.
func (h *hybridSwitcher) span(levelQ, j int) (start, end int) {
	return j * h.alpha, utils.Min((j+1)*h.alpha, levelQ+1)
}

func (h *hybridSwitcher) digits(levelQ int) int {
	return levelQ/h.alpha + 1
}

func (h *hybridSwitcher) addGadget(digit int, s, b ringqp.Poly) {
	start, end := h.span(h.ringQ.MaxLevel(), digit)
	for i := start; i < end; i++ {
		sub := h.ringQ.SubRings[i]
		sub.MulScalarMontgomeryThenAdd(s.Q.Coeffs[i], h.crt.pModq[i], b.Q.Coeffs[i])
	}
}

func (h *hybridSwitcher) decompose(levelQ int, c1 ring.Poly, buff ring.Poly, decomp []ringqp.Poly) {

	ringQ := h.ringQ.AtLevel(levelQ)
	ringQ.INTT(c1, buff)

	for j := 0; j < h.digits(levelQ); j++ {

		start, end := h.span(levelQ, j)
		d := decomp[j]

		// the digit is its own residue on its towers
		for i := start; i < end; i++ {
			copy(d.Q.Coeffs[i], c1.Coeffs[i])
		}

		out := make([][]uint64, 0, levelQ+1-(end-start)+len(d.P.Coeffs))
		out = append(out, d.Q.Coeffs[:start]...)
		out = append(out, d.Q.Coeffs[end:levelQ+1]...)
		out = append(out, d.P.Coeffs...)

		h.converters[levelQ][j].ApproxSwitchCRTBasis(buff.Coeffs[start:end], out)

		for i, s := range ringQ.SubRings[:levelQ+1] {
			if i < start || i >= end {
				s.NTT(d.Q.Coeffs[i], d.Q.Coeffs[i])
			}
		}

		h.ringP.NTT(d.P, d.P)
	}
}
