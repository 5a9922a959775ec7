package rlwe

import (
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// ghsSwitcher implements the GHS decomposition: c1 is extended as a whole
// from Q to QP, and the gadget is [P]_{q_i} on every tower of Q.
type ghsSwitcher struct {
	ringQ, ringP *ring.Ring
	crt          *CRTTables
}

func (ghs *ghsSwitcher) digits(levelQ int) int {
	return 1
}

func (ghs *ghsSwitcher) addGadget(digit int, s, b ringqp.Poly) {
	for i, sub := range ghs.ringQ.SubRings {
		sub.MulScalarMontgomeryThenAdd(s.Q.Coeffs[i], ghs.crt.pModq[i], b.Q.Coeffs[i])
	}
}

func (ghs *ghsSwitcher) decompose(levelQ int, c1 ring.Poly, buff ring.Poly, decomp []ringqp.Poly) {

	ringQ := ghs.ringQ.AtLevel(levelQ)

	d := decomp[0]

	ringQ.INTT(c1, buff)

	for i := 0; i < levelQ+1; i++ {
		copy(d.Q.Coeffs[i], c1.Coeffs[i])
	}

	ghs.crt.basisExtender.ModUpQtoP(levelQ, buff, d.P)
	ghs.ringP.NTT(d.P, d.P)
}
