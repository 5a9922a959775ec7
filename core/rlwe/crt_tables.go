package rlwe

import (
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// CRTTables stores the RNS constants derived from a parameter set that are
// not owned by a single ring: the fast basis conversion tables between Q and P,
// the gadget vector of the key-switching technique and, for HYBRID, the
// conversion tables from each digit to its complement basis.
// CRTTables are created once by [NewParametersFromLiteral] and are read-only.
type CRTTables struct {
	technique KeySwitchTechnique

	// [P]_{q_i}
	pModq []uint64

	// basisExtender is never used directly: evaluators use shallow copies.
	basisExtender *ring.BasisExtender

	switcher keySwitcher
}

func newCRTTables(params Parameters) (crt *CRTTables) {

	crt = &CRTTables{technique: params.technique}

	ringQ, ringP := params.ringQ, params.ringP

	if ringP != nil {

		crt.basisExtender = ring.NewBasisExtender(ringQ, ringP, params.errorScale)

		P := ringP.Modulus()
		crt.pModq = make([]uint64, ringQ.ModuliChainLength())
		tmp := new(big.Int)
		for i, s := range ringQ.SubRings {
			crt.pModq[i] = tmp.Mod(P, new(big.Int).SetUint64(s.Modulus)).Uint64()
		}
	}

	switch params.technique {
	case BV:
		crt.switcher = newBVSwitcher(ringQ, params.relinWindow)
	case GHS:
		crt.switcher = &ghsSwitcher{ringQ: ringQ, ringP: ringP, crt: crt}
	default:
		crt.switcher = newHybridSwitcher(ringQ, ringP, crt, params.dnum)
	}

	return
}

// Technique returns the key-switching technique the tables were built for.
func (crt *CRTTables) Technique() KeySwitchTechnique {
	return crt.technique
}

// PModQ returns the residues of the auxiliary modulus P modulo each q_i, or nil if there is no P.
func (crt *CRTTables) PModQ() []uint64 {
	return append([]uint64(nil), crt.pModq...)
}

// NewBasisExtender returns a [ring.BasisExtender] between Q and P that shares
// the read-only tables and owns its buffers, or nil if there is no P.
func (crt *CRTTables) NewBasisExtender() *ring.BasisExtender {
	if crt.basisExtender == nil {
		return nil
	}
	return crt.basisExtender.ShallowCopy()
}

// keySwitcher is the part of a key-switching technique that depends on its
// gadget: the number of digits, the gadget vector and the decomposition of
// a polynomial along it.
type keySwitcher interface {
	// digits returns the number of digits of the decomposition at levelQ.
	digits(levelQ int) int
	// addGadget adds g_digit * s on b over Q, with s in the NTT and Montgomery
	// domain and b in the NTT domain.
	addGadget(digit int, s, b ringqp.Poly)
	// decompose writes on decomp the digits of c1 (NTT domain, at levelQ) in
	// the NTT domain. buff is a scratch polynomial of Q.
	decompose(levelQ int, c1 ring.Poly, buff ring.Poly, decomp []ringqp.Poly)
}
