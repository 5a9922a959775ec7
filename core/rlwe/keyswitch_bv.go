package rlwe

import (
	"math/bits"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// bvSwitcher implements the BV decomposition: each RNS tower of c1 is split
// in base 2^logBase and each small digit is lifted to all the towers.
// Digit (i, w) has gadget 2^(logBase*w) on tower i and 0 elsewhere.
type bvSwitcher struct {
	ringQ   *ring.Ring
	logBase int

	// windows[i] is the number of digits of tower i
	windows []int
	// offsets[i] is the index of the first digit of tower i
	offsets []int
}

func newBVSwitcher(ringQ *ring.Ring, logBase int) *bvSwitcher {

	L := ringQ.ModuliChainLength()

	bv := &bvSwitcher{
		ringQ:   ringQ,
		logBase: logBase,
		windows: make([]int, L),
		offsets: make([]int, L+1),
	}

	for i, s := range ringQ.SubRings {
		bv.windows[i] = 1
		if bitLen := bits.Len64(s.Modulus); logBase != 0 && logBase < bitLen {
			bv.windows[i] = (bitLen + logBase - 1) / logBase
		}
		bv.offsets[i+1] = bv.offsets[i] + bv.windows[i]
	}

	return bv
}

func (bv *bvSwitcher) digits(levelQ int) int {
	return bv.offsets[levelQ+1]
}

// tower returns the tower and the window of a digit.
func (bv *bvSwitcher) tower(digit int) (i, w int) {
	for i = 0; bv.offsets[i+1] <= digit; i++ {
	}
	return i, digit - bv.offsets[i]
}

func (bv *bvSwitcher) addGadget(digit int, s, b ringqp.Poly) {
	i, w := bv.tower(digit)
	sub := bv.ringQ.SubRings[i]
	g := uint64(1)
	if bv.windows[i] > 1 {
		g = ring.BRedAdd(1<<uint(bv.logBase*w), sub.Modulus, sub.BRedConstant)
	}
	sub.MulScalarMontgomeryThenAdd(s.Q.Coeffs[i], g, b.Q.Coeffs[i])
}

func (bv *bvSwitcher) decompose(levelQ int, c1 ring.Poly, buff ring.Poly, decomp []ringqp.Poly) {

	ringQ := bv.ringQ.AtLevel(levelQ)
	ringQ.INTT(c1, buff)

	for i, si := range ringQ.SubRings[:levelQ+1] {

		full := bv.windows[i] == 1

		for w := 0; w < bv.windows[i]; w++ {

			d := decomp[bv.offsets[i]+w].Q

			if full {
				copy(d.Coeffs[i], buff.Coeffs[i])
			} else {
				ring.DecomposeWindow(buff.Coeffs[i], w, bv.logBase, d.Coeffs[i])
			}

			for k, sk := range ringQ.SubRings[:levelQ+1] {
				if k == i {
					continue
				}
				// a full residue is lifted with its centered representative
				if full {
					sk.CenteredReduceFrom(d.Coeffs[i], si.Modulus, d.Coeffs[k])
				} else {
					sk.Reduce(d.Coeffs[i], d.Coeffs[k])
				}
			}

			ringQ.NTT(d, d)
		}
	}
}
