package bfv

import (
	"fmt"
	"math"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// auxModulusBits is the bit-size of the primes of the auxiliary basis R.
const auxModulusBits = 61

// tensorContext stores the auxiliary basis R and the basis converters used to compute
// round(t/Q * ct0 x ct1) exactly in the RNS representation. It is read-only.
type tensorContext struct {
	// ringRQ is the ring over R followed by Q: level len(R)-1+l is the basis R u Q_l.
	ringRQ *ring.Ring
	// nR is the number of primes of R
	nR int
	// convQR[l] extends from Q_l to R
	convQR []*ring.BasisConverter
	// convRQ extends from R to Q
	convRQ *ring.BasisConverter
}

// newTensorContext generates an auxiliary basis R of NTT-friendly primes disjoint from Q and P,
// with log2(R) >= log2(Q) + log2(t) + log2(N) + 4. This is enough to hold the centered
// tensor product of two ciphertexts modulo Q, multiplied by t, without wrapping around R*Q_l.
func newTensorContext(params Parameters) (tc *tensorContext, err error) {

	ringQ := params.RingQ()

	logR := params.LogQ() + params.LogT() + float64(params.LogN()) + 4
	nR := int(math.Ceil(logR / (auxModulusBits - 1)))

	exclude := append(params.Q(), params.P()...)

	g := ring.NewNTTFriendlyPrimesGenerator(auxModulusBits, params.NthRoot(), exclude...)

	var R []uint64
	if R, err = g.NextDownstreamPrimes(nR); err != nil {
		return nil, fmt.Errorf("cannot generate the auxiliary basis: %w", err)
	}

	tc = &tensorContext{nR: nR}

	if tc.ringRQ, err = ring.NewRing(params.N(), append(R, params.Q()...)); err != nil {
		return nil, fmt.Errorf("cannot generate the auxiliary basis: %w", err)
	}

	subR := tc.ringRQ.SubRings[:nR]

	tc.convQR = make([]*ring.BasisConverter, ringQ.MaxLevel()+1)
	for l := range tc.convQR {
		tc.convQR[l] = ring.NewBasisConverter(ringQ.SubRings[:l+1], subR)
	}

	tc.convRQ = ring.NewBasisConverter(subR, ringQ.SubRings)

	return
}

// atLevel returns the ring over R u Q_level.
func (tc *tensorContext) atLevel(level int) *ring.Ring {
	return tc.ringRQ.AtLevel(tc.nR + level)
}

// view returns p restricted to the towers of R u Q_level.
func (tc *tensorContext) view(p ring.Poly, level int) ring.Poly {
	return ring.Poly{Coeffs: p.Coeffs[:tc.nR+level+1]}
}

// extend writes on pRQ the NTT over R u Q_level of the centered lift of p, given in the NTT domain over Q_level.
func (tc *tensorContext) extend(ringQ *ring.Ring, level int, p, pRQ ring.Poly) {
	pQ := ring.Poly{Coeffs: pRQ.Coeffs[tc.nR : tc.nR+level+1]}
	ringQ.AtLevel(level).INTT(p, pQ)
	tc.convQR[level].SwitchCRTBasisExact(pQ.Coeffs, pRQ.Coeffs[:tc.nR])
	tc.atLevel(level).NTT(tc.view(pRQ, level), tc.view(pRQ, level))
}

// scaleDown computes round(t*p/Q_level), where p is given in the NTT domain over R u Q_level,
// and writes the result on pOut, in the NTT domain over Q_level. p and buff are modified.
func (tc *tensorContext) scaleDown(ringQ *ring.Ring, level int, t uint64, p, buff, pOut ring.Poly) {

	ringRQ := tc.atLevel(level)

	pv := tc.view(p, level)
	ringRQ.INTT(pv, pv)
	ringRQ.MulScalar(pv, t, pv)

	// Divides by q_level, ..., q_0, with rounding at each step.
	for l := level; l >= 0; l-- {
		tc.atLevel(l).DivRoundByLastModulus(tc.view(p, l), buff, tc.view(p, l))
	}

	tc.convRQ.SwitchCRTBasisExact(p.Coeffs[:tc.nR], pOut.Coeffs[:level+1])
	ringQ.AtLevel(level).NTT(pOut, pOut)
}
