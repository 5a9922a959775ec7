package bfv

import (
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// Encoder is a structure that stores the parameters to encode values on a plaintext, either in
// its coefficients or in a SIMD (Single-Instruction Multiple-Data) fashion in its slots.
// The message m is encoded as floor(Q/t)*m, with m centered modulo t.
type Encoder struct {
	*bgv.Encoder
	parameters Parameters

	// delta[l] = floor(Q_l/t)
	delta []*big.Int

	bufQ ring.Poly
	bufT ring.Poly
	bufB []*big.Int
}

// NewEncoder creates a new [Encoder] from the provided parameters.
func NewEncoder(params Parameters) *Encoder {
	return &Encoder{
		Encoder:    bgv.NewEncoder(params.Parameters),
		parameters: params,
		delta:      genDeltas(params),
		bufQ:       params.RingQ().NewPoly(),
		bufT:       ring.NewPoly(params.N(), 0),
		bufB:       make([]*big.Int, params.N()),
	}
}

func genDeltas(params Parameters) (delta []*big.Int) {
	t := new(big.Int).SetUint64(params.PlaintextModulus())
	delta = make([]*big.Int, params.MaxLevel()+1)
	for i := range delta {
		delta[i] = new(big.Int).Quo(params.RingQ().ModulusAtLevel[i], t)
	}
	return
}

// GetParameters returns the underlying [bfv.Parameters] of the target object.
func (ecd Encoder) GetParameters() *Parameters {
	return &ecd.parameters
}

// Encode encodes a slice of integers of type []uint64 or []int64 of size at most N on a pre-allocated plaintext.
func (ecd Encoder) Encode(values interface{}, pt *rlwe.Plaintext) (err error) {

	if err = ecd.EncodeRingT(values, pt.IsBatched, pt.Scale, ecd.bufT); err != nil {
		return
	}

	level := pt.Level()
	ringQ := ecd.parameters.RingQ().AtLevel(level)

	ecd.RingT2Q(level, ecd.bufT, pt.Value)
	ringQ.MulScalarBigint(pt.Value, ecd.delta[level], pt.Value)

	if pt.IsNTT {
		ringQ.NTT(pt.Value, pt.Value)
	}

	return
}

// Decode decodes a plaintext on a slice of integers of type []uint64 or []int64 of size at most N:
// each coefficient x of the plaintext is mapped to round(t*x/Q) mod t.
func (ecd Encoder) Decode(pt *rlwe.Plaintext, values interface{}) (err error) {

	level := pt.Level()
	ringQ := ecd.parameters.RingQ().AtLevel(level)

	p := pt.Value
	if pt.IsNTT {
		ringQ.INTT(p, ecd.bufQ)
		p = ecd.bufQ
	}

	ringQ.PolyToBigintCentered(p, 1, ecd.bufB)

	t := new(big.Int).SetUint64(ecd.parameters.PlaintextModulus())
	Q := ringQ.Modulus()

	ptT := ecd.bufT.Coeffs[0]
	for i, c := range ecd.bufB {
		c.Mul(c, t)
		bignum.DivRound(c, Q, c)
		ptT[i] = c.Mod(c, t).Uint64()
	}

	return ecd.DecodeRingT(ecd.bufT, pt.IsBatched, pt.Scale, values)
}

// ShallowCopy creates a shallow copy of this [Encoder] in which the read-only data-structures are
// shared with the receiver.
func (ecd Encoder) ShallowCopy() *Encoder {
	return &Encoder{
		Encoder:    ecd.Encoder.ShallowCopy(),
		parameters: ecd.parameters,
		delta:      ecd.delta,
		bufQ:       ecd.parameters.RingQ().NewPoly(),
		bufT:       ring.NewPoly(ecd.parameters.N(), 0),
		bufB:       make([]*big.Int, ecd.parameters.N()),
	}
}
