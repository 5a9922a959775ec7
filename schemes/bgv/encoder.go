package bgv

import (
	"fmt"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// Encoder is a structure that stores the parameters to encode integer values on a plaintext,
// either in its coefficients or in a SIMD (Single-Instruction Multiple-Data) fashion in its slots.
//
// Messages are encoded in the least significant bits of the plaintext: the plaintext polynomial
// is the centered lift of the message modulo t.
type Encoder struct {
	parameters Parameters

	// indexMatrix[i] is the position, in the NTT of RingT, of the i-th slot
	indexMatrix []uint64

	tBRedConstant [2]uint64

	bufQ ring.Poly
	bufT ring.Poly
	bufB []*big.Int
}

// NewEncoder creates a new [Encoder] from the provided parameters.
func NewEncoder(parameters Parameters) *Encoder {

	var indexMatrix []uint64
	if parameters.BatchingEnabled() {
		indexMatrix = permuteMatrix(parameters.LogN())
	}

	return &Encoder{
		parameters:    parameters,
		indexMatrix:   indexMatrix,
		tBRedConstant: ring.GenBRedConstant(parameters.PlaintextModulus()),
		bufQ:          parameters.RingQ().NewPoly(),
		bufT:          ring.NewPoly(parameters.N(), 0),
		bufB:          newBigintSlice(parameters.N()),
	}
}

func newBigintSlice(n int) (b []*big.Int) {
	b = make([]*big.Int, n)
	for i := range b {
		b[i] = new(big.Int)
	}
	return
}

// permuteMatrix returns the positions of the slots in the bit-reversed NTT of a degree 2^logN
// polynomial: slot i of the first row is the evaluation at psi^(5^i) and slot i of the second
// row the evaluation at psi^(-5^i).
func permuteMatrix(logN int) (perm []uint64) {

	var N, pow, pos uint64 = uint64(1 << logN), 1, 0

	mask := 2*N - 1

	perm = make([]uint64, N)

	halfN := int(N >> 1)

	for i, j := 0, halfN; i < halfN; i, j = i+1, j+1 {

		pos = utils.BitReverse64(pow>>1, logN) // = (pow-1)/2

		perm[i] = pos
		perm[j] = N - pos - 1

		pow *= rlwe.GaloisGen
		pow &= mask
	}

	return perm
}

// GetParameters returns the underlying [bgv.Parameters] of the target object.
func (ecd Encoder) GetParameters() *Parameters {
	return &ecd.parameters
}

// GetRLWEParameters returns the underlying [rlwe.Parameters] of the target object.
func (ecd Encoder) GetRLWEParameters() *rlwe.Parameters {
	return &ecd.parameters.Parameters
}

// Encode encodes a slice of integers of type []uint64 or []int64 of size at most N on a pre-allocated plaintext.
// The values are encoded in the slots if pt.IsBatched and in the coefficients otherwise, and multiplied by pt.Scale.
func (ecd Encoder) Encode(values interface{}, pt *rlwe.Plaintext) (err error) {

	if err = ecd.EncodeRingT(values, pt.IsBatched, pt.Scale, ecd.bufT); err != nil {
		return
	}

	ecd.RingT2Q(pt.Level(), ecd.bufT, pt.Value)

	if pt.IsNTT {
		ecd.parameters.RingQ().AtLevel(pt.Level()).NTT(pt.Value, pt.Value)
	}

	return
}

// EncodeRingT encodes a slice of integers of type []uint64 or []int64 of size at most N on the polynomial
// pT with coefficients modulo the plaintext modulus, and multiplies the result by scale.
// If isBatched, the values are encoded in the slots, which requires [Parameters.BatchingEnabled].
func (ecd Encoder) EncodeRingT(values interface{}, isBatched bool, scale rlwe.Scale, pT ring.Poly) (err error) {

	N := ecd.parameters.N()
	T := ecd.parameters.PlaintextModulus()
	BRC := ecd.tBRedConstant

	if isBatched && !ecd.parameters.BatchingEnabled() {
		return fmt.Errorf("cannot EncodeRingT: PlaintextModulus=%d does not allow slot packing for N=%d", T, N)
	}

	pt := pT.Coeffs[0]

	var perm []uint64
	if isBatched {
		perm = ecd.indexMatrix
	}

	set := func(i int, v uint64) {
		if perm != nil {
			pt[perm[i]] = v
		} else {
			pt[i] = v
		}
	}

	var valLen int
	switch values := values.(type) {
	case []uint64:

		if len(values) > N {
			return fmt.Errorf("cannot EncodeRingT: len(values)=%d > N=%d", len(values), N)
		}

		for i, c := range values {
			set(i, ring.BRedAdd(c, T, BRC))
		}

		valLen = len(values)

	case []int64:

		if len(values) > N {
			return fmt.Errorf("cannot EncodeRingT: len(values)=%d > N=%d", len(values), N)
		}

		var sign, abs uint64
		for i, c := range values {
			sign = uint64(c) >> 63
			abs = ring.BRedAdd(uint64(c*((int64(sign)^1)-int64(sign))), T, BRC)
			set(i, ring.CRed(sign*(T-abs)|(sign^1)*abs, T))
		}

		valLen = len(values)

	default:
		return fmt.Errorf("cannot EncodeRingT: values.(type) must be either []uint64 or []int64 but is %T", values)
	}

	for i := valLen; i < N; i++ {
		set(i, 0)
	}

	if isBatched {
		ecd.parameters.RingT().INTT(pT, pT)
	}

	if s := scale.Uint64() % T; s != 1 {
		for i := range pt {
			pt[i] = ring.BRed(pt[i], s, T, BRC)
		}
	}

	return
}

// DecodeRingT decodes the polynomial pT with coefficients modulo the plaintext modulus, at the
// given scale, on a slice of integers of type []uint64 or []int64.
// If isBatched, the values are read from the slots. pT is modified by the method.
func (ecd Encoder) DecodeRingT(pT ring.Poly, isBatched bool, scale rlwe.Scale, values interface{}) (err error) {

	T := ecd.parameters.PlaintextModulus()

	if isBatched && !ecd.parameters.BatchingEnabled() {
		return fmt.Errorf("cannot DecodeRingT: PlaintextModulus=%d does not allow slot packing", T)
	}

	sInv := new(big.Int).ModInverse(scale.BigInt(), new(big.Int).SetUint64(T))
	if sInv == nil {
		return fmt.Errorf("cannot DecodeRingT: scale %d is not invertible modulo %d", scale.Uint64(), T)
	}

	pt := pT.Coeffs[0]

	if s := sInv.Uint64(); s != 1 {
		for i := range pt {
			pt[i] = ring.BRed(pt[i], s, T, ecd.tBRedConstant)
		}
	}

	get := func(i int) uint64 {
		return pt[i]
	}

	if isBatched {
		ecd.parameters.RingT().NTT(pT, pT)
		get = func(i int) uint64 {
			return pt[ecd.indexMatrix[i]]
		}
	}

	switch values := values.(type) {
	case []uint64:
		for i := range values {
			values[i] = get(i)
		}
	case []int64:
		for i := range values {
			values[i] = center(get(i), T)
		}
	default:
		return fmt.Errorf("cannot DecodeRingT: values must be either []uint64 or []int64 but is %T", values)
	}

	return
}

// center returns the representative of x mod t in [-t/2, t/2).
func center(x, t uint64) int64 {
	if x >= (t+1)>>1 {
		return int64(x) - int64(t)
	}
	return int64(x)
}

// RingT2Q writes on pQ, in the coefficient domain and at the given level,
// the centered lift of the polynomial pT with coefficients modulo the plaintext modulus.
func (ecd Encoder) RingT2Q(level int, pT, pQ ring.Poly) {

	T := ecd.parameters.PlaintextModulus()
	tHalf := T >> 1

	ptT := pT.Coeffs[0]

	for i, s := range ecd.parameters.RingQ().SubRings[:level+1] {

		q := s.Modulus
		// -T mod q
		negT := q - ring.BRedAdd(T, q, s.BRedConstant)

		coeffs := pQ.Coeffs[i]
		for j, c := range ptT {
			if c > tHalf {
				coeffs[j] = ring.CRed(ring.BRedAdd(c, q, s.BRedConstant)+negT, q)
			} else {
				coeffs[j] = ring.BRedAdd(c, q, s.BRedConstant)
			}
		}
	}
}

// RingQ2T writes on pT the reduction modulo the plaintext modulus of the
// centered representative of the polynomial pQ, given in the coefficient domain at the given level.
func (ecd Encoder) RingQ2T(level int, pQ, pT ring.Poly) {

	ecd.parameters.RingQ().AtLevel(level).PolyToBigintCentered(pQ, 1, ecd.bufB)

	tBig := new(big.Int).SetUint64(ecd.parameters.PlaintextModulus())

	ptT := pT.Coeffs[0]
	for j, c := range ecd.bufB {
		ptT[j] = c.Mod(c, tBig).Uint64()
	}
}

// Decode decodes a plaintext on a slice of integers of type []uint64 or []int64 of size at most N.
// The values are read from the slots if pt.IsBatched and from the coefficients otherwise, and divided by pt.Scale modulo t.
func (ecd Encoder) Decode(pt *rlwe.Plaintext, values interface{}) (err error) {

	level := pt.Level()

	if pt.IsNTT {
		ecd.parameters.RingQ().AtLevel(level).INTT(pt.Value, ecd.bufQ)
		ecd.RingQ2T(level, ecd.bufQ, ecd.bufT)
	} else {
		ecd.RingQ2T(level, pt.Value, ecd.bufT)
	}

	return ecd.DecodeRingT(ecd.bufT, pt.IsBatched, pt.Scale, values)
}

// ShallowCopy returns a lightweight copy of the target object
// that can be used concurrently with the original object.
func (ecd Encoder) ShallowCopy() *Encoder {
	return &Encoder{
		parameters:    ecd.parameters,
		indexMatrix:   ecd.indexMatrix,
		tBRedConstant: ecd.tBRedConstant,
		bufQ:          ecd.parameters.RingQ().NewPoly(),
		bufT:          ring.NewPoly(ecd.parameters.N(), 0),
		bufB:          newBigintSlice(ecd.parameters.N()),
	}
}
