package ckks

import (
	"fmt"
	"math"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// EncodingOverflowError is returned when a scaled value does not fit in the
// modulus of the plaintext it is encoded on.
type EncodingOverflowError struct {
	// Slot is the index of the first value that overflows.
	Slot int
	// BitsOver is the number of bits by which the scaled value exceeds the
	// largest value that can be encoded.
	BitsOver int
}

func (e *EncodingOverflowError) Error() string {
	return fmt.Sprintf("encoding overflow: value at index %d exceeds the plaintext modulus by %d bits, consider a smaller scaling factor", e.Slot, e.BitsOver)
}

// Encoder is a type that implements the encoding and decoding interface for the CKKS scheme.
// Batched plaintexts carry up to N/2 complex values through the canonical embedding,
// non-batched plaintexts carry up to N real values in their coefficients.
type Encoder struct {
	parameters Parameters

	m        int
	rotGroup []int
	roots    []complex128

	buffCmplx  []complex128
	buffPoly   ring.Poly
	buffBigint []*big.Int
}

// NewEncoder creates a new [Encoder] from the target parameters.
func NewEncoder(parameters Parameters) (ecd *Encoder) {

	m := int(parameters.NthRoot())

	ecd = &Encoder{
		parameters: parameters,
		m:          m,
		rotGroup:   rotationGroup(m),
		roots:      GetRootsComplex128(m),
	}

	ecd.allocBuffers()

	return
}

func (ecd *Encoder) allocBuffers() {
	N := ecd.parameters.N()
	ecd.buffCmplx = make([]complex128, N>>1)
	ecd.buffPoly = ecd.parameters.RingQ().NewPoly()
	ecd.buffBigint = make([]*big.Int, N)
	for i := range ecd.buffBigint {
		ecd.buffBigint[i] = new(big.Int)
	}
}

// GetParameters returns the underlying parameters of the [Encoder].
func (ecd Encoder) GetParameters() Parameters {
	return ecd.parameters
}

// GetRLWEParameters returns the underlying [rlwe.Parameters] of the [Encoder].
func (ecd Encoder) GetRLWEParameters() *rlwe.Parameters {
	return &ecd.parameters.Parameters
}

// Encode encodes a set of values on the target plaintext, at its level and with its scale.
// Accepted values.(type) are []complex128 and []float64.
//
// If pt.IsBatched is true, the values are packed in the pt.Slots() slots of the canonical
// embedding, and must be at most pt.Slots() of them. Otherwise, the values, which must then
// be real, are scaled and rounded onto the N coefficients of the plaintext.
//
// The output plaintext is in the NTT domain. The method returns an *[EncodingOverflowError]
// if a scaled value does not fit in the modulus at the level of the plaintext.
func (ecd Encoder) Encode(values interface{}, pt *rlwe.Plaintext) (err error) {

	if pt.IsBatched {
		err = ecd.encodeSlots(values, pt)
	} else {
		err = ecd.encodeCoeffs(values, pt)
	}

	if err != nil {
		return
	}

	ecd.parameters.RingQ().AtLevel(pt.Level()).NTT(pt.Value, pt.Value)
	pt.IsNTT = true

	return
}

func (ecd Encoder) encodeSlots(values interface{}, pt *rlwe.Plaintext) (err error) {

	if pt.LogSlots < 0 || pt.LogSlots > ecd.parameters.LogMaxSlots() {
		return fmt.Errorf("cannot Encode: LogSlots=%d must be in [0, %d]", pt.LogSlots, ecd.parameters.LogMaxSlots())
	}

	slots := pt.Slots()
	buff := ecd.buffCmplx[:slots]

	switch values := values.(type) {
	case []complex128:
		if len(values) > slots {
			return fmt.Errorf("cannot Encode: #values=%d > slots=%d", len(values), slots)
		}
		copy(buff, values)
		clear(buff[len(values):])
	case []float64:
		if len(values) > slots {
			return fmt.Errorf("cannot Encode: #values=%d > slots=%d", len(values), slots)
		}
		for i, v := range values {
			buff[i] = complex(v, 0)
		}
		clear(buff[len(values):])
	default:
		return fmt.Errorf("cannot Encode: values.(type) must be []complex128 or []float64 but is %T", values)
	}

	logBound := ecd.logMaxEncodable(pt)
	for i, v := range buff {
		if err = checkOverflow(i, math.Max(math.Abs(real(v)), math.Abs(imag(v))), logBound); err != nil {
			return fmt.Errorf("cannot Encode: %w", err)
		}
	}

	SpecialIFFT(buff, slots, ecd.m, ecd.rotGroup, ecd.roots)

	// Y = X^{N/(2*slots)}: the real parts go to the first half of the
	// coefficients and the imaginary parts to the second half.
	N := ecd.parameters.N()
	gap := N / (slots << 1)

	ringQ := ecd.parameters.RingQ().AtLevel(pt.Level())
	pt.Value.Zero()

	scale := &pt.Scale.Value
	for i, v := range buff {
		setScaledCoefficient(ringQ, i*gap, real(v), scale, pt.Value)
		setScaledCoefficient(ringQ, N/2+i*gap, imag(v), scale, pt.Value)
	}

	return
}

func (ecd Encoder) encodeCoeffs(values interface{}, pt *rlwe.Plaintext) (err error) {

	vf64, ok := values.([]float64)
	if !ok {
		return fmt.Errorf("cannot Encode: values.(type) must be []float64 when IsBatched=false but is %T", values)
	}

	if len(vf64) > ecd.parameters.N() {
		return fmt.Errorf("cannot Encode: #values=%d > N=%d", len(vf64), ecd.parameters.N())
	}

	logBound := ecd.logMaxEncodable(pt)
	for i, v := range vf64 {
		if err = checkOverflow(i, math.Abs(v), logBound); err != nil {
			return fmt.Errorf("cannot Encode: %w", err)
		}
	}

	ringQ := ecd.parameters.RingQ().AtLevel(pt.Level())
	pt.Value.Zero()

	scale := &pt.Scale.Value
	for i, v := range vf64 {
		setScaledCoefficient(ringQ, i, v, scale, pt.Value)
	}

	return
}

// logMaxEncodable returns log2(Q_level/(2*scale)).
func (ecd Encoder) logMaxEncodable(pt *rlwe.Plaintext) float64 {
	return bignum.Log2Int(ecd.parameters.QLvl(pt.Level())) - 1 - pt.Scale.Log2()
}

func checkOverflow(slot int, abs, logBound float64) error {
	if abs == 0 {
		return nil
	}
	if logAbs := math.Log2(abs); logAbs >= logBound {
		return &EncodingOverflowError{Slot: slot, BitsOver: int(math.Floor(logAbs-logBound)) + 1}
	}
	return nil
}

// setScaledCoefficient sets the j-th coefficient of p to round(v * scale) in every tower of r.
func setScaledCoefficient(r *ring.Ring, j int, v float64, scale *big.Float, p ring.Poly) {

	if v == 0 {
		return
	}

	scaled := new(big.Float).SetPrec(rlwe.ScalePrecision).SetFloat64(v)
	scaled.Mul(scaled, scale)

	if f, _ := scaled.Float64(); math.Abs(f) < 1<<62 {
		c := int64(math.Round(f))
		for i, s := range r.SubRings[:r.Level()+1] {
			if c < 0 {
				p.Coeffs[i][j] = ring.CRed(s.Modulus-ring.BRedAdd(uint64(-c), s.Modulus, s.BRedConstant), s.Modulus)
			} else {
				p.Coeffs[i][j] = ring.BRedAdd(uint64(c), s.Modulus, s.BRedConstant)
			}
		}
		return
	}

	c := bignum.RoundToInt(scaled)
	tmp := new(big.Int)
	for i, s := range r.SubRings[:r.Level()+1] {
		p.Coeffs[i][j] = tmp.Mod(c, new(big.Int).SetUint64(s.Modulus)).Uint64()
	}
}

// Decode decodes the input plaintext on values, which must be a []complex128
// if pt.IsBatched and a []float64 otherwise.
// At most len(values) slots, respectively coefficients, are decoded.
func (ecd Encoder) Decode(pt *rlwe.Plaintext, values interface{}) (err error) {

	level := pt.Level()
	ringQ := ecd.parameters.RingQ().AtLevel(level)

	// A scale at least as large as the modulus leaves no room for the message.
	if pt.Scale.Value.Cmp(new(big.Float).SetInt(ringQ.Modulus())) >= 0 {
		return fmt.Errorf("cannot Decode: %w: log2(scale)=%.2f >= log2(Q_%d)=%d", rlwe.ErrLevelExhausted, pt.Scale.Log2(), level, ringQ.Modulus().BitLen())
	}

	p := pt.Value
	if pt.IsNTT {
		p = ecd.buffPoly
		p.Resize(level)
		ringQ.INTT(pt.Value, p)
	}

	scale := &pt.Scale.Value

	if !pt.IsBatched {

		res, ok := values.([]float64)
		if !ok {
			return fmt.Errorf("cannot Decode: values.(type) must be []float64 when IsBatched=false but is %T", values)
		}

		ringQ.PolyToBigintCentered(p, 1, ecd.buffBigint)

		for i := range res[:min(len(res), ecd.parameters.N())] {
			res[i] = scaleDown(ecd.buffBigint[i], scale)
		}

		return
	}

	res, ok := values.([]complex128)
	if !ok {
		return fmt.Errorf("cannot Decode: values.(type) must be []complex128 when IsBatched=true but is %T", values)
	}

	if pt.LogSlots < 0 || pt.LogSlots > ecd.parameters.LogMaxSlots() {
		return fmt.Errorf("cannot Decode: LogSlots=%d must be in [0, %d]", pt.LogSlots, ecd.parameters.LogMaxSlots())
	}

	slots := pt.Slots()
	gap := ecd.parameters.N() / (slots << 1)

	ringQ.PolyToBigintCentered(p, gap, ecd.buffBigint)

	buff := ecd.buffCmplx[:slots]
	for i := range buff {
		buff[i] = complex(scaleDown(ecd.buffBigint[i], scale), scaleDown(ecd.buffBigint[slots+i], scale))
	}

	SpecialFFT(buff, slots, ecd.m, ecd.rotGroup, ecd.roots)

	copy(res, buff)

	return
}

// DecodeNew decodes the input plaintext on a newly allocated slice of pt.Slots() complex values.
func (ecd Encoder) DecodeNew(pt *rlwe.Plaintext) (values []complex128, err error) {
	values = make([]complex128, pt.Slots())
	return values, ecd.Decode(pt, values)
}

func scaleDown(c *big.Int, scale *big.Float) float64 {
	f := new(big.Float).SetPrec(rlwe.ScalePrecision).SetInt(c)
	f64, _ := f.Quo(f, scale).Float64()
	return f64
}

// ShallowCopy creates a shallow copy of [Encoder] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [Encoder] can be used concurrently.
func (ecd Encoder) ShallowCopy() *Encoder {
	cpy := &Encoder{
		parameters: ecd.parameters,
		m:          ecd.m,
		rotGroup:   ecd.rotGroup,
		roots:      ecd.roots,
	}
	cpy.allocBuffers()
	return cpy
}
