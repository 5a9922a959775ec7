package bgv

import (
	"fmt"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// Evaluator is a struct that holds the necessary elements to perform the homomorphic operations between ciphertexts and/or plaintexts.
// It also holds a memory buffer used to store intermediate computations.
type Evaluator struct {
	parameters Parameters
	*rlwe.Evaluator
	*evaluatorBuffers
	encoder *Encoder
}

type evaluatorBuffers struct {
	// buffQ[0]: rescaling and tensoring scratch
	// buffQ[1-2]: operands in the Montgomery domain, encoded plaintexts
	buffQ [3]ring.Poly
	// buffCt[0]: scale-matched operand
	// buffCt[1]: tensored ciphertext before relinearization
	buffCt [2]*rlwe.Ciphertext
}

func newEvaluatorBuffers(params Parameters) *evaluatorBuffers {
	ringQ := params.RingQ()
	return &evaluatorBuffers{
		buffQ:  [3]ring.Poly{ringQ.NewPoly(), ringQ.NewPoly(), ringQ.NewPoly()},
		buffCt: [2]*rlwe.Ciphertext{NewCiphertext(params, 2), NewCiphertext(params, 2)},
	}
}

// NewEvaluator creates a new [Evaluator], that can be used to do homomorphic
// operations on ciphertexts and/or plaintexts. It stores a memory buffer
// and ciphertexts that will be used for intermediate values.
// evk can be nil if no key-switching operation is needed.
func NewEvaluator(parameters Parameters, evk rlwe.EvaluationKeySet) *Evaluator {
	return &Evaluator{
		parameters:       parameters,
		Evaluator:        rlwe.NewEvaluator(parameters, evk),
		evaluatorBuffers: newEvaluatorBuffers(parameters),
		encoder:          NewEncoder(parameters),
	}
}

// GetParameters returns a pointer to the underlying [bgv.Parameters].
func (eval Evaluator) GetParameters() *Parameters {
	return &eval.parameters
}

// ShallowCopy creates a shallow copy of this [Evaluator] in which the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// Evaluators can be used concurrently.
func (eval Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		parameters:       eval.parameters,
		Evaluator:        eval.Evaluator.ShallowCopy(),
		evaluatorBuffers: newEvaluatorBuffers(eval.parameters),
		encoder:          eval.encoder.ShallowCopy(),
	}
}

// WithKey creates a shallow copy of the receiver [Evaluator] for which the new [rlwe.EvaluationKeySet] is evk
// and where the temporary buffers are shared. The receiver and the returned Evaluators cannot be used concurrently.
func (eval Evaluator) WithKey(evk rlwe.EvaluationKeySet) *Evaluator {
	return &Evaluator{
		parameters:       eval.parameters,
		Evaluator:        eval.Evaluator.WithKey(evk),
		evaluatorBuffers: eval.evaluatorBuffers,
		encoder:          eval.encoder,
	}
}

// Add adds op1 to op0 and returns the result in opOut.
// The following types are accepted for op1:
//   - *[rlwe.Ciphertext]
//   - *[rlwe.Plaintext]
//   - int, int64, uint64, *big.Int
//   - []uint64 or []int64 of size at most N, encoded with the metadata of op0
//
// The result is at the minimum level of the operands. If the scales of the operands differ, they are
// matched by multiplying each operand by a small constant modulo t, which slightly increases the noise.
func (eval Evaluator) Add(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.evaluateAdditive(op0, op1, false, opOut); err != nil {
		return fmt.Errorf("cannot Add: %w", err)
	}
	return
}

// AddNew adds op1 to op0 and returns the result in a newly created element.
// See [Evaluator.Add] for the accepted types of op1.
func (eval Evaluator) AddNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error) {
	opOut = eval.newCiphertextBinary(op0, op1)
	return opOut, eval.Add(op0, op1, opOut)
}

// Sub subtracts op1 from op0 and returns the result in opOut.
// See [Evaluator.Add] for the accepted types of op1.
func (eval Evaluator) Sub(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.evaluateAdditive(op0, op1, true, opOut); err != nil {
		return fmt.Errorf("cannot Sub: %w", err)
	}
	return
}

// SubNew subtracts op1 from op0 and returns the result in a newly created element.
// See [Evaluator.Add] for the accepted types of op1.
func (eval Evaluator) SubNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error) {
	opOut = eval.newCiphertextBinary(op0, op1)
	return opOut, eval.Sub(op0, op1, opOut)
}

func (eval Evaluator) newCiphertextBinary(op0 *rlwe.Ciphertext, op1 interface{}) *rlwe.Ciphertext {
	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		return NewCiphertext(eval.parameters, max(op0.Degree(), op1.Degree()), min(op0.Level(), op1.Level()))
	case *rlwe.Plaintext:
		return NewCiphertext(eval.parameters, op0.Degree(), min(op0.Level(), op1.Level()))
	default:
		return NewCiphertext(eval.parameters, op0.Degree(), op0.Level())
	}
}

// Neg negates op0 and returns the result in opOut.
func (eval Evaluator) Neg(op0 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) {

	level := op0.Level()
	opOut.Resize(op0.Degree(), level)

	ringQ := eval.parameters.RingQ().AtLevel(level)
	for i := range op0.Value {
		ringQ.Neg(op0.Value[i], opOut.Value[i])
	}

	if opOut != op0 {
		*opOut.MetaData = *op0.MetaData
	}
}

// NegNew negates op0 and returns the result in a newly created element.
func (eval Evaluator) NegNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext) {
	opOut = NewCiphertext(eval.parameters, op0.Degree(), op0.Level())
	eval.Neg(op0, opOut)
	return
}

func (eval Evaluator) evaluateAdditive(op0 *rlwe.Ciphertext, op1 interface{}, sub bool, opOut *rlwe.Ciphertext) (err error) {

	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		return eval.addCiphertexts(op0, op1, sub, opOut)
	case *rlwe.Plaintext:
		return eval.addCiphertexts(op0, eval.plaintextAsCiphertext(op1), sub, opOut)
	case []uint64, []int64:
		var pt *rlwe.Ciphertext
		if pt, err = eval.encodeValues(op1, *op0.MetaData, op0.Level()); err != nil {
			return
		}
		return eval.addCiphertexts(op0, pt, sub, opOut)
	default:
		var c *big.Int
		if c, err = eval.newScalar(op1); err != nil {
			return
		}
		if sub {
			c.Neg(c)
		}
		eval.addScalar(op0, c, opOut)
		return
	}
}

func (eval Evaluator) addCiphertexts(op0, op1 *rlwe.Ciphertext, sub bool, opOut *rlwe.Ciphertext) (err error) {

	if err = checkCompatibility(op0, op1); err != nil {
		return
	}

	level := min(op0.Level(), op1.Level())
	a, b := truncate(op0, level), truncate(op1, level)

	degree := max(a.Degree(), b.Degree())

	md := *a.MetaData
	md.KeyTag = rlwe.MergeKeyTags(a.KeyTag, b.KeyTag)

	ringQ := eval.parameters.RingQ().AtLevel(level)

	var r0 uint64 = 1
	if !a.Scale.Equal(b.Scale) {

		var r1 uint64
		if r0, r1, err = eval.matchScales(a.Scale.Uint64(), b.Scale.Uint64()); err != nil {
			return
		}

		// b*r1 is written on a buffer, which allows opOut to alias b.
		buff := eval.buffCt[0]
		buff.Resize(b.Degree(), level)
		for i := range b.Value {
			ringQ.MulScalar(b.Value[i], r1, buff.Value[i])
		}
		b = buff

		md.Scale = a.Scale.Mul(rlwe.NewScale(r0))
	}

	// opOut can alias a or b
	da, db := a.Degree(), b.Degree()

	opOut.Resize(degree, level)

	for i := 0; i <= degree; i++ {
		switch {
		case i > db:
			if r0 != 1 {
				ringQ.MulScalar(a.Value[i], r0, opOut.Value[i])
			} else {
				opOut.Value[i].CopyLvl(level, a.Value[i])
			}
		case i > da:
			if sub {
				ringQ.Neg(b.Value[i], opOut.Value[i])
			} else {
				opOut.Value[i].CopyLvl(level, b.Value[i])
			}
		default:
			ai := a.Value[i]
			if r0 != 1 {
				ringQ.MulScalar(ai, r0, opOut.Value[i])
				ai = opOut.Value[i]
			}
			if sub {
				ringQ.Sub(ai, b.Value[i], opOut.Value[i])
			} else {
				ringQ.Add(ai, b.Value[i], opOut.Value[i])
			}
		}
	}

	*opOut.MetaData = md

	return
}

// matchScales returns two small integers r0 and r1 such that r0*scale0 = r1*scale1 mod t,
// found along the extended Euclidean algorithm between t and scale1/scale0 mod t.
func (eval Evaluator) matchScales(scale0, scale1 uint64) (r0, r1 uint64, err error) {

	t := eval.parameters.PlaintextModulus()
	brc := ring.GenBRedConstant(t)

	tBig := new(big.Int).SetUint64(t)
	s0Inv := new(big.Int).ModInverse(new(big.Int).SetUint64(scale0), tBig)
	if s0Inv == nil {
		return 0, 0, fmt.Errorf("invalid scale %d: not invertible modulo %d", scale0, t)
	}

	a, A := t, ring.BRed(s0Inv.Uint64(), scale1%t, t, brc)
	var b, B uint64 = 0, 1

	r0, r1 = A, B

	e := distToZero(A, t) + 1

	for A != 0 {

		q := a / A
		a, A = A, a%A
		b, B = B, ring.CRed(t+b-ring.BRed(B, q%t, t, brc), t)

		if A != 0 && utils.GCD(A, t) == 1 {
			if tmp := distToZero(A, t) + distToZero(B, t); tmp < e {
				e = tmp
				r0, r1 = A, B
			}
		}
	}

	return
}

// distToZero returns min(x, t-x).
func distToZero(x, t uint64) uint64 {
	if x > t>>1 {
		return t - x
	}
	return x
}

// plaintextAsCiphertext returns a degree zero ciphertext sharing the polynomial
// of pt, in the NTT domain.
func (eval Evaluator) plaintextAsCiphertext(pt *rlwe.Plaintext) *rlwe.Ciphertext {

	md := *pt.MetaData
	md.KeyTag = rlwe.KeyTag{}

	value := pt.Value
	if !pt.IsNTT {
		value = eval.buffQ[2]
		value.Resize(pt.Level())
		eval.parameters.RingQ().AtLevel(pt.Level()).NTT(pt.Value, value)
		md.IsNTT = true
	}

	return &rlwe.Ciphertext{MetaData: &md, Value: []ring.Poly{value}}
}

// encodeValues encodes values with the given metadata at the given level
// and returns them as a degree zero ciphertext in the NTT domain.
func (eval Evaluator) encodeValues(values interface{}, md rlwe.MetaData, level int) (ct *rlwe.Ciphertext, err error) {

	md.IsNTT = true
	md.KeyTag = rlwe.KeyTag{}

	value := eval.buffQ[2]
	value.Resize(level)

	pt := &rlwe.Plaintext{MetaData: &md, Value: value}
	if err = eval.encoder.Encode(values, pt); err != nil {
		return
	}

	return &rlwe.Ciphertext{MetaData: &md, Value: []ring.Poly{value}}, nil
}

// newScalar returns op as a *big.Int.
func (eval Evaluator) newScalar(op interface{}) (c *big.Int, err error) {
	switch op := op.(type) {
	case int:
		return big.NewInt(int64(op)), nil
	case int64:
		return big.NewInt(op), nil
	case uint64:
		return new(big.Int).SetUint64(op), nil
	case *big.Int:
		return new(big.Int).Set(op), nil
	default:
		return nil, fmt.Errorf("invalid op1.(type): must be *rlwe.Ciphertext, *rlwe.Plaintext, []uint64, []int64, int, int64, uint64 or *big.Int but is %T", op)
	}
}

// centerModT reduces c modulo t in place to its representative in (-t/2, t/2].
func (eval Evaluator) centerModT(c *big.Int) *big.Int {
	t := new(big.Int).SetUint64(eval.parameters.PlaintextModulus())
	c.Mod(c, t)
	if c.Cmp(new(big.Int).Rsh(t, 1)) > 0 {
		c.Sub(c, t)
	}
	return c
}

// addScalar adds c*scale mod t to the constant term of the plaintext of op0.
func (eval Evaluator) addScalar(op0 *rlwe.Ciphertext, c *big.Int, opOut *rlwe.Ciphertext) {

	level := op0.Level()
	ringQ := eval.parameters.RingQ().AtLevel(level)

	opOut.Resize(op0.Degree(), level)
	for i := range op0.Value[1:] {
		opOut.Value[i+1].CopyLvl(level, op0.Value[i+1])
	}

	c.Mul(c, op0.Scale.BigInt())

	ringQ.AddScalarBigint(op0.Value[0], eval.centerModT(c), opOut.Value[0])

	if opOut != op0 {
		*opOut.MetaData = *op0.MetaData
	}
}

// checkCompatibility returns an error if op0 and op1 do not decrypt under the
// same key or do not use the same encoding.
func checkCompatibility(op0, op1 *rlwe.Ciphertext) (err error) {
	if err = rlwe.CheckKeyTags(op0.KeyTag, op1.KeyTag); err != nil {
		return
	}
	if op0.IsBatched != op1.IsBatched {
		return fmt.Errorf("%w: IsBatched=%t and IsBatched=%t", rlwe.ErrEncodingMismatch, op0.IsBatched, op1.IsBatched)
	}
	return
}

// truncate returns a view of ct restricted to its first level+1 towers.
func truncate(ct *rlwe.Ciphertext, level int) *rlwe.Ciphertext {
	if ct.Level() == level {
		return ct
	}
	value := make([]ring.Poly, len(ct.Value))
	for i := range value {
		value[i] = ring.Poly{Coeffs: ct.Value[i].Coeffs[:level+1]}
	}
	return &rlwe.Ciphertext{MetaData: ct.MetaData, Value: value}
}

// Mul multiplies op0 with op1 without relinearization and returns the result in opOut.
// The following types are accepted for op1:
//   - *[rlwe.Ciphertext]
//   - *[rlwe.Plaintext]
//   - int, int64, uint64, *big.Int: the scale is not modified
//   - []uint64 or []int64 of size at most N, encoded with the encoding of op0 and a scale of 1
//
// The result is at the minimum level of the operands and its scale is the product of their scales.
// The degree of opOut is op0.Degree()+op1.Degree(), at most two.
func (eval Evaluator) Mul(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {

	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		err = eval.tensor(op0, op1, opOut)
	case *rlwe.Plaintext:
		err = eval.tensor(op0, eval.plaintextAsCiphertext(op1), opOut)
	case []uint64, []int64:
		md := *op0.MetaData
		md.Scale = rlwe.NewScaleModT(1, eval.parameters.PlaintextModulus())
		var pt *rlwe.Ciphertext
		if pt, err = eval.encodeValues(op1, md, op0.Level()); err == nil {
			err = eval.tensor(op0, pt, opOut)
		}
	default:
		var c *big.Int
		if c, err = eval.newScalar(op1); err == nil {
			eval.mulScalar(op0, eval.centerModT(c), opOut)
		}
	}

	if err != nil {
		return fmt.Errorf("cannot Mul: %w", err)
	}

	return
}

// MulNew multiplies op0 with op1 without relinearization and returns the result in a newly created element.
// See [Evaluator.Mul] for the accepted types of op1.
func (eval Evaluator) MulNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error) {
	degree, level := op0.Degree(), op0.Level()
	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		degree += op1.Degree()
		level = min(level, op1.Level())
	case *rlwe.Plaintext:
		level = min(level, op1.Level())
	}
	opOut = NewCiphertext(eval.parameters, degree, level)
	return opOut, eval.Mul(op0, op1, opOut)
}

// MulRelin multiplies op0 with op1 and returns the result in opOut.
// If op1 is a ciphertext, the product is relinearized and the [Evaluator] must
// have been given a [rlwe.RelinearizationKey].
// See [Evaluator.Mul] for the accepted types of op1.
func (eval Evaluator) MulRelin(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {

	ct, ok := op1.(*rlwe.Ciphertext)
	if !ok {
		return eval.Mul(op0, op1, opOut)
	}

	if op0.Degree()+ct.Degree() != 2 {
		return fmt.Errorf("cannot MulRelin: the input ciphertexts must be of degree 1")
	}

	tmp := eval.buffCt[1]
	if err = eval.tensor(op0, ct, tmp); err != nil {
		return fmt.Errorf("cannot MulRelin: %w", err)
	}

	if err = eval.Relinearize(tmp, opOut); err != nil {
		return fmt.Errorf("cannot MulRelin: %w", err)
	}

	return
}

// MulRelinNew multiplies op0 with op1 with relinearization and returns the result in a newly created element.
// See [Evaluator.MulRelin].
func (eval Evaluator) MulRelinNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error) {
	level := op0.Level()
	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		level = min(level, op1.Level())
	case *rlwe.Plaintext:
		level = min(level, op1.Level())
	}
	opOut = NewCiphertext(eval.parameters, 1, level)
	return opOut, eval.MulRelin(op0, op1, opOut)
}

func (eval Evaluator) tensor(op0, op1 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) (err error) {

	if op0.Degree()+op1.Degree() > 2 {
		return fmt.Errorf("the sum of the degrees of the operands must be at most 2")
	}

	if err = checkCompatibility(op0, op1); err != nil {
		return
	}

	level := min(op0.Level(), op1.Level())
	a, b := truncate(op0, level), truncate(op1, level)

	// The operand of degree zero, if any, is b.
	if a.Degree() == 0 {
		a, b = b, a
	}

	ringQ := eval.parameters.RingQ().AtLevel(level)

	md := *a.MetaData
	md.Scale = a.Scale.Mul(b.Scale)
	md.KeyTag = rlwe.MergeKeyTags(a.KeyTag, b.KeyTag)

	// b is copied in the Montgomery domain, which also allows opOut to alias the operands.
	b0, b1 := eval.buffQ[1], eval.buffQ[2]
	ringQ.MForm(b.Value[0], b0)
	if b.Degree() == 1 {
		ringQ.MForm(b.Value[1], b1)
	}

	degree := a.Degree() + b.Degree()
	opOut.Resize(degree, level)

	if b.Degree() == 0 {
		for i := range a.Value {
			ringQ.MulCoeffsMontgomery(a.Value[i], b0, opOut.Value[i])
		}
	} else {
		c2 := eval.buffQ[0]
		ringQ.MulCoeffsMontgomery(a.Value[1], b1, c2)
		ringQ.MulCoeffsMontgomery(a.Value[1], b0, opOut.Value[1])
		ringQ.MulCoeffsMontgomeryThenAdd(a.Value[0], b1, opOut.Value[1])
		ringQ.MulCoeffsMontgomery(a.Value[0], b0, opOut.Value[0])
		opOut.Value[2].CopyLvl(level, c2)
	}

	*opOut.MetaData = md

	return
}

func (eval Evaluator) mulScalar(op0 *rlwe.Ciphertext, c *big.Int, opOut *rlwe.Ciphertext) {

	level := op0.Level()
	ringQ := eval.parameters.RingQ().AtLevel(level)

	opOut.Resize(op0.Degree(), level)
	for i := range op0.Value {
		ringQ.MulScalarBigint(op0.Value[i], c, opOut.Value[i])
	}

	if opOut != op0 {
		*opOut.MetaData = *op0.MetaData
	}
}

// Relinearize applies the relinearization procedure on ct0 and returns the result in opOut.
// The method will return an error if the input ciphertext degree isn't 2 or if the
// [Evaluator] has no [rlwe.RelinearizationKey].
func (eval Evaluator) Relinearize(ct0 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) (err error) {
	return eval.Evaluator.Relinearize(ct0, opOut)
}

// RelinearizeNew applies the relinearization procedure on ct0 and returns the result in a newly
// created [rlwe.Ciphertext].
func (eval Evaluator) RelinearizeNew(ct0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, ct0.Level())
	return opOut, eval.Relinearize(ct0, opOut)
}

// Rescale divides op0 by the last modulus q of its moduli chain and returns the result in opOut.
// The rounding keeps the error a multiple of t, so that the message is multiplied by q^-1 mod t:
// the scale of opOut is the scale of op0 times q^-1 mod t.
//
// The method returns an error wrapping [rlwe.ErrLevelExhausted] if op0 is at level zero.
func (eval Evaluator) Rescale(op0, opOut *rlwe.Ciphertext) (err error) {

	level := op0.Level()

	if level == 0 {
		return fmt.Errorf("cannot Rescale: %w: op0 is at level 0", rlwe.ErrLevelExhausted)
	}

	ringQ := eval.parameters.RingQ().AtLevel(level)
	t := eval.parameters.PlaintextModulus()
	qL := ringQ.SubRings[level].Modulus

	md := *op0.MetaData
	md.Scale = op0.Scale.Div(rlwe.NewScale(qL % t))

	if opOut != op0 {
		opOut.Resize(op0.Degree(), level)
	}

	for i := range op0.Value {
		ringQ.DivByLastModulusLSBNTT(t, op0.Value[i], eval.buffQ[0], opOut.Value[i])
	}

	opOut.Resize(op0.Degree(), level-1)

	*opOut.MetaData = md

	return
}

// RescaleNew is identical to [Evaluator.Rescale], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) RescaleNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, op0.Degree(), op0.Level())
	return opOut, eval.Rescale(op0, opOut)
}

// DropLevel reduces the level of op0 by levels, without rescaling.
func (eval Evaluator) DropLevel(op0 *rlwe.Ciphertext, levels int) (err error) {

	if levels <= 0 {
		return
	}

	if op0.Level()-levels < 0 {
		return fmt.Errorf("cannot DropLevel: %w: op0.Level()=%d < levels=%d", rlwe.ErrLevelExhausted, op0.Level(), levels)
	}

	op0.Resize(op0.Degree(), op0.Level()-levels)

	return
}

// DropLevelNew is identical to [Evaluator.DropLevel], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) DropLevelNew(op0 *rlwe.Ciphertext, levels int) (opOut *rlwe.Ciphertext, err error) {
	opOut = op0.CopyNew()
	return opOut, eval.DropLevel(opOut, levels)
}

// RotateColumns rotates the columns of op0 by k positions to the left and returns the result in opOut.
// A negative k rotates to the right. The [Evaluator] must have the [rlwe.GaloisKey] of
// [Parameters.GaloisElementForColumnRotation](k).
func (eval Evaluator) RotateColumns(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.Automorphism(op0, eval.parameters.GaloisElementForColumnRotation(k), opOut); err != nil {
		return fmt.Errorf("cannot RotateColumns: %w", err)
	}
	return
}

// RotateColumnsNew is identical to [Evaluator.RotateColumns], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) RotateColumnsNew(op0 *rlwe.Ciphertext, k int) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.RotateColumns(op0, k, opOut)
}

// RotateRows swaps the two rows of op0 and returns the result in opOut.
// The [Evaluator] must have the [rlwe.GaloisKey] of [Parameters.GaloisElementForRowRotation].
func (eval Evaluator) RotateRows(op0 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.Automorphism(op0, eval.parameters.GaloisElementForRowRotation(), opOut); err != nil {
		return fmt.Errorf("cannot RotateRows: %w", err)
	}
	return
}

// RotateRowsNew is identical to [Evaluator.RotateRows], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) RotateRowsNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.RotateRows(op0, opOut)
}

// PrecomputeRotations decomposes op0 once, so that several rotations of op0
// can then be evaluated with [Evaluator.RotateColumnsHoisted] at a reduced cost.
func (eval Evaluator) PrecomputeRotations(op0 *rlwe.Ciphertext) *rlwe.HoistedDecomposition {
	return eval.DecomposeNTTNew(op0)
}

// RotateColumnsHoisted returns the column rotations of op0 by each k of ks, using the
// decomposition of op0 returned by [Evaluator.PrecomputeRotations].
func (eval Evaluator) RotateColumnsHoisted(op0 *rlwe.Ciphertext, ks []int, decomp *rlwe.HoistedDecomposition) (opOut map[int]*rlwe.Ciphertext, err error) {
	opOut = make(map[int]*rlwe.Ciphertext, len(ks))
	for _, k := range ks {
		ct := NewCiphertext(eval.parameters, 1, op0.Level())
		if err = eval.AutomorphismHoisted(op0, decomp, eval.parameters.GaloisElementForColumnRotation(k), ct); err != nil {
			return nil, fmt.Errorf("cannot RotateColumnsHoisted: %w", err)
		}
		opOut[k] = ct
	}
	return
}

// ApplyEvaluationKeyNew re-encrypts op0 under the target key of evk and returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) ApplyEvaluationKeyNew(op0 *rlwe.Ciphertext, evk *rlwe.EvaluationKey) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.ApplyEvaluationKey(op0, evk, opOut)
}
