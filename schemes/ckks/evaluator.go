package ckks

import (
	"fmt"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// Evaluator is a struct that holds the necessary elements to execute the homomorphic operations between Ciphertexts and/or Plaintexts.
// It also holds a memory buffer used to store intermediate computations.
type Evaluator struct {
	parameters Parameters
	*rlwe.Evaluator
	*evaluatorBuffers
}

type evaluatorBuffers struct {
	// buffQ[0]: rescaling scratch
	// buffQ[1-2]: scalar and plaintext operands
	buffQ [3]ring.Poly
	// buffCt[0-1]: normalized operands
	// buffCt[2]: tensored ciphertext before relinearization
	buffCt [3]*rlwe.Ciphertext
}

func newEvaluatorBuffers(params Parameters) *evaluatorBuffers {
	ringQ := params.RingQ()
	buff := &evaluatorBuffers{
		buffQ: [3]ring.Poly{ringQ.NewPoly(), ringQ.NewPoly(), ringQ.NewPoly()},
	}
	for i := range buff.buffCt {
		buff.buffCt[i] = NewCiphertext(params, 2, params.MaxLevel())
	}
	return buff
}

// NewEvaluator creates a new [Evaluator], that can be used to do homomorphic
// operations on the Ciphertexts and/or Plaintexts. It stores a memory buffer
// and Ciphertexts that will be used for intermediate values.
// evk can be nil if no key-switching operation is needed.
func NewEvaluator(parameters Parameters, evk rlwe.EvaluationKeySet) *Evaluator {
	return &Evaluator{
		parameters:       parameters,
		Evaluator:        rlwe.NewEvaluator(parameters, evk),
		evaluatorBuffers: newEvaluatorBuffers(parameters),
	}
}

// GetParameters returns a pointer to the underlying [ckks.Parameters].
func (eval Evaluator) GetParameters() *Parameters {
	return &eval.parameters
}

// ShallowCopy creates a shallow copy of this [Evaluator] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// Evaluators can be used concurrently.
func (eval Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		parameters:       eval.parameters,
		Evaluator:        eval.Evaluator.ShallowCopy(),
		evaluatorBuffers: newEvaluatorBuffers(eval.parameters),
	}
}

// WithKey creates a shallow copy of the receiver [Evaluator] for which the new [rlwe.EvaluationKeySet] is evk
// and where the temporary buffers are shared. The receiver and the returned Evaluators cannot be used concurrently.
func (eval Evaluator) WithKey(evk rlwe.EvaluationKeySet) *Evaluator {
	return &Evaluator{
		parameters:       eval.parameters,
		Evaluator:        eval.Evaluator.WithKey(evk),
		evaluatorBuffers: eval.evaluatorBuffers,
	}
}

// Add adds op1 to op0 and returns the result in opOut.
// The following types are accepted for op1:
//   - *[rlwe.Ciphertext]
//   - *[rlwe.Plaintext]
//   - int, int64, uint64, float64, complex128
//
// With [ApproxRescale], a ciphertext or plaintext op1 must be at the same depth as op0,
// and a ciphertext op1 must also be at the same level. With [ExactRescale], the
// operands are first brought to a common level and depth.
//
// Passing an invalid type will return an error.
func (eval Evaluator) Add(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.evaluateAdditive(op0, op1, false, opOut); err != nil {
		return fmt.Errorf("cannot Add: %w", err)
	}
	return
}

// AddNew adds op1 to op0 and returns the result in a newly created element.
// See [Evaluator.Add] for the accepted types of op1.
func (eval Evaluator) AddNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.Add(op0, op1, opOut)
}

// Sub subtracts op1 from op0 and returns the result in opOut.
// See [Evaluator.Add] for the accepted types of op1 and the level and depth requirements.
func (eval Evaluator) Sub(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.evaluateAdditive(op0, op1, true, opOut); err != nil {
		return fmt.Errorf("cannot Sub: %w", err)
	}
	return
}

// SubNew subtracts op1 from op0 and returns the result in a newly created element.
// See [Evaluator.Add] for the accepted types of op1.
func (eval Evaluator) SubNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.Sub(op0, op1, opOut)
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

func (eval Evaluator) evaluateAdditive(op0 *rlwe.Ciphertext, op1 interface{}, sub bool, opOut *rlwe.Ciphertext) (err error) {

	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		return eval.addCiphertexts(op0, op1, sub, opOut)
	case *rlwe.Plaintext:
		return eval.addCiphertexts(op0, eval.plaintextAsCiphertext(op1), sub, opOut)
	default:
		var c scalar
		if c, err = newScalar(op1); err != nil {
			return
		}
		if sub {
			c = c.neg()
		}
		eval.addScalar(op0, c, opOut)
		return
	}
}

func (eval Evaluator) addCiphertexts(op0, op1 *rlwe.Ciphertext, sub bool, opOut *rlwe.Ciphertext) (err error) {

	var a, b *rlwe.Ciphertext
	if a, b, err = eval.alignOperands(op0, op1); err != nil {
		return
	}

	level := a.Level()
	degree := max(a.Degree(), b.Degree())

	md := *a.MetaData
	md.KeyTag = rlwe.MergeKeyTags(a.KeyTag, b.KeyTag)

	opOut.Resize(degree, level)

	ringQ := eval.parameters.RingQ().AtLevel(level)

	for i := 0; i <= degree; i++ {
		switch {
		case i > b.Degree():
			opOut.Value[i].CopyLvl(level, a.Value[i])
		case i > a.Degree():
			if sub {
				ringQ.Neg(b.Value[i], opOut.Value[i])
			} else {
				opOut.Value[i].CopyLvl(level, b.Value[i])
			}
		case sub:
			ringQ.Sub(a.Value[i], b.Value[i], opOut.Value[i])
		default:
			ringQ.Add(a.Value[i], b.Value[i], opOut.Value[i])
		}
	}

	*opOut.MetaData = md

	return
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

// alignOperands returns views of op0 and op1 at the same level and depth.
// A degree zero operand is a plaintext: under ApproxRescale it can have more towers than the other operand.
func (eval Evaluator) alignOperands(op0, op1 *rlwe.Ciphertext) (a, b *rlwe.Ciphertext, err error) {

	if err = checkCompatibility(op0, op1); err != nil {
		return
	}

	if eval.parameters.RescalingTechnique() == ApproxRescale {

		switch {
		case op0.Level() == op1.Level():
			a, b = op0, op1
		case op1.Degree() == 0 && op1.Level() > op0.Level():
			a, b = op0, truncate(op1, op0.Level())
		case op0.Degree() == 0 && op0.Level() > op1.Level():
			a, b = truncate(op0, op1.Level()), op1
		default:
			return nil, nil, fmt.Errorf("%w: op0.Level()=%d != op1.Level()=%d", rlwe.ErrLevelMismatch, op0.Level(), op1.Level())
		}

		if a.Depth != b.Depth {
			return nil, nil, fmt.Errorf("%w: op0.Depth=%d != op1.Depth=%d", rlwe.ErrDepthMismatch, a.Depth, b.Depth)
		}

		return
	}

	return eval.adjustLevelsAndDepth(op0, op1)
}

// truncate returns a view of ct restricted to its first level+1 towers.
func truncate(ct *rlwe.Ciphertext, level int) *rlwe.Ciphertext {
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
//   - int, int64, uint64: exact multiplication, the scale and depth are not modified
//   - float64, complex128: the constant is scaled by the scaling factor of the level
//
// If op1 is a ciphertext or a plaintext, the depth of the result is the sum of the depths
// of the operands and its scale is the product of their scales.
// With [ApproxRescale], op0 and a ciphertext op1 must be at the same level.
// With [ExactRescale], depth two operands are rescaled first and the operands are brought
// to a common level, so that the result has depth two.
//
// The degree of opOut is op0.Degree()+op1.Degree(), at most two.
func (eval Evaluator) Mul(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {

	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		err = eval.tensor(op0, op1, opOut)
	case *rlwe.Plaintext:
		err = eval.tensor(op0, eval.plaintextAsCiphertext(op1), opOut)
	default:
		var c scalar
		if c, err = newScalar(op1); err == nil {
			err = eval.mulScalar(op0, c, opOut)
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
	degree := op0.Degree()
	if ct, ok := op1.(*rlwe.Ciphertext); ok {
		degree += ct.Degree()
	}
	opOut = NewCiphertext(eval.parameters, degree, op0.Level())
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

	tmp := eval.buffCt[2]
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
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.MulRelin(op0, op1, opOut)
}

func (eval Evaluator) tensor(op0, op1 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) (err error) {

	if op0.Degree()+op1.Degree() > 2 {
		return fmt.Errorf("the sum of the degrees of the operands must be at most 2")
	}

	if err = checkCompatibility(op0, op1); err != nil {
		return
	}

	var a, b *rlwe.Ciphertext

	if eval.parameters.RescalingTechnique() == ApproxRescale {
		switch {
		case op0.Level() == op1.Level():
			a, b = op0, op1
		case op1.Degree() == 0 && op1.Level() > op0.Level():
			a, b = op0, truncate(op1, op0.Level())
		default:
			return fmt.Errorf("%w: op0.Level()=%d != op1.Level()=%d", rlwe.ErrLevelMismatch, op0.Level(), op1.Level())
		}
	} else {
		if a, b, err = eval.prepareMulOperands(op0, op1); err != nil {
			return
		}
		if err = checkExactDepth(a.Level(), a.Depth+b.Depth); err != nil {
			return
		}
	}

	level := a.Level()
	ringQ := eval.parameters.RingQ().AtLevel(level)

	md := *a.MetaData
	md.Scale = a.Scale.Mul(b.Scale)
	md.Depth = a.Depth + b.Depth
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

// addScalar adds the scalar c, scaled by the scale of op0, to op0 and writes the result on opOut.
func (eval Evaluator) addScalar(op0 *rlwe.Ciphertext, c scalar, opOut *rlwe.Ciphertext) {

	level := op0.Level()
	ringQ := eval.parameters.RingQ().AtLevel(level)

	opOut.Resize(op0.Degree(), level)
	for i := range op0.Value[1:] {
		opOut.Value[i+1].CopyLvl(level, op0.Value[i+1])
	}

	re, im := c.scaled(&op0.Scale.Value)

	ringQ.AddScalarBigint(op0.Value[0], re, opOut.Value[0])

	if im.Sign() != 0 {
		p := eval.imaginaryUnitTimes(level, im)
		ringQ.Add(opOut.Value[0], p, opOut.Value[0])
	}

	if opOut != op0 {
		*opOut.MetaData = *op0.MetaData
	}
}

// imaginaryUnitTimes returns the NTT of im * X^{N/2}, which evaluates to im*i in every slot.
func (eval Evaluator) imaginaryUnitTimes(level int, im *big.Int) ring.Poly {

	ringQ := eval.parameters.RingQ().AtLevel(level)

	p := eval.buffQ[1]
	p.Resize(level)
	p.Zero()

	half := eval.parameters.N() >> 1
	tmp := new(big.Int)
	for i, s := range ringQ.SubRings[:level+1] {
		p.Coeffs[i][half] = tmp.Mod(im, bignum.NewInt(s.Modulus)).Uint64()
	}

	ringQ.NTT(p, p)

	return p
}

func (eval Evaluator) mulScalar(op0 *rlwe.Ciphertext, c scalar, opOut *rlwe.Ciphertext) (err error) {

	if c.isInt {
		level := op0.Level()
		ringQ := eval.parameters.RingQ().AtLevel(level)
		opOut.Resize(op0.Degree(), level)
		for i := range op0.Value {
			ringQ.MulScalarBigint(op0.Value[i], c.integer, opOut.Value[i])
		}
		if opOut != op0 {
			*opOut.MetaData = *op0.MetaData
		}
		return
	}

	in := op0

	if eval.parameters.RescalingTechnique() == ExactRescale {
		if op0.Depth > 1 {
			if err = eval.rescale(op0, opOut); err != nil {
				return
			}
			in = opOut
		}
		if err = checkExactDepth(in.Level(), in.Depth+1); err != nil {
			return
		}
	}

	level := in.Level()
	ringQ := eval.parameters.RingQ().AtLevel(level)

	sf := eval.parameters.ScalingFactor(level)
	re, im := c.scaled(&sf.Value)

	opOut.Resize(in.Degree(), level)

	if im.Sign() == 0 {
		for i := range in.Value {
			ringQ.MulScalarBigint(in.Value[i], re, opOut.Value[i])
		}
	} else {
		p := eval.imaginaryUnitTimes(level, im)
		ringQ.AddScalarBigint(p, re, p)
		ringQ.MForm(p, p)
		for i := range in.Value {
			ringQ.MulCoeffsMontgomery(in.Value[i], p, opOut.Value[i])
		}
	}

	md := *in.MetaData
	md.Scale = in.Scale.Mul(sf)
	md.Depth = in.Depth + 1
	*opOut.MetaData = md

	return
}

// Rescale divides op0 by the last modulus of its moduli chain, with rounding, and returns the result
// in opOut: the level decreases by one, the scale is divided by the dropped modulus and the depth
// decreases by one.
//
// With [ExactRescale], the rescaling is managed by the [Evaluator] and this method only copies op0 on opOut.
//
// The method returns an error wrapping [rlwe.ErrLevelExhausted] if op0 is at level zero.
func (eval Evaluator) Rescale(op0, opOut *rlwe.Ciphertext) (err error) {

	if eval.parameters.RescalingTechnique() == ExactRescale {
		if op0 != opOut {
			opOut.Resize(op0.Degree(), op0.Level())
			opOut.Copy(op0)
		}
		return
	}

	if err = eval.rescale(op0, opOut); err != nil {
		return fmt.Errorf("cannot Rescale: %w", err)
	}

	return
}

// RescaleNew is identical to [Evaluator.Rescale], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) RescaleNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, op0.Degree(), op0.Level())
	return opOut, eval.Rescale(op0, opOut)
}

func (eval Evaluator) rescale(op0, opOut *rlwe.Ciphertext) (err error) {

	level := op0.Level()

	if level == 0 {
		return fmt.Errorf("%w: cannot rescale a ciphertext at level 0", rlwe.ErrLevelExhausted)
	}

	ringQ := eval.parameters.RingQ().AtLevel(level)

	md := *op0.MetaData
	md.Scale = op0.Scale.Div(rlwe.NewScale(ringQ.SubRings[level].Modulus))
	md.Depth = max(op0.Depth-1, 1)

	if opOut != op0 {
		opOut.Resize(op0.Degree(), level)
	}

	for i := range op0.Value {
		ringQ.DivRoundByLastModulusNTT(op0.Value[i], eval.buffQ[0], opOut.Value[i])
	}

	opOut.Resize(op0.Degree(), level-1)

	*opOut.MetaData = md

	return
}

// DropLevel reduces the level of op0 by levels.
// With [ExactRescale], the scale of op0 is also brought to the scaling factor of its new
// level, at the cost of a multiplication by a constant and, for depth one ciphertexts, a rescaling.
func (eval Evaluator) DropLevel(op0 *rlwe.Ciphertext, levels int) (err error) {

	if levels <= 0 {
		return
	}

	if op0.Level()-levels < 0 {
		return fmt.Errorf("cannot DropLevel: %w: op0.Level()=%d < levels=%d", rlwe.ErrLevelExhausted, op0.Level(), levels)
	}

	if eval.parameters.RescalingTechnique() == ExactRescale {
		level := op0.Level() - levels
		return eval.bringDown(op0, level, op0.Depth, eval.exactScale(level, op0.Depth), op0)
	}

	op0.Resize(op0.Degree(), op0.Level()-levels)

	return
}

// DropLevelNew is identical to [Evaluator.DropLevel], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) DropLevelNew(op0 *rlwe.Ciphertext, levels int) (opOut *rlwe.Ciphertext, err error) {
	opOut = op0.CopyNew()
	return opOut, eval.DropLevel(opOut, levels)
}

// Rotate rotates the slots of op0 by k positions to the left and returns the result in opOut.
// A negative k rotates to the right. The [Evaluator] must have the [rlwe.GaloisKey] of
// [Parameters.GaloisElementForRotation](k).
func (eval Evaluator) Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.Automorphism(op0, eval.parameters.GaloisElementForRotation(k), opOut); err != nil {
		return fmt.Errorf("cannot Rotate: %w", err)
	}
	return
}

// RotateNew is identical to [Evaluator.Rotate], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) RotateNew(op0 *rlwe.Ciphertext, k int) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.Rotate(op0, k, opOut)
}

// Conjugate conjugates the slots of op0 and returns the result in opOut.
// The [Evaluator] must have the [rlwe.GaloisKey] of [Parameters.GaloisElementForComplexConjugation].
func (eval Evaluator) Conjugate(op0 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) (err error) {
	if err = eval.Automorphism(op0, eval.parameters.GaloisElementForComplexConjugation(), opOut); err != nil {
		return fmt.Errorf("cannot Conjugate: %w", err)
	}
	return
}

// ConjugateNew is identical to [Evaluator.Conjugate], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) ConjugateNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	opOut = NewCiphertext(eval.parameters, 1, op0.Level())
	return opOut, eval.Conjugate(op0, opOut)
}

// PrecomputeRotations decomposes op0 once, so that several rotations of op0
// can then be evaluated with [Evaluator.RotateHoisted] at a reduced cost.
func (eval Evaluator) PrecomputeRotations(op0 *rlwe.Ciphertext) *rlwe.HoistedDecomposition {
	return eval.DecomposeNTTNew(op0)
}

// RotateHoisted returns the rotations of op0 by each k of ks, using the decomposition
// of op0 returned by [Evaluator.PrecomputeRotations].
func (eval Evaluator) RotateHoisted(op0 *rlwe.Ciphertext, ks []int, decomp *rlwe.HoistedDecomposition) (opOut map[int]*rlwe.Ciphertext, err error) {
	opOut = make(map[int]*rlwe.Ciphertext, len(ks))
	for _, k := range ks {
		ct := NewCiphertext(eval.parameters, 1, op0.Level())
		if err = eval.AutomorphismHoisted(op0, decomp, eval.parameters.GaloisElementForRotation(k), ct); err != nil {
			return nil, fmt.Errorf("cannot RotateHoisted: %w", err)
		}
		opOut[k] = ct
	}
	return
}
