package bfv

import (
	"fmt"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
)

// Evaluator is a struct that holds the necessary elements to perform the homomorphic operations between ciphertexts and/or plaintexts.
// It also holds a memory buffer used to store intermediate computations.
//
// The operations that do not depend on the encoding (negation, relinearization, rotations,
// multiplication by a scalar) are inherited from the [bgv.Evaluator]. The operations that
// need to preserve the scaling factor floor(Q/t) across levels are overridden.
type Evaluator struct {
	*bgv.Evaluator
	parameters Parameters
	tensorer   *tensorContext
	*evaluatorBuffers
	encoder *Encoder
}

type evaluatorBuffers struct {
	// buffQ: modulus switching scratch
	buffQ ring.Poly
	// buffPt: plaintexts in the NTT domain, encoded slices
	buffPt ring.Poly
	// buffCt[0-1]: operands switched to a common level
	buffCt [2]*rlwe.Ciphertext
	// buffTensor: tensored ciphertext before relinearization
	buffTensor *rlwe.Ciphertext
	// buffRQ[0-3]: operands over R u Q
	// buffRQ[4-6]: products over R u Q
	// buffRQ[7]: scratch
	buffRQ [8]ring.Poly
}

func newEvaluatorBuffers(params Parameters, tc *tensorContext) *evaluatorBuffers {
	ringQ := params.RingQ()
	buff := &evaluatorBuffers{
		buffQ:      ringQ.NewPoly(),
		buffPt:     ringQ.NewPoly(),
		buffCt:     [2]*rlwe.Ciphertext{NewCiphertext(params, 1), NewCiphertext(params, 1)},
		buffTensor: NewCiphertext(params, 2),
	}
	for i := range buff.buffRQ {
		buff.buffRQ[i] = tc.ringRQ.NewPoly()
	}
	return buff
}

// NewEvaluator creates a new [Evaluator], that can be used to do homomorphic
// operations on ciphertexts and/or plaintexts. It stores a memory buffer
// and ciphertexts that will be used for intermediate values.
// evk can be nil if no key-switching operation is needed.
//
// The method panics if the auxiliary basis used by the multiplication cannot be generated.
func NewEvaluator(parameters Parameters, evk rlwe.EvaluationKeySet) *Evaluator {

	tc, err := newTensorContext(parameters)
	if err != nil {
		panic(fmt.Errorf("cannot NewEvaluator: %w", err))
	}

	return &Evaluator{
		Evaluator:        bgv.NewEvaluator(parameters.Parameters, evk),
		parameters:       parameters,
		tensorer:         tc,
		evaluatorBuffers: newEvaluatorBuffers(parameters, tc),
		encoder:          NewEncoder(parameters),
	}
}

// GetParameters returns a pointer to the underlying [bfv.Parameters].
func (eval Evaluator) GetParameters() *Parameters {
	return &eval.parameters
}

// ShallowCopy creates a shallow copy of this [Evaluator] in which the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// Evaluators can be used concurrently.
func (eval Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		Evaluator:        eval.Evaluator.ShallowCopy(),
		parameters:       eval.parameters,
		tensorer:         eval.tensorer,
		evaluatorBuffers: newEvaluatorBuffers(eval.parameters, eval.tensorer),
		encoder:          eval.encoder.ShallowCopy(),
	}
}

// WithKey creates a shallow copy of the receiver [Evaluator] for which the new [rlwe.EvaluationKeySet] is evk
// and where the temporary buffers are shared. The receiver and the returned Evaluators cannot be used concurrently.
func (eval Evaluator) WithKey(evk rlwe.EvaluationKeySet) *Evaluator {
	return &Evaluator{
		Evaluator:        eval.Evaluator.WithKey(evk),
		parameters:       eval.parameters,
		tensorer:         eval.tensorer,
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
// The operand at the highest level is switched to the level of the other one
// by dividing it by the dropped moduli, so that its message remains scaled by floor(Q_l/t).
func (eval Evaluator) Add(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {
	return eval.evaluateAdditive(op0, op1, false, opOut)
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
	return eval.evaluateAdditive(op0, op1, true, opOut)
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

// evaluateAdditive brings op1 to a ciphertext at the level of op0, or op0 to the level
// of op1, and delegates the addition itself to the embedded [bgv.Evaluator].
func (eval Evaluator) evaluateAdditive(op0 *rlwe.Ciphertext, op1 interface{}, sub bool, opOut *rlwe.Ciphertext) (err error) {

	op := "Add"
	if sub {
		op = "Sub"
	}

	var ct *rlwe.Ciphertext

	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		ct = op1
	case *rlwe.Plaintext:
		ct = eval.plaintextAsCiphertext(op1)
	case []uint64, []int64:
		if ct, err = eval.encodeValues(op1, *op0.MetaData, op0.Level()); err != nil {
			return fmt.Errorf("cannot %s: %w", op, err)
		}
	default:
		var c *big.Int
		if c, err = newScalar(op1); err != nil {
			return fmt.Errorf("cannot %s: %w", op, err)
		}
		if sub {
			c.Neg(c)
		}
		eval.addScalar(op0, c, opOut)
		return
	}

	if err = checkCompatibility(op0, ct); err != nil {
		return fmt.Errorf("cannot %s: %w", op, err)
	}

	a, b := eval.alignLevels(op0, ct)

	if sub {
		return eval.Evaluator.Sub(a, b, opOut)
	}

	return eval.Evaluator.Add(a, b, opOut)
}

// addScalar adds floor(Q_l/t) * (c*scale mod t) to the constant term of op0.
func (eval Evaluator) addScalar(op0 *rlwe.Ciphertext, c *big.Int, opOut *rlwe.Ciphertext) {

	level := op0.Level()
	ringQ := eval.parameters.RingQ().AtLevel(level)

	opOut.Resize(op0.Degree(), level)
	for i := range op0.Value[1:] {
		opOut.Value[i+1].CopyLvl(level, op0.Value[i+1])
	}

	c.Mul(c, op0.Scale.BigInt())
	c = eval.centerModT(c)
	c.Mul(c, eval.encoder.delta[level])

	ringQ.AddScalarBigint(op0.Value[0], c, opOut.Value[0])

	if opOut != op0 {
		*opOut.MetaData = *op0.MetaData
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

// newScalar returns op as a *big.Int.
func newScalar(op interface{}) (c *big.Int, err error) {
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

// plaintextAsCiphertext returns a degree zero ciphertext sharing the polynomial
// of pt, in the NTT domain.
func (eval Evaluator) plaintextAsCiphertext(pt *rlwe.Plaintext) *rlwe.Ciphertext {

	md := *pt.MetaData
	md.KeyTag = rlwe.KeyTag{}

	value := pt.Value
	if !pt.IsNTT {
		value = eval.buffPt
		value.Resize(pt.Level())
		eval.parameters.RingQ().AtLevel(pt.Level()).NTT(pt.Value, value)
		md.IsNTT = true
	}

	return &rlwe.Ciphertext{MetaData: &md, Value: []ring.Poly{value}}
}

// encodeValues encodes values scaled by floor(Q_level/t) with the given metadata
// and returns them as a degree zero ciphertext in the NTT domain.
func (eval Evaluator) encodeValues(values interface{}, md rlwe.MetaData, level int) (ct *rlwe.Ciphertext, err error) {

	md.IsNTT = true
	md.KeyTag = rlwe.KeyTag{}

	value := eval.buffPt
	value.Resize(level)

	pt := &rlwe.Plaintext{MetaData: &md, Value: value}
	if err = eval.encoder.Encode(values, pt); err != nil {
		return
	}

	return &rlwe.Ciphertext{MetaData: &md, Value: []ring.Poly{value}}, nil
}

// alignLevels returns op0 and op1 at the same level, switching the operand at the
// highest level down on a buffer. The inputs are not modified.
func (eval Evaluator) alignLevels(op0, op1 *rlwe.Ciphertext) (a, b *rlwe.Ciphertext) {
	switch {
	case op0.Level() > op1.Level():
		return eval.switchModulus(op0, op1.Level(), eval.buffCt[0]), op1
	case op1.Level() > op0.Level():
		return op0, eval.switchModulus(op1, op0.Level(), eval.buffCt[1])
	default:
		return op0, op1
	}
}

// switchModulus divides ctIn, in the NTT domain, by its moduli above level with
// rounding, and returns the result on opOut, which can alias ctIn.
func (eval Evaluator) switchModulus(ctIn *rlwe.Ciphertext, level int, opOut *rlwe.Ciphertext) *rlwe.Ciphertext {

	ringQ := eval.parameters.RingQ()

	if opOut != ctIn {
		opOut.Resize(ctIn.Degree(), ctIn.Level())
		opOut.Copy(ctIn)
	}

	for l := ctIn.Level(); l > level; l-- {
		for i := range opOut.Value {
			ringQ.AtLevel(l).DivRoundByLastModulusNTT(opOut.Value[i], eval.buffQ, opOut.Value[i])
		}
	}

	opOut.Resize(opOut.Degree(), level)

	return opOut
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

// Mul multiplies op0 with op1 without relinearization and returns the result in opOut.
// The following types are accepted for op1:
//   - *[rlwe.Ciphertext]
//   - *[rlwe.Plaintext]
//   - int, int64, uint64, *big.Int: the scale is not modified
//   - []uint64 or []int64 of size at most N, encoded with the encoding of op0 and a scale of 1
//
// Ciphertexts and plaintexts are multiplied by extending both operands to an auxiliary basis R,
// computing their tensor product over R*Q_l, and scaling it by t/Q_l with rounding.
// The result is at the minimum level of the operands and its scale is the product of their scales.
func (eval Evaluator) Mul(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error) {

	switch op1 := op1.(type) {
	case *rlwe.Ciphertext:
		err = eval.tensor(op0, op1, opOut)
	case *rlwe.Plaintext:
		err = eval.tensor(op0, eval.plaintextAsCiphertext(op1), opOut)
	default:
		// Slices and scalars are not scaled by floor(Q/t): the product
		// is already scaled by the factor of op0.
		return eval.Evaluator.Mul(op0, op1, opOut)
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

	tmp := eval.buffTensor
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

// tensor computes round(t/Q_l * op0 x op1) and writes the result on opOut.
func (eval Evaluator) tensor(op0, op1 *rlwe.Ciphertext, opOut *rlwe.Ciphertext) (err error) {

	if op0.Degree()+op1.Degree() > 2 {
		return fmt.Errorf("the sum of the degrees of the operands must be at most 2")
	}

	if err = checkCompatibility(op0, op1); err != nil {
		return
	}

	a, b := eval.alignLevels(op0, op1)

	// The operand of degree zero, if any, is b.
	if a.Degree() == 0 {
		a, b = b, a
	}

	level := a.Level()

	md := *a.MetaData
	md.Scale = a.Scale.Mul(b.Scale)
	md.KeyTag = rlwe.MergeKeyTags(a.KeyTag, b.KeyTag)

	tc := eval.tensorer
	ringQ := eval.parameters.RingQ()
	ringRQ := tc.atLevel(level)

	a0, a1 := eval.buffRQ[0], eval.buffRQ[1]
	b0, b1 := eval.buffRQ[2], eval.buffRQ[3]
	c0, c1, c2 := eval.buffRQ[4], eval.buffRQ[5], eval.buffRQ[6]
	buff := eval.buffRQ[7]

	view := func(p ring.Poly) ring.Poly {
		return tc.view(p, level)
	}

	// The operands are extended before opOut is resized, which allows opOut to alias them.
	tc.extend(ringQ, level, a.Value[0], a0)
	if a.Degree() == 1 {
		tc.extend(ringQ, level, a.Value[1], a1)
	}

	tc.extend(ringQ, level, b.Value[0], b0)
	ringRQ.MForm(view(b0), view(b0))
	if b.Degree() == 1 {
		tc.extend(ringQ, level, b.Value[1], b1)
		ringRQ.MForm(view(b1), view(b1))
	}

	degree := a.Degree() + b.Degree()

	var c []ring.Poly
	if b.Degree() == 0 {
		c = []ring.Poly{c0, c1}[:a.Degree()+1]
		ringRQ.MulCoeffsMontgomery(view(a0), view(b0), view(c0))
		if a.Degree() == 1 {
			ringRQ.MulCoeffsMontgomery(view(a1), view(b0), view(c1))
		}
	} else {
		c = []ring.Poly{c0, c1, c2}
		ringRQ.MulCoeffsMontgomery(view(a0), view(b0), view(c0))
		ringRQ.MulCoeffsMontgomery(view(a0), view(b1), view(c1))
		ringRQ.MulCoeffsMontgomeryThenAdd(view(a1), view(b0), view(c1))
		ringRQ.MulCoeffsMontgomery(view(a1), view(b1), view(c2))
	}

	opOut.Resize(degree, level)

	t := eval.parameters.PlaintextModulus()
	for i := range c {
		tc.scaleDown(ringQ, level, t, c[i], buff, opOut.Value[i])
	}

	*opOut.MetaData = md

	return
}

// Rescale copies op0 on opOut: BFV ciphertexts are scale-invariant and are never divided by
// their last modulus. See [Evaluator.DropLevel] to reduce the size of a ciphertext.
func (eval Evaluator) Rescale(op0, opOut *rlwe.Ciphertext) (err error) {
	if op0 != opOut {
		opOut.Resize(op0.Degree(), op0.Level())
		opOut.Copy(op0)
	}
	return
}

// RescaleNew is identical to [Evaluator.Rescale], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) RescaleNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	return op0.CopyNew(), nil
}

// DropLevel switches op0 to the modulus Q_{l-levels} by dividing it by its last levels moduli
// with rounding, so that the message remains scaled by floor(Q_{l-levels}/t).
func (eval Evaluator) DropLevel(op0 *rlwe.Ciphertext, levels int) (err error) {

	if levels <= 0 {
		return
	}

	if op0.Level()-levels < 0 {
		return fmt.Errorf("cannot DropLevel: %w: op0.Level()=%d < levels=%d", rlwe.ErrLevelExhausted, op0.Level(), levels)
	}

	eval.switchModulus(op0, op0.Level()-levels, op0)

	return
}

// DropLevelNew is identical to [Evaluator.DropLevel], but returns the result in a newly created [rlwe.Ciphertext].
func (eval Evaluator) DropLevelNew(op0 *rlwe.Ciphertext, levels int) (opOut *rlwe.Ciphertext, err error) {
	opOut = op0.CopyNew()
	return opOut, eval.DropLevel(opOut, levels)
}
