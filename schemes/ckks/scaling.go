package ckks

import (
	"fmt"
	"math/big"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// exactScale returns the scale of a ciphertext of the given level and depth under ExactRescale.
func (eval Evaluator) exactScale(level, depth int) rlwe.Scale {
	sf := eval.parameters.ScalingFactor(level)
	if depth > 1 {
		return sf.Mul(sf)
	}
	return sf
}

// adjustLevelsAndDepth brings the operand with the most towers to the level, depth and
// scale of the other one, or, at equal levels, the depth one operand to depth two.
// The inputs are not modified.
func (eval Evaluator) adjustLevelsAndDepth(op0, op1 *rlwe.Ciphertext) (a, b *rlwe.Ciphertext, err error) {

	a, b = op0, op1

	switch {
	case op0.Level() > op1.Level():
		a = eval.buffCt[0]
		err = eval.bringDown(op0, op1.Level(), op1.Depth, op1.Scale, a)
	case op1.Level() > op0.Level():
		b = eval.buffCt[1]
		err = eval.bringDown(op1, op0.Level(), op0.Depth, op0.Scale, b)
	case op0.Depth < op1.Depth:
		a = eval.buffCt[0]
		eval.raiseDepth(op0, op1.Scale, a)
	case op1.Depth < op0.Depth:
		b = eval.buffCt[1]
		eval.raiseDepth(op1, op0.Scale, b)
	}

	return
}

// checkExactDepth returns an error if a ciphertext of the given depth cannot live at the given
// level under ExactRescale: a depth two ciphertext must keep a tower for its pending rescale.
func checkExactDepth(level, depth int) error {
	if depth > 1 && level == 0 {
		return fmt.Errorf("%w: a depth %d ciphertext at level 0 has no tower left to be rescaled", rlwe.ErrLevelExhausted, depth)
	}
	return nil
}

// prepareMulOperands rescales the depth two operands and brings the operand with
// the most towers to the level of the other one. The inputs are not modified.
func (eval Evaluator) prepareMulOperands(op0, op1 *rlwe.Ciphertext) (a, b *rlwe.Ciphertext, err error) {

	a, b = op0, op1

	if a.Depth > 1 {
		if err = eval.rescale(a, eval.buffCt[0]); err != nil {
			return
		}
		a = eval.buffCt[0]
	}

	if b.Depth > 1 {
		if err = eval.rescale(b, eval.buffCt[1]); err != nil {
			return
		}
		b = eval.buffCt[1]
	}

	switch {
	case a.Level() > b.Level():
		err = eval.bringDown(a, b.Level(), 1, b.Scale, eval.buffCt[0])
		a = eval.buffCt[0]
	case b.Level() > a.Level():
		err = eval.bringDown(b, a.Level(), 1, a.Scale, eval.buffCt[1])
		b = eval.buffCt[1]
	}

	return
}

// bringDown writes on opOut the ciphertext op0, brought from its level to the level
// target < op0.Level() with the given depth and scale:
//   - a depth two op0 is first rescaled;
//   - for a depth one target, op0 is multiplied by round(scale*q_{target+1}/op0.Scale),
//     dropped to the level target+1 and rescaled;
//   - for a depth two target, op0 is multiplied by round(scale/op0.Scale) and dropped to the level target.
func (eval Evaluator) bringDown(op0 *rlwe.Ciphertext, target, depth int, scale rlwe.Scale, opOut *rlwe.Ciphertext) (err error) {

	if op0 != opOut {
		opOut.Resize(op0.Degree(), op0.Level())
		opOut.Copy(op0)
	}

	if opOut.Depth > 1 {
		if err = eval.rescale(opOut, opOut); err != nil {
			return
		}
	}

	if opOut.Level() < target {
		return fmt.Errorf("%w: cannot bring a ciphertext from level %d to level %d", rlwe.ErrLevelExhausted, op0.Level(), target)
	}

	if err = checkExactDepth(target, depth); err != nil {
		return
	}

	switch {
	case opOut.Level() > target && depth == 1:

		qNext := rlwe.NewScale(eval.parameters.Q()[target+1])

		eval.mulByRoundedRatio(opOut, scale.Mul(qNext), opOut.Scale)
		opOut.Resize(opOut.Degree(), target+1)
		opOut.Scale = scale.Mul(qNext)
		opOut.Depth = 2

		if err = eval.rescale(opOut, opOut); err != nil {
			return
		}

	case depth > 1 && (opOut.Level() > target || opOut.Depth == 1):
		eval.mulByRoundedRatio(opOut, scale, opOut.Scale)
		opOut.Resize(opOut.Degree(), target)
	}

	opOut.Depth = depth
	opOut.Scale = scale

	return
}

// raiseDepth writes on opOut the depth one ciphertext op0 multiplied by round(scale/op0.Scale),
// which has depth two and the given scale.
func (eval Evaluator) raiseDepth(op0 *rlwe.Ciphertext, scale rlwe.Scale, opOut *rlwe.Ciphertext) {
	opOut.Resize(op0.Degree(), op0.Level())
	opOut.Copy(op0)
	eval.mulByRoundedRatio(opOut, scale, op0.Scale)
	opOut.Depth = 2
	opOut.Scale = scale
}

// mulByRoundedRatio multiplies ct in place by round(num/den).
func (eval Evaluator) mulByRoundedRatio(ct *rlwe.Ciphertext, num, den rlwe.Scale) {
	k := new(big.Float).SetPrec(rlwe.ScalePrecision).Quo(&num.Value, &den.Value)
	ringQ := eval.parameters.RingQ().AtLevel(ct.Level())
	kInt := bignum.RoundToInt(k)
	for i := range ct.Value {
		ringQ.MulScalarBigint(ct.Value[i], kInt, ct.Value[i])
	}
}

// scalar is a constant operand: either an exact integer or a complex number
// that is scaled before being applied.
type scalar struct {
	isInt   bool
	integer *big.Int
	value   complex128
}

func newScalar(v interface{}) (c scalar, err error) {
	switch v := v.(type) {
	case int:
		return scalar{isInt: true, integer: big.NewInt(int64(v))}, nil
	case int64:
		return scalar{isInt: true, integer: big.NewInt(v)}, nil
	case uint64:
		return scalar{isInt: true, integer: new(big.Int).SetUint64(v)}, nil
	case float64:
		return scalar{value: complex(v, 0)}, nil
	case complex128:
		return scalar{value: v}, nil
	default:
		return c, fmt.Errorf("invalid operand type %T: must be *rlwe.Ciphertext, *rlwe.Plaintext, int, int64, uint64, float64 or complex128", v)
	}
}

func (c scalar) neg() scalar {
	if c.isInt {
		return scalar{isInt: true, integer: new(big.Int).Neg(c.integer)}
	}
	return scalar{value: -c.value}
}

// scaled returns round(c * scale) as its real and imaginary parts.
func (c scalar) scaled(scale *big.Float) (re, im *big.Int) {

	if c.isInt {
		f := new(big.Float).SetPrec(rlwe.ScalePrecision).SetInt(c.integer)
		return bignum.RoundToInt(f.Mul(f, scale)), new(big.Int)
	}

	f := new(big.Float).SetPrec(rlwe.ScalePrecision)

	f.SetFloat64(real(c.value))
	re = bignum.RoundToInt(f.Mul(f, scale))

	f.SetFloat64(imag(c.value))
	im = bignum.RoundToInt(f.Mul(f, scale))

	return
}
