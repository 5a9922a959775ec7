// Package bignum implements arbitrary precision helpers on top of math/big.
package bignum

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// DefaultPrecision is the precision, in bits, of the floats created by this package
// when no other precision is specified.
const DefaultPrecision = uint(128)

// NewFloat creates a new big.Float with prec bits of precision.
// Valid types for x are int, int64, uint, uint64, float64, *big.Int and *big.Float.
func NewFloat(x interface{}, prec uint) (y *big.Float) {

	y = new(big.Float).SetPrec(prec)

	switch x := x.(type) {
	case nil:
	case int:
		y.SetInt64(int64(x))
	case int64:
		y.SetInt64(x)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case float64:
		y.SetFloat64(x)
	case *big.Int:
		y.SetInt(x)
	case *big.Float:
		y.Set(x)
	default:
		panic(fmt.Errorf("invalid x.(type): must be int, int64, uint, uint64, float64, *big.Int or *big.Float but is %T", x))
	}

	return
}

// RoundToInt returns round(x) as a *big.Int, rounding half away from zero.
func RoundToInt(x *big.Float) (r *big.Int) {
	half := new(big.Float).SetFloat64(0.5)
	tmp := new(big.Float).SetPrec(x.Prec()).Set(x)
	if tmp.Sign() >= 0 {
		tmp.Add(tmp, half)
	} else {
		tmp.Sub(tmp, half)
	}
	r, _ = tmp.Int(nil)
	return
}

// Log returns ln(x) for x > 0.
func Log(x *big.Float) *big.Float {
	return bigfloat.Log(x)
}

// Log2 returns log2(x) for x > 0.
func Log2(x *big.Float) *big.Float {
	ln2 := bigfloat.Log(NewFloat(2, x.Prec()))
	return new(big.Float).Quo(bigfloat.Log(x), ln2)
}

// Pow returns x^y for x > 0.
func Pow(x, y *big.Float) *big.Float {
	return bigfloat.Pow(x, y)
}

// Log2Int returns log2(x) as a float64 for a positive *big.Int.
// The result is exact to float64 precision even when x does not fit in a float64.
func Log2Int(x *big.Int) float64 {
	if x.Sign() <= 0 {
		return math.Inf(-1)
	}
	f, _ := Log2(NewFloat(x, DefaultPrecision)).Float64()
	return f
}
