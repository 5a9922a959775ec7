package bignum

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// NewInt creates a new *big.Int from x.
// Valid types for x are int, int64, uint, uint64 and *big.Int.
func NewInt(x interface{}) (y *big.Int) {

	y = new(big.Int)

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
	case *big.Int:
		y.Set(x)
	default:
		panic(fmt.Errorf("invalid x.(type): must be int, int64, uint, uint64 or *big.Int but is %T", x))
	}

	return
}

// RandInt returns a uniform random value in [0, max) read from prng.
// If prng is nil, the operating system entropy source is used.
func RandInt(prng io.Reader, max *big.Int) (n *big.Int) {
	if prng == nil {
		prng = rand.Reader
	}
	var err error
	if n, err = rand.Int(prng, max); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return
}

// DivRound sets z to round(a/b), rounding half away from zero, and returns z.
func DivRound(a, b, z *big.Int) *big.Int {
	num := new(big.Int).Set(a)
	half := new(big.Int).Rsh(b, 1)
	if a.Sign()*b.Sign() >= 0 {
		num.Add(num, half)
	} else {
		num.Sub(num, half)
	}
	return z.Quo(num, b)
}
