// Package utils implements various helper functions.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Min returns the minimum of the two inputs.
func Min[V constraints.Ordered](a, b V) V {
	if a <= b {
		return a
	}
	return b
}

// Max returns the maximum of the two inputs.
func Max[V constraints.Ordered](a, b V) V {
	if a >= b {
		return a
	}
	return b
}

// MaxSlice returns the maximum value of a non-empty slice.
func MaxSlice[V constraints.Ordered](slice []V) (max V) {
	max = slice[0]
	for _, v := range slice[1:] {
		if v > max {
			max = v
		}
	}
	return
}

// BitReverse64 returns the bit-reverse value of the input value, within a context of 2^bitLen.
func BitReverse64(index uint64, bitLen int) uint64 {
	return bits.Reverse64(index) >> (64 - bitLen)
}

// AllDistinct returns true if all elements in s are distinct, and false otherwise.
func AllDistinct[V comparable](s []V) bool {
	m := make(map[V]struct{}, len(s))
	for _, si := range s {
		if _, exists := m[si]; exists {
			return false
		}
		m[si] = struct{}{}
	}
	return true
}

// IsInSlice returns true if x is in slice.
func IsInSlice[V comparable](x V, slice []V) bool {
	for i := range slice {
		if slice[i] == x {
			return true
		}
	}
	return false
}

// GCD computes the greatest common divisor of a and b.
func GCD[V constraints.Integer](a, b V) V {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Abs returns the absolute value of x.
func Abs[V constraints.Signed | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}
