package utils

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SortedKeys returns the keys of m in increasing order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// RotateSlice returns a copy of s rotated by k positions to the left.
// Negative values of k rotate to the right.
func RotateSlice[V any](s []V, k int) (r []V) {
	n := len(s)
	r = make([]V, n)
	if n == 0 {
		return
	}
	k %= n
	if k < 0 {
		k += n
	}
	copy(r, s[k:])
	copy(r[n-k:], s[:k])
	return
}

// RotateSlots returns a copy of s where both halves of s
// are rotated independently by k positions to the left.
func RotateSlots[V any](s []V, k int) (r []V) {
	half := len(s) >> 1
	return append(RotateSlice(s[:half], k), RotateSlice(s[half:], k)...)
}

// BitReverseInPlaceSlice applies the bit-reversal permutation on the first N
// elements of slice. N must be a power of two.
func BitReverseInPlaceSlice[V any](slice []V, N int) {
	for i, j := 1, 0; i < N; i++ {
		bit := N >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			slice[i], slice[j] = slice[j], slice[i]
		}
	}
}
