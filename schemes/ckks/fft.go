package ckks

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// SpecialIFFT maps, in place, the n slot values of a CKKS message to the n complex
// coefficients of its polynomial in the sub-ring Z[Y]/(Y^n + i) evaluated at the
// primitive M-th roots of unity ordered by rotGroup.
func SpecialIFFT(values []complex128, n, M int, rotGroup []int, roots []complex128) {

	if len(values) < n || len(rotGroup) < n || len(roots) < M+1 {
		panic(fmt.Sprintf("invalid call of SpecialIFFT: len(values)=%d or len(rotGroup)=%d < n=%d or len(roots)=%d < M+1=%d", len(values), len(rotGroup), n, len(roots), M+1))
	}

	logn := bits.Len64(uint64(n)) - 1
	logM := bits.Len64(uint64(M)) - 1

	for logSize := logn; logSize > 0; logSize-- {
		size := 1 << logSize
		half := size >> 1
		quad := size << 2
		shift := logM - 2 - logSize
		mask := quad - 1
		for i := 0; i < n; i += size {
			for j := 0; j < half; j++ {
				u, v := values[i+j], values[i+j+half]
				values[i+j] = u + v
				values[i+j+half] = (u - v) * roots[(quad-(rotGroup[j]&mask))<<shift]
			}
		}
	}

	nInv := complex(1/float64(n), 0)
	for i := range values[:n] {
		values[i] *= nInv
	}

	utils.BitReverseInPlaceSlice(values, n)
}

// SpecialFFT is the inverse of [SpecialIFFT]: it evaluates, in place, the polynomial
// given by its n complex coefficients at the roots of unity ordered by rotGroup.
func SpecialFFT(values []complex128, n, M int, rotGroup []int, roots []complex128) {

	if len(values) < n || len(rotGroup) < n || len(roots) < M+1 {
		panic(fmt.Sprintf("invalid call of SpecialFFT: len(values)=%d or len(rotGroup)=%d < n=%d or len(roots)=%d < M+1=%d", len(values), len(rotGroup), n, len(roots), M+1))
	}

	utils.BitReverseInPlaceSlice(values, n)

	logn := bits.Len64(uint64(n)) - 1
	logM := bits.Len64(uint64(M)) - 1

	for logSize := 1; logSize <= logn; logSize++ {
		size := 1 << logSize
		half := size >> 1
		quad := size << 2
		shift := logM - 2 - logSize
		mask := quad - 1
		for i := 0; i < n; i += size {
			for j := 0; j < half; j++ {
				u := values[i+j]
				v := values[i+j+half] * roots[(rotGroup[j]&mask)<<shift]
				values[i+j], values[i+j+half] = u+v, u-v
			}
		}
	}
}

// GetRootsComplex128 returns the M+1 powers e^{2*pi*i*j/M}, 0 <= j <= M, of the
// primitive M-th root of unity. Only the first quadrant is computed with
// trigonometric functions; the others are obtained by symmetry.
func GetRootsComplex128(M int) (roots []complex128) {

	roots = make([]complex128, M+1)

	quarter := M >> 2

	angle := 2 * math.Pi / float64(M)

	for i := 0; i <= quarter; i++ {
		roots[i] = complex(math.Cos(angle*float64(i)), math.Sin(angle*float64(i)))
	}

	for i := 1; i <= quarter; i++ {
		roots[quarter+i] = complex(-real(roots[quarter-i]), imag(roots[quarter-i]))
		roots[2*quarter+i] = -roots[i]
		roots[3*quarter+i] = complex(real(roots[quarter-i]), -imag(roots[quarter-i]))
	}

	roots[M] = roots[0]

	return
}

// rotationGroup returns the powers 5^j mod M for 0 <= j < M/4.
func rotationGroup(M int) (rotGroup []int) {
	rotGroup = make([]int, M>>2)
	pow := 1
	for j := range rotGroup {
		rotGroup[j] = pow
		pow = (pow * 5) & (M - 1)
	}
	return
}
