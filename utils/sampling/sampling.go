// Package sampling implements secure sampling of bytes and numbers.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// RandUint64 returns a uniform random value in [0, 2^64).
func RandUint64() uint64 {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b)
}

// RandFloat64 returns a uniform random float in [min, max).
func RandFloat64(min, max float64) float64 {
	f := float64(RandUint64()>>11) / float64(uint64(1)<<53)
	return min + f*(max-min)
}

// RandComplex128 returns a random complex whose real and imaginary parts are in [min, max).
func RandComplex128(min, max float64) complex128 {
	return complex(RandFloat64(min, max), RandFloat64(min, max))
}

// Float64FromPRNG draws a uniform float in (0, 1) from prng.
func Float64FromPRNG(prng PRNG, buff []byte) float64 {
	if _, err := prng.Read(buff[:8]); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	return (float64(binary.LittleEndian.Uint64(buff)>>11) + 0.5) / float64(uint64(1)<<53)
}

// NormFloat64FromPRNG draws a standard normal sample from prng with the Box-Muller transform.
func NormFloat64FromPRNG(prng PRNG, buff []byte) float64 {
	u := Float64FromPRNG(prng, buff)
	v := Float64FromPRNG(prng, buff)
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}
