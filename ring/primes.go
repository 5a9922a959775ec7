package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// MaxModulusBits is the maximum bit-size of a modulus supported by the package.
const MaxModulusBits = 61

// IsPrime applies the Baillie-PSW test, which is exact for numbers below 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// NTTFriendlyPrimesGenerator generates primes congruent to 1 modulo NthRoot
// around 2^BitSize. Primes that have already been returned, or that are
// given as excluded, are never returned.
type NTTFriendlyPrimesGenerator struct {
	BitSize, NthRoot uint64

	nextPrime, prevPrime uint64
	checkNext, checkPrev bool
	excluded             map[uint64]bool
}

// NewNTTFriendlyPrimesGenerator instantiates a new [NTTFriendlyPrimesGenerator].
// Primes listed in exclude are skipped.
func NewNTTFriendlyPrimesGenerator(BitSize, NthRoot uint64, exclude ...uint64) *NTTFriendlyPrimesGenerator {

	start := uint64(1)<<BitSize + 1

	excluded := map[uint64]bool{}
	for _, q := range exclude {
		excluded[q] = true
	}

	return &NTTFriendlyPrimesGenerator{
		BitSize:   BitSize,
		NthRoot:   NthRoot,
		nextPrime: start,
		prevPrime: start,
		checkNext: BitSize < MaxModulusBits,
		checkPrev: true,
		excluded:  excluded,
	}
}

// NextUpstreamPrimes returns the next k primes larger than 2^BitSize.
func (g *NTTFriendlyPrimesGenerator) NextUpstreamPrimes(k int) (primes []uint64, err error) {
	primes = make([]uint64, k)
	for i := range primes {
		if primes[i], err = g.nextUpstream(); err != nil {
			return
		}
	}
	return
}

// NextDownstreamPrimes returns the next k primes smaller than 2^BitSize.
func (g *NTTFriendlyPrimesGenerator) NextDownstreamPrimes(k int) (primes []uint64, err error) {
	primes = make([]uint64, k)
	for i := range primes {
		if primes[i], err = g.nextDownstream(); err != nil {
			return
		}
	}
	return
}

// NextAlternatingPrimes returns the next k primes, alternating between primes
// above and below 2^BitSize, so that their product stays close to 2^(k*BitSize).
func (g *NTTFriendlyPrimesGenerator) NextAlternatingPrimes(k int) (primes []uint64, err error) {

	primes = make([]uint64, 0, k)

	up := true
	for len(primes) < k {

		if !g.checkNext && !g.checkPrev {
			return primes, fmt.Errorf("cannot NextAlternatingPrimes: not enough primes of %d bits for NthRoot=%d", g.BitSize, g.NthRoot)
		}

		var q uint64
		var err error
		if up && g.checkNext {
			q, err = g.nextUpstream()
		} else if g.checkPrev {
			q, err = g.nextDownstream()
		} else {
			q, err = g.nextUpstream()
		}

		up = !up

		if err != nil {
			continue
		}

		primes = append(primes, q)
	}

	return
}

func (g *NTTFriendlyPrimesGenerator) nextUpstream() (uint64, error) {
	for g.checkNext {
		if bits.Len64(g.nextPrime+g.NthRoot) > MaxModulusBits {
			g.checkNext = false
			break
		}
		g.nextPrime += g.NthRoot
		if !g.excluded[g.nextPrime] && IsPrime(g.nextPrime) {
			g.excluded[g.nextPrime] = true
			return g.nextPrime, nil
		}
	}
	return 0, fmt.Errorf("cannot generate upstream prime: exceeded the maximum bit-size of %d bits", MaxModulusBits)
}

func (g *NTTFriendlyPrimesGenerator) nextDownstream() (uint64, error) {
	for g.checkPrev {
		if g.prevPrime <= g.NthRoot+1 {
			g.checkPrev = false
			break
		}
		g.prevPrime -= g.NthRoot
		if !g.excluded[g.prevPrime] && IsPrime(g.prevPrime) {
			g.excluded[g.prevPrime] = true
			return g.prevPrime, nil
		}
	}
	return 0, fmt.Errorf("cannot generate downstream prime: no prime smaller than 2^%d left for NthRoot=%d", g.BitSize, g.NthRoot)
}
