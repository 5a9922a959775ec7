package ring

import (
	"fmt"
	"math/bits"

	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

// SubRing stores the precomputed constants for the modular reduction and
// the NTT of Z_q[X]/(X^N+1) for a single NTT-friendly prime q.
type SubRing struct {
	// Ring degree
	N int

	// Modulus
	Modulus uint64

	// 2^bit_length(Modulus-1) - 1
	Mask uint64

	// Fast reduction constants
	BRedConstant [2]uint64 // Barrett Reduction, floor(2^128/q)
	MRedConstant uint64    // Montgomery Reduction, q^-1 mod 2^64

	// NthRoot = 2N
	NthRoot uint64

	// Primitive NthRoot-th root of unity
	RootOfUnity uint64

	// Powers of the root of unity in bit-reversed order and Montgomery form
	RootsForward  []uint64
	RootsBackward []uint64

	// N^-1 mod q in Montgomery form
	NInv uint64
}

// NewSubRing creates a new [SubRing] for the ring Z_q[X]/(X^N+1) and
// generates its NTT constants. N must be a power of two and q a prime
// congruent to 1 mod 2N.
func NewSubRing(N int, Modulus uint64) (s *SubRing, err error) {

	if N < 8 || N&(N-1) != 0 {
		return nil, fmt.Errorf("invalid ring degree: must be a power of two greater or equal to 8 but is %d", N)
	}

	if bits.Len64(Modulus) > MaxModulusBits {
		return nil, fmt.Errorf("invalid modulus: %d has more than %d bits", Modulus, MaxModulusBits)
	}

	s = &SubRing{
		N:            N,
		Modulus:      Modulus,
		Mask:         (1 << uint64(bits.Len64(Modulus-1))) - 1,
		BRedConstant: GenBRedConstant(Modulus),
		MRedConstant: GenMRedConstant(Modulus),
		NthRoot:      uint64(2 * N),
	}

	if err = s.generateNTTConstants(); err != nil {
		return nil, err
	}

	return
}

// LogN returns log2(N).
func (s *SubRing) LogN() int {
	return bits.Len64(uint64(s.N)) - 1
}

func (s *SubRing) generateNTTConstants() (err error) {

	q := s.Modulus
	NthRoot := s.NthRoot

	if !IsPrime(q) {
		return fmt.Errorf("invalid modulus: %d is not prime", q)
	}

	if q&(NthRoot-1) != 1 {
		return fmt.Errorf("invalid modulus: %d != 1 mod %d", q, NthRoot)
	}

	if s.RootOfUnity, err = primitiveNthRoot(q, NthRoot); err != nil {
		return
	}

	logN := s.LogN()

	s.NInv = MForm(ModInverse(uint64(s.N), q), q, s.BRedConstant)

	psi := MForm(s.RootOfUnity, q, s.BRedConstant)
	psiInv := MForm(ModInverse(s.RootOfUnity, q), q, s.BRedConstant)

	s.RootsForward = make([]uint64, s.N)
	s.RootsBackward = make([]uint64, s.N)

	one := MForm(1, q, s.BRedConstant)
	s.RootsForward[0] = one
	s.RootsBackward[0] = one

	// RootsForward[bitrev(j)] = psi^j
	for j := uint64(1); j < uint64(s.N); j++ {
		prev := utils.BitReverse64(j-1, logN)
		next := utils.BitReverse64(j, logN)
		s.RootsForward[next] = MRed(s.RootsForward[prev], psi, q, s.MRedConstant)
		s.RootsBackward[next] = MRed(s.RootsBackward[prev], psiInv, q, s.MRedConstant)
	}

	return
}

// primitiveNthRoot returns a primitive NthRoot-th root of unity modulo q,
// NthRoot being a power of two dividing q-1. The candidates g = x^((q-1)/NthRoot)
// are tried for x = 2, 3, ... until g^(NthRoot/2) = -1 mod q.
func primitiveNthRoot(q, NthRoot uint64) (uint64, error) {
	exp := (q - 1) / NthRoot
	for x := uint64(2); x < q; x++ {
		g := ModExp(x, exp, q)
		if ModExp(g, NthRoot>>1, q) == q-1 {
			return g, nil
		}
	}
	return 0, fmt.Errorf("cannot find a primitive %d-th root of unity modulo %d", NthRoot, q)
}
