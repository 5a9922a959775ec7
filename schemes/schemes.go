// Package schemes contains the implemented cryptosystems and the operations that are
// common to all of them.
package schemes

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

// Encoder is a scheme-agnostic encoding interface.
type Encoder interface {
	Encode(values interface{}, pt *rlwe.Plaintext) error
	Decode(pt *rlwe.Plaintext, values interface{}) error
}

// Evaluator is a scheme-agnostic evaluator interface, implemented by the
// evaluators of the bgv, bfv and ckks packages.
type Evaluator interface {
	GetRLWEParameters() *rlwe.Parameters
	Add(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error)
	AddNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error)
	Sub(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error)
	SubNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error)
	Mul(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error)
	MulNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error)
	MulRelin(op0 *rlwe.Ciphertext, op1 interface{}, opOut *rlwe.Ciphertext) (err error)
	MulRelinNew(op0 *rlwe.Ciphertext, op1 interface{}) (opOut *rlwe.Ciphertext, err error)
	Relinearize(op0, opOut *rlwe.Ciphertext) (err error)
	Rescale(op0, opOut *rlwe.Ciphertext) (err error)
	DropLevel(op0 *rlwe.Ciphertext, levels int) (err error)
}

// AddMany returns the sum of the ciphertexts of cts in a newly created ciphertext.
// The inputs are not modified.
func AddMany(eval Evaluator, cts []*rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {

	if len(cts) == 0 {
		return nil, fmt.Errorf("cannot AddMany: no input ciphertext")
	}

	opOut = cts[0].CopyNew()

	for i, ct := range cts[1:] {
		if err = eval.Add(opOut, ct, opOut); err != nil {
			return nil, fmt.Errorf("cannot AddMany: ciphertext %d: %w", i+1, err)
		}
	}

	return
}

// MulMany returns the product of the ciphertexts of cts in a newly created ciphertext.
// The products are evaluated along a binary tree, so that the multiplicative depth
// of the result is ceil(log2(len(cts))). Each product is relinearized and rescaled,
// which requires the evaluator to hold a [rlwe.RelinearizationKey].
// The inputs are not modified.
func MulMany(eval Evaluator, cts []*rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {

	if len(cts) == 0 {
		return nil, fmt.Errorf("cannot MulMany: no input ciphertext")
	}

	level := make([]*rlwe.Ciphertext, len(cts))
	copy(level, cts)

	for depth := 0; len(level) > 1; depth++ {

		next := make([]*rlwe.Ciphertext, 0, (len(level)+1)>>1)

		for i := 0; i+1 < len(level); i += 2 {

			var ct *rlwe.Ciphertext
			if ct, err = eval.MulRelinNew(level[i], level[i+1]); err != nil {
				return nil, fmt.Errorf("cannot MulMany: depth %d: %w", depth, err)
			}

			if err = eval.Rescale(ct, ct); err != nil {
				return nil, fmt.Errorf("cannot MulMany: depth %d: %w", depth, err)
			}

			next = append(next, ct)
		}

		// An odd element is carried to the next depth.
		if len(level)&1 == 1 {
			next = append(next, level[len(level)-1])
		}

		level = next
	}

	if opOut = level[0]; len(cts) == 1 {
		opOut = opOut.CopyNew()
	}

	return
}
