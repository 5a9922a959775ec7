package rlwe

import (
	"errors"
)

var (
	// ErrInvalidParameters is returned when a parameter set cannot be instantiated.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrTechniqueMismatch is returned when an evaluation key is used with parameters
	// configured for a different key-switching technique.
	ErrTechniqueMismatch = errors.New("key-switching technique mismatch")

	// ErrKeyTagMismatch is returned when the operands of an operation are
	// encrypted under, or switch from, different secret keys.
	ErrKeyTagMismatch = errors.New("key tag mismatch")

	// ErrEncodingMismatch is returned when the operands of an operation use incompatible encodings.
	ErrEncodingMismatch = errors.New("encoding mismatch")

	// ErrLevelMismatch is returned when an operation requires operands at the same level.
	ErrLevelMismatch = errors.New("level mismatch")

	// ErrDepthMismatch is returned when an operation requires operands at the same depth.
	ErrDepthMismatch = errors.New("depth mismatch")

	// ErrLevelExhausted is returned when an operation needs to drop a modulus
	// from a ciphertext that has a single one left.
	ErrLevelExhausted = errors.New("level exhausted: consider increasing the multiplicative depth")
)
