// Package bfv provides an RNS-accelerated implementation of the Fan-Vercauteren version of Brakerski's (BFV) scale-invariant homomorphic encryption scheme.
// The BFV scheme enables SIMD modular arithmetic over encrypted vectors or integers.
//
// The message is encoded in the most significant bits of the plaintext, scaled by floor(Q/t), and
// the ciphertext multiplication extends the operands to an auxiliary RNS basis, so that the tensor
// product can be scaled by t/Q without leaving the RNS representation.
package bfv

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
)

// NewPlaintext allocates a new [rlwe.Plaintext] from the BFV parameters, at the
// specified level. If the level argument is not provided, the plaintext is
// initialized at level params.MaxLevelQ().
//
// The plaintext is initialized with its metadata so that it can be passed to a
// [Encoder]. Before doing so, the user can update the MetaData field to set
// the encoding (IsBatched) or the domain (IsNTT).
func NewPlaintext(params Parameters, level ...int) (pt *rlwe.Plaintext) {
	return bgv.NewPlaintext(params.Parameters, level...)
}

// NewCiphertext allocates a new [rlwe.Ciphertext] from the BFV parameters,
// at the specified level and ciphertext degree. If the level argument is not
// provided, the ciphertext is initialized at level params.MaxLevelQ().
func NewCiphertext(params Parameters, degree int, level ...int) (ct *rlwe.Ciphertext) {
	return bgv.NewCiphertext(params.Parameters, degree, level...)
}

// NewEncryptor instantiates a new [rlwe.Encryptor] from the given BFV parameters and
// encryption key. This key can be either a *[rlwe.SecretKey] or a *[rlwe.PublicKey].
func NewEncryptor(params Parameters, key rlwe.EncryptionKey) *rlwe.Encryptor {
	return rlwe.NewEncryptor(params, key)
}

// NewDecryptor instantiates a new [rlwe.Decryptor] from the given BFV parameters and
// secret decryption key.
func NewDecryptor(params Parameters, key *rlwe.SecretKey) *rlwe.Decryptor {
	return rlwe.NewDecryptor(params, key)
}

// NewKeyGenerator instantiates a new [rlwe.KeyGenerator] from the given
// BFV parameters.
func NewKeyGenerator(params Parameters) *rlwe.KeyGenerator {
	return rlwe.NewKeyGenerator(params)
}
