// Package bgv implements a RNS-accelerated version of the Brakerski-Gentry-Vaikuntanathan fully
// homomorphic encryption scheme. The message is encoded in the least significant bits of the
// plaintext and the errors of the encryptions and keys are multiples of the plaintext modulus,
// so that the modulus switching (rescaling) preserves the message modulo t up to a known factor,
// tracked by the scale of the ciphertexts.
package bgv

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

// NewPlaintext allocates a new [rlwe.Plaintext] at the given level.
// The plaintext is batched if the parameters allow slot packing and its scale is the default scale.
func NewPlaintext(params Parameters, level ...int) (pt *rlwe.Plaintext) {
	pt = rlwe.NewPlaintext(params, level...)
	pt.IsBatched = params.BatchingEnabled()
	pt.LogSlots = params.LogMaxSlots()
	return
}

// NewCiphertext allocates a new [rlwe.Ciphertext] of the given degree and level, with the
// default scale, batched if the parameters allow slot packing.
func NewCiphertext(params Parameters, degree int, level ...int) (ct *rlwe.Ciphertext) {
	ct = rlwe.NewCiphertext(params, degree, level...)
	ct.IsBatched = params.BatchingEnabled()
	ct.LogSlots = params.LogMaxSlots()
	return
}

// NewEncryptor instantiates a new [rlwe.Encryptor] from a *[rlwe.SecretKey] or a *[rlwe.PublicKey].
func NewEncryptor(params Parameters, key rlwe.EncryptionKey) *rlwe.Encryptor {
	return rlwe.NewEncryptor(params, key)
}

// NewDecryptor instantiates a new [rlwe.Decryptor].
func NewDecryptor(params Parameters, key *rlwe.SecretKey) *rlwe.Decryptor {
	return rlwe.NewDecryptor(params, key)
}

// NewKeyGenerator instantiates a new [rlwe.KeyGenerator].
func NewKeyGenerator(params Parameters) *rlwe.KeyGenerator {
	return rlwe.NewKeyGenerator(params)
}
