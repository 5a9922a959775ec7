package sampling

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/blake2b"
)

// PRNG is an interface for secure generation of random bytes.
type PRNG interface {
	io.Reader
}

// SecurePRNG is a PRNG backed by the operating system's entropy source.
type SecurePRNG struct{}

// NewPRNG returns a new [SecurePRNG].
func NewPRNG() *SecurePRNG {
	return &SecurePRNG{}
}

// Read fills p with random bytes.
func (prng *SecurePRNG) Read(p []byte) (n int, err error) {
	return rand.Read(p)
}

// KeyedPRNG deterministically expands a key into a stream of bytes using the
// blake2b XOF. Two KeyedPRNG with the same key produce the same stream, which
// is what parties use to agree on a common reference string.
// A KeyedPRNG must not be read concurrently.
type KeyedPRNG struct {
	key []byte
	xof blake2b.XOF
}

// NewKeyedPRNG creates a new [KeyedPRNG] from the given key (at most 64 bytes).
// A nil key is valid but insecure.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, err
	}
	return &KeyedPRNG{key: append([]byte{}, key...), xof: xof}, nil
}

// NewKeyedPRNGFromEntropy creates a new [KeyedPRNG] keyed with 32 random bytes.
func NewKeyedPRNGFromEntropy() (*KeyedPRNG, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return NewKeyedPRNG(key)
}

// Key returns a copy of the key of the PRNG.
func (prng *KeyedPRNG) Key() []byte {
	return append([]byte{}, prng.key...)
}

// Read fills p with the next bytes of the stream.
func (prng *KeyedPRNG) Read(p []byte) (n int, err error) {
	return prng.xof.Read(p)
}

// Reset rewinds the stream to its beginning.
func (prng *KeyedPRNG) Reset() {
	prng.xof.Reset()
}
