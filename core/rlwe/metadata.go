package rlwe

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// MetaData is a struct storing the metadata of plaintexts and ciphertexts.
type MetaData struct {
	// Scale is the scaling factor of the message.
	Scale Scale
	// Depth is the number of scaling factors the message carries,
	// used by the CKKS exact rescaling: a fresh encryption has depth 1.
	Depth int
	// IsNTT is true if the element is in the NTT domain.
	// Ciphertexts are always in the NTT domain.
	IsNTT bool
	// IsBatched is true if the message is encoded in the slots of the plaintext.
	IsBatched bool
	// LogSlots is the log2 of the number of slots of a batched message.
	LogSlots int
	// KeyTag identifies the secret key under which a ciphertext decrypts.
	KeyTag KeyTag
}

// CopyNew returns a copy of the target.
func (m MetaData) CopyNew() *MetaData {
	return &m
}

// Equal returns true if the two metadata are identical.
func (m *MetaData) Equal(other *MetaData) bool {
	return m.Scale.Equal(other.Scale) &&
		m.Depth == other.Depth &&
		m.IsNTT == other.IsNTT &&
		m.IsBatched == other.IsBatched &&
		m.LogSlots == other.LogSlots &&
		m.KeyTag == other.KeyTag
}

// Slots returns the number of slots of a batched message.
func (m MetaData) Slots() int {
	return 1 << m.LogSlots
}

// KeyTag is an identifier of a secret key: the blake3 digest of its coefficients.
// The zero KeyTag stands for an unknown key and is compatible with every tag.
type KeyTag [32]byte

// NewKeyTag returns the tag of the polynomial p.
func NewKeyTag(p ring.Poly) (tag KeyTag) {
	h := blake3.New()
	buf := make([]byte, 8)
	for _, row := range p.Coeffs {
		for _, c := range row {
			buf[0], buf[1], buf[2], buf[3] = byte(c), byte(c>>8), byte(c>>16), byte(c>>24)
			buf[4], buf[5], buf[6], buf[7] = byte(c>>32), byte(c>>40), byte(c>>48), byte(c>>56)
			// blake3.Hasher.Write never returns an error
			_, _ = h.Write(buf)
		}
	}
	copy(tag[:], h.Sum(nil))
	return
}

// IsZero returns true if the tag is unknown.
func (t KeyTag) IsZero() bool {
	return t == KeyTag{}
}

// String returns the first bytes of the tag in hexadecimal.
func (t KeyTag) String() string {
	return hex.EncodeToString(t[:8])
}

// MarshalJSON encodes the tag as an hexadecimal string.
func (t KeyTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(t[:]))
}

// UnmarshalJSON decodes a tag from an hexadecimal string.
func (t *KeyTag) UnmarshalJSON(p []byte) (err error) {
	var s string
	if err = json.Unmarshal(p, &s); err != nil {
		return
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return
	}
	if len(b) != len(t) {
		return fmt.Errorf("invalid key tag: must be %d bytes but is %d", len(t), len(b))
	}
	copy(t[:], b)
	return
}

// CheckKeyTags returns an error wrapping [ErrKeyTagMismatch] if
// the two tags are known and different.
func CheckKeyTags(t0, t1 KeyTag) error {
	if !t0.IsZero() && !t1.IsZero() && t0 != t1 {
		return fmt.Errorf("%w: %s != %s", ErrKeyTagMismatch, t0, t1)
	}
	return nil
}

// MergeKeyTags returns the known tag among t0 and t1, t0 if both are known.
func MergeKeyTags(t0, t1 KeyTag) KeyTag {
	if t0.IsZero() {
		return t1
	}
	return t0
}
