package rlwe

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// Decryptor recovers the plaintext of a [Ciphertext], error included, with a [SecretKey].
// It holds no buffer and can be used concurrently.
type Decryptor struct {
	params Parameters
	sk     *SecretKey
}

// NewDecryptor returns a [Decryptor] for the key sk, which must be a key of params.
func NewDecryptor(params ParameterProvider, sk *SecretKey) *Decryptor {

	p := params.GetRLWEParameters()

	if n := sk.Value.Q.N(); n != p.N() {
		panic(fmt.Errorf("cannot NewDecryptor: secret key of degree %d for parameters of degree %d", n, p.N()))
	}

	return &Decryptor{params: *p, sk: sk}
}

// GetRLWEParameters returns the underlying [Parameters].
func (d Decryptor) GetRLWEParameters() *Parameters {
	return &d.params
}

// DecryptNew decrypts ct on a new [Plaintext] at the level of ct.
// See [Decryptor.Decrypt].
func (d Decryptor) DecryptNew(ct *Ciphertext) (pt *Plaintext, err error) {
	pt = NewPlaintext(d.params, ct.Level())
	return pt, d.Decrypt(ct, pt)
}

// Decrypt writes on pt, in the coefficient domain, c_0 + c_1*s + ... + c_d*s^d
// at the level min(ct.Level(), pt.Level()). Ciphertexts of any degree are accepted.
// pt takes the [MetaData] of ct.
//
// The method returns an error wrapping [ErrKeyTagMismatch] if ct carries the tag of
// another key than the one of the [Decryptor].
func (d Decryptor) Decrypt(ct *Ciphertext, pt *Plaintext) (err error) {

	if err = CheckKeyTags(ct.KeyTag, d.sk.Tag); err != nil {
		return fmt.Errorf("cannot Decrypt: %w", err)
	}

	level := min(ct.Level(), pt.Level())
	pt.Value.Resize(level)

	horner(d.params.RingQ().AtLevel(level), ct.Value, d.sk.Value.Q, pt.Value)

	*pt.MetaData = *ct.MetaData
	pt.IsNTT = false

	return
}

// horner evaluates c[0] + s*(c[1] + s*(c[2] + ...)) in the NTT domain, s in the
// Montgomery domain, and writes the result on out in the coefficient domain.
func horner(r *ring.Ring, c []ring.Poly, s, out ring.Poly) {

	out.CopyLvl(r.Level(), c[len(c)-1])

	for i := len(c) - 1; i > 0; i-- {
		r.MulCoeffsMontgomery(out, s, out)
		r.Add(out, c[i-1], out)
	}

	r.INTT(out, out)
}

// ShallowCopy returns a [Decryptor] sharing the key and the parameters of the receiver.
func (d Decryptor) ShallowCopy() *Decryptor {
	return &Decryptor{params: d.params, sk: d.sk}
}

// WithKey returns a [Decryptor] for the key sk, sharing the parameters of the receiver.
func (d Decryptor) WithKey(sk *SecretKey) *Decryptor {
	return &Decryptor{params: d.params, sk: sk}
}
