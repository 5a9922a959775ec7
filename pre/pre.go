// Package pre implements proxy re-encryption over the RLWE-based schemes.
//
// The owner of a secret key s generates, from s and the public key of a recipient,
// a re-encryption key that a proxy can use to transform any ciphertext decrypting
// under s into a ciphertext decrypting under the secret key of the recipient.
// The proxy learns nothing about the message or the keys, and the recipient's
// secret key is never needed.
//
// Re-encryption is a key-switching operation: it works with the ciphertexts of the
// bgv, bfv and ckks packages, for all the key-switching techniques of the parameters.
package pre

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
)

// ReKeyGenerator generates re-encryption keys.
type ReKeyGenerator struct {
	*rlwe.KeyGenerator
}

// NewReKeyGenerator creates a new [ReKeyGenerator] from the given parameters.
func NewReKeyGenerator(params rlwe.ParameterProvider) *ReKeyGenerator {
	return &ReKeyGenerator{KeyGenerator: rlwe.NewKeyGenerator(params)}
}

// ReKeyGenNew generates a re-encryption key from skOld to the secret key of pkNew.
func (rkg ReKeyGenerator) ReKeyGenNew(skOld *rlwe.SecretKey, pkNew *rlwe.PublicKey) (rk *rlwe.EvaluationKey) {
	return rkg.GenEvaluationKeyForPublicKeyNew(skOld, pkNew)
}

// ReEncryptor re-encrypts ciphertexts with re-encryption keys. It holds
// a memory buffer and is not safe for concurrent use, see [ReEncryptor.ShallowCopy].
type ReEncryptor struct {
	params rlwe.Parameters
	*rlwe.Evaluator
	enc  *rlwe.Encryptor
	buff *rlwe.Ciphertext
}

// NewReEncryptor creates a new [ReEncryptor] from the given parameters.
func NewReEncryptor(params rlwe.ParameterProvider) *ReEncryptor {
	p := *params.GetRLWEParameters()
	return &ReEncryptor{
		params:    p,
		Evaluator: rlwe.NewEvaluator(p, nil),
		enc:       rlwe.NewEncryptor(p, nil),
		buff:      rlwe.NewCiphertext(p, 1, p.MaxLevel()),
	}
}

// ShallowCopy creates a shallow copy of this [ReEncryptor] in which the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated.
func (re ReEncryptor) ShallowCopy() *ReEncryptor {
	return &ReEncryptor{
		params:    re.params,
		Evaluator: re.Evaluator.ShallowCopy(),
		enc:       re.enc.ShallowCopy(),
		buff:      rlwe.NewCiphertext(re.params, 1, re.params.MaxLevel()),
	}
}

// ReEncrypt re-encrypts ctIn, which decrypts under the source key of rk, into opOut,
// which decrypts under the target key of rk. The metadata of ctIn are kept, except for
// the key tag of opOut, which is the one of the target key.
//
// The method returns an error wrapping [rlwe.ErrKeyTagMismatch] if ctIn was not
// encrypted under the source key of rk.
func (re ReEncryptor) ReEncrypt(ctIn *rlwe.Ciphertext, rk *rlwe.EvaluationKey, opOut *rlwe.Ciphertext) (err error) {
	if err = re.ApplyEvaluationKey(ctIn, rk, opOut); err != nil {
		return fmt.Errorf("cannot ReEncrypt: %w", err)
	}
	return
}

// ReEncryptNew is identical to [ReEncryptor.ReEncrypt], but returns the result in a newly created [rlwe.Ciphertext].
func (re ReEncryptor) ReEncryptNew(ctIn *rlwe.Ciphertext, rk *rlwe.EvaluationKey) (opOut *rlwe.Ciphertext, err error) {
	opOut = rlwe.NewCiphertext(re.params, 1, ctIn.Level())
	return opOut, re.ReEncrypt(ctIn, rk, opOut)
}

// ReEncryptRandomized re-encrypts ctIn like [ReEncryptor.ReEncrypt] and adds a fresh encryption
// of zero under pkNew, the public key of the target of rk. The distribution of opOut is then
// independent of ctIn, at the cost of the noise of a fresh encryption.
func (re ReEncryptor) ReEncryptRandomized(ctIn *rlwe.Ciphertext, rk *rlwe.EvaluationKey, pkNew *rlwe.PublicKey, opOut *rlwe.Ciphertext) (err error) {

	if err = rlwe.CheckKeyTags(rk.TargetTag, pkNew.Tag); err != nil {
		return fmt.Errorf("cannot ReEncryptRandomized: pkNew is not the target of rk: %w", err)
	}

	if err = re.ReEncrypt(ctIn, rk, opOut); err != nil {
		return fmt.Errorf("cannot ReEncryptRandomized: %w", err)
	}

	level := opOut.Level()

	zero := re.buff
	zero.Resize(1, level)
	if err = re.enc.WithKey(pkNew).EncryptZero(zero); err != nil {
		return fmt.Errorf("cannot ReEncryptRandomized: %w", err)
	}

	ringQ := re.params.RingQ().AtLevel(level)
	for i := range opOut.Value {
		ringQ.Add(opOut.Value[i], zero.Value[i], opOut.Value[i])
	}

	return
}
