package bgv

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// TestContext gathers the objects used by the tests of the packages built on [Parameters].
type TestContext struct {
	Params Parameters

	Kgen *rlwe.KeyGenerator
	Sk   *rlwe.SecretKey
	Pk   *rlwe.PublicKey

	EncSk *rlwe.Encryptor
	EncPk *rlwe.Encryptor
	Dec   *rlwe.Decryptor
}

// NewTestContext generates a key pair and the encryptors and decryptor of the tests.
// The evaluation keys for the Galois elements galEls are returned along with the relinearization key.
func NewTestContext(params Parameters, galEls ...uint64) (tc *TestContext, evk *rlwe.MemEvaluationKeySet) {

	tc = &TestContext{Params: params}

	tc.Kgen = rlwe.NewKeyGenerator(params)
	tc.Sk, tc.Pk = tc.Kgen.GenKeyPairNew()

	tc.EncSk = rlwe.NewEncryptor(params, tc.Sk)
	tc.EncPk = rlwe.NewEncryptor(params, tc.Pk)
	tc.Dec = rlwe.NewDecryptor(params, tc.Sk)

	evk = rlwe.NewMemEvaluationKeySet(tc.Kgen.GenRelinearizationKeyNew(tc.Sk), tc.Kgen.GenGaloisKeysNew(galEls, tc.Sk)...)

	return
}

func (tc TestContext) String() string {
	return fmt.Sprintf("LogN=%d/logQ=%d/logP=%d/logT=%d/Qi=%d/Pi=%d/KS=%s",
		tc.Params.LogN(),
		int(math.Round(tc.Params.LogQ())),
		int(math.Round(tc.Params.LogP())),
		int(math.Round(tc.Params.LogT())),
		tc.Params.QCount(),
		tc.Params.PCount(),
		tc.Params.KeySwitchTechnique())
}

// Decoder is implemented by the encoders of the schemes built on [Parameters].
type Decoder interface {
	Decode(pt *rlwe.Plaintext, values interface{}) (err error)
}

// VerifyTestVectors decrypts have if it is a ciphertext, decodes it and checks that the result is want.
func VerifyTestVectors(decoder Decoder, decryptor *rlwe.Decryptor, have interface{}, want []uint64, t *testing.T) {

	values := make([]uint64, len(want))

	switch have := have.(type) {
	case *rlwe.Plaintext:
		require.NoError(t, decoder.Decode(have, values))
	case *rlwe.Ciphertext:
		pt, err := decryptor.DecryptNew(have)
		require.NoError(t, err)
		require.NoError(t, decoder.Decode(pt, values))
	default:
		t.Fatalf("invalid test object type %T", have)
	}

	require.Equal(t, want, values)
}

// RandomValues returns N uniform values modulo the plaintext modulus.
func RandomValues(params Parameters) (values []uint64) {
	values = make([]uint64, params.N())
	for i := range values {
		values[i] = sampling.RandUint64() % params.PlaintextModulus()
	}
	return
}
