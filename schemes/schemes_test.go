package schemes

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bfv"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/ckks"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

var (
	_ Evaluator = (*bgv.Evaluator)(nil)
	_ Evaluator = (*bfv.Evaluator)(nil)
	_ Evaluator = (*ckks.Evaluator)(nil)

	_ Encoder = (*bgv.Encoder)(nil)
	_ Encoder = (*bfv.Encoder)(nil)
	_ Encoder = (*ckks.Encoder)(nil)
)

var testIntegerLiteral = bgv.ParametersLiteral{
	LogN:               10,
	LogQ:               []int{55, 45, 45},
	LogP:               []int{61},
	KeySwitchTechnique: rlwe.HYBRID,
	PlaintextModulus:   0x10001,
}

// integerScheme gathers the objects needed to run a circuit with BGV or BFV.
type integerScheme struct {
	name string
	t    uint64
	ecd  Encoder
	eval Evaluator
	enc  *rlwe.Encryptor
	dec  *rlwe.Decryptor
	pt   func() *rlwe.Plaintext
}

func newIntegerSchemes(t *testing.T) (schemes []integerScheme) {

	pBGV, err := bgv.NewParametersFromLiteral(testIntegerLiteral)
	require.NoError(t, err)

	pBFV, err := bfv.NewParametersFromLiteral(bfv.ParametersLiteral(testIntegerLiteral))
	require.NoError(t, err)

	for _, params := range []bgv.Parameters{pBGV, pBFV.Parameters} {

		kgen := rlwe.NewKeyGenerator(params)
		sk := kgen.GenSecretKeyNew()
		evk := rlwe.NewMemEvaluationKeySet(kgen.GenRelinearizationKeyNew(sk))

		s := integerScheme{
			t:   params.PlaintextModulus(),
			enc: rlwe.NewEncryptor(params, sk),
			dec: rlwe.NewDecryptor(params, sk),
		}

		if params.ErrorScale() == 1 {
			s.name = "BFV"
			s.ecd = bfv.NewEncoder(pBFV)
			s.eval = bfv.NewEvaluator(pBFV, evk)
			s.pt = func() *rlwe.Plaintext { return bfv.NewPlaintext(pBFV) }
		} else {
			s.name = "BGV"
			s.ecd = bgv.NewEncoder(pBGV)
			s.eval = bgv.NewEvaluator(pBGV, evk)
			s.pt = func() *rlwe.Plaintext { return bgv.NewPlaintext(pBGV) }
		}

		schemes = append(schemes, s)
	}

	return
}

func (s integerScheme) encrypt(n int, t *testing.T) (values [][]uint64, cts []*rlwe.Ciphertext) {
	values = make([][]uint64, n)
	cts = make([]*rlwe.Ciphertext, n)
	for i := range values {
		values[i] = make([]uint64, 16)
		for j := range values[i] {
			values[i][j] = sampling.RandUint64() % s.t
		}
		pt := s.pt()
		require.NoError(t, s.ecd.Encode(values[i], pt))
		var err error
		cts[i], err = s.enc.EncryptNew(pt)
		require.NoError(t, err)
	}
	return
}

func (s integerScheme) decrypt(ct *rlwe.Ciphertext, t *testing.T) (values []uint64) {
	values = make([]uint64, 16)
	pt, err := s.dec.DecryptNew(ct)
	require.NoError(t, err)
	require.NoError(t, s.ecd.Decode(pt, values))
	return
}

func TestAddMany(t *testing.T) {

	for _, s := range newIntegerSchemes(t) {

		t.Run(fmt.Sprintf("AddMany/%s", s.name), func(t *testing.T) {

			values, cts := s.encrypt(5, t)

			want := make([]uint64, 16)
			for i := range values {
				for j := range want {
					want[j] = (want[j] + values[i][j]) % s.t
				}
			}

			ct, err := AddMany(s.eval, cts)
			require.NoError(t, err)
			require.Equal(t, want, s.decrypt(ct, t))

			// The inputs are not modified.
			require.Equal(t, values[0], s.decrypt(cts[0], t))
		})
	}

	t.Run("AddMany/Empty", func(t *testing.T) {
		_, err := AddMany(nil, nil)
		require.Error(t, err)
	})
}

func TestMulMany(t *testing.T) {

	for _, s := range newIntegerSchemes(t) {

		for _, n := range []int{1, 3, 4} {

			t.Run(fmt.Sprintf("MulMany/%s/n=%d", s.name, n), func(t *testing.T) {

				values, cts := s.encrypt(n, t)

				T := new(big.Int).SetUint64(s.t)
				want := make([]uint64, 16)
				for j := range want {
					acc := big.NewInt(1)
					for i := range values {
						acc.Mul(acc, new(big.Int).SetUint64(values[i][j]))
						acc.Mod(acc, T)
					}
					want[j] = acc.Uint64()
				}

				ct, err := MulMany(s.eval, cts)
				require.NoError(t, err)
				require.Equal(t, 1, ct.Degree())
				require.Equal(t, want, s.decrypt(ct, t))
			})
		}
	}

	t.Run("MulMany/Empty", func(t *testing.T) {
		_, err := MulMany(nil, nil)
		require.Error(t, err)
	})
}

func TestMulManyCKKS(t *testing.T) {

	for _, rs := range []ckks.RescalingTechnique{ckks.ApproxRescale, ckks.ExactRescale} {

		params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
			LogN:               10,
			LogQ:               []int{55, 40, 40, 40},
			LogP:               []int{61},
			KeySwitchTechnique: rlwe.HYBRID,
			RescalingTechnique: rs,
			LogDefaultScale:    40,
		})
		require.NoError(t, err)

		t.Run(fmt.Sprintf("MulMany/CKKS/%s", rs), func(t *testing.T) {

			kgen := ckks.NewKeyGenerator(params)
			sk := kgen.GenSecretKeyNew()
			ecd := ckks.NewEncoder(params)
			enc := ckks.NewEncryptor(params, sk)
			eval := ckks.NewEvaluator(params, rlwe.NewMemEvaluationKeySet(kgen.GenRelinearizationKeyNew(sk)))

			slots := params.MaxSlots()
			want := make([]complex128, slots)
			for j := range want {
				want[j] = 1
			}

			cts := make([]*rlwe.Ciphertext, 4)
			for i := range cts {
				values := make([]complex128, slots)
				for j := range values {
					values[j] = complex(sampling.RandFloat64(-1, 1), 0)
					want[j] *= values[j]
				}
				pt := ckks.NewPlaintext(params, params.MaxLevel())
				require.NoError(t, ecd.Encode(values, pt))
				cts[i], err = enc.EncryptNew(pt)
				require.NoError(t, err)
			}

			ct, err := MulMany(eval, cts)
			require.NoError(t, err)

			have := make([]complex128, slots)
			pt, err := ckks.NewDecryptor(params, sk).DecryptNew(ct)
			require.NoError(t, err)
			require.NoError(t, ecd.Decode(pt, have))

			for j := range have {
				require.InDelta(t, real(want[j]), real(have[j]), 1e-3)
			}
		})
	}
}

func TestMulManyErrors(t *testing.T) {

	s := newIntegerSchemes(t)[0]

	_, cts := s.encrypt(2, t)

	// Ciphertexts encrypted under another key.
	params := *s.eval.GetRLWEParameters()
	sk := rlwe.NewKeyGenerator(params).GenSecretKeyNew()
	pt := s.pt()
	require.NoError(t, s.ecd.Encode([]uint64{1}, pt))
	ct, err := rlwe.NewEncryptor(params, sk).EncryptNew(pt)
	require.NoError(t, err)

	_, err = MulMany(s.eval, append(cts, ct))
	require.True(t, errors.Is(err, rlwe.ErrKeyTagMismatch))
}
