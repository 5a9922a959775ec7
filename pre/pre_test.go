package pre

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bfv"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/bgv"
	"github.com/FlorentCLMichel/palisade-sub001/schemes/ckks"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

var testLogQ = []int{55, 45, 45}

var testBGV = []bgv.ParametersLiteral{
	{
		LogN:               10,
		LogQ:               testLogQ,
		LogP:               []int{61},
		KeySwitchTechnique: rlwe.HYBRID,
		PlaintextModulus:   0x10001,
	},
	{
		LogN:               10,
		LogQ:               testLogQ,
		KeySwitchTechnique: rlwe.GHS,
		PlaintextModulus:   0x10001,
	},
	{
		LogN:               10,
		LogQ:               testLogQ,
		KeySwitchTechnique: rlwe.BV,
		RelinWindow:        16,
		PlaintextModulus:   0x10001,
	},
}

// party is a key pair.
type party struct {
	sk *rlwe.SecretKey
	pk *rlwe.PublicKey
}

func newParties(kgen *rlwe.KeyGenerator, n int) (parties []party) {
	parties = make([]party, n)
	for i := range parties {
		parties[i].sk, parties[i].pk = kgen.GenKeyPairNew()
	}
	return
}

func TestPREBGV(t *testing.T) {

	for _, pl := range testBGV {

		params, err := bgv.NewParametersFromLiteral(pl)
		require.NoError(t, err)

		ecd := bgv.NewEncoder(params)
		rkg := NewReKeyGenerator(params)
		re := NewReEncryptor(params)

		parties := newParties(rkg.KeyGenerator, 3)

		values := make([]uint64, params.MaxSlots())
		for i := range values {
			values[i] = sampling.RandUint64() % params.PlaintextModulus()
		}

		pt := bgv.NewPlaintext(params)
		require.NoError(t, ecd.Encode(values, pt))

		decrypt := func(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (have []uint64) {
			have = make([]uint64, len(values))
			pt, err := bgv.NewDecryptor(params, sk).DecryptNew(ct)
			require.NoError(t, err)
			require.NoError(t, ecd.Decode(pt, have))
			return
		}

		name := fmt.Sprintf("PRE/BGV/KS=%s", params.KeySwitchTechnique())

		t.Run(name+"/ReEncrypt", func(t *testing.T) {

			ct, err := bgv.NewEncryptor(params, parties[0].pk).EncryptNew(pt)
			require.NoError(t, err)

			rk := rkg.ReKeyGenNew(parties[0].sk, parties[1].pk)

			ctOut, err := re.ReEncryptNew(ct, rk)
			require.NoError(t, err)
			require.Equal(t, parties[1].sk.Tag, ctOut.KeyTag)
			require.Equal(t, values, decrypt(ctOut, parties[1].sk))
		})

		t.Run(name+"/MultiHop", func(t *testing.T) {

			ct, err := bgv.NewEncryptor(params, parties[0].pk).EncryptNew(pt)
			require.NoError(t, err)

			for i := 0; i < 2; i++ {
				rk := rkg.ReKeyGenNew(parties[i].sk, parties[i+1].pk)
				require.NoError(t, re.ReEncrypt(ct, rk, ct))
			}

			require.Equal(t, values, decrypt(ct, parties[2].sk))
		})

		t.Run(name+"/Randomized", func(t *testing.T) {

			ct, err := bgv.NewEncryptor(params, parties[0].pk).EncryptNew(pt)
			require.NoError(t, err)

			rk := rkg.ReKeyGenNew(parties[0].sk, parties[1].pk)

			ctOut := bgv.NewCiphertext(params, 1, ct.Level())
			require.NoError(t, re.ReEncryptRandomized(ct, rk, parties[1].pk, ctOut))
			require.Equal(t, values, decrypt(ctOut, parties[1].sk))

			// The random encryption of zero changes the ciphertext.
			ctDet, err := re.ReEncryptNew(ct, rk)
			require.NoError(t, err)
			require.False(t, ctOut.Equal(ctDet))

			err = re.ReEncryptRandomized(ct, rk, parties[2].pk, ctOut)
			require.True(t, errors.Is(err, rlwe.ErrKeyTagMismatch))
		})

		t.Run(name+"/WrongSource", func(t *testing.T) {

			ct, err := bgv.NewEncryptor(params, parties[2].pk).EncryptNew(pt)
			require.NoError(t, err)

			_, err = re.ReEncryptNew(ct, rkg.ReKeyGenNew(parties[0].sk, parties[1].pk))
			require.True(t, errors.Is(err, rlwe.ErrKeyTagMismatch))
		})

		t.Run(name+"/LowerLevel", func(t *testing.T) {

			ptLow := bgv.NewPlaintext(params, 1)
			require.NoError(t, ecd.Encode(values, ptLow))

			ct, err := bgv.NewEncryptor(params, parties[0].pk).EncryptNew(ptLow)
			require.NoError(t, err)

			ctOut, err := re.ShallowCopy().ReEncryptNew(ct, rkg.ReKeyGenNew(parties[0].sk, parties[1].pk))
			require.NoError(t, err)
			require.Equal(t, 1, ctOut.Level())
			require.Equal(t, values, decrypt(ctOut, parties[1].sk))
		})
	}
}

func TestPREBFV(t *testing.T) {

	params, err := bfv.NewParametersFromLiteral(bfv.ParametersLiteral(testBGV[0]))
	require.NoError(t, err)

	ecd := bfv.NewEncoder(params)
	rkg := NewReKeyGenerator(params)
	re := NewReEncryptor(params)

	parties := newParties(rkg.KeyGenerator, 2)

	values := []int64{-3, -2, -1, 0, 1, 2, 3}

	pt := bfv.NewPlaintext(params)
	pt.IsBatched = false
	require.NoError(t, ecd.Encode(values, pt))

	ct, err := bfv.NewEncryptor(params, parties[0].pk).EncryptNew(pt)
	require.NoError(t, err)

	ctOut := bfv.NewCiphertext(params, 1)
	require.NoError(t, re.ReEncryptRandomized(ct, rkg.ReKeyGenNew(parties[0].sk, parties[1].pk), parties[1].pk, ctOut))

	have := make([]int64, len(values))
	ptOut, err := bfv.NewDecryptor(params, parties[1].sk).DecryptNew(ctOut)
	require.NoError(t, err)
	require.NoError(t, ecd.Decode(ptOut, have))
	require.Equal(t, values, have)
}

func TestPRECKKS(t *testing.T) {

	for _, rs := range []ckks.RescalingTechnique{ckks.ApproxRescale, ckks.ExactRescale} {

		params, err := ckks.NewParametersFromLiteral(ckks.ParametersLiteral{
			LogN:               10,
			LogQ:               []int{55, 40, 40},
			LogP:               []int{61},
			KeySwitchTechnique: rlwe.HYBRID,
			RescalingTechnique: rs,
			LogDefaultScale:    40,
		})
		require.NoError(t, err)

		t.Run(fmt.Sprintf("PRE/CKKS/RS=%s", rs), func(t *testing.T) {

			ecd := ckks.NewEncoder(params)
			rkg := NewReKeyGenerator(params)
			re := NewReEncryptor(params)

			parties := newParties(rkg.KeyGenerator, 2)

			values := make([]complex128, params.MaxSlots())
			for i := range values {
				values[i] = complex(sampling.RandFloat64(-1, 1), sampling.RandFloat64(-1, 1))
			}

			pt := ckks.NewPlaintext(params, params.MaxLevel())
			require.NoError(t, ecd.Encode(values, pt))

			ct, err := ckks.NewEncryptor(params, parties[0].pk).EncryptNew(pt)
			require.NoError(t, err)

			ctOut, err := re.ReEncryptNew(ct, rkg.ReKeyGenNew(parties[0].sk, parties[1].pk))
			require.NoError(t, err)
			require.True(t, ct.Scale.Equal(ctOut.Scale))

			have := make([]complex128, len(values))
			ptOut, err := ckks.NewDecryptor(params, parties[1].sk).DecryptNew(ctOut)
			require.NoError(t, err)
			require.NoError(t, ecd.Decode(ptOut, have))

			for i := range values {
				require.InDelta(t, real(values[i]), real(have[i]), 1e-5)
				require.InDelta(t, imag(values[i]), imag(have[i]), 1e-5)
			}
		})
	}
}
