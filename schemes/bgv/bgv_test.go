package bgv

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/utils"
)

var flagParamString = flag.String("params", "", "specify the test cryptographic parameters as a JSON string. Overrides -short.")

var testRotations = []int{1, -1, 7}

func name(op string, tc *TestContext, lvl int) string {
	return fmt.Sprintf("%s/%s/lvl=%d", op, tc, lvl)
}

type testContext struct {
	*TestContext
	ecd  *Encoder
	eval *Evaluator
}

func newTestContext(params Parameters) *testContext {

	var galEls []uint64
	if params.BatchingEnabled() {
		galEls = append(params.GaloisElementsForColumnRotations(testRotations), params.GaloisElementForRowRotation())
	}

	tc, evk := NewTestContext(params, galEls...)

	return &testContext{
		TestContext: tc,
		ecd:         NewEncoder(params),
		eval:        NewEvaluator(params, evk),
	}
}

func TestBGV(t *testing.T) {

	var err error

	paramsLiterals := testInsecure

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err = json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			t.Fatal(err)
		}
		paramsLiterals = []ParametersLiteral{jsonParams} // the custom test suite reads the parameters from the -params flag
	}

	for _, p := range paramsLiterals {

		plaintextModuli := testPlaintextModulus
		if p.PlaintextModulus != 0 {
			plaintextModuli = []uint64{p.PlaintextModulus}
		}

		for _, plaintextModulus := range plaintextModuli {

			p.PlaintextModulus = plaintextModulus

			var params Parameters
			if params, err = NewParametersFromLiteral(p); err != nil {
				t.Fatal(err)
			}

			tc := newTestContext(params)

			for _, testSet := range []func(tc *testContext, t *testing.T){
				testParameters,
				testEncoder,
				testEvaluatorAdd,
				testEvaluatorMul,
				testEvaluatorRescale,
				testEvaluatorRotate,
				testEvaluatorErrors,
			} {
				testSet(tc, t)
				runtime.GC()
			}
		}
	}

	testCoefficientEncoding(t)
	testTechniqueInterchangeability(t)
}

// newTestVector returns random values, their encoding at the given level and scale and their encryption.
func newTestVector(tc *testContext, level int, scale uint64, t *testing.T) (values []uint64, pt *rlwe.Plaintext, ct *rlwe.Ciphertext) {

	values = RandomValues(tc.Params)

	pt = NewPlaintext(tc.Params, level)
	pt.Scale = rlwe.NewScaleModT(scale, tc.Params.PlaintextModulus())
	require.NoError(t, tc.ecd.Encode(values, pt))

	var err error
	ct, err = tc.EncPk.EncryptNew(pt)
	require.NoError(t, err)

	return
}

func mulMod(a, b []uint64, t uint64) (c []uint64) {
	c = make([]uint64, len(a))
	for i := range a {
		c[i] = new(big.Int).Mod(new(big.Int).Mul(new(big.Int).SetUint64(a[i]), new(big.Int).SetUint64(b[i])), new(big.Int).SetUint64(t)).Uint64()
	}
	return
}

func addMod(a, b []uint64, t uint64) (c []uint64) {
	c = make([]uint64, len(a))
	for i := range a {
		c[i] = (a[i] + b[i]) % t
	}
	return
}

func subMod(a, b []uint64, t uint64) (c []uint64) {
	c = make([]uint64, len(a))
	for i := range a {
		c[i] = (a[i] + t - b[i]) % t
	}
	return
}

func testParameters(tc *testContext, t *testing.T) {

	t.Run(name("Parameters/JSON", tc.TestContext, 0), func(t *testing.T) {

		data, err := json.Marshal(tc.Params)
		require.NoError(t, err)

		var paramsRec Parameters
		require.NoError(t, json.Unmarshal(data, &paramsRec))
		require.True(t, tc.Params.Equal(&paramsRec))

		dataWithLogModuli := []byte(fmt.Sprintf(`{"LogN":%d,"LogQ":[50,50],"LogP":[60],"PlaintextModulus":65537}`, tc.Params.LogN()))
		var paramsWithLogModuli Parameters
		require.NoError(t, json.Unmarshal(dataWithLogModuli, &paramsWithLogModuli))
		require.Equal(t, 2, paramsWithLogModuli.QCount())
		require.Equal(t, 1, paramsWithLogModuli.PCount())
		require.Equal(t, uint64(65537), paramsWithLogModuli.PlaintextModulus())
		require.Equal(t, rlwe.DefaultXe, paramsWithLogModuli.Xe())
	})

	t.Run(name("Parameters/Invalid", tc.TestContext, 0), func(t *testing.T) {

		pl := tc.Params.ParametersLiteral()

		pl.PlaintextModulus = 1
		_, err := NewParametersFromLiteral(pl)
		require.True(t, errors.Is(err, rlwe.ErrInvalidParameters))

		pl.PlaintextModulus = tc.Params.Q()[0]
		_, err = NewParametersFromLiteral(pl)
		require.True(t, errors.Is(err, rlwe.ErrInvalidParameters))
	})

	t.Run(name("Parameters/Slots", tc.TestContext, 0), func(t *testing.T) {
		require.True(t, tc.Params.BatchingEnabled())
		require.Equal(t, tc.Params.N(), tc.Params.MaxSlots())
		require.Equal(t, tc.Params.ErrorScale(), tc.Params.PlaintextModulus())
	})
}

func testEncoder(tc *testContext, t *testing.T) {

	T := tc.Params.PlaintextModulus()

	for _, lvl := range []int{0, tc.Params.MaxLevel()} {

		t.Run(name("Encoder/Uint", tc.TestContext, lvl), func(t *testing.T) {
			values, pt, _ := newTestVector(tc, lvl, 1, t)
			VerifyTestVectors(tc.ecd, nil, pt, values, t)
		})

		t.Run(name("Encoder/Int", tc.TestContext, lvl), func(t *testing.T) {

			values := make([]int64, tc.Params.MaxSlots())
			for i := range values {
				values[i] = int64(i) - int64(len(values)>>1)
			}

			pt := NewPlaintext(tc.Params, lvl)
			pt.IsNTT = true
			require.NoError(t, tc.ecd.Encode(values, pt))

			have := make([]int64, len(values))
			require.NoError(t, tc.ecd.Decode(pt, have))
			require.Equal(t, values, have)
		})

		t.Run(name("Encoder/Scale", tc.TestContext, lvl), func(t *testing.T) {
			values, pt, ct := newTestVector(tc, lvl, 3, t)
			VerifyTestVectors(tc.ecd, nil, pt, values, t)
			VerifyTestVectors(tc.ecd, tc.Dec, ct, values, t)
		})

		t.Run(name("Encoder/Coefficients", tc.TestContext, lvl), func(t *testing.T) {

			values := RandomValues(tc.Params)

			pt := NewPlaintext(tc.Params, lvl)
			pt.IsBatched = false
			require.NoError(t, tc.ecd.Encode(values, pt))

			// The plaintext polynomial is the centered lift of the message.
			for i, c := range pt.Value.Coeffs[0][:8] {
				q := tc.Params.Q()[0]
				if values[i] > T>>1 {
					require.Equal(t, q-(T-values[i]), c)
				} else {
					require.Equal(t, values[i], c)
				}
			}

			VerifyTestVectors(tc.ecd, nil, pt, values, t)
		})
	}

	t.Run(name("Encoder/TooManyValues", tc.TestContext, 0), func(t *testing.T) {
		pt := NewPlaintext(tc.Params)
		require.Error(t, tc.ecd.Encode(make([]uint64, tc.Params.N()+1), pt))
		require.Error(t, tc.ecd.Encode([]float64{1}, pt))
	})
}

func testEvaluatorAdd(tc *testContext, t *testing.T) {

	T := tc.Params.PlaintextModulus()
	lvl := tc.Params.MaxLevel()

	t.Run(name("Evaluator/Add/Ct", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, _, ct1 := newTestVector(tc, lvl, 1, t)

		ct2, err := tc.eval.AddNew(ct0, ct1)
		require.NoError(t, err)
		VerifyTestVectors(tc.ecd, tc.Dec, ct2, addMod(values0, values1, T), t)

		require.NoError(t, tc.eval.Sub(ct0, ct1, ct0))
		VerifyTestVectors(tc.ecd, tc.Dec, ct0, subMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/Add/Pt", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, pt1, _ := newTestVector(tc, lvl, 1, t)

		require.NoError(t, tc.eval.Add(ct0, pt1, ct0))
		VerifyTestVectors(tc.ecd, tc.Dec, ct0, addMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/Add/Scalar", tc.TestContext, lvl), func(t *testing.T) {
		values, _, ct := newTestVector(tc, lvl, 5, t)

		want := make([]uint64, len(values))
		for i := range want {
			want[i] = (values[i] + T - 3) % T
		}

		ctOut, err := tc.eval.AddNew(ct, int64(-3))
		require.NoError(t, err)
		VerifyTestVectors(tc.ecd, tc.Dec, ctOut, want, t)

		require.NoError(t, tc.eval.Sub(ctOut, big.NewInt(-3), ctOut))
		VerifyTestVectors(tc.ecd, tc.Dec, ctOut, values, t)
	})

	t.Run(name("Evaluator/Add/Slice", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1 := RandomValues(tc.Params)

		require.NoError(t, tc.eval.Add(ct0, values1, ct0))
		VerifyTestVectors(tc.ecd, tc.Dec, ct0, addMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/Add/DifferentScales", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, _, ct1 := newTestVector(tc, lvl, 7, t)

		ct2, err := tc.eval.AddNew(ct0, ct1)
		require.NoError(t, err)
		VerifyTestVectors(tc.ecd, tc.Dec, ct2, addMod(values0, values1, T), t)

		require.NoError(t, tc.eval.Sub(ct1, ct0, ct1))
		VerifyTestVectors(tc.ecd, tc.Dec, ct1, subMod(values1, values0, T), t)
	})

	t.Run(name("Evaluator/Add/DifferentLevels", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, _, ct1 := newTestVector(tc, lvl-1, 1, t)

		ct2, err := tc.eval.AddNew(ct0, ct1)
		require.NoError(t, err)
		require.Equal(t, lvl-1, ct2.Level())
		VerifyTestVectors(tc.ecd, tc.Dec, ct2, addMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/Neg", tc.TestContext, lvl), func(t *testing.T) {
		values, _, ct := newTestVector(tc, lvl, 1, t)
		tc.eval.Neg(ct, ct)
		VerifyTestVectors(tc.ecd, tc.Dec, ct, subMod(make([]uint64, len(values)), values, T), t)
	})
}

func testEvaluatorMul(tc *testContext, t *testing.T) {

	T := tc.Params.PlaintextModulus()
	lvl := tc.Params.MaxLevel()

	t.Run(name("Evaluator/Mul/Ct", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, _, ct1 := newTestVector(tc, lvl, 1, t)

		ct2, err := tc.eval.MulNew(ct0, ct1)
		require.NoError(t, err)
		require.Equal(t, 2, ct2.Degree())
		VerifyTestVectors(tc.ecd, tc.Dec, ct2, mulMod(values0, values1, T), t)

		require.NoError(t, tc.eval.Relinearize(ct2, ct2))
		require.Equal(t, 1, ct2.Degree())
		VerifyTestVectors(tc.ecd, tc.Dec, ct2, mulMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/MulRelin/Ct", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 3, t)
		values1, _, ct1 := newTestVector(tc, lvl, 5, t)

		require.NoError(t, tc.eval.MulRelin(ct0, ct1, ct0))
		require.Equal(t, 1, ct0.Degree())
		require.Equal(t, uint64(15%T), ct0.Scale.Uint64())
		VerifyTestVectors(tc.ecd, tc.Dec, ct0, mulMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/Mul/Pt", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, pt1, _ := newTestVector(tc, lvl, 1, t)

		require.NoError(t, tc.eval.Mul(ct0, pt1, ct0))
		require.Equal(t, 1, ct0.Degree())
		VerifyTestVectors(tc.ecd, tc.Dec, ct0, mulMod(values0, values1, T), t)
	})

	t.Run(name("Evaluator/Mul/Scalar", tc.TestContext, lvl), func(t *testing.T) {
		values, _, ct := newTestVector(tc, lvl, 1, t)

		c := T - 2

		want := make([]uint64, len(values))
		for i := range want {
			want[i] = mulMod(values[i:i+1], []uint64{c}, T)[0]
		}

		ctOut, err := tc.eval.MulNew(ct, c)
		require.NoError(t, err)
		VerifyTestVectors(tc.ecd, tc.Dec, ctOut, want, t)
	})

	t.Run(name("Evaluator/Mul/Slice", tc.TestContext, lvl), func(t *testing.T) {
		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1 := RandomValues(tc.Params)

		ct1, err := tc.eval.MulRelinNew(ct0, values1)
		require.NoError(t, err)
		VerifyTestVectors(tc.ecd, tc.Dec, ct1, mulMod(values0, values1, T), t)
	})
}

func testEvaluatorRescale(tc *testContext, t *testing.T) {

	T := tc.Params.PlaintextModulus()
	lvl := tc.Params.MaxLevel()

	t.Run(name("Evaluator/Rescale", tc.TestContext, lvl), func(t *testing.T) {

		values0, _, ct0 := newTestVector(tc, lvl, 1, t)
		values1, _, ct1 := newTestVector(tc, lvl, 1, t)

		ct, err := tc.eval.MulRelinNew(ct0, ct1)
		require.NoError(t, err)

		require.NoError(t, tc.eval.Rescale(ct, ct))
		require.Equal(t, lvl-1, ct.Level())

		// The scale is multiplied by the inverse of the dropped modulus.
		qL := new(big.Int).SetUint64(tc.Params.Q()[lvl] % T)
		want := new(big.Int).ModInverse(qL, new(big.Int).SetUint64(T)).Uint64()
		require.Equal(t, want, ct.Scale.Uint64())

		prod := mulMod(values0, values1, T)
		VerifyTestVectors(tc.ecd, tc.Dec, ct, prod, t)

		// Second multiplication, at a lower level.
		require.NoError(t, tc.eval.MulRelin(ct, ct, ct))
		require.NoError(t, tc.eval.Rescale(ct, ct))
		require.Equal(t, lvl-2, ct.Level())
		VerifyTestVectors(tc.ecd, tc.Dec, ct, mulMod(prod, prod, T), t)

		// Operands with different levels and scales.
		values2, _, ct2 := newTestVector(tc, lvl, 1, t)
		require.NoError(t, tc.eval.Add(ct, ct2, ct))
		VerifyTestVectors(tc.ecd, tc.Dec, ct, addMod(mulMod(prod, prod, T), values2, T), t)

		err = tc.eval.Rescale(ct, ct)
		require.True(t, errors.Is(err, rlwe.ErrLevelExhausted))
	})

	t.Run(name("Evaluator/DropLevel", tc.TestContext, lvl), func(t *testing.T) {
		values, _, ct := newTestVector(tc, lvl, 1, t)

		ctOut, err := tc.eval.DropLevelNew(ct, lvl)
		require.NoError(t, err)
		require.Equal(t, 0, ctOut.Level())
		require.Equal(t, lvl, ct.Level())
		VerifyTestVectors(tc.ecd, tc.Dec, ctOut, values, t)

		require.True(t, errors.Is(tc.eval.DropLevel(ctOut, 1), rlwe.ErrLevelExhausted))
	})
}

func testEvaluatorRotate(tc *testContext, t *testing.T) {

	lvl := tc.Params.MaxLevel()
	half := tc.Params.MaxSlots() >> 1

	rotateColumns := func(values []uint64, k int) (want []uint64) {
		want = append(utils.RotateSlice(values[:half], k), utils.RotateSlice(values[half:], k)...)
		return
	}

	for _, k := range testRotations {
		t.Run(name(fmt.Sprintf("Evaluator/RotateColumns/%d", k), tc.TestContext, lvl), func(t *testing.T) {
			values, _, ct := newTestVector(tc, lvl, 1, t)
			ctOut, err := tc.eval.RotateColumnsNew(ct, k)
			require.NoError(t, err)
			VerifyTestVectors(tc.ecd, tc.Dec, ctOut, rotateColumns(values, k), t)
		})
	}

	t.Run(name("Evaluator/RotateRows", tc.TestContext, lvl), func(t *testing.T) {
		values, _, ct := newTestVector(tc, lvl, 1, t)
		require.NoError(t, tc.eval.RotateRows(ct, ct))
		VerifyTestVectors(tc.ecd, tc.Dec, ct, append(append([]uint64{}, values[half:]...), values[:half]...), t)
	})

	t.Run(name("Evaluator/RotateColumnsHoisted", tc.TestContext, lvl), func(t *testing.T) {
		values, _, ct := newTestVector(tc, lvl, 1, t)

		decomp := tc.eval.PrecomputeRotations(ct)
		rotated, err := tc.eval.RotateColumnsHoisted(ct, testRotations, decomp)
		require.NoError(t, err)

		for _, k := range testRotations {
			VerifyTestVectors(tc.ecd, tc.Dec, rotated[k], rotateColumns(values, k), t)
		}
	})

	t.Run(name("Evaluator/RotateColumns/MissingKey", tc.TestContext, lvl), func(t *testing.T) {
		_, _, ct := newTestVector(tc, lvl, 1, t)
		_, err := tc.eval.RotateColumnsNew(ct, 3)
		require.Error(t, err)
	})
}

func testEvaluatorErrors(tc *testContext, t *testing.T) {

	lvl := tc.Params.MaxLevel()

	t.Run(name("Evaluator/Errors/KeyTag", tc.TestContext, lvl), func(t *testing.T) {

		_, _, ct0 := newTestVector(tc, lvl, 1, t)

		sk := tc.Kgen.GenSecretKeyNew()
		pt := NewPlaintext(tc.Params, lvl)
		require.NoError(t, tc.ecd.Encode(RandomValues(tc.Params), pt))
		ct1, err := NewEncryptor(tc.Params, sk).EncryptNew(pt)
		require.NoError(t, err)

		_, err = tc.eval.AddNew(ct0, ct1)
		require.True(t, errors.Is(err, rlwe.ErrKeyTagMismatch))

		_, err = tc.eval.MulNew(ct0, ct1)
		require.True(t, errors.Is(err, rlwe.ErrKeyTagMismatch))

		// Relinearization keys are bound to the secret key they were generated from.
		err = tc.eval.MulRelin(ct1, ct1, ct1)
		require.True(t, errors.Is(err, rlwe.ErrKeyTagMismatch))
	})

	t.Run(name("Evaluator/Errors/Encoding", tc.TestContext, lvl), func(t *testing.T) {

		_, _, ct0 := newTestVector(tc, lvl, 1, t)

		pt := NewPlaintext(tc.Params, lvl)
		pt.IsBatched = false
		require.NoError(t, tc.ecd.Encode([]uint64{1, 2, 3}, pt))

		_, err := tc.eval.AddNew(ct0, pt)
		require.True(t, errors.Is(err, rlwe.ErrEncodingMismatch))
	})
}

// negacyclic returns a*b in Z_t[X]/(X^N+1).
func negacyclic(a, b []uint64, t uint64) (c []uint64) {
	N := len(a)
	c = make([]uint64, N)
	for i := range a {
		if a[i] == 0 {
			continue
		}
		for j := range b {
			v := (a[i] * b[j]) % t
			if k := i + j; k < N {
				c[k] = (c[k] + v) % t
			} else {
				c[k-N] = (c[k-N] + t - v) % t
			}
		}
	}
	return
}

func testCoefficientEncoding(t *testing.T) {

	params, err := NewParametersFromLiteral(testCoefficientsOnly)
	require.NoError(t, err)

	tc := newTestContext(params)
	T := params.PlaintextModulus()
	lvl := params.MaxLevel()

	t.Run(name("CoefficientsOnly/Batching", tc.TestContext, lvl), func(t *testing.T) {
		require.False(t, params.BatchingEnabled())
		pt := NewPlaintext(params, lvl)
		require.False(t, pt.IsBatched)
		pt.IsBatched = true
		require.Error(t, tc.ecd.Encode([]uint64{1}, pt))
	})

	t.Run(name("CoefficientsOnly/MulRelin", tc.TestContext, lvl), func(t *testing.T) {

		a := RandomValues(params)
		b := make([]uint64, params.N())
		for i := 0; i < 16; i++ {
			b[i] = uint64(i+1) % T
		}

		pa := NewPlaintext(params, lvl)
		require.NoError(t, tc.ecd.Encode(a, pa))
		pb := NewPlaintext(params, lvl)
		require.NoError(t, tc.ecd.Encode(b, pb))

		ca, err := tc.EncSk.EncryptNew(pa)
		require.NoError(t, err)
		cb, err := tc.EncPk.EncryptNew(pb)
		require.NoError(t, err)

		ct, err := tc.eval.MulRelinNew(ca, cb)
		require.NoError(t, err)
		require.NoError(t, tc.eval.Rescale(ct, ct))

		VerifyTestVectors(tc.ecd, tc.Dec, ct, negacyclic(a, b, T), t)
	})
}

// testTechniqueInterchangeability checks that the three key-switching techniques
// re-encrypt the same ciphertext to the same message.
func testTechniqueInterchangeability(t *testing.T) {

	values := []uint64{1, 2, 3, 4, 5, 6, 7, 8}

	var decoded [][]uint64

	for _, p := range testInsecure {

		p.PlaintextModulus = testPlaintextModulus[0]

		params, err := NewParametersFromLiteral(p)
		require.NoError(t, err)

		kgen := NewKeyGenerator(params)
		sk0 := kgen.GenSecretKeyNew()
		sk1 := kgen.GenSecretKeyNew()

		ecd := NewEncoder(params)
		pt := NewPlaintext(params)
		require.NoError(t, ecd.Encode(values, pt))

		ct, err := NewEncryptor(params, sk0).EncryptNew(pt)
		require.NoError(t, err)

		eval := NewEvaluator(params, nil)
		ctOut, err := eval.ApplyEvaluationKeyNew(ct, kgen.GenEvaluationKeyNew(sk0, sk1))
		require.NoError(t, err)
		require.Equal(t, sk1.Tag, ctOut.KeyTag)

		have := make([]uint64, len(values))
		ptOut, err := NewDecryptor(params, sk1).DecryptNew(ctOut)
		require.NoError(t, err)
		require.NoError(t, ecd.Decode(ptOut, have))
		decoded = append(decoded, have)
	}

	for i := range decoded {
		assert.Equal(t, values, decoded[i])
	}
}
