package ring

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

func testString(opname string, ringQ *Ring) string {
	return fmt.Sprintf("%s/N=%d/limbs=%d", opname, ringQ.N(), ringQ.ModuliChainLength())
}

type testContext struct {
	ringQ           *Ring
	ringP           *Ring
	prng            sampling.PRNG
	uniformSamplerQ *UniformSampler
	uniformSamplerP *UniformSampler
}

func genTestContext(p testParameters) (tc *testContext, err error) {

	tc = new(testContext)

	if tc.ringQ, err = NewRing(1<<p.logN, p.qi); err != nil {
		return nil, err
	}
	if tc.ringP, err = NewRing(1<<p.logN, p.pi); err != nil {
		return nil, err
	}
	if tc.prng, err = sampling.NewKeyedPRNG([]byte{'r', 'i', 'n', 'g'}); err != nil {
		return nil, err
	}
	tc.uniformSamplerQ = NewUniformSampler(tc.prng, tc.ringQ)
	tc.uniformSamplerP = NewUniformSampler(tc.prng, tc.ringP)
	return
}

// randomCentered returns N random integers in [-bound/2, bound/2).
func randomCentered(N int, bound *big.Int) (coeffs []*big.Int) {
	half := new(big.Int).Rsh(bound, 1)
	coeffs = make([]*big.Int, N)
	for i := range coeffs {
		coeffs[i] = bignum.RandInt(nil, bound)
		coeffs[i].Sub(coeffs[i], half)
	}
	return
}

func TestRing(t *testing.T) {

	testNewRing(t)
	testModularReduction(t)

	for _, p := range testParams {

		tc, err := genTestContext(p)
		require.NoError(t, err)

		testGenerateNTTPrimes(tc, t)
		testNTT(tc, t)
		testNegacyclicProduct(tc, t)
		testBasisConversion(tc, t)
		testModDown(tc, t)
		testDivByLastModulus(tc, t)
		testAutomorphism(tc, t)
		testMultByMonomial(tc, t)
		testSampler(tc, t)
		testDecomposeWindow(tc, t)
	}
}

func testNewRing(t *testing.T) {
	t.Run("NewRing", func(t *testing.T) {
		_, err := NewRing(0, Qi60[:1])
		require.Error(t, err)

		_, err = NewRing(1<<10, nil)
		require.Error(t, err)

		_, err = NewRing(1<<10, []uint64{Qi60[0], Qi60[0]})
		require.Error(t, err)

		// 2^61 - 1 is prime but not 1 mod 2^11
		_, err = NewRing(1<<10, []uint64{0x1fffffffffffffff})
		require.Error(t, err)

		r, err := NewRing(1<<10, Qi60[:3])
		require.NoError(t, err)
		require.Equal(t, 10, r.LogN())
		require.Equal(t, uint64(1<<11), r.NthRoot())
		require.Equal(t, 2, r.MaxLevel())
		require.Equal(t, 1, r.AtLevel(1).Level())
		require.Equal(t, Qi60[:2], r.AtLevel(1).ModuliChain())
		require.Panics(t, func() { r.AtLevel(3) })
	})
}

func testModularReduction(t *testing.T) {

	t.Run("ModularReduction", func(t *testing.T) {

		for _, q := range []uint64{Qi60[0], 0x3ee0001, 65537} {

			bredconstant := GenBRedConstant(q)
			mredconstant := GenMRedConstant(q)
			bigQ := new(big.Int).SetUint64(q)

			for i := 0; i < 256; i++ {

				x := sampling.RandUint64() % q
				y := sampling.RandUint64() % q

				want := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
				want.Mod(want, bigQ)

				require.Equal(t, want.Uint64(), BRed(x, y, q, bredconstant))
				require.Equal(t, want.Uint64(), MRed(x, MForm(y, q, bredconstant), q, mredconstant))
				require.Equal(t, want.Uint64(), CRed(BRedLazy(x, y, q, bredconstant), q))
				require.Equal(t, x, IMForm(MForm(x, q, bredconstant), q, mredconstant))

				z := sampling.RandUint64()
				require.Equal(t, z%q, BRedAdd(z, q, bredconstant))
			}

			x := sampling.RandUint64()%(q-1) + 1
			require.Equal(t, uint64(1), BRed(x, ModInverse(x, q), q, bredconstant))
		}
	})
}

func testGenerateNTTPrimes(tc *testContext, t *testing.T) {

	t.Run(testString("GenerateNTTPrimes", tc.ringQ), func(t *testing.T) {

		NthRoot := tc.ringQ.NthRoot()

		g := NewNTTFriendlyPrimesGenerator(55, NthRoot)

		primes, err := g.NextAlternatingPrimes(8)
		require.NoError(t, err)

		upstream, err := g.NextUpstreamPrimes(4)
		require.NoError(t, err)

		primes = append(primes, upstream...)

		for _, q := range primes {
			require.True(t, IsPrime(q))
			require.Equal(t, uint64(1), q%NthRoot)
			require.InDelta(t, 55, bignum.Log2Int(new(big.Int).SetUint64(q)), 1)
		}

		seen := map[uint64]bool{}
		for _, q := range primes {
			require.False(t, seen[q])
			seen[q] = true
		}
	})
}

func testNTT(tc *testContext, t *testing.T) {

	t.Run(testString("NTT/INTT", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ

		pWant := tc.uniformSamplerQ.ReadNew()
		pTest := ringQ.NewPoly()

		ringQ.NTT(pWant, pTest)
		require.False(t, ringQ.Equal(pWant, pTest))

		ringQ.INTT(pTest, pTest)
		require.True(t, ringQ.Equal(pWant, pTest))
	})
}

func testNegacyclicProduct(tc *testContext, t *testing.T) {

	t.Run(testString("NegacyclicProduct", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		N := ringQ.N()

		a := make([]int64, N)
		b := make([]int64, N)
		for i := range a {
			a[i] = int64(sampling.RandUint64()%2049) - 1024
			b[i] = int64(sampling.RandUint64()%2049) - 1024
		}

		// schoolbook multiplication modulo X^N + 1
		want := make([]int64, N)
		for i := range a {
			for j := range b {
				if k := i + j; k < N {
					want[k] += a[i] * b[j]
				} else {
					want[k-N] -= a[i] * b[j]
				}
			}
		}

		pa, pb, pc := ringQ.NewPoly(), ringQ.NewPoly(), ringQ.NewPoly()
		ringQ.SetCoefficientsInt64(a, pa)
		ringQ.SetCoefficientsInt64(b, pb)

		ringQ.NTT(pa, pa)
		ringQ.NTT(pb, pb)
		ringQ.MForm(pb, pb)
		ringQ.MulCoeffsMontgomery(pa, pb, pc)
		ringQ.INTT(pc, pc)

		pWant := ringQ.NewPoly()
		ringQ.SetCoefficientsInt64(want, pWant)

		require.True(t, ringQ.Equal(pWant, pc))

		// Barrett path, no Montgomery form involved
		ringQ.IMForm(pb, pb)
		ringQ.MulCoeffsBarrett(pa, pb, pc)
		ringQ.INTT(pc, pc)
		require.True(t, ringQ.Equal(pWant, pc))
	})
}

func testBasisConversion(tc *testContext, t *testing.T) {

	N := tc.ringQ.N()

	t.Run(testString("ModUp/QToP", tc.ringQ), func(t *testing.T) {

		ringQ, ringP := tc.ringQ, tc.ringP
		be := NewBasisExtender(ringQ, ringP, 1)

		for levelQ := 0; levelQ <= ringQ.MaxLevel(); levelQ++ {

			rQ := ringQ.AtLevel(levelQ)
			Q := rQ.Modulus()

			coeffs := make([]*big.Int, N)
			for i := range coeffs {
				coeffs[i] = bignum.RandInt(nil, Q)
			}

			pQ := rQ.NewPoly()
			pP := ringP.NewPoly()
			rQ.SetCoefficientsBigint(coeffs, pQ)

			be.ModUpQtoP(levelQ, pQ, pP)

			// pP = x + alpha*Q with 0 <= alpha <= levelQ
			have := make([]*big.Int, N)
			ringP.PolyToBigint(pP, 1, have)

			P := ringP.Modulus()
			tmp := new(big.Int)
			for i := range coeffs {
				found := false
				for alpha := 0; alpha <= levelQ && !found; alpha++ {
					tmp.Mul(Q, big.NewInt(int64(alpha)))
					tmp.Add(tmp, coeffs[i])
					tmp.Mod(tmp, P)
					found = tmp.Cmp(have[i]) == 0
				}
				require.True(t, found)
			}
		}
	})

	t.Run(testString("SwitchCRTBasisExact", tc.ringQ), func(t *testing.T) {

		ringQ, ringP := tc.ringQ, tc.ringP

		bc := NewBasisConverter(ringQ.SubRings, ringP.SubRings)

		coeffs := randomCentered(N, ringQ.Modulus())

		pQ := ringQ.NewPoly()
		ringQ.SetCoefficientsBigint(coeffs, pQ)

		pWant := ringP.NewPoly()
		ringP.SetCoefficientsBigint(coeffs, pWant)

		pTest := ringP.NewPoly()
		bc.SwitchCRTBasisExact(pQ.Coeffs, pTest.Coeffs)

		require.True(t, ringP.Equal(pWant, pTest))
	})
}

func testModDown(tc *testContext, t *testing.T) {

	N := tc.ringQ.N()

	for _, NTTFlag := range []bool{false, true} {

		t.Run(testString(fmt.Sprintf("ModDown/NTT=%t", NTTFlag), tc.ringQ), func(t *testing.T) {

			ringQ, ringP := tc.ringQ, tc.ringP
			be := NewBasisExtender(ringQ, ringP, 1)

			levelQ := ringQ.MaxLevel() - 1
			rQ := ringQ.AtLevel(levelQ)

			P := ringP.Modulus()
			QP := new(big.Int).Mul(rQ.Modulus(), P)

			coeffs := randomCentered(N, QP)

			pQ, pP := rQ.NewPoly(), ringP.NewPoly()
			rQ.SetCoefficientsBigint(coeffs, pQ)
			ringP.SetCoefficientsBigint(coeffs, pP)

			out := rQ.NewPoly()

			if NTTFlag {
				rQ.NTT(pQ, pQ)
				ringP.NTT(pP, pP)
				be.ModDownQPtoQNTT(levelQ, pQ, pP, out)
				rQ.INTT(out, out)
			} else {
				be.ModDownQPtoQ(levelQ, pQ, pP, out)
			}

			have := make([]*big.Int, N)
			rQ.PolyToBigintCentered(out, 1, have)

			// |out - x/P| <= #P
			bound := big.NewInt(int64(ringP.ModuliChainLength() + 1))
			want := new(big.Int)
			for i := range coeffs {
				bignum.DivRound(coeffs[i], P, want)
				want.Sub(want, have[i])
				require.True(t, want.CmpAbs(bound) <= 0, "coefficient %d: error %s", i, want)
			}
		})
	}

	t.Run(testString("ModDown/Exact", tc.ringQ), func(t *testing.T) {

		ringQ, ringP := tc.ringQ, tc.ringP
		be := NewBasisExtender(ringQ, ringP, 1)

		levelQ := ringQ.MaxLevel()

		pWant := tc.uniformSamplerQ.ReadNew()

		// P * x has zero residues in P
		pQ := ringQ.NewPoly()
		ringQ.MulScalarBigint(pWant, ringP.Modulus(), pQ)
		pP := ringP.NewPoly()

		out := ringQ.NewPoly()
		be.ModDownQPtoQ(levelQ, pQ, pP, out)
		require.True(t, ringQ.Equal(pWant, out))
	})

	t.Run(testString("ModDown/LSB", tc.ringQ), func(t *testing.T) {

		ringQ, ringP := tc.ringQ, tc.ringP

		tMod := uint64(65537)
		be := NewBasisExtender(ringQ, ringP, tMod)

		levelQ := ringQ.MaxLevel()

		P := ringP.Modulus()
		Q := ringQ.Modulus()
		QP := new(big.Int).Mul(Q, P)

		coeffs := randomCentered(N, new(big.Int).Rsh(QP, 2))

		pQ, pP := ringQ.NewPoly(), ringP.NewPoly()
		ringQ.SetCoefficientsBigint(coeffs, pQ)
		ringP.SetCoefficientsBigint(coeffs, pP)
		ringQ.NTT(pQ, pQ)
		ringP.NTT(pP, pP)

		out := ringQ.NewPoly()
		be.ModDownQPtoQNTTLSB(levelQ, pQ, pP, out)
		ringQ.INTT(out, out)

		have := make([]*big.Int, N)
		ringQ.PolyToBigintCentered(out, 1, have)

		// out * P = x - delta with delta = 0 mod t and |delta| <= t*P*#P
		bigT := new(big.Int).SetUint64(tMod)
		delta := new(big.Int)
		for i := range coeffs {
			delta.Mul(have[i], P)
			delta.Sub(coeffs[i], delta)
			require.Zero(t, new(big.Int).Mod(delta, bigT).Sign())
		}
	})
}

func testDivByLastModulus(tc *testContext, t *testing.T) {

	N := tc.ringQ.N()

	for _, NTTFlag := range []bool{false, true} {

		t.Run(testString(fmt.Sprintf("DivRoundByLastModulus/NTT=%t", NTTFlag), tc.ringQ), func(t *testing.T) {

			ringQ := tc.ringQ
			level := ringQ.MaxLevel()
			qL := new(big.Int).SetUint64(ringQ.SubRings[level].Modulus)

			coeffs := randomCentered(N, ringQ.Modulus())

			p0 := ringQ.NewPoly()
			ringQ.SetCoefficientsBigint(coeffs, p0)

			buff := ringQ.NewPoly()
			p1 := ringQ.AtLevel(level - 1).NewPoly()

			if NTTFlag {
				ringQ.NTT(p0, p0)
				ringQ.DivRoundByLastModulusNTT(p0, buff, p1)
				ringQ.AtLevel(level-1).INTT(p1, p1)
			} else {
				ringQ.DivRoundByLastModulus(p0, buff, p1)
			}

			want := make([]*big.Int, N)
			for i := range coeffs {
				want[i] = bignum.DivRound(coeffs[i], qL, new(big.Int))
			}

			pWant := ringQ.AtLevel(level - 1).NewPoly()
			ringQ.AtLevel(level-1).SetCoefficientsBigint(want, pWant)

			// q_L is odd: there are no ties
			require.True(t, ringQ.AtLevel(level-1).Equal(pWant, p1))
		})
	}

	t.Run(testString("DivFloorByLastModulus", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		level := ringQ.MaxLevel()
		qL := new(big.Int).SetUint64(ringQ.SubRings[level].Modulus)

		coeffs := make([]*big.Int, N)
		for i := range coeffs {
			coeffs[i] = bignum.RandInt(nil, ringQ.Modulus())
		}

		p0 := ringQ.NewPoly()
		ringQ.SetCoefficientsBigint(coeffs, p0)
		p1 := ringQ.AtLevel(level - 1).NewPoly()

		ringQ.DivFloorByLastModulus(p0, p1)

		want := make([]*big.Int, N)
		for i := range coeffs {
			want[i] = new(big.Int).Quo(coeffs[i], qL)
		}

		pWant := ringQ.AtLevel(level - 1).NewPoly()
		ringQ.AtLevel(level-1).SetCoefficientsBigint(want, pWant)
		require.True(t, ringQ.AtLevel(level-1).Equal(pWant, p1))
	})

	t.Run(testString("DivByLastModulusLSB", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		level := ringQ.MaxLevel()
		rQ := ringQ.AtLevel(level - 1)
		qL := new(big.Int).SetUint64(ringQ.SubRings[level].Modulus)

		tMod := uint64(65537)
		bigT := new(big.Int).SetUint64(tMod)

		coeffs := randomCentered(N, new(big.Int).Rsh(ringQ.Modulus(), 2))

		p0 := ringQ.NewPoly()
		ringQ.SetCoefficientsBigint(coeffs, p0)
		ringQ.NTT(p0, p0)

		buff := ringQ.NewPoly()
		p1 := rQ.NewPoly()
		ringQ.DivByLastModulusLSBNTT(tMod, p0, buff, p1)
		rQ.INTT(p1, p1)

		have := make([]*big.Int, N)
		rQ.PolyToBigintCentered(p1, 1, have)

		bound := new(big.Int).Mul(qL, bigT)
		delta := new(big.Int)
		for i := range coeffs {
			delta.Mul(have[i], qL)
			delta.Sub(coeffs[i], delta)
			require.Zero(t, new(big.Int).Mod(delta, bigT).Sign())
			require.True(t, delta.CmpAbs(bound) <= 0)
		}
	})
}

func testAutomorphism(tc *testContext, t *testing.T) {

	t.Run(testString("Automorphism", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		N := ringQ.N()

		for _, galEl := range []uint64{5, 25, uint64(2*N - 1)} {

			p0 := tc.uniformSamplerQ.ReadNew()
			pWant := ringQ.NewPoly()
			ringQ.Automorphism(p0, galEl, pWant)
			ringQ.NTT(pWant, pWant)

			pNTT := ringQ.NewPoly()
			ringQ.NTT(p0, pNTT)
			pTest := ringQ.NewPoly()
			ringQ.AutomorphismNTT(pNTT, galEl, pTest)

			require.True(t, ringQ.Equal(pWant, pTest))
		}

		// X -> X^(2N-1) maps X to -X^(N-1)
		p0 := ringQ.NewPoly()
		for i := range p0.Coeffs {
			p0.Coeffs[i][1] = 1
		}
		p1 := ringQ.NewPoly()
		ringQ.Automorphism(p0, uint64(2*N-1), p1)
		for i, s := range ringQ.SubRings {
			require.Equal(t, s.Modulus-1, p1.Coeffs[i][N-1])
		}
	})
}

func testMultByMonomial(tc *testContext, t *testing.T) {

	t.Run(testString("MultByMonomial", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		N := ringQ.N()

		p0 := tc.uniformSamplerQ.ReadNew()
		p1 := ringQ.NewPoly()
		p2 := ringQ.NewPoly()

		ringQ.MultByMonomial(p0, 1, p1)
		ringQ.MultByMonomial(p1, N-1, p2)

		// X^N = -1
		ringQ.Neg(p2, p2)
		require.True(t, ringQ.Equal(p0, p2))
	})
}

func testSampler(tc *testContext, t *testing.T) {

	N := tc.ringQ.N()

	t.Run(testString("Sampler/Uniform", tc.ringQ), func(t *testing.T) {
		pol := tc.uniformSamplerQ.ReadNew()
		for i, s := range tc.ringQ.SubRings {
			for _, c := range pol.Coeffs[i] {
				require.Less(t, c, s.Modulus)
			}
		}
	})

	t.Run(testString("Sampler/Gaussian", tc.ringQ), func(t *testing.T) {

		X := DiscreteGaussian{Sigma: 3.2, Bound: 19}
		sampler, err := NewSampler(tc.prng, tc.ringQ, X)
		require.NoError(t, err)

		pol := sampler.ReadNew()
		coeffs := make([]*big.Int, N)
		tc.ringQ.PolyToBigintCentered(pol, 1, coeffs)

		bound := big.NewInt(19)
		var nonZero int
		for _, c := range coeffs {
			require.True(t, c.CmpAbs(bound) <= 0)
			if c.Sign() != 0 {
				nonZero++
			}
		}
		require.Greater(t, nonZero, N/2)
	})

	t.Run(testString("Sampler/Ternary/P", tc.ringQ), func(t *testing.T) {

		sampler, err := NewSampler(tc.prng, tc.ringQ, Ternary{P: 0.5})
		require.NoError(t, err)

		pol := sampler.ReadNew()
		coeffs := make([]*big.Int, N)
		tc.ringQ.PolyToBigintCentered(pol, 1, coeffs)

		one := big.NewInt(1)
		for _, c := range coeffs {
			require.True(t, c.CmpAbs(one) <= 0)
		}
	})

	t.Run(testString("Sampler/Ternary/H", tc.ringQ), func(t *testing.T) {

		H := 64
		sampler, err := NewSampler(tc.prng, tc.ringQ, Ternary{H: H})
		require.NoError(t, err)

		pol := sampler.ReadNew()
		coeffs := make([]*big.Int, N)
		tc.ringQ.PolyToBigintCentered(pol, 1, coeffs)

		var hw int
		one := big.NewInt(1)
		for _, c := range coeffs {
			require.True(t, c.CmpAbs(one) <= 0)
			if c.Sign() != 0 {
				hw++
			}
		}
		require.Equal(t, H, hw)

		_, err = NewSampler(tc.prng, tc.ringQ, Ternary{P: 0.5, H: H})
		require.Error(t, err)
	})

	t.Run(testString("Sampler/ParametersFromMap", tc.ringQ), func(t *testing.T) {

		X, err := ParametersFromMap(map[string]interface{}{"Type": "DiscreteGaussian", "Sigma": 3.2, "Bound": 19.2})
		require.NoError(t, err)
		require.Equal(t, DiscreteGaussian{Sigma: 3.2, Bound: 19.2}, X)

		X, err = ParametersFromMap(map[string]interface{}{"Type": "Ternary", "H": 192.0})
		require.NoError(t, err)
		require.Equal(t, Ternary{H: 192}, X)

		_, err = ParametersFromMap(map[string]interface{}{"Type": "Binomial"})
		require.Error(t, err)
	})
}

func testDecomposeWindow(tc *testContext, t *testing.T) {

	t.Run(testString("DecomposeWindow", tc.ringQ), func(t *testing.T) {

		N := tc.ringQ.N()
		logBase := 10

		p1 := tc.uniformSamplerQ.ReadNew().Coeffs[0]
		sum := make([]uint64, N)
		digit := make([]uint64, N)

		for w := 0; w*logBase < 64; w++ {
			DecomposeWindow(p1, w, logBase, digit)
			for j := range digit {
				require.Less(t, digit[j], uint64(1)<<logBase)
				sum[j] += digit[j] << uint(w*logBase)
			}
		}

		require.Equal(t, p1, sum)
	})
}
