package ringqp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

func TestRingQP(t *testing.T) {
	LogN := 10

	primes, err := ring.NewNTTFriendlyPrimesGenerator(60, 2<<LogN).NextDownstreamPrimes(6)
	require.NoError(t, err)

	ringQ, err := ring.NewRing(1<<LogN, primes[:4])
	require.NoError(t, err)

	ringP, err := ring.NewRing(1<<LogN, primes[4:])
	require.NoError(t, err)

	ringQP := Ring{ringQ, ringP}

	usampler := NewUniformSampler(sampling.NewPRNG(), ringQP)

	t.Run("AtLevel", func(t *testing.T) {
		r := ringQP.AtLevel(1, -1)
		require.Equal(t, 1, r.LevelQ())
		require.Equal(t, -1, r.LevelP())

		p := r.NewPoly()
		require.Equal(t, 1, p.LevelQ())
		require.Equal(t, -1, p.LevelP())

		// operations on a ring without P leave the P part untouched
		r.Add(p, p, p)
		require.True(t, p.CopyNew().Equal(p))
	})

	t.Run("NTT/Add/Mul", func(t *testing.T) {

		a := usampler.ReadNew()
		b := usampler.ReadNew()

		c := ringQP.NewPoly()
		ringQP.NTT(a, c)
		ringQP.INTT(c, c)
		require.True(t, ringQP.Equal(a, c))

		ringQP.Add(a, b, c)
		ringQP.Sub(c, b, c)
		require.True(t, ringQP.Equal(a, c))

		// a*b - a*b = 0
		ringQP.MForm(b, b)
		ringQP.MulCoeffsMontgomery(a, b, c)
		ringQP.MulCoeffsMontgomeryThenSub(a, b, c)
		require.True(t, ringQP.Equal(ringQP.NewPoly(), c))

		ringQP.Neg(a, c)
		ringQP.Add(a, c, c)
		require.True(t, ringQP.Equal(ringQP.NewPoly(), c))
	})

	t.Run("UniformSampler/Levels", func(t *testing.T) {

		// Only the towers of the destination are sampled.
		p := ringQP.AtLevel(1, -1).NewPoly()
		usampler.Read(p)
		require.Equal(t, 1, p.LevelQ())
		require.Equal(t, -1, p.LevelP())

		for i, s := range ringQ.SubRings[:2] {
			for _, c := range p.Q.Coeffs[i] {
				require.Less(t, c, s.Modulus)
			}
		}
	})

	t.Run("UniformSampler/Common", func(t *testing.T) {

		// Samplers keyed with the same seed read the same polynomials.
		newSampler := func() UniformSampler {
			prng, err := sampling.NewKeyedPRNG([]byte{'c', 'r', 's'})
			require.NoError(t, err)
			return NewUniformSampler(prng, ringQP)
		}

		v0, v1 := newSampler().ReadVectorNew(3), newSampler().ReadVectorNew(3)
		for i := range v0 {
			require.True(t, ringQP.Equal(v0[i], v1[i]))
		}
		require.False(t, ringQP.Equal(v0[0], v0[1]))
	})

	t.Run("PolyToBigintCentered", func(t *testing.T) {

		N := ringQP.N()
		QP := ringQP.Modulus()

		coeffs := make([]*big.Int, N)
		for i := range coeffs {
			coeffs[i] = big.NewInt(int64(i) - int64(N/2))
		}

		p := ringQP.NewPoly()
		ringQ.SetCoefficientsBigint(coeffs, p.Q)
		ringP.SetCoefficientsBigint(coeffs, p.P)

		have := make([]*big.Int, N)
		ringQP.PolyToBigintCentered(p, 1, have)
		for i := range coeffs {
			require.Zero(t, coeffs[i].Cmp(have[i]))
		}

		require.Equal(t, 0, new(big.Int).Mul(ringQ.Modulus(), ringP.Modulus()).Cmp(QP))
	})

	t.Run("ExtendBasisSmallNormAndCenter", func(t *testing.T) {

		N := ringQP.N()
		small := make([]int64, N)
		for i := range small {
			small[i] = int64(i%7) - 3
		}

		pQ := ringQ.NewPoly()
		ringQ.SetCoefficientsInt64(small, pQ)

		want := ringQP.NewPoly()
		ringQ.SetCoefficientsInt64(small, want.Q)
		ringP.SetCoefficientsInt64(small, want.P)

		have := ringQP.NewPoly()
		ringQP.ExtendBasisSmallNormAndCenter(pQ, have.Q, have.P)
		require.True(t, ringQP.Equal(want, have))
	})

	t.Run("Log2OfStandardDeviation", func(t *testing.T) {
		p := ringQP.NewPoly()
		for i := range p.Q.Coeffs {
			for j := 0; j < ringQP.N(); j += 2 {
				p.Q.Coeffs[i][j] = 1 << 10
			}
		}
		for i := range p.P.Coeffs {
			for j := 0; j < ringQP.N(); j += 2 {
				p.P.Coeffs[i][j] = 1 << 10
			}
		}
		require.InDelta(t, 9, ringQP.Log2OfStandardDeviation(p), 0.1)
	})
}
