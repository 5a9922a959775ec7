package bignum

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundToInt(t *testing.T) {
	require.Equal(t, int64(3), RoundToInt(NewFloat(2.5, 64)).Int64())
	require.Equal(t, int64(-3), RoundToInt(NewFloat(-2.5, 64)).Int64())
	require.Equal(t, int64(2), RoundToInt(NewFloat(2.49, 64)).Int64())
}

func TestLog2(t *testing.T) {
	x := new(big.Int).Lsh(big.NewInt(1), 200)
	require.InDelta(t, 200.0, Log2Int(x), 1e-9)

	y, _ := Log2(NewFloat(1024.0, DefaultPrecision)).Float64()
	require.InDelta(t, 10.0, y, 1e-12)

	z, _ := Pow(NewFloat(2.0, DefaultPrecision), NewFloat(0.5, DefaultPrecision)).Float64()
	require.InDelta(t, 1.4142135623730951, z, 1e-15)
}

func TestDivRound(t *testing.T) {
	z := new(big.Int)
	require.Equal(t, int64(3), DivRound(big.NewInt(5), big.NewInt(2), z).Int64())
	require.Equal(t, int64(-3), DivRound(big.NewInt(-5), big.NewInt(2), z).Int64())
	require.Equal(t, int64(2), DivRound(big.NewInt(7), big.NewInt(3), z).Int64())

	n := RandInt(nil, big.NewInt(1000))
	require.True(t, n.Sign() >= 0 && n.Cmp(big.NewInt(1000)) < 0)
}
