package fxmath

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestPriceAddSaturates(t *testing.T) {
	max := FromUint256(Max128)
	one := NewPrice(1)
	require.Equal(t, 0, max.Add(one).Cmp(max))
}

func TestPriceSubFloorsAtZero(t *testing.T) {
	small := NewPrice(1)
	big := NewPrice(2)
	require.True(t, small.Sub(big).IsZero())
}

func TestRatioPrice(t *testing.T) {
	num := uint256.NewInt(2_000_000)
	den := uint256.NewInt(1_000_000)
	p := RatioPrice(num, den)
	want := NewPrice(2 * PriceScale)
	require.Equal(t, 0, p.Cmp(want))
}

func TestRatioPriceZeroDenominator(t *testing.T) {
	p := RatioPrice(uint256.NewInt(5), uint256.NewInt(0))
	require.True(t, p.IsZero())
}

func TestClampStep(t *testing.T) {
	prev := NewPrice(1_000_000)
	step := NewPrice(10_000)
	require.Equal(t, 0, ClampStep(prev, NewPrice(1_100_000), step).Cmp(prev.Add(step)))
	require.Equal(t, 0, ClampStep(prev, NewPrice(900_000), step).Cmp(prev.Sub(step)))
	within := NewPrice(1_005_000)
	require.Equal(t, 0, ClampStep(prev, within, step).Cmp(within))
}

func TestSqrtMonotoneAndExact(t *testing.T) {
	for _, x := range []uint64{0, 1, 4, 15, 16, 1_000_000} {
		root := Sqrt(uint256.NewInt(x))
		rootSq := new(uint256.Int).Mul(root, root)
		require.True(t, rootSq.Cmp(uint256.NewInt(x)) <= 0, "sqrt(%d)^2 should be <= x", x)
		next := new(uint256.Int).Add(root, uint256.NewInt(1))
		nextSq := new(uint256.Int).Mul(next, next)
		require.True(t, nextSq.Gt(uint256.NewInt(x)), "(sqrt(%d)+1)^2 should be > x", x)
	}
}

func TestSignedAdd(t *testing.T) {
	a := NegativeSigned(NewPrice(5))
	b := PositiveSigned(NewPrice(3))
	sum := a.Add(b)
	require.True(t, sum.IsNegative)
	require.Equal(t, 0, sum.Magnitude.Cmp(NewPrice(2)))
}

func TestSignedLess(t *testing.T) {
	neg := NegativeSigned(NewPrice(5))
	pos := PositiveSigned(NewPrice(1))
	require.True(t, neg.Less(pos))
	require.False(t, pos.Less(neg))
}
