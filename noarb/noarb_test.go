package noarb

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"futarchy/amm"
	"futarchy/fxmath"
	"futarchy/store"
)

func priceOf(raw uint64) fxmath.Price { return fxmath.NewPrice(raw) }

func TestBandFloorBelowCeiling(t *testing.T) {
	prices := []fxmath.Price{priceOf(1_500_000_000_000), priceOf(500_000_000_000)}
	fees := []uint32{30, 30}
	floor, ceiling := Band(prices, 30, fees)
	require.True(t, floor.Cmp(ceiling) <= 0)
}

func TestBandSinglePriceNoFeeIsExact(t *testing.T) {
	prices := []fxmath.Price{priceOf(1_000_000_000_000)}
	floor, ceiling := Band(prices, 0, []uint32{0})
	require.Equal(t, uint64(1_000_000_000_000), floor.Uint256().Uint64())
	require.Equal(t, uint64(1_000_000_000_000), ceiling.Uint256().Uint64())
}

func TestInBand(t *testing.T) {
	floor := priceOf(500_000_000_000)
	ceiling := priceOf(1_500_000_000_000)
	require.True(t, InBand(priceOf(1_000_000_000_000), floor, ceiling))
	require.False(t, InBand(priceOf(300_000_000_000), floor, ceiling))
	require.False(t, InBand(priceOf(1_600_000_000_000), floor, ceiling))
}

func TestFindOptimalArbitrageFindsProfitableTrade(t *testing.T) {
	spot := amm.New(store.ID{1}, 0)
	_, err := spot.AddLiquidity(uint256.NewInt(1_000_000_000), uint256.NewInt(1_000_000_000), nil)
	require.NoError(t, err)

	// A conditional pool priced much higher than spot (cheap asset here
	// relative to conditional) creates a profitable spot->conditional loop.
	cond := amm.New(store.ID{2}, 0)
	_, err = cond.AddLiquidity(uint256.NewInt(500_000_000), uint256.NewInt(1_500_000_000), nil)
	require.NoError(t, err)

	plan, found := FindOptimalArbitrage(SpotToConditional, spot, []*amm.Pool{cond}, uint256.NewInt(10_000_000), nil)
	require.True(t, found)
	require.True(t, plan.Profit.Sign() > 0)
	require.Equal(t, 0, plan.OutcomeIndex)
}

func TestFindOptimalArbitrageNoProfitWhenBalanced(t *testing.T) {
	spot := amm.New(store.ID{1}, 30)
	_, err := spot.AddLiquidity(uint256.NewInt(1_000_000_000), uint256.NewInt(1_000_000_000), nil)
	require.NoError(t, err)

	cond := amm.New(store.ID{2}, 30)
	_, err = cond.AddLiquidity(uint256.NewInt(1_000_000_000), uint256.NewInt(1_000_000_000), nil)
	require.NoError(t, err)

	_, found := FindOptimalArbitrage(SpotToConditional, spot, []*amm.Pool{cond}, uint256.NewInt(1_000_000), nil)
	require.False(t, found)
}
