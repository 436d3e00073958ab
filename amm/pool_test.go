package amm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"futarchy/store"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p := New(store.ID{1}, 30) // 30 bps fee
	_, err := p.AddLiquidity(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), nil)
	require.NoError(t, err)
	return p
}

func TestAddLiquidityFirstDepositLocksDust(t *testing.T) {
	p := New(store.ID{1}, 30)
	lpOut, err := p.AddLiquidity(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), nil)
	require.NoError(t, err)
	// sqrt(1_000_000 * 1_000_000) - DustLock
	require.Equal(t, uint256.NewInt(1_000_000-1_000).Uint64(), lpOut.Uint64())
	require.True(t, p.LPSupply.Uint256().Cmp(lpOut) > 0, "minted LP supply must exceed lpOut by the locked dust")
}

func TestSwapNeverDecreasesK(t *testing.T) {
	p := newTestPool(t)
	kBefore := p.k()

	out, err := p.Swap(AssetToStable, uint256.NewInt(10_000), nil)
	require.NoError(t, err)
	require.True(t, out.Sign() > 0)

	kAfter := p.k()
	require.True(t, kAfter.Cmp(kBefore) >= 0, "k must not decrease across a fee-bearing swap")
}

func TestSwapSlippageExceeded(t *testing.T) {
	p := newTestPool(t)
	hugeMin := uint256.NewInt(999_999_999)
	_, err := p.Swap(AssetToStable, uint256.NewInt(10_000), hugeMin)
	require.ErrorIs(t, err, ErrSlippageExceeded)
}

func TestSwapZeroAmountRejected(t *testing.T) {
	p := newTestPool(t)
	_, err := p.Swap(AssetToStable, uint256.NewInt(0), nil)
	require.ErrorIs(t, err, ErrZeroAmount)
}

func TestAddLiquidityRejectsOffRatioDeposit(t *testing.T) {
	p := newTestPool(t)
	_, err := p.AddLiquidity(uint256.NewInt(1_000_000), uint256.NewInt(10), nil)
	require.ErrorIs(t, err, ErrInvalidRatio)
}

func TestRemoveLiquidityProportional(t *testing.T) {
	p := newTestPool(t)
	lpSupply := p.LPSupply.Uint256()

	half := new(uint256.Int).Div(lpSupply, uint256.NewInt(2))
	assetOut, stableOut, err := p.RemoveLiquidity(half, nil, nil)
	require.NoError(t, err)
	require.True(t, assetOut.Sign() > 0)
	require.True(t, stableOut.Sign() > 0)
}

func TestRemoveLiquidityInsufficientLP(t *testing.T) {
	p := newTestPool(t)
	tooMuch := new(uint256.Int).Add(p.LPSupply.Uint256(), uint256.NewInt(1))
	_, _, err := p.RemoveLiquidity(tooMuch, nil, nil)
	require.ErrorIs(t, err, ErrInsufficientLP)
}

func TestPriceMatchesReserveRatio(t *testing.T) {
	p := newTestPool(t)
	price := p.Price()
	// Equal reserves imply a price of exactly PriceScale (1.0).
	require.Equal(t, uint256.NewInt(1_000_000_000_000).Uint64(), price.Uint256().Uint64())
}
