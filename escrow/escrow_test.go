package escrow

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"futarchy/store"
)

func TestMintCompleteSetGrowsAllOutcomes(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 3)
	require.NoError(t, e.MintCompleteSet(Asset, uint256.NewInt(100)))
	for i := 0; i < 3; i++ {
		require.Equal(t, uint64(100), e.SupplyAsset[i].Uint256().Uint64())
	}
	require.Equal(t, uint64(100), e.SpotAsset.Uint256().Uint64())
	require.NoError(t, e.CheckInvariant())
}

func TestDepositAndMintIsSingleSided(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 3)
	_, err := e.DepositAndMint(Asset, 1, uint256.NewInt(50))
	require.NoError(t, err)
	require.Equal(t, uint64(50), e.SupplyAsset[1].Uint256().Uint64())
	require.Equal(t, uint64(0), e.SupplyAsset[0].Uint256().Uint64())
	require.Equal(t, uint64(50), e.SpotAsset.Uint256().Uint64())
}

func TestBurnCompleteSetRequiresAllOutcomes(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 2)
	require.NoError(t, e.MintCompleteSet(Asset, uint256.NewInt(100)))
	require.NoError(t, e.BurnCompleteSetAndWithdraw(Asset, uint256.NewInt(40)))
	require.Equal(t, uint64(60), e.SpotAsset.Uint256().Uint64())
	require.Equal(t, uint64(60), e.SupplyAsset[0].Uint256().Uint64())
	require.Equal(t, uint64(60), e.SupplyAsset[1].Uint256().Uint64())
}

func TestBurnCompleteSetFailsIfOneOutcomeShort(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 2)
	require.NoError(t, e.MintCompleteSet(Asset, uint256.NewInt(100)))
	_, err := e.DepositAndMint(Asset, 0, uint256.NewInt(0))
	_ = err // no-op, outcome 0 has exactly 100
	require.NoError(t, e.BurnAndWithdraw(Asset, 1, uint256.NewInt(90)))
	err = e.BurnCompleteSetAndWithdraw(Asset, uint256.NewInt(50))
	require.ErrorIs(t, err, ErrInsufficientSupply)
}

func TestRedeemWinningOnlyAfterFinalize(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 2)
	require.NoError(t, e.MintCompleteSet(Asset, uint256.NewInt(100)))

	err := e.RedeemWinning(Asset, 1, uint256.NewInt(10))
	require.ErrorIs(t, err, ErrNotFinalized)

	require.NoError(t, e.Finalize(1))
	require.NoError(t, e.RedeemWinning(Asset, 1, uint256.NewInt(10)))

	err = e.RedeemWinning(Asset, 0, uint256.NewInt(10))
	require.ErrorIs(t, err, ErrNotAWinner)
}

func TestUnknownOutcomeRejected(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 2)
	_, err := e.DepositAndMint(Asset, 5, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestRegisterConditionalCoinRoundTrips(t *testing.T) {
	e := New(store.ID{1}, store.ID{2}, 2)
	require.NoError(t, e.RegisterConditionalCoin(Asset, 1, "COND-A-1"))

	symbol, ok := e.ConditionalCoinSymbol(Asset, 1)
	require.True(t, ok)
	require.Equal(t, "COND-A-1", symbol)

	_, ok = e.ConditionalCoinSymbol(Stable, 1)
	require.False(t, ok)

	require.ErrorIs(t, e.RegisterConditionalCoin(Asset, 5, "bad"), ErrUnknownOutcome)
}
