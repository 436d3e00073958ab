package quantum

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"futarchy/amm"
	"futarchy/escrow"
	"futarchy/spotpool"
	"futarchy/store"
)

func newFundedSpot(t *testing.T) *spotpool.SpotPool {
	t.Helper()
	s := spotpool.New(store.ID{1}, 30)
	_, err := s.AddLiquidity(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), nil)
	require.NoError(t, err)
	return s
}

func newOutcomePools(n int) []*amm.Pool {
	pools := make([]*amm.Pool, n)
	for i := range pools {
		pools[i] = amm.New(store.ID{byte(i + 10)}, 30)
	}
	return pools
}

func TestSplitRejectsRatioOutOfBounds(t *testing.T) {
	spot := newFundedSpot(t)
	require.NoError(t, spot.SetActiveProposal(store.ID{7}))
	esc := escrow.New(store.ID{2}, store.ID{3}, 2)
	pools := newOutcomePools(2)

	_, err := Split(spot, esc, pools, store.ID{7}, 5, nil)
	require.ErrorIs(t, err, ErrInvalidRatio)

	_, err = Split(spot, esc, pools, store.ID{7}, 95, nil)
	require.ErrorIs(t, err, ErrInvalidRatio)
}

func TestSplitFundsEveryOutcomeEqually(t *testing.T) {
	spot := newFundedSpot(t)
	require.NoError(t, spot.SetActiveProposal(store.ID{7}))
	esc := escrow.New(store.ID{2}, store.ID{3}, 3)
	pools := newOutcomePools(3)

	record, err := Split(spot, esc, pools, store.ID{7}, 50, nil)
	require.NoError(t, err)
	require.True(t, record.totalAsset().Sign() > 0)

	for _, pool := range pools {
		require.Equal(t, pools[0].ReserveAsset.Uint256().Uint64(), pool.ReserveAsset.Uint256().Uint64())
		require.Equal(t, pools[0].ReserveStable.Uint256().Uint64(), pool.ReserveStable.Uint256().Uint64())
	}
	require.NoError(t, esc.CheckInvariant())
}

func TestSplitPullsFromBothLiveAndTransitioning(t *testing.T) {
	spot := newFundedSpot(t)
	live := spot.LiveLP.Uint256()
	half := new(uint256.Int).Div(live, uint256.NewInt(2))
	require.NoError(t, spot.MarkForWithdrawal(half))
	require.NoError(t, spot.SetActiveProposal(store.ID{7}))

	esc := escrow.New(store.ID{2}, store.ID{3}, 2)
	pools := newOutcomePools(2)

	record, err := Split(spot, esc, pools, store.ID{7}, 50, nil)
	require.NoError(t, err)
	require.True(t, record.AssetFromLive.Uint256().Sign() > 0)
	require.True(t, record.AssetFromTransitioning.Uint256().Sign() > 0)
}

func TestRecombineRoutesReservesBackAndClearsLock(t *testing.T) {
	spot := newFundedSpot(t)
	require.NoError(t, spot.SetActiveProposal(store.ID{7}))

	esc := escrow.New(store.ID{2}, store.ID{3}, 2)
	pools := newOutcomePools(2)

	record, err := Split(spot, esc, pools, store.ID{7}, 50, nil)
	require.NoError(t, err)

	err = Recombine(spot, esc, pools, store.ID{7}, 1, record)
	require.NoError(t, err)

	require.Nil(t, spot.ActiveProposalID)
	require.True(t, pools[1].LPSupply.IsZero())
	require.NoError(t, esc.CheckInvariant())
}

func TestRecombineAfterWinningOutcomeTradeDoesNotFail(t *testing.T) {
	spot := newFundedSpot(t)
	require.NoError(t, spot.SetActiveProposal(store.ID{7}))

	esc := escrow.New(store.ID{2}, store.ID{3}, 2)
	pools := newOutcomePools(2)

	record, err := Split(spot, esc, pools, store.ID{7}, 50, nil)
	require.NoError(t, err)

	// Trade on the winning outcome's own curve: this pushes its reclaimed
	// stable leg above what escrow recorded as per-outcome supply and its
	// asset leg below, exactly the imbalance Recombine must tolerate.
	_, err = pools[1].Swap(amm.StableToAsset, uint256.NewInt(1_000), uint256.NewInt(0))
	require.NoError(t, err)

	err = Recombine(spot, esc, pools, store.ID{7}, 1, record)
	require.NoError(t, err)

	require.Nil(t, spot.ActiveProposalID)
	require.NoError(t, esc.CheckInvariant())
}

func TestSplitBelowMinLiquidityRejected(t *testing.T) {
	spot := newFundedSpot(t)
	require.NoError(t, spot.SetActiveProposal(store.ID{7}))
	esc := escrow.New(store.ID{2}, store.ID{3}, 2)
	pools := newOutcomePools(2)

	_, err := Split(spot, esc, pools, store.ID{7}, 10, uint256.NewInt(10_000_000))
	require.ErrorIs(t, err, ErrBelowMinLiquidity)
}
