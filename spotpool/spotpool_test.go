package spotpool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"futarchy/store"
)

func newFundedPool(t *testing.T) *SpotPool {
	t.Helper()
	s := New(store.ID{1}, 30)
	_, err := s.AddLiquidity(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), nil)
	require.NoError(t, err)
	return s
}

func TestAddLiquidityCreditsLiveBucket(t *testing.T) {
	s := newFundedPool(t)
	require.True(t, s.LiveLP.Uint256().Sign() > 0)
	require.True(t, s.TransitioningLP.IsZero())
}

func TestActiveProposalBlocksLiquidityOps(t *testing.T) {
	s := newFundedPool(t)
	require.NoError(t, s.SetActiveProposal(store.ID{9}))

	_, err := s.AddLiquidity(uint256.NewInt(1), uint256.NewInt(1), nil)
	require.ErrorIs(t, err, ErrLiquidityOpsDisabled)

	_, _, err = s.RemoveLiquidity(uint256.NewInt(1), nil, nil)
	require.ErrorIs(t, err, ErrLiquidityOpsDisabled)
}

func TestSecondActiveProposalRejectedBusy(t *testing.T) {
	s := newFundedPool(t)
	require.NoError(t, s.SetActiveProposal(store.ID{9}))
	err := s.SetActiveProposal(store.ID{10})
	require.ErrorIs(t, err, ErrBusy)
}

func TestMarkForWithdrawalMovesLiveToTransitioning(t *testing.T) {
	s := newFundedPool(t)
	live := s.LiveLP.Uint256()
	half := new(uint256.Int).Div(live, uint256.NewInt(2))

	require.NoError(t, s.MarkForWithdrawal(half))
	require.Equal(t, half.Uint64(), s.TransitioningLP.Uint256().Uint64())
}

func TestExtractFractionReducesBucketLP(t *testing.T) {
	s := newFundedPool(t)
	liveBefore := s.LiveLP.Uint256().Uint64()

	assetOut, stableOut, err := s.ExtractFraction(Live, 50)
	require.NoError(t, err)
	require.True(t, assetOut.Sign() > 0)
	require.True(t, stableOut.Sign() > 0)
	require.True(t, s.LiveLP.Uint256().Uint64() < liveBefore)
}

func TestInjectFractionWithdrawOnlyCreditsBalanceDirectly(t *testing.T) {
	s := newFundedPool(t)
	require.NoError(t, s.InjectFraction(WithdrawOnly, uint256.NewInt(500), uint256.NewInt(500)))
	require.Equal(t, uint64(500), s.WithdrawOnlyAsset.Uint256().Uint64())
	require.Equal(t, uint64(500), s.WithdrawOnlyStable.Uint256().Uint64())
	require.True(t, s.WithdrawOnlyLP.IsZero())
}

func TestMergeTransitioningAndClaimWithdrawal(t *testing.T) {
	s := newFundedPool(t)
	live := s.LiveLP.Uint256()
	half := new(uint256.Int).Div(live, uint256.NewInt(2))
	require.NoError(t, s.MarkForWithdrawal(half))

	require.NoError(t, s.MergeTransitioningToWithdrawOnly())
	require.True(t, s.TransitioningLP.IsZero())
	require.True(t, s.WithdrawOnlyLP.Uint256().Cmp(half) == 0)

	assetOut, stableOut, err := s.ClaimWithdrawal(half)
	require.NoError(t, err)
	require.True(t, assetOut.Sign() > 0)
	require.True(t, stableOut.Sign() > 0)
	require.True(t, s.WithdrawOnlyLP.IsZero())
}

func TestClaimWithdrawalInsufficientLP(t *testing.T) {
	s := newFundedPool(t)
	_, _, err := s.ClaimWithdrawal(uint256.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientLP)
}
