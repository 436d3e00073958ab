package futarchy

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"futarchy/action"
	"futarchy/amm"
	"futarchy/config"
	"futarchy/escrow"
	"futarchy/store"
)

func newTestFacade() *Facade {
	kv := store.NewMemKV()
	dispatcher := action.NewDispatcher()
	return New(kv, dispatcher, NoopEmitter{}, 1_000, 1_000)
}

func testDAOConfig() config.DAOConfig {
	return config.DAOConfig{
		ReviewPeriodMs:               1_000,
		TradingPeriodMs:              1_000,
		ExecutionWindowMs:            10_000,
		AMMFeeBps:                    30,
		MaxOutcomes:                  8,
		MaxActionsPerOutcome:         4,
		ProposalFeePerOutcome:        "0",
		TWAPStartDelayMs:             0,
		TWAPStepMax:                  "1000000000000000",
		TWAPWinThreshold:             "0",
		ConditionalLiquidityRatioPct: 50,
		MinConditionalLiquidity:      "0",
		SponsorshipBiasMode:          "additive",
		PCWWindowSizeMs:              3_600_000,
		PCWMaxMovementPpm:            50_000,
	}
}

func TestFacadeFullLifecycle(t *testing.T) {
	f := newTestFacade()
	cfg := testDAOConfig()

	daoID, err := f.CreateDAO(cfg, uint256.NewInt(10_000_000), uint256.NewInt(10_000_000), 0)
	require.NoError(t, err)

	ran := false
	f.dispatcher.Register(action.TypeMemo, func([]byte) error {
		ran = true
		return nil
	})

	proposalID, err := f.CreateProposal(daoID, "Raise the fee", "intro", "{}", "alice", 2, []string{"reject", "accept"}, 0)
	require.NoError(t, err)

	require.NoError(t, f.StageAction(proposalID, 1, action.New(action.TypeMemo, []byte("hi"))))
	require.NoError(t, f.AdvanceToReview(proposalID, 0))
	require.NoError(t, f.AdvanceToTrading(proposalID, 1_000))

	out, err := f.SwapConditional(proposalID, 1, amm.StableToAsset, uint256.NewInt(1_000), uint256.NewInt(0), 1_200)
	require.NoError(t, err)
	require.NotNil(t, out)

	require.NoError(t, f.Finalize(proposalID, 2_000))

	p, err := f.loadProposal(proposalID)
	require.NoError(t, err)
	require.NotNil(t, p.MarketWinner)

	require.NoError(t, f.Execute(proposalID, 2_500))

	p, err = f.loadProposal(proposalID)
	require.NoError(t, err)
	if *p.MarketWinner == 1 {
		require.True(t, ran)
		require.NotNil(t, p.ExecutedOutcome)
	}
}

func TestFacadeSwapSpotUpdatesPCWOracle(t *testing.T) {
	f := newTestFacade()
	cfg := testDAOConfig()
	daoID, err := f.CreateDAO(cfg, uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), 0)
	require.NoError(t, err)

	out, err := f.SwapSpot(daoID, amm.AssetToStable, uint256.NewInt(10_000), uint256.NewInt(0), 100)
	require.NoError(t, err)
	require.NotNil(t, out)

	dao, err := f.loadDAO(daoID)
	require.NoError(t, err)
	pcw, ok, err := f.pcwOracles.Get(dao.PCWOracleID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, pcw.Checkpoints, 1) // gap not yet elapsed
}

func TestFacadeMintAndBurnCompleteSet(t *testing.T) {
	f := newTestFacade()
	cfg := testDAOConfig()
	daoID, err := f.CreateDAO(cfg, uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), 0)
	require.NoError(t, err)

	proposalID, err := f.CreateProposal(daoID, "t", "i", "{}", "alice", 2, []string{"reject", "accept"}, 0)
	require.NoError(t, err)
	require.NoError(t, f.AdvanceToReview(proposalID, 0))

	require.NoError(t, f.MintCompleteSet(proposalID, escrow.Asset, uint256.NewInt(5_000)))
	require.NoError(t, f.BurnCompleteSet(proposalID, escrow.Asset, uint256.NewInt(2_000)))
}

func TestFacadeClaimWithdrawalRequiresMark(t *testing.T) {
	f := newTestFacade()
	cfg := testDAOConfig()
	daoID, err := f.CreateDAO(cfg, uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), 0)
	require.NoError(t, err)

	_, _, err = f.ClaimWithdrawal(daoID, uint256.NewInt(1))
	require.Error(t, err)
}
