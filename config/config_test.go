package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDAOConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dao.toml")

	cfg, err := LoadDAOConfig(path)
	require.NoError(t, err)
	require.Equal(t, uint32(50), cfg.ConditionalLiquidityRatioPct)
	require.NoError(t, ValidateDAOConfig(cfg))

	reloaded, err := LoadDAOConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ReviewPeriodMs, reloaded.ReviewPeriodMs)
}

func TestValidateDAOConfigRejectsOutOfRangeRatio(t *testing.T) {
	cfg := defaultDAOConfig()
	cfg.ConditionalLiquidityRatioPct = 0
	require.Error(t, ValidateDAOConfig(cfg))
}

func TestValidateDAOConfigRejectsTooFewOutcomes(t *testing.T) {
	cfg := defaultDAOConfig()
	cfg.MaxOutcomes = 1
	require.Error(t, ValidateDAOConfig(cfg))
}

func TestProposalFeeParses(t *testing.T) {
	cfg := defaultDAOConfig()
	cfg.ProposalFeePerOutcome = "1000000000000"
	fee, err := cfg.ProposalFee()
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000_000), fee.Uint256().Uint64())
}

func TestLoadDAOConfigBundle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.yaml")

	const bundle = `
treasury-a:
  ReviewPeriodMs: 30000
  TradingPeriodMs: 60000
  ExecutionWindowMs: 600000
  AMMFeeBps: 30
  MaxOutcomes: 4
  MaxActionsPerOutcome: 8
  ProposalFeePerOutcome: "0"
  TWAPStartDelayMs: 0
  TWAPStepMax: "1000000000000000"
  TWAPWinThreshold: "0"
  ConditionalLiquidityRatioPct: 50
  MinConditionalLiquidity: "0"
  SponsorshipBiasMode: additive
  PCWWindowSizeMs: 3600000
  PCWMaxMovementPpm: 50000
`
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o644))

	fixtures, err := LoadDAOConfigBundle(path)
	require.NoError(t, err)
	require.Contains(t, fixtures, "treasury-a")
	require.Equal(t, uint32(4), uint32(fixtures["treasury-a"].MaxOutcomes))
}

func TestLoadDAOConfigBundleRejectsInvalidEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.yaml")

	const bundle = `
broken:
  ReviewPeriodMs: 30000
  TradingPeriodMs: 60000
  ExecutionWindowMs: 600000
  AMMFeeBps: 30
  MaxOutcomes: 1
  MaxActionsPerOutcome: 8
  ProposalFeePerOutcome: "0"
  TWAPStepMax: "1000000000000000"
  TWAPWinThreshold: "0"
  ConditionalLiquidityRatioPct: 50
  MinConditionalLiquidity: "0"
  SponsorshipBiasMode: additive
  PCWWindowSizeMs: 3600000
  PCWMaxMovementPpm: 50000
`
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o644))

	_, err := LoadDAOConfigBundle(path)
	require.Error(t, err)
}

func TestLoadGlobalCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global.toml")

	g, err := LoadGlobal(path)
	require.NoError(t, err)
	require.Equal(t, ":9464", g.MetricsAddr)
}
