package config

import "fmt"

// MinReviewPeriodMs guards against a review window so short that proposers
// could not reasonably contest a PREMARKET action list.
var MinReviewPeriodMs int64 = 1_000

// ValidateDAOConfig checks a DAOConfig's invariants, per spec.md §6's
// enumerated bounds (conditional_liquidity_ratio_pct ∈ [1,99], etc.).
func ValidateDAOConfig(c *DAOConfig) error {
	if c.ReviewPeriodMs < MinReviewPeriodMs {
		return fmt.Errorf("config: ReviewPeriodMs too small")
	}
	if c.TradingPeriodMs <= 0 {
		return fmt.Errorf("config: TradingPeriodMs must be positive")
	}
	if c.ExecutionWindowMs <= 0 {
		return fmt.Errorf("config: ExecutionWindowMs must be positive")
	}
	if c.AMMFeeBps > 10_000 {
		return fmt.Errorf("config: AMMFeeBps out of range")
	}
	if c.MaxOutcomes < 2 {
		return fmt.Errorf("config: MaxOutcomes must be >= 2 (outcome 0 is REJECT)")
	}
	if c.MaxActionsPerOutcome <= 0 {
		return fmt.Errorf("config: MaxActionsPerOutcome must be positive")
	}
	if c.ConditionalLiquidityRatioPct < 1 || c.ConditionalLiquidityRatioPct > 99 {
		return fmt.Errorf("config: ConditionalLiquidityRatioPct must be in [1,99]")
	}
	if c.SponsorshipBiasMode != "additive" {
		return fmt.Errorf("config: SponsorshipBiasMode must be %q", "additive")
	}
	return nil
}
