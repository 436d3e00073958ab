package proposal

import "errors"

var (
	ErrInvalidState       = errors.New("proposal: operation not valid in current state")
	ErrTooFewOutcomes     = errors.New("proposal: outcome_count must be >= 2")
	ErrTooManyOutcomes    = errors.New("proposal: outcome_count exceeds MaxOutcomes")
	ErrActionsLocked      = errors.New("proposal: actions may only be staged in PREMARKET")
	ErrReviewPeriodActive = errors.New("proposal: review_period has not yet elapsed")
	ErrTradingPeriodActive = errors.New("proposal: trading_period has not yet elapsed")
	ErrOutcomeOutOfRange  = errors.New("proposal: outcome_index out of range")
)
