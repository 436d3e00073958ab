package spotpool

import "errors"

var (
	ErrBusy                 = errors.New("spotpool: proposal already active")
	ErrNoActiveProposal     = errors.New("spotpool: no active proposal")
	ErrWrongProposal        = errors.New("spotpool: caller's proposal does not hold the active lock")
	ErrInsufficientLP       = errors.New("spotpool: insufficient LP balance in bucket")
	ErrLPLockedInProposal   = errors.New("spotpool: LP is locked in TRANSITIONING by an active proposal")
	ErrLiquidityOpsDisabled = errors.New("spotpool: add/remove liquidity disabled while a proposal is active")
	ErrZeroAmount           = errors.New("spotpool: amount must be positive")
)
