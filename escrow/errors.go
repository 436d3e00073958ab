package escrow

import "errors"

var (
	ErrUnknownOutcome     = errors.New("escrow: unknown outcome index")
	ErrInsufficientSupply = errors.New("escrow: insufficient conditional supply")
	ErrInsufficientSpot   = errors.New("escrow: insufficient spot balance")
	ErrNotAWinner         = errors.New("escrow: outcome is not the market winner")
	ErrNotFinalized       = errors.New("escrow: proposal is not finalized")
	ErrZeroAmount         = errors.New("escrow: amount must be positive")
)

// ErrSupplyExceedsBacking is the fatal internal-consistency failure named in
// spec.md §4.3: a conditional supply counter exceeding its spot backing must
// never be reachable in practice. Every mint/burn path checks the
// complete-set invariant before committing, so this only surfaces a
// programming error upstream rather than a recoverable user condition.
var ErrSupplyExceedsBacking = errors.New("escrow: conditional supply exceeds spot backing (fatal)")
