package amm

import "errors"

// Validation and state errors surface to the caller and trigger transaction
// rollback, following the sentinel-error-per-package convention the teacher
// uses (core/errors/stake.go, native/lending/*).
var (
	ErrSlippageExceeded      = errors.New("amm: slippage exceeded")
	ErrInsufficientLiquidity = errors.New("amm: insufficient liquidity")
	ErrInvalidRatio          = errors.New("amm: deposit ratio outside tolerance")
	ErrZeroAmount            = errors.New("amm: amount must be positive")
	ErrInsufficientLP        = errors.New("amm: insufficient LP balance")
)

// ErrProductInvariantViolated is a fatal invariant error per spec.md §7: it
// must never be reachable in practice. Swap checks the post-swap product
// before committing any reserve or fee change, so reaching it aborts the
// operation and leaves the pool unchanged.
var ErrProductInvariantViolated = errors.New("amm: product invariant violated (fatal)")
