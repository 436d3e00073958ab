package quantum

import "errors"

var (
	ErrInvalidRatio       = errors.New("quantum: ratio_pct must be between 10 and 90")
	ErrBelowMinLiquidity  = errors.New("quantum: split amount below configured minimum conditional liquidity")
	ErrUnknownSplitSource = errors.New("quantum: split record has unknown source bucket")
	ErrAlreadyRecombined  = errors.New("quantum: outcome already recombined")
)
