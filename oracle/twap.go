// Package oracle implements the two TWAP oracle variants spec.md §4.5
// describes: a per-AMM cumulative-price oracle consulted at finalize time to
// pick the winning outcome, and a checkpointed spot oracle (PCW) used for
// proposal-creation readiness checks and spot price display.
//
// Grounded on the teacher's native/lending accrual pattern (index.go-style
// monotone accumulators updated lazily on each mutating call) generalized to
// a time-weighted cumulative price rather than an interest index.
package oracle

import (
	"github.com/holiman/uint256"

	"futarchy/fxmath"
)

// TWAPOracle accumulates a time-weighted price series for a single AMM, per
// spec.md §4.5.
type TWAPOracle struct {
	InitialPrice    fxmath.Price `json:"initial_price"`
	CumulativePrice fxmath.Price `json:"cumulative_price"`
	LastPrice       fxmath.Price `json:"last_price"`
	LastTimestamp   int64        `json:"last_timestamp"`
	StartTime       int64        `json:"start_time"`
	StartDelay      int64        `json:"start_delay"`
	StepMax         fxmath.Price `json:"step_max"`
}

// NewTWAPOracle constructs an oracle seeded with an initial price observed
// at startTime, with a start delay (warm-up) and a per-observation step
// clamp.
func NewTWAPOracle(initialPrice fxmath.Price, startTime, startDelay int64, stepMax fxmath.Price) *TWAPOracle {
	return &TWAPOracle{
		InitialPrice:    initialPrice,
		CumulativePrice: fxmath.NewPrice(0),
		LastPrice:       initialPrice,
		LastTimestamp:   startTime,
		StartTime:       startTime,
		StartDelay:      startDelay,
		StepMax:         stepMax,
	}
}

// effectiveStart is the timestamp from which TWAP accumulation is measured:
// the end of the warm-up window.
func (o *TWAPOracle) effectiveStart() int64 {
	return o.StartTime + o.StartDelay
}

// WriteObservation records a new (price, timestamp) sample per the
// observation rule in spec.md §4.5: warm-up skip, step-clamp, cumulative
// accumulation. Samples must be strictly monotone in timestamp (spec.md
// §5 "Ordering guarantees"); out-of-order timestamps are ignored rather
// than rejected. A duplicate timestamp is accepted as a zero-dt
// observation, since a swap that lands in the same block as the prior one
// is legitimate: it adds nothing to the cumulative sum but updates LastPrice.
func (o *TWAPOracle) WriteObservation(pNow fxmath.Price, tNow int64) {
	if tNow < o.LastTimestamp {
		return
	}
	if tNow < o.effectiveStart() {
		// Warm-up: track last price so the post-warm-up first observation's
		// dt is measured against a sane baseline, but do not accumulate.
		o.LastPrice = pNow
		o.LastTimestamp = tNow
		return
	}

	dt := tNow - o.LastTimestamp
	if dt < 0 {
		dt = 0
	}

	pEff := clampStepSigned(o.LastPrice, pNow, o.StepMax)

	// Cumulative accumulates price_raw * dt directly (Uniswap-V2-style
	// cumulative price), NOT a rescaled Price: the running sum is a bare
	// uint256 counter, only ever consumed by dividing back by an elapsed
	// dt in GetTWAP, so no intermediate PriceScale rescaling is needed or
	// correct here.
	contribution := fxmath.SaturatingMul(pEff.Uint256(), uint256.NewInt(uint64(dt)))
	o.CumulativePrice = fxmath.FromUint256(fxmath.SaturatingAdd(o.CumulativePrice.Uint256(), contribution))
	o.LastPrice = pEff
	o.LastTimestamp = tNow
}

// clampStepSigned clamps pNow into [lastPrice-stepMax, lastPrice+stepMax],
// matching spec.md's p_eff = last_price + clamp(p_now - last_price, -step_max,
// +step_max) while staying in unsigned Price arithmetic (prices cannot go
// negative, so the lower bound floors at zero via Price.Sub's own floor).
func clampStepSigned(lastPrice, pNow, stepMax fxmath.Price) fxmath.Price {
	return fxmath.ClampStep(lastPrice, pNow, stepMax)
}

// GetTWAP returns the time-weighted average price over
// [effectiveStart, tNow], folding in the not-yet-committed contribution of
// the current observation window. Returns LastPrice if tNow has not
// advanced past effectiveStart (undefined window).
func (o *TWAPOracle) GetTWAP(tNow int64) fxmath.Price {
	start := o.effectiveStart()
	if tNow <= start {
		return o.LastPrice
	}
	dt := tNow - o.LastTimestamp
	if dt < 0 {
		dt = 0
	}
	pending := fxmath.SaturatingMul(o.LastPrice.Uint256(), uint256.NewInt(uint64(dt)))
	total := fxmath.SaturatingAdd(o.CumulativePrice.Uint256(), pending)
	elapsed := tNow - start
	if elapsed <= 0 {
		return o.LastPrice
	}
	return fxmath.FromUint256(new(uint256.Int).Div(total, uint256.NewInt(uint64(elapsed))))
}
