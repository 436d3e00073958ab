package oracle

import (
	"sort"

	"github.com/holiman/uint256"

	"futarchy/fxmath"
)

// uintFromInt64 converts a non-negative int64 duration into a uint256,
// clamping negative values to zero since timestamps are validated
// monotone before they reach these call sites.
func uintFromInt64(v int64) *uint256.Int {
	if v < 0 {
		return uint256.NewInt(0)
	}
	return uint256.NewInt(uint64(v))
}

// Checkpoint is one recorded (timestamp, cumulative price) sample in the
// spot PCW oracle's history.
type Checkpoint struct {
	Timestamp       int64        `json:"timestamp"`
	CumulativePrice fxmath.Price `json:"cumulative_price"`
	Price           fxmath.Price `json:"price"`
}

// PCWOracle is the spot pool's checkpointed TWAP oracle (spec.md §4.5): it
// maintains periodic checkpoints at roughly windowSizeMs/K cadence and
// enforces maxMovementPpm between consecutive checkpoints, answering
// historical window queries in O(log K) via binary search over the
// checkpoint slice.
//
// Consulted only for proposal-creation readiness and spot price display
// (spec.md §7 Open Question (a)): it never participates in winner
// selection, that is the per-AMM TWAPOracle's job.
type PCWOracle struct {
	WindowSizeMs   int64        `json:"window_size_ms"`
	MaxMovementPpm uint64       `json:"max_movement_ppm"`
	CheckpointGap  int64        `json:"checkpoint_gap_ms"`
	Checkpoints    []Checkpoint `json:"checkpoints"`

	// LastCumulative/LastTimestamp track the running accumulator between
	// checkpoints; exported (rather than the more natural unexported form)
	// so a store round-trip (json.Marshal/Unmarshal) does not silently
	// reset mid-window accumulation back to zero.
	LastCumulative fxmath.Price `json:"last_cumulative"`
	LastTimestamp  int64        `json:"last_timestamp"`
}

// ppmDenominator is the parts-per-million denominator used for
// max_movement_ppm bounds.
const ppmDenominator = 1_000_000

// defaultCheckpointDivisor is the target number of checkpoints per window,
// used only to derive the default checkpoint cadence
// (windowSizeMs / defaultCheckpointDivisor).
const defaultCheckpointDivisor = 8

// NewPCWOracle constructs a spot oracle seeded with an initial observation.
func NewPCWOracle(windowSizeMs int64, maxMovementPpm uint64, startPrice fxmath.Price, startTime int64) *PCWOracle {
	gap := windowSizeMs / defaultCheckpointDivisor
	if gap <= 0 {
		gap = 1
	}
	o := &PCWOracle{
		WindowSizeMs:   windowSizeMs,
		MaxMovementPpm: maxMovementPpm,
		CheckpointGap:  gap,
		LastCumulative: fxmath.NewPrice(0),
		LastTimestamp:  startTime,
	}
	o.Checkpoints = append(o.Checkpoints, Checkpoint{
		Timestamp:       startTime,
		CumulativePrice: fxmath.NewPrice(0),
		Price:           startPrice,
	})
	return o
}

// Observe records a new spot price sample, appending a checkpoint only
// once CheckpointGap has elapsed since the last one. Movement beyond
// MaxMovementPpm relative to the prior checkpoint's price is clamped, not
// rejected, mirroring the per-AMM oracle's step-clamp behavior.
func (o *PCWOracle) Observe(price fxmath.Price, tNow int64) {
	if tNow < o.LastTimestamp {
		return
	}
	dt := tNow - o.LastTimestamp
	cumulative := fxmath.FromUint256(fxmath.SaturatingAdd(
		o.LastCumulative.Uint256(),
		fxmath.SaturatingMul(o.latestPrice().Uint256(), uintFromInt64(dt)),
	))
	o.LastCumulative = cumulative
	o.LastTimestamp = tNow

	if len(o.Checkpoints) > 0 {
		last := o.Checkpoints[len(o.Checkpoints)-1]
		if tNow-last.Timestamp < o.CheckpointGap {
			return
		}
		price = clampMovement(last.Price, price, o.MaxMovementPpm)
	}

	o.Checkpoints = append(o.Checkpoints, Checkpoint{
		Timestamp:       tNow,
		CumulativePrice: cumulative,
		Price:           price,
	})
}

func (o *PCWOracle) latestPrice() fxmath.Price {
	if len(o.Checkpoints) == 0 {
		return fxmath.NewPrice(0)
	}
	return o.Checkpoints[len(o.Checkpoints)-1].Price
}

// clampMovement bounds price's deviation from prev to MaxMovementPpm parts
// per million of prev.
func clampMovement(prev, price fxmath.Price, maxPpm uint64) fxmath.Price {
	if maxPpm == 0 || prev.IsZero() {
		return price
	}
	bound := fxmath.MulDiv(prev.Uint256(), uintFromInt64(int64(maxPpm)), uintFromInt64(ppmDenominator))
	step := fxmath.FromUint256(bound)
	return fxmath.ClampStep(prev, price, step)
}

// WindowTWAP returns the TWAP over [tEnd-WindowSizeMs, tEnd], locating the
// checkpoint at-or-before the window start via binary search (O(log K))
// and the checkpoint at-or-before tEnd for the window end.
func (o *PCWOracle) WindowTWAP(tEnd int64) fxmath.Price {
	if len(o.Checkpoints) == 0 {
		return fxmath.NewPrice(0)
	}
	windowStart := tEnd - o.WindowSizeMs

	startIdx := o.checkpointAtOrBefore(windowStart)
	endIdx := o.checkpointAtOrBefore(tEnd)
	if endIdx < 0 {
		return o.Checkpoints[0].Price
	}
	if startIdx < 0 {
		startIdx = 0
	}

	start := o.Checkpoints[startIdx]
	end := o.Checkpoints[endIdx]
	if end.Timestamp <= start.Timestamp {
		return end.Price
	}
	diff := fxmath.SaturatingSub(end.CumulativePrice.Uint256(), start.CumulativePrice.Uint256())
	elapsed := end.Timestamp - start.Timestamp
	return fxmath.FromUint256(new(uint256.Int).Div(diff, uintFromInt64(elapsed)))
}

// checkpointAtOrBefore returns the index of the last checkpoint with
// Timestamp <= t, or -1 if every checkpoint is after t.
func (o *PCWOracle) checkpointAtOrBefore(t int64) int {
	idx := sort.Search(len(o.Checkpoints), func(i int) bool {
		return o.Checkpoints[i].Timestamp > t
	})
	return idx - 1
}
