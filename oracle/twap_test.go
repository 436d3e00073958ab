package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"futarchy/fxmath"
)

func TestTWAPWarmupSkipsAccumulation(t *testing.T) {
	o := NewTWAPOracle(fxmath.NewPrice(1_000_000_000_000), 0, 100, fxmath.NewPrice(1_000_000_000_000))
	o.WriteObservation(fxmath.NewPrice(2_000_000_000_000), 50) // still inside warm-up
	require.True(t, o.CumulativePrice.IsZero())
}

func TestTWAPAccumulatesAfterWarmup(t *testing.T) {
	start := fxmath.NewPrice(1_000_000_000_000) // 1.0
	o := NewTWAPOracle(start, 0, 0, fxmath.NewPrice(10_000_000_000_000))

	o.WriteObservation(fxmath.NewPrice(1_000_000_000_000), 10)
	o.WriteObservation(fxmath.NewPrice(1_000_000_000_000), 20)

	twap := o.GetTWAP(20)
	require.Equal(t, uint64(1_000_000_000_000), twap.Uint256().Uint64())
}

func TestTWAPStepClampLimitsContribution(t *testing.T) {
	start := fxmath.NewPrice(1_000_000_000_000)
	step := fxmath.NewPrice(100_000_000_000) // max +/-0.1 per observation
	o := NewTWAPOracle(start, 0, 0, step)

	// A huge price jump must be clamped to last_price + step.
	o.WriteObservation(fxmath.NewPrice(100_000_000_000_000), 10)
	require.Equal(t, uint64(1_100_000_000_000), o.LastPrice.Uint256().Uint64())
}

func TestTWAPMonotoneTimestampIgnoresOutOfOrder(t *testing.T) {
	o := NewTWAPOracle(fxmath.NewPrice(1_000_000_000_000), 0, 0, fxmath.NewPrice(1_000_000_000_000))
	o.WriteObservation(fxmath.NewPrice(2_000_000_000_000), 10)
	before := o.LastTimestamp
	o.WriteObservation(fxmath.NewPrice(3_000_000_000_000), 5) // out of order, ignored
	require.Equal(t, before, o.LastTimestamp)
}
