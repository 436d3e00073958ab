package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"futarchy/fxmath"
)

func TestPCWWindowTWAPConstantPrice(t *testing.T) {
	o := NewPCWOracle(1_000, 50_000, fxmath.NewPrice(1_000_000_000_000), 0)
	o.Observe(fxmath.NewPrice(1_000_000_000_000), 200)
	o.Observe(fxmath.NewPrice(1_000_000_000_000), 400)
	o.Observe(fxmath.NewPrice(1_000_000_000_000), 600)

	twap := o.WindowTWAP(600)
	require.Equal(t, uint64(1_000_000_000_000), twap.Uint256().Uint64())
}

func TestPCWCheckpointAtOrBefore(t *testing.T) {
	o := NewPCWOracle(1_000, 50_000, fxmath.NewPrice(1_000_000_000_000), 0)
	o.Observe(fxmath.NewPrice(1_000_000_000_000), 200)
	o.Observe(fxmath.NewPrice(1_000_000_000_000), 400)

	idx := o.checkpointAtOrBefore(300)
	require.Equal(t, int64(200), o.Checkpoints[idx].Timestamp)

	idx = o.checkpointAtOrBefore(-1)
	require.Equal(t, -1, idx)
}

func TestPCWMaxMovementClampsCheckpoint(t *testing.T) {
	o := NewPCWOracle(1_000, 10_000, fxmath.NewPrice(1_000_000_000_000), 0) // 1% max move
	o.Observe(fxmath.NewPrice(2_000_000_000_000), 200)                     // +100% attempted
	last := o.Checkpoints[len(o.Checkpoints)-1]
	require.Equal(t, uint64(1_010_000_000_000), last.Price.Uint256().Uint64())
}
