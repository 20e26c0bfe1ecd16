package trailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/mirrortrade/core"
)

func TestTrailState_New(t *testing.T) {
	state := NewTrailState(100, core.ProfileConservative)

	assert.Equal(t, 100.0, state.EntryPrice)
	assert.Equal(t, 100.0, state.HighestPrice)
	assert.Equal(t, 100.0, state.LastPrice)
	assert.InDelta(t, 99.0, state.StopPrice, 1e-9)
	assert.InDelta(t, 102.0, state.TargetPrice, 1e-9)
	assert.False(t, state.Closed)
}

func TestTrailState_StopRatchetInvariant(t *testing.T) {
	profile := core.ProfileAggressive
	state := NewTrailState(100, profile)

	peak := state.HighestPrice
	for _, price := range []float64{100, 101.5, 101, 102.9, 99.8, 104.2, 104.2, 103} {
		state.Tick(price, profile)

		require.GreaterOrEqual(t, state.HighestPrice, peak, "peak must never decrease")
		peak = state.HighestPrice
		require.InDelta(t, peak*(1-profile.StopPercent), state.StopPrice, 1e-9)

		if state.Closed {
			break
		}
	}
}

func TestTrailState_ConservativeClosesOnTarget(t *testing.T) {
	profile := core.ProfileConservative
	state := NewTrailState(100, profile)

	assert.Equal(t, OutcomeHold, state.Tick(100, profile))
	assert.Equal(t, OutcomeTargetHit, state.Tick(105, profile))
	assert.True(t, state.Closed)
	assert.Equal(t, 105.0, state.HighestPrice)
	assert.Equal(t, 105.0, state.LastPrice)
}

func TestTrailState_AggressiveRebasesOnTarget(t *testing.T) {
	profile := core.ProfileAggressive
	state := NewTrailState(100, profile)

	assert.Equal(t, OutcomeHold, state.Tick(100, profile))

	// 104 touches the 103 target: the target moves instead of closing
	assert.Equal(t, OutcomeTargetRebased, state.Tick(104, profile))
	assert.InDelta(t, 104*1.03, state.TargetPrice, 1e-9)
	assert.False(t, state.Closed)

	assert.Equal(t, OutcomeTargetRebased, state.Tick(130, profile))
	assert.InDelta(t, 133.9, state.TargetPrice, 1e-9)
	assert.False(t, state.Closed)
	assert.Equal(t, 130.0, state.HighestPrice)
	assert.InDelta(t, 128.7, state.StopPrice, 1e-9)
}

func TestTrailState_StopHitAfterRebase(t *testing.T) {
	profile := core.ProfileAggressive
	state := NewTrailState(100, profile)

	require.Equal(t, OutcomeHold, state.Tick(100, profile))
	require.Equal(t, OutcomeTargetRebased, state.Tick(105, profile))
	require.InDelta(t, 103.95, state.StopPrice, 1e-9)

	// Below the ratcheted stop, well above the entry stop of 99
	assert.Equal(t, OutcomeStopHit, state.Tick(103, profile))
	assert.True(t, state.Closed)
	assert.Equal(t, 105.0, state.HighestPrice)
	assert.Equal(t, 103.0, state.LastPrice)
}

func TestTrailState_StopHitWithoutRally(t *testing.T) {
	profile := core.ProfileConservative
	state := NewTrailState(100, profile)

	assert.Equal(t, OutcomeStopHit, state.Tick(98, profile))
	assert.True(t, state.Closed)
	assert.InDelta(t, 99.0, state.StopPrice, 1e-9)
	assert.Equal(t, 100.0, state.HighestPrice)
}

func TestTrailState_ClosedIgnoresTicks(t *testing.T) {
	profile := core.ProfileConservative
	state := NewTrailState(100, profile)

	require.Equal(t, OutcomeStopHit, state.Tick(98, profile))

	assert.Equal(t, OutcomeHold, state.Tick(200, profile))
	assert.Equal(t, 98.0, state.LastPrice)
	assert.Equal(t, 100.0, state.HighestPrice)
}
