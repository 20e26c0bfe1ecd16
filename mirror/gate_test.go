package mirror

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestGate_PerfectCorrelation(t *testing.T) {
	gate := NewGate(50, 0.85)

	leader := series(50, func(i int) float64 { return 100 + float64(i) })
	candidate := series(50, func(i int) float64 { return 3 + 2*float64(i) })

	// Any affine transform of the leader correlates perfectly
	assert.InDelta(t, 1.0, gate.Correlation(candidate, leader), 1e-12)
	assert.True(t, gate.Admit(candidate, leader))
}

func TestGate_AntiCorrelationRejects(t *testing.T) {
	gate := NewGate(50, 0.85)

	leader := series(50, func(i int) float64 { return 100 + float64(i) })
	candidate := series(50, func(i int) float64 { return 100 - float64(i) })

	assert.InDelta(t, -1.0, gate.Correlation(candidate, leader), 1e-12)
	assert.False(t, gate.Admit(candidate, leader))
}

func TestGate_Determinism(t *testing.T) {
	gate := NewGate(50, 0.85)

	leader := series(50, func(i int) float64 { return 100 + float64(i) + math.Sin(float64(i)) })
	candidate := series(50, func(i int) float64 { return 50 + float64(i) + math.Cos(float64(i)*1.7) })

	first := gate.Correlation(candidate, leader)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, gate.Correlation(candidate, leader))
		require.Equal(t, first >= 0.85, gate.Admit(candidate, leader))
	}
}

func TestGate_ThresholdBoundaryIsInclusive(t *testing.T) {
	leader := series(50, func(i int) float64 { return 100 + float64(i) })
	candidate := series(50, func(i int) float64 { return 100 + float64(i) + 40*math.Sin(float64(i)) })

	observed := NewGate(50, 0.85).Correlation(candidate, leader)
	require.Greater(t, observed, 0.0)
	require.Less(t, observed, 1.0)

	// A threshold exactly at the observed correlation admits, the next
	// representable value above it rejects
	assert.True(t, NewGate(50, observed).Admit(candidate, leader))
	assert.False(t, NewGate(50, math.Nextafter(observed, 2)).Admit(candidate, leader))
}

func TestGate_ShortSeriesAlwaysRejects(t *testing.T) {
	gate := NewGate(50, 0.85)

	// Perfectly correlated but only 40 points: never admitted
	leader := series(40, func(i int) float64 { return 100 + float64(i) })
	candidate := series(40, func(i int) float64 { return 200 + float64(i) })

	assert.Zero(t, gate.Correlation(candidate, leader))
	assert.False(t, gate.Admit(candidate, leader))

	full := series(50, func(i int) float64 { return 100 + float64(i) })
	assert.Zero(t, gate.Correlation(candidate, full))
	assert.Zero(t, gate.Correlation(full, candidate))
}

func TestGate_MismatchedWindowRejects(t *testing.T) {
	gate := NewGate(50, 0.85)

	assert.False(t, gate.Admit(nil, nil))
	assert.False(t, gate.Admit([]float64{1}, []float64{1}))
}
