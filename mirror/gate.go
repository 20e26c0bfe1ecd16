// Package mirror implements the correlation-based trade-eligibility filter:
// a candidate is only traded when its recent closes co-move strongly with
// the leader instrument.
package mirror

import (
	"gonum.org/v1/gonum/stat"
)

// Gate admits or rejects a candidate based on the Pearson correlation of
// its close series against the leader's over a fixed window. It is a pure
// function of its inputs.
type Gate struct {
	window    int
	threshold float64
}

// NewGate creates a correlation gate with the given window length and
// admission threshold
func NewGate(window int, threshold float64) Gate {
	return Gate{window: window, threshold: threshold}
}

// Correlation returns the Pearson correlation coefficient of the paired
// close series. Series that do not have exactly the configured window
// length yield 0: insufficient history never triggers a trade.
func (g Gate) Correlation(candidate, leader []float64) float64 {
	if len(candidate) != g.window || len(leader) != g.window {
		return 0
	}

	return stat.Correlation(candidate, leader, nil)
}

// Admit reports whether the candidate co-moves with the leader at or above
// the threshold. The boundary is inclusive: a correlation exactly at the
// threshold admits.
func (g Gate) Admit(candidate, leader []float64) bool {
	return g.Correlation(candidate, leader) >= g.threshold
}
