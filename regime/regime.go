// Package regime classifies the market regime of a candle window and
// selects the risk:reward profile for a new position.
package regime

import (
	"math"

	"github.com/raykavin/mirrortrade/core"

	"github.com/markcheno/go-talib"
)

// Classifier selects between the conservative and aggressive risk profiles
// based on trend strength (ADX) and short-horizon momentum. The selection
// happens once, at position entry, and is fixed for the life of the
// position.
type Classifier struct {
	adxPeriod         int
	adxThreshold      float64
	momentumLookback  int
	momentumThreshold float64
}

// New creates a regime classifier
func New(adxPeriod int, adxThreshold float64, momentumLookback int, momentumThreshold float64) Classifier {
	return Classifier{
		adxPeriod:         adxPeriod,
		adxThreshold:      adxThreshold,
		momentumLookback:  momentumLookback,
		momentumThreshold: momentumThreshold,
	}
}

// Classify returns the risk profile for the given candle window.
// ADX values still inside the warm-up window count as "no trend".
func (c Classifier) Classify(candles []core.Candle) core.RiskProfile {
	adx := c.LatestADX(candles)
	momentum := c.Momentum(candles)

	if (!math.IsNaN(adx) && adx > c.adxThreshold) || momentum > c.momentumThreshold {
		return core.ProfileAggressive
	}

	return core.ProfileConservative
}

// LatestADX returns the most recent ADX value of the window, NaN while the
// indicator is warming up
func (c Classifier) LatestADX(candles []core.Candle) float64 {
	series := ADX(candles, c.adxPeriod)
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// Momentum returns the fractional close change over the configured
// lookback, 0 when the window is too short
func (c Classifier) Momentum(candles []core.Candle) float64 {
	closes := core.Closes(candles)
	if closes.Length() <= c.momentumLookback {
		return 0
	}

	roc := talib.Roc(closes.Values(), c.momentumLookback)
	return roc[len(roc)-1] / 100
}
