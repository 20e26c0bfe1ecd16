package regime

import (
	"math"

	"github.com/raykavin/mirrortrade/core"
)

// ADX computes the trend-strength series from a candle window using
// rolling sums of directional movement over true range:
//
//	+DI = 100 * rollsum(+DM, period) / rollsum(TR, period)
//	-DI = 100 * rollsum(-DM, period) / rollsum(TR, period)
//	DX  = 100 * |+DI - -DI| / (+DI + -DI)
//	ADX = rollmean(DX, period)
//
// Positions inside the warm-up window are NaN. When +DI + -DI is zero the
// DX value is 0 instead of a division error.
func ADX(candles []core.Candle, period int) []float64 {
	n := len(candles)
	adx := nanSlice(n)
	if n < 2 || period <= 0 {
		return adx
	}

	trueRange := nanSlice(n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		prev, cur := candles[i-1], candles[i]

		trueRange[i] = math.Max(cur.High-cur.Low,
			math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))

		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low

		if upMove > downMove {
			plusDM[i] = math.Max(upMove, 0)
		}
		if downMove > upMove {
			minusDM[i] = math.Max(downMove, 0)
		}
	}

	trSum := rollingSum(trueRange, period)
	plusSum := rollingSum(plusDM, period)
	minusSum := rollingSum(minusDM, period)

	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(trSum[i]) || math.IsNaN(plusSum[i]) || math.IsNaN(minusSum[i]) {
			continue
		}

		if trSum[i] == 0 {
			dx[i] = 0
			continue
		}

		plusDI := 100 * plusSum[i] / trSum[i]
		minusDI := 100 * minusSum[i] / trSum[i]

		if plusDI+minusDI == 0 {
			dx[i] = 0
			continue
		}

		dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	return rollingMean(dx, period)
}

// rollingSum computes windowed sums; windows that are incomplete or that
// contain a NaN value yield NaN
func rollingSum(values []float64, period int) []float64 {
	out := nanSlice(len(values))

	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum // NaN inputs propagate
	}

	return out
}

// rollingMean computes windowed means with the same NaN semantics as
// rollingSum
func rollingMean(values []float64, period int) []float64 {
	sums := rollingSum(values, period)
	for i, sum := range sums {
		if !math.IsNaN(sum) {
			sums[i] = sum / float64(period)
		}
	}
	return sums
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
