// Package sizing converts a target notional into an exchange-compliant
// order quantity under the instrument's lot-size constraints.
package sizing

import (
	"math"

	"github.com/raykavin/mirrortrade/core"

	"github.com/adshao/go-binance/v2/common"
)

// Size returns the largest order quantity not exceeding notional/price that
// is an exact multiple of stepSize. It never rounds up. Degenerate inputs
// yield 0, which callers treat as "no viable order".
//
// The quantity precision is derived from the step size's decimal places and
// the floor is performed in lot units, so step sizes that are not powers of
// ten still produce exact multiples of the step.
func Size(notional, price, stepSize float64) float64 {
	if notional <= 0 || price <= 0 || stepSize <= 0 {
		return 0
	}
	if math.IsNaN(notional) || math.IsInf(notional, 0) ||
		math.IsNaN(price) || math.IsInf(price, 0) ||
		math.IsNaN(stepSize) || math.IsInf(stepSize, 0) {
		return 0
	}

	raw := notional / price
	precision := int(core.NumDecPlaces(stepSize))

	quantity := common.AmountToLotSize(stepSize, precision, raw)
	if quantity < 0 || math.IsNaN(quantity) {
		return 0
	}

	return quantity
}

// ForAsset sizes an order for a catalog instrument. Instruments without a
// lot-size filter are not sized.
func ForAsset(info core.AssetInfo, notional, price float64) float64 {
	if info.StepSize <= 0 {
		return 0
	}
	return Size(notional, price, info.StepSize)
}
