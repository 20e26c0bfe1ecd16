// Package binance implements the exchange boundary on top of the Binance
// futures API.
package binance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/raykavin/mirrortrade/core"

	"github.com/adshao/go-binance/v2/common"
	"github.com/jpillora/backoff"
)

// Common errors
var (
	ErrInvalidAsset    = fmt.Errorf("invalid asset")
	ErrInvalidQuantity = fmt.Errorf("invalid quantity")
)

// OrderError represents an error that occurred during order creation or execution
type OrderError struct {
	Err      error
	Pair     string
	Quantity float64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order error: %v, pair: %s, quantity: %f", e.Err, e.Pair, e.Quantity)
}

func (e *OrderError) Unwrap() error { return e.Err }

// formatQuantity standardizes the quantity based on asset precision
func formatQuantity(info core.AssetInfo, value float64) string {
	if info.StepSize > 0 {
		value = common.AmountToLotSize(info.StepSize, info.BaseAssetPrecision, value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// validateOrder checks if the quantity is valid for the instrument
func validateOrder(info core.AssetInfo, pair string, quantity float64) error {
	if quantity > info.MaxQuantity || quantity < info.MinQuantity {
		return &OrderError{
			Err:      fmt.Errorf("%w: min: %f max: %f", ErrInvalidQuantity, info.MinQuantity, info.MaxQuantity),
			Pair:     pair,
			Quantity: quantity,
		}
	}

	return nil
}

// setupBackoffRetry creates a backoff with sensible defaults
func setupBackoffRetry() *backoff.Backoff {
	return &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}
}
