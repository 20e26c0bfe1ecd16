package binance

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/mirrortrade/core"
)

func TestFutures_AssetCacheConcurrentAccess(t *testing.T) {
	exchange := &Futures{assetsInfo: map[string]core.AssetInfo{}}
	catalog := []core.AssetInfo{
		{Pair: "ETHUSDT", QuoteAsset: "USDT", Status: core.StatusTrading, StepSize: 0.001},
		{Pair: "SOLUSDT", QuoteAsset: "USDT", Status: core.StatusTrading, StepSize: 0.01},
	}
	exchange.updateAssetCache(catalog)

	// Catalog refreshes and lookups race when overlapping runs are
	// triggered over HTTP; the cache must stay safe under both
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				exchange.updateAssetCache(catalog)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := exchange.AssetInfo("ETHUSDT"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	info, err := exchange.AssetInfo("ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 0.001, info.StepSize)

	_, err = exchange.AssetInfo("DOGEUSDT")
	assert.Error(t, err)
}

func TestValidateOrder(t *testing.T) {
	info := core.AssetInfo{Pair: "ETHUSDT", MinQuantity: 0.01, MaxQuantity: 100}

	assert.NoError(t, validateOrder(info, "ETHUSDT", 0.5))

	err := validateOrder(info, "ETHUSDT", 0.001)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "ETHUSDT", orderErr.Pair)

	assert.Error(t, validateOrder(info, "ETHUSDT", 500))
}

func TestFormatQuantity(t *testing.T) {
	info := core.AssetInfo{StepSize: 0.001, BaseAssetPrecision: 3}

	assert.Equal(t, "0.1", formatQuantity(info, 0.1))
	assert.Equal(t, "0.123", formatQuantity(info, 0.12345))

	// No lot filter leaves the value untouched
	assert.Equal(t, "0.12345", formatQuantity(core.AssetInfo{}, 0.12345))
}
