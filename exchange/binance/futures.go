package binance

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/logger"

	"github.com/adshao/go-binance/v2/futures"
)

// candleFetchAttempts bounds the transient-failure retries inside the
// adapter; the decision engine itself never retries
const candleFetchAttempts = 3

// Futures represents the Binance futures market client
type Futures struct {
	client *futures.Client
	log    logger.Logger

	// assetsInfo is rewritten by InstrumentCatalog and read from
	// concurrent runs; all access goes through the mutex
	assetsMu   sync.RWMutex
	assetsInfo map[string]core.AssetInfo
}

// FuturesOption is a function that configures a Futures client
type FuturesOption func(*Futures)

// WithFuturesCredentials sets the API credentials for the Futures client
func WithFuturesCredentials(key, secret string) FuturesOption {
	return func(f *Futures) {
		f.client = futures.NewClient(key, secret)
	}
}

// WithFuturesTestnet routes all requests to the Binance futures testnet
func WithFuturesTestnet() FuturesOption {
	return func(f *Futures) {
		futures.UseTestnet = true
		f.client = futures.NewClient(f.client.APIKey, f.client.SecretKey)
	}
}

// NewFutures creates a new Binance futures exchange client
func NewFutures(ctx context.Context, log logger.Logger, options ...FuturesOption) (*Futures, error) {
	exchange := &Futures{
		client:     futures.NewClient("", ""),
		assetsInfo: make(map[string]core.AssetInfo),
		log:        log,
	}

	for _, option := range options {
		option(exchange)
	}

	if err := exchange.validateConnection(ctx); err != nil {
		return nil, err
	}

	if _, err := exchange.InstrumentCatalog(ctx); err != nil {
		return nil, err
	}

	return exchange, nil
}

// validateConnection tests the connection to the Binance Futures API
func (f *Futures) validateConnection(ctx context.Context) error {
	if err := f.client.NewPingService().Do(ctx); err != nil {
		return fmt.Errorf("binance futures ping fail: %w", err)
	}
	return nil
}

// InstrumentCatalog fetches the futures instrument catalog, preserving the
// exchange ordering, and refreshes the cached per-pair asset information
func (f *Futures) InstrumentCatalog(ctx context.Context) ([]core.AssetInfo, error) {
	exchangeInfo, err := f.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get futures exchange info: %w", err)
	}

	catalog := make([]core.AssetInfo, 0, len(exchangeInfo.Symbols))
	for _, info := range exchangeInfo.Symbols {
		catalog = append(catalog, createAssetInfo(info))
	}
	f.updateAssetCache(catalog)

	return catalog, nil
}

// updateAssetCache swaps in a freshly built per-pair cache
func (f *Futures) updateAssetCache(catalog []core.AssetInfo) {
	cache := make(map[string]core.AssetInfo, len(catalog))
	for _, info := range catalog {
		cache[info.Pair] = info
	}

	f.assetsMu.Lock()
	f.assetsInfo = cache
	f.assetsMu.Unlock()
}

// AssetInfo returns cached information about an instrument
func (f *Futures) AssetInfo(pair string) (core.AssetInfo, error) {
	f.assetsMu.RLock()
	info, ok := f.assetsInfo[pair]
	f.assetsMu.RUnlock()

	if !ok {
		return core.AssetInfo{}, fmt.Errorf("asset info not found in binance futures: %s", pair)
	}
	return info, nil
}

// LastQuote gets the latest traded price for a pair
func (f *Futures) LastQuote(ctx context.Context, pair string) (float64, error) {
	prices, err := f.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return 0, err
	}

	if len(prices) < 1 {
		return 0, fmt.Errorf("no price returned for %s", pair)
	}

	return strconv.ParseFloat(prices[0].Price, 64)
}

// CandlesByLimit gets the most recent complete candles for a pair.
// Transient failures are retried with backoff inside the adapter.
func (f *Futures) CandlesByLimit(ctx context.Context, pair, period string, limit int) ([]core.Candle, error) {
	var data []*futures.Kline
	var err error

	retry := setupBackoffRetry()
	for attempt := 0; attempt < candleFetchAttempts; attempt++ {
		data, err = f.client.NewKlinesService().
			Symbol(pair).
			Interval(period).
			Limit(limit + 1). // +1 to account for the incomplete candle
			Do(ctx)
		if err == nil {
			break
		}

		f.log.WithError(err).Warnf("kline fetch failed for %s, retrying", pair)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Duration()):
		}
	}
	if err != nil {
		return nil, err
	}

	candles := make([]core.Candle, 0, len(data))
	for i, d := range data {
		// Skip the last candle as it's incomplete
		if i == len(data)-1 {
			break
		}
		candles = append(candles, convertKlineToCandle(pair, *d))
	}

	return candles, nil
}

// CreateOrderMarket creates a market order
func (f *Futures) CreateOrderMarket(ctx context.Context, side core.SideType, pair string, quantity float64) (core.Order, error) {
	return f.createMarketOrder(ctx, side, pair, quantity, false)
}

// CreateExitOrderMarket creates a reduce-only market sell, constrained to
// only decrease an existing position
func (f *Futures) CreateExitOrderMarket(ctx context.Context, pair string, quantity float64) (core.Order, error) {
	return f.createMarketOrder(ctx, core.SideTypeSell, pair, quantity, true)
}

func (f *Futures) createMarketOrder(ctx context.Context, side core.SideType, pair string, quantity float64, reduceOnly bool) (core.Order, error) {
	info, err := f.AssetInfo(pair)
	if err != nil {
		return core.Order{}, fmt.Errorf("%w: %s", ErrInvalidAsset, pair)
	}
	if err := validateOrder(info, pair, quantity); err != nil {
		return core.Order{}, err
	}

	service := f.client.NewCreateOrderService().
		Symbol(pair).
		Type(futures.OrderTypeMarket).
		Side(futures.SideType(side)).
		Quantity(formatQuantity(info, quantity)).
		NewOrderResponseType(futures.NewOrderRespTypeRESULT)

	if reduceOnly {
		service = service.ReduceOnly(true)
	}

	order, err := service.Do(ctx)
	if err != nil {
		return core.Order{}, err
	}

	cost, _ := strconv.ParseFloat(order.CumQuote, 64)
	filled, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)

	// The order acknowledgment may not carry fill data yet; callers fall
	// back to a single Order() poll when Price is zero
	var price float64
	if cost > 0 && filled > 0 {
		price = cost / filled
	} else {
		filled = quantity
	}

	return core.Order{
		ExchangeID: order.OrderID,
		CreatedAt:  time.Unix(0, order.UpdateTime*int64(time.Millisecond)),
		UpdatedAt:  time.Unix(0, order.UpdateTime*int64(time.Millisecond)),
		Pair:       order.Symbol,
		Side:       core.SideType(order.Side),
		Type:       core.OrderType(order.Type),
		Status:     core.OrderStatusType(order.Status),
		Price:      price,
		Quantity:   filled,
		ReduceOnly: reduceOnly,
	}, nil
}

// Order gets a specific order by ID
func (f *Futures) Order(ctx context.Context, pair string, id int64) (core.Order, error) {
	order, err := f.client.NewGetOrderService().
		Symbol(pair).
		OrderID(id).
		Do(ctx)
	if err != nil {
		return core.Order{}, err
	}

	return convertOrder(order), nil
}

// convertOrder converts a Binance futures order to a core.Order
func convertOrder(order *futures.Order) core.Order {
	cost, _ := strconv.ParseFloat(order.CumQuote, 64)
	quantity, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)
	price, _ := strconv.ParseFloat(order.Price, 64)

	if cost > 0 && quantity > 0 {
		price = cost / quantity
	} else {
		quantity, _ = strconv.ParseFloat(order.OrigQuantity, 64)
	}

	return core.Order{
		ExchangeID: order.OrderID,
		CreatedAt:  time.Unix(0, order.Time*int64(time.Millisecond)),
		UpdatedAt:  time.Unix(0, order.UpdateTime*int64(time.Millisecond)),
		Pair:       order.Symbol,
		Side:       core.SideType(order.Side),
		Type:       core.OrderType(order.Type),
		Status:     core.OrderStatusType(order.Status),
		Price:      price,
		Quantity:   quantity,
		ReduceOnly: order.ReduceOnly,
	}
}

// convertKlineToCandle converts a Binance futures kline to a core.Candle
func convertKlineToCandle(pair string, k futures.Kline) core.Candle {
	t := time.Unix(0, k.OpenTime*int64(time.Millisecond))
	candle := core.Candle{
		Pair:     pair,
		Time:     t,
		Complete: true,
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)

	return candle
}

// createAssetInfo creates an AssetInfo record from futures symbol information
func createAssetInfo(info futures.Symbol) core.AssetInfo {
	assetInfo := core.AssetInfo{
		Pair:               info.Symbol,
		BaseAsset:          info.BaseAsset,
		QuoteAsset:         info.QuoteAsset,
		Status:             info.Status,
		QuotePrecision:     info.QuotePrecision,
		BaseAssetPrecision: info.BaseAssetPrecision,
	}

	for _, filter := range info.Filters {
		typ, ok := filter["filterType"].(string)
		if !ok {
			continue
		}

		switch futures.SymbolFilterType(typ) {
		case futures.SymbolFilterTypeLotSize:
			assetInfo.MinQuantity = parseFilterFloat(filter, "minQty")
			assetInfo.MaxQuantity = parseFilterFloat(filter, "maxQty")
			assetInfo.StepSize = parseFilterFloat(filter, "stepSize")
		case futures.SymbolFilterTypePrice:
			assetInfo.MinPrice = parseFilterFloat(filter, "minPrice")
			assetInfo.MaxPrice = parseFilterFloat(filter, "maxPrice")
			assetInfo.TickSize = parseFilterFloat(filter, "tickSize")
		}
	}

	return assetInfo
}

// parseFilterFloat extracts a float value from a symbol filter map
func parseFilterFloat(filter map[string]any, key string) float64 {
	raw, ok := filter[key].(string)
	if !ok {
		return 0
	}

	value, _ := strconv.ParseFloat(raw, 64)
	return value
}
