package core

import (
	"context"
)

// Exchange combines market data access and order placement
type Exchange interface {
	Feeder
	Broker
}

// Feeder supplies market data: the instrument catalog, candle windows and
// the current price of a pair
type Feeder interface {
	InstrumentCatalog(ctx context.Context) ([]AssetInfo, error)
	AssetInfo(pair string) (AssetInfo, error)
	CandlesByLimit(ctx context.Context, pair, period string, limit int) ([]Candle, error)
	LastQuote(ctx context.Context, pair string) (float64, error)
}

// Broker places and inspects orders on the exchange
type Broker interface {
	CreateOrderMarket(ctx context.Context, side SideType, pair string, quantity float64) (Order, error)
	CreateExitOrderMarket(ctx context.Context, pair string, quantity float64) (Order, error)
	Order(ctx context.Context, pair string, id int64) (Order, error)
}

// Notifier delivers human-readable trade lifecycle messages.
// Implementations are best-effort: delivery failures are logged, never
// returned to the caller.
type Notifier interface {
	Notify(string)
	OnOrder(order Order)
	OnError(err error)
}

// OrderStorage records orders placed during a run
type OrderStorage interface {
	CreateOrder(order *Order) error
	UpdateOrder(order *Order) error
	Orders(filters ...OrderFilter) ([]*Order, error)
}
