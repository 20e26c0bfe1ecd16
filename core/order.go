package core

import (
	"fmt"
	"time"
)

// SideType represents the direction of an order (BUY or SELL)
type SideType string

// OrderType represents the type of order (LIMIT, MARKET, etc.)
type OrderType string

// OrderStatusType represents the status of an order (NEW, FILLED, etc.)
type OrderStatusType string

// Order side constants
const (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

// Order type constants
const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// Order status constants
const (
	OrderStatusTypeNew             OrderStatusType = "NEW"
	OrderStatusTypePartiallyFilled OrderStatusType = "PARTIALLY_FILLED"
	OrderStatusTypeFilled          OrderStatusType = "FILLED"
	OrderStatusTypeCanceled        OrderStatusType = "CANCELED"
	OrderStatusTypeRejected        OrderStatusType = "REJECTED"
	OrderStatusTypeExpired         OrderStatusType = "EXPIRED"
)

// Order represents a trading order with its properties and status
type Order struct {
	ID         int64           `json:"id"`
	ExchangeID int64           `json:"exchange_id"`
	Pair       string          `json:"pair"`
	Side       SideType        `json:"side"`
	Type       OrderType       `json:"type"`
	Status     OrderStatusType `json:"status"`
	Price      float64         `json:"price"`
	Quantity   float64         `json:"quantity"`
	ReduceOnly bool            `json:"reduce_only"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetValue returns the total value of the order (price * quantity)
func (o Order) GetValue() float64 { return o.Price * o.Quantity }

// IsBuy returns true if the order is a buy order
func (o Order) IsBuy() bool { return o.Side == SideTypeBuy }

// IsSell returns true if the order is a sell order
func (o Order) IsSell() bool { return o.Side == SideTypeSell }

// IsFilled returns true if the order is completely filled
func (o Order) IsFilled() bool { return o.Status == OrderStatusTypeFilled }

// String returns a human-readable representation of the order
func (o Order) String() string {
	return fmt.Sprintf("[%s] %s %s | ID: %d, Type: %s, %f x $%f (~$%.2f)",
		o.Status, o.Side, o.Pair, o.ID, o.Type, o.Quantity, o.Price, o.Quantity*o.Price)
}

// OrderFilter defines a function type for filtering orders
type OrderFilter func(order Order) bool

// WithStatusIn filters orders that match any of the given statuses
func WithStatusIn(status ...OrderStatusType) OrderFilter {
	return func(order Order) bool {
		for _, s := range status {
			if s == order.Status {
				return true
			}
		}
		return false
	}
}

// WithPair filters orders for a specific trading pair
func WithPair(pair string) OrderFilter {
	return func(order Order) bool {
		return order.Pair == pair
	}
}
