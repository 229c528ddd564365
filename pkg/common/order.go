package common

import (
	"time"

	"github.com/google/uuid"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

type OrderId = uuid.UUID

type OrderSide int
type OrderType int
type OrderStatus int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
)

const (
	OrderStatusOpen OrderStatus = iota
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusCancelled
)

func (s OrderSide) String() string {
	if s == OrderSideBuy {
		return "buy"
	}
	return "sell"
}

func (t OrderType) String() string {
	if t == OrderTypeMarket {
		return "market"
	}
	return "limit"
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "open"
	case OrderStatusPartiallyFilled:
		return "partially-filled"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// OrderCandidate is an order request before acceptance. Price is required for
// limit orders and ignored for market orders.
type OrderCandidate struct {
	Pair   TradingPair `json:"pair"`
	Side   OrderSide   `json:"side"`
	Type   OrderType   `json:"type"`
	Amount fixed.Point `json:"amount"`
	Price  fixed.Point `json:"price,omitempty"`
}

// Order is an accepted candidate. LockPrice records the price used when the
// balance was reserved, so cancels and fills release exactly what was locked.
type Order struct {
	Id           OrderId     `json:"id"`
	Pair         TradingPair `json:"pair"`
	Side         OrderSide   `json:"side"`
	Type         OrderType   `json:"type"`
	Amount       fixed.Point `json:"amount"`
	Price        fixed.Point `json:"price,omitempty"`
	Status       OrderStatus `json:"status"`
	FilledAmount fixed.Point `json:"filled_amount"`
	LockPrice    fixed.Point `json:"lock_price,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// RemainingAmount is the unfilled part of the order.
func (o Order) RemainingAmount() fixed.Point {
	return o.Amount.Sub(o.FilledAmount)
}

// RemainingLock is the still-reserved balance: quote for buys, base for sells.
func (o Order) RemainingLock() fixed.Point {
	if o.Side == OrderSideBuy {
		return o.RemainingAmount().Mul(o.LockPrice)
	}
	return o.RemainingAmount()
}

// LockAsset names the asset the order's reservation is held in.
func (o Order) LockAsset() string {
	if o.Side == OrderSideBuy {
		return o.Pair.Quote
	}
	return o.Pair.Base
}
