package exchange

import (
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

type PriceType int

const (
	PriceBid PriceType = iota
	PriceAsk
	PriceMid
)

func (p PriceType) String() string {
	switch p {
	case PriceBid:
		return "bid"
	case PriceAsk:
		return "ask"
	case PriceMid:
		return "mid"
	default:
		return "unknown"
	}
}

// Market is the read side of an exchange: prices, books and the simulation
// clock. Prices are fixed.Zero when the relevant book side is empty.
type Market interface {
	GetPrice(pair common.TradingPair, priceType PriceType) fixed.Point
	OrderBook(pair common.TradingPair) (*common.OrderBook, bool)
	TradingPairs() []common.TradingPair
	Now() time.Time
}

// OrderGateway is the write side: placing and cancelling orders.
type OrderGateway interface {
	PlaceOrder(candidate common.OrderCandidate) (*common.Order, error)
	CancelOrder(id common.OrderId) bool
	Order(id common.OrderId) (common.Order, bool)
	OpenOrders(pair common.TradingPair) []common.Order
}
