package common

import (
	"sort"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// BookLevel is a single resting price level. Amount is always positive.
type BookLevel struct {
	Price  fixed.Point `json:"price"`
	Amount fixed.Point `json:"amount"`
}

// OrderBook is a per-pair snapshot of synthetic liquidity. Bids are sorted
// descending, asks ascending; the constructor enforces the ordering so a book
// is never partially stale.
type OrderBook struct {
	Pair      TradingPair `json:"pair"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	TimeStamp time.Time   `json:"ts"`
}

func NewOrderBook(pair TradingPair, bids, asks []BookLevel, ts time.Time) *OrderBook {
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price.Gt(bids[j].Price) })
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price.Lt(asks[j].Price) })
	return &OrderBook{
		Pair:      pair,
		Bids:      bids,
		Asks:      asks,
		TimeStamp: ts,
	}
}

// BestBid returns fixed.Zero when the bid side is empty. The zero value is a
// liquidity-absent sentinel, not an error.
func (b *OrderBook) BestBid() fixed.Point {
	if len(b.Bids) == 0 {
		return fixed.Zero
	}
	return b.Bids[0].Price
}

func (b *OrderBook) BestAsk() fixed.Point {
	if len(b.Asks) == 0 {
		return fixed.Zero
	}
	return b.Asks[0].Price
}

func (b *OrderBook) MidPrice() fixed.Point {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return fixed.Zero
	}
	return b.BestBid().Add(b.BestAsk()).DivInt64(2)
}

// BidDepth sums the amounts of the top n bid levels. n <= 0 sums all levels.
func (b *OrderBook) BidDepth(n int) fixed.Point {
	return sumDepth(b.Bids, n)
}

func (b *OrderBook) AskDepth(n int) fixed.Point {
	return sumDepth(b.Asks, n)
}

func sumDepth(levels []BookLevel, n int) fixed.Point {
	if n <= 0 || n > len(levels) {
		n = len(levels)
	}
	sum := fixed.Zero
	for _, level := range levels[:n] {
		sum = sum.Add(level.Amount)
	}
	return sum
}
