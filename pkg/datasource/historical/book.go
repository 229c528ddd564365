package historical

import (
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// BookLevels is the fixed per-side depth of a binary snapshot record.
const BookLevels = 5

type BinaryLevel struct {
	Price  float64
	Amount float64
}

// BinaryBook is the on-disk snapshot layout: a timestamp and five levels per
// side. Unused levels have zero amounts.
type BinaryBook struct {
	TimeStamp int64 // unix nanoseconds
	Bids      [BookLevels]BinaryLevel
	Asks      [BookLevels]BinaryLevel
}

// ToOrderBook converts the record to a model book, dropping empty levels.
func (b *BinaryBook) ToOrderBook(pair common.TradingPair, book **common.OrderBook) {
	bids := make([]common.BookLevel, 0, BookLevels)
	asks := make([]common.BookLevel, 0, BookLevels)
	for _, level := range b.Bids {
		if level.Amount > 0 {
			bids = append(bids, common.BookLevel{
				Price:  fixed.FromFloat64(level.Price),
				Amount: fixed.FromFloat64(level.Amount),
			})
		}
	}
	for _, level := range b.Asks {
		if level.Amount > 0 {
			asks = append(asks, common.BookLevel{
				Price:  fixed.FromFloat64(level.Price),
				Amount: fixed.FromFloat64(level.Amount),
			})
		}
	}
	*book = common.NewOrderBook(pair, bids, asks, time.Unix(0, b.TimeStamp))
}
