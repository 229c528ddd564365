package historical

import (
	"fmt"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
)

const invalidIndex = -1

// BookReader replays snapshot records for one pair over a time range. The
// first read binary-searches the start index; subsequent reads are
// sequential.
type BookReader struct {
	source *Source[BinaryBook]

	pair common.TradingPair
	from int64
	to   int64
	idx  int64
}

func NewBookReader(source *Source[BinaryBook], pair common.TradingPair, from, to time.Time) *BookReader {
	return &BookReader{
		source: source,
		pair:   pair,
		from:   from.UnixNano(),
		to:     to.UnixNano(),
		idx:    invalidIndex,
	}
}

func (r *BookReader) GetNext() (*common.OrderBook, error) {
	var record BinaryBook

	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return nil, err
		}
	}

	if err := r.source.Read(r.idx, &record); err != nil {
		if err == ErrEof {
			return nil, ErrEof
		}
		return nil, fmt.Errorf("error reading entry at index %d: %w", r.idx, err)
	}
	r.idx++

	if record.TimeStamp < r.from {
		return nil, fmt.Errorf("timestamp is not from the proposed range")
	}
	if record.TimeStamp > r.to {
		return nil, ErrEof
	}

	var book *common.OrderBook
	record.ToOrderBook(r.pair, &book)
	return book, nil
}

func (r *BookReader) lookupStartIndex() error {
	entryCount, err := r.source.EntryCount()
	if err != nil {
		return fmt.Errorf("error getting entry count: %w", err)
	}
	if entryCount == 0 {
		return fmt.Errorf("entry count is zero")
	}

	var entry BinaryBook

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := r.source.Read(mid, &entry); err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return fmt.Errorf("no entry found with timestamp >= from")
	}

	r.idx = low
	return nil
}
