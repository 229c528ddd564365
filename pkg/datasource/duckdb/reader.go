package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// Reader loads top-of-book snapshots from a duckdb database. Each pair lives
// in its own <BASE>_<QUOTE>_books table with columns
// (ts TIMESTAMP, bid, ask, bid_amount, ask_amount DOUBLE).
type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	_ = r.db.Close()
}

// LoadBooks streams snapshots for one pair through the handler, oldest first.
// A handler error stops the scan and is returned wrapped.
func (r *Reader) LoadBooks(ctx context.Context, pair common.TradingPair, from, to time.Time, handler func(book *common.OrderBook) error) error {
	query := fmt.Sprintf(
		`SELECT ts, bid, ask, bid_amount, ask_amount FROM %s_%s_books WHERE ts BETWEEN ? AND ? ORDER BY ts`,
		pair.Base, pair.Quote)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var ts time.Time
		var bid, ask, bidAmount, askAmount float64
		if err := rows.Scan(&ts, &bid, &ask, &bidAmount, &askAmount); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}

		book := common.NewOrderBook(pair,
			[]common.BookLevel{{Price: fixed.FromFloat64(bid), Amount: fixed.FromFloat64(bidAmount)}},
			[]common.BookLevel{{Price: fixed.FromFloat64(ask), Amount: fixed.FromFloat64(askAmount)}},
			ts)

		if err := handler(book); err != nil {
			return fmt.Errorf("error processing book: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}
	return nil
}
