package datasource

import (
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
)

// BookSource yields order book snapshots in timestamp order until it runs
// out, signalled by the source's EOF error.
type BookSource interface {
	GetNext() (*common.OrderBook, error)
}

// BookSeeder is the simulator surface a feed drives.
type BookSeeder interface {
	SeedOrderBook(book *common.OrderBook)
}

// CreateBookFeeder returns a step function that moves one snapshot from the
// source into the simulator. The run loop calls it once per tick and stops on
// the source's EOF.
func CreateBookFeeder(seeder BookSeeder, source BookSource) func() error {
	return func() error {
		book, err := source.GetNext()
		if err != nil {
			return err
		}
		seeder.SeedOrderBook(book)
		return nil
	}
}
