package synthetic

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

func createGenerator(seed int64, steps int64) *BookGenerator {
	return NewBookGenerator(
		common.NewPair("BTC", "USDT"),
		rand.New(rand.NewSource(seed)),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Second,
		fixed.FromInt64(30_000, 0), // start price
		fixed.FromInt64(10, 0),     // full spread
		fixed.Zero,                 // mu
		fixed.MustFromString("0.001"),
		fixed.One,
		steps)
}

func TestSyntheticBookGenerator_ProducesOrderedBooks(t *testing.T) {
	gen := createGenerator(1, 10)

	var lastTs time.Time
	for i := 0; i < 10; i++ {
		book, err := gen.GetNext()
		if err != nil {
			t.Fatalf("GetNext failed at step %d: %v", i, err)
		}

		if !book.BestBid().Lt(book.BestAsk()) {
			t.Errorf("step %d: bid %v not below ask %v", i, book.BestBid(), book.BestAsk())
		}
		if len(book.Bids) != 3 || len(book.Asks) != 3 {
			t.Errorf("step %d: expected 3 levels per side, got %d/%d", i, len(book.Bids), len(book.Asks))
		}
		if !book.TimeStamp.After(lastTs) {
			t.Errorf("step %d: timestamps not increasing", i)
		}
		lastTs = book.TimeStamp
	}
}

func TestSyntheticBookGenerator_EofAfterSteps(t *testing.T) {
	gen := createGenerator(1, 2)

	for i := 0; i < 2; i++ {
		if _, err := gen.GetNext(); err != nil {
			t.Fatalf("GetNext failed at step %d: %v", i, err)
		}
	}

	_, err := gen.GetNext()
	if !errors.Is(err, ErrEof) {
		t.Errorf("Expected ErrEof, got %v", err)
	}
}

func TestSyntheticBookGenerator_Deterministic(t *testing.T) {
	run := func() []string {
		gen := createGenerator(42, 20)
		var mids []string
		for {
			book, err := gen.GetNext()
			if err != nil {
				break
			}
			mids = append(mids, book.MidPrice().String())
		}
		return mids
	}

	first := run()
	second := run()
	if len(first) != 20 {
		t.Fatalf("Expected 20 snapshots, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("step %d: %s != %s", i, first[i], second[i])
		}
	}
}
