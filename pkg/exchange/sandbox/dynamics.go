package sandbox

import (
	"math"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/bus"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// advanceMarket evolves one pair's mid price and regenerates its book. The
// relative increment is volatility*sqrt(dt)*z + trend*dt with z standard
// normal, rescaled by the active regime. Regime switches are sampled every
// tick; the book regenerates every BookRefreshTicks ticks.
func (s *Simulator) advanceMarket(pair common.TradingPair, dt time.Duration) {
	symbol := pair.Symbol
	book := s.books[symbol]
	mid := book.MidPrice()
	if mid.IsZero() {
		return
	}

	if s.rng.Float64() < s.dynamics.RegimeChangeProb {
		s.switchRegime(symbol)
	}

	// Time keeps accruing while the book is stale, so a refresh every N
	// ticks scales the increment by the full elapsed interval.
	s.pendingDt[symbol] += dt

	s.staleFor[symbol]++
	if s.staleFor[symbol] < s.dynamics.BookRefreshTicks {
		return
	}
	s.staleFor[symbol] = 0

	dtSec := s.pendingDt[symbol].Seconds()
	s.pendingDt[symbol] = 0
	if dtSec > 0 {
		vol := s.dynamics.Volatility
		trend := s.dynamics.Trend
		switch s.regimes[symbol] {
		case RegimeVolatile:
			vol = vol.MulInt64(3)
		case RegimeTrending:
			trend = trend.MulInt64(2)
		}

		z := s.rng.NormFloat64()
		change := vol.Mul(fixed.FromFloat64(math.Sqrt(dtSec))).Mul(fixed.FromFloat64(z)).
			Add(trend.Mul(fixed.FromFloat64(dtSec)))

		next := mid.Mul(fixed.One.Add(change))
		if next.IsPos() {
			mid = next
		}
	}

	s.books[symbol] = s.buildBook(pair, mid)

	s.post(bus.PriceUpdatedEvent, common.PriceUpdated{
		Pair:        pair,
		Bid:         s.books[symbol].BestBid(),
		Ask:         s.books[symbol].BestAsk(),
		Source:      simulatorComponentName,
		ExecutionID: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.now,
	})
}

// switchRegime picks uniformly among the other two regimes.
func (s *Simulator) switchRegime(symbol string) {
	current := s.regimes[symbol]
	next := Regime(s.rng.Intn(2))
	if next >= current {
		next++
	}
	s.regimes[symbol] = next
}

// buildBook lays out the configured depth profile on both sides of mid, each
// level one LevelStep further from the touch.
func (s *Simulator) buildBook(pair common.TradingPair, mid fixed.Point) *common.OrderBook {
	touchBid := mid.Mul(fixed.One.Sub(s.dynamics.SpreadFraction))
	touchAsk := mid.Mul(fixed.One.Add(s.dynamics.SpreadFraction))

	bids := make([]common.BookLevel, 0, len(s.dynamics.DepthProfile))
	asks := make([]common.BookLevel, 0, len(s.dynamics.DepthProfile))
	for i, amount := range s.dynamics.DepthProfile {
		offset := s.dynamics.LevelStep.MulInt(i)
		bids = append(bids, common.BookLevel{
			Price:  touchBid.Mul(fixed.One.Sub(offset)),
			Amount: amount,
		})
		asks = append(asks, common.BookLevel{
			Price:  touchAsk.Mul(fixed.One.Add(offset)),
			Amount: amount,
		})
	}
	return common.NewOrderBook(pair, bids, asks, s.now)
}
