package synthetic

import (
	"errors"
	"math/rand"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

var (
	pointFive = fixed.FromInt64(5, 1)
	ErrEof    = errors.New("EOF")
)

// BookGenerator produces a deterministic stream of book snapshots from a
// geometric Brownian mid price. It is the offline counterpart of the
// simulator's built-in dynamics, used to pre-generate feeds or seed books
// from a known process.
type BookGenerator struct {
	pair common.TradingPair
	rng  *rand.Rand

	startTime  time.Time
	interval   time.Duration
	halfSpread fixed.Point
	depth      []fixed.Point
	steps      int64
	t          int64

	// Pre-calculated GBM terms: (mu - sigma^2/2)*dt and sigma*sqrt(dt).
	deltaLogPre1 fixed.Point
	deltaLogPre2 fixed.Point

	lastTime  time.Time
	lastPrice fixed.Point
}

func NewBookGenerator(
	pair common.TradingPair,
	rng *rand.Rand,
	startTime time.Time,
	interval time.Duration,
	startPrice, fullSpread, mu, sigma, deltaT fixed.Point,
	steps int64) *BookGenerator {

	return &BookGenerator{
		pair: pair,
		rng:  rng,

		startTime:  startTime,
		interval:   interval,
		halfSpread: fullSpread.DivInt64(2),
		depth: []fixed.Point{
			fixed.FromInt64(10, 0),
			fixed.FromInt64(25, 0),
			fixed.FromInt64(50, 0),
		},
		steps: steps,

		deltaLogPre1: mu.Sub(sigma.Mul(sigma).Mul(pointFive)).Mul(deltaT),
		deltaLogPre2: sigma.Mul(deltaT.Sqrt()),

		lastTime:  startTime,
		lastPrice: startPrice,
	}
}

// SetDepthProfile overrides the per-level amounts.
func (g *BookGenerator) SetDepthProfile(depth []fixed.Point) {
	g.depth = depth
}

func (g *BookGenerator) GetNext() (*common.OrderBook, error) {
	if g.t >= g.steps {
		return nil, ErrEof
	}

	z := g.rng.NormFloat64()
	deltaLog := g.deltaLogPre1.Add(g.deltaLogPre2.Mul(fixed.FromFloat64(z)))
	g.lastPrice = g.lastPrice.Mul(deltaLog.Exp())

	g.lastTime = g.lastTime.Add(g.interval)
	g.t++

	step := g.halfSpread.DivInt64(2)
	bids := make([]common.BookLevel, 0, len(g.depth))
	asks := make([]common.BookLevel, 0, len(g.depth))
	for i, amount := range g.depth {
		offset := g.halfSpread.Add(step.MulInt(i))
		bids = append(bids, common.BookLevel{
			Price:  g.lastPrice.Sub(offset),
			Amount: amount,
		})
		asks = append(asks, common.BookLevel{
			Price:  g.lastPrice.Add(offset),
			Amount: amount,
		})
	}

	return common.NewOrderBook(g.pair, bids, asks, g.lastTime), nil
}
