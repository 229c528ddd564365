package sandbox

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/balance"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/bus"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

const simulatorComponentName = "exchange.sandbox.simulator"

type trackedOrder struct {
	order *common.Order

	// seq is the placement sequence number, the tiebreak after price priority.
	seq uint64

	// readyAt is the first tick the order is eligible for matching, modeling
	// order latency.
	readyAt uint64
}

// Simulator is a synthetic exchange: it regenerates per-pair order books from
// a stochastic mid-price process, matches orders against that liquidity with
// configurable slippage, and settles every fill through the balance manager.
//
// All methods are driven from the environment's tick loop; the simulator holds
// no lock. Randomness flows through a single injected source, so a fixed seed
// reproduces a run fill for fill.
type Simulator struct {
	balances *balance.Manager
	router   *bus.Router
	rng      *rand.Rand

	slippage SlippageConfig
	dynamics DynamicsConfig

	pairs     map[string]common.TradingPair
	pairOrder []common.TradingPair
	books     map[string]*common.OrderBook
	regimes   map[string]Regime
	staleFor  map[string]int
	pendingDt map[string]time.Duration

	active  map[common.OrderId]*trackedOrder
	seqNext uint64

	tick    uint64
	now     time.Time
	lastNow time.Time

	stats Statistics
	fills []common.Fill
}

func NewSimulator(balances *balance.Manager, router *bus.Router, opts ...Option) *Simulator {
	s := &Simulator{
		balances: balances,
		router:   router,
		rng:      rand.New(rand.NewSource(1)),
		slippage: DefaultSlippageConfig(),
		dynamics: DefaultDynamicsConfig(),
		pairs:     make(map[string]common.TradingPair),
		books:     make(map[string]*common.OrderBook),
		regimes:   make(map[string]Regime),
		staleFor:  make(map[string]int),
		pendingDt: make(map[string]time.Duration),
		active:    make(map[common.OrderId]*trackedOrder),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTradingPair registers a pair and seeds its book around the configured
// initial mid. Adding the same pair twice keeps the existing book.
func (s *Simulator) AddTradingPair(pair common.TradingPair) {
	if _, ok := s.pairs[pair.Symbol]; ok {
		return
	}
	s.pairs[pair.Symbol] = pair
	s.pairOrder = append(s.pairOrder, pair)
	s.regimes[pair.Symbol] = s.dynamics.Regime
	s.books[pair.Symbol] = s.buildBook(pair, s.dynamics.InitialMid)
}

func (s *Simulator) TradingPairs() []common.TradingPair {
	pairs := make([]common.TradingPair, len(s.pairOrder))
	copy(pairs, s.pairOrder)
	return pairs
}

// SeedOrderBook replaces the synthetic book for a pair, typically with a
// snapshot from a data provider. Unknown pairs are ignored.
func (s *Simulator) SeedOrderBook(book *common.OrderBook) {
	if _, ok := s.pairs[book.Pair.Symbol]; !ok {
		return
	}
	s.books[book.Pair.Symbol] = book
}

func (s *Simulator) Now() time.Time {
	return s.now
}

func (s *Simulator) OrderBook(pair common.TradingPair) (*common.OrderBook, bool) {
	book, ok := s.books[pair.Symbol]
	return book, ok
}

// GetPrice returns the requested quote, fixed.Zero when the relevant book side
// is empty.
func (s *Simulator) GetPrice(pair common.TradingPair, priceType exchange.PriceType) fixed.Point {
	book, ok := s.books[pair.Symbol]
	if !ok {
		return fixed.Zero
	}
	switch priceType {
	case exchange.PriceBid:
		return book.BestBid()
	case exchange.PriceAsk:
		return book.BestAsk()
	default:
		return book.MidPrice()
	}
}

// PlaceOrder validates the candidate, reserves the balance the order may
// spend, and admits it for matching. A failed reservation leaves no trace: no
// order, no lock, no event.
func (s *Simulator) PlaceOrder(candidate common.OrderCandidate) (*common.Order, error) {
	pair, ok := s.pairs[candidate.Pair.Symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", exchange.ErrInvalidTradingPair, candidate.Pair)
	}
	if !candidate.Amount.IsPos() {
		return nil, fmt.Errorf("%w: amount must be positive", exchange.ErrInvalidOrder)
	}
	if candidate.Type == common.OrderTypeLimit && !candidate.Price.IsPos() {
		return nil, fmt.Errorf("%w: limit order requires a positive price", exchange.ErrInvalidOrder)
	}

	lockPrice := candidate.Price
	if candidate.Type == common.OrderTypeMarket && candidate.Side == common.OrderSideBuy {
		// A market buy has no price of its own; reserve at the best ask.
		lockPrice = s.books[pair.Symbol].BestAsk()
		if lockPrice.IsZero() {
			return nil, fmt.Errorf("%w: no asks to price market buy on %s", exchange.ErrNoLiquidity, pair)
		}
	}

	order := &common.Order{
		Id:        uuid.New(),
		Pair:      pair,
		Side:      candidate.Side,
		Type:      candidate.Type,
		Amount:    candidate.Amount,
		Price:     candidate.Price,
		Status:    common.OrderStatusOpen,
		LockPrice: lockPrice,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}

	if !s.balances.Lock(order.LockAsset(), order.RemainingLock()) {
		return nil, balance.ErrInsufficientBalance
	}

	s.seqNext++
	s.active[order.Id] = &trackedOrder{
		order:   order,
		seq:     s.seqNext,
		readyAt: s.tick + uint64(s.dynamics.LatencyTicks),
	}
	s.stats.OrdersPlaced++

	s.post(bus.OrderPlacedEvent, common.OrderPlaced{
		Order:       *order,
		Source:      simulatorComponentName,
		ExecutionID: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.now,
	})

	snapshot := *order
	return &snapshot, nil
}

// CancelOrder removes an open order and releases its remaining reservation.
// Unknown or already settled ids return false.
func (s *Simulator) CancelOrder(id common.OrderId) bool {
	tracked, ok := s.active[id]
	if !ok {
		return false
	}
	order := tracked.order

	unlocked := order.RemainingLock()
	s.balances.Unlock(order.LockAsset(), unlocked)

	order.Status = common.OrderStatusCancelled
	order.UpdatedAt = s.now
	delete(s.active, id)
	s.stats.OrdersCancelled++

	s.post(bus.OrderCancelledEvent, common.OrderCancelled{
		Order:          *order,
		UnlockedAmount: unlocked,
		Source:         simulatorComponentName,
		ExecutionID:    utility.GetExecutionID(),
		TraceID:        utility.CreateTraceID(),
		TimeStamp:      s.now,
	})
	s.postBalance(order.LockAsset())
	return true
}

// Order returns a snapshot of an active order.
func (s *Simulator) Order(id common.OrderId) (common.Order, bool) {
	tracked, ok := s.active[id]
	if !ok {
		return common.Order{}, false
	}
	return *tracked.order, true
}

// OpenOrders returns snapshots of the active orders for a pair, oldest first.
// The zero-value pair matches every pair.
func (s *Simulator) OpenOrders(pair common.TradingPair) []common.Order {
	tracked := make([]*trackedOrder, 0, len(s.active))
	for _, t := range s.active {
		if pair.Symbol != "" && t.order.Pair.Symbol != pair.Symbol {
			continue
		}
		tracked = append(tracked, t)
	}
	sort.Slice(tracked, func(i, j int) bool { return tracked[i].seq < tracked[j].seq })

	orders := make([]common.Order, 0, len(tracked))
	for _, t := range tracked {
		orders = append(orders, *t.order)
	}
	return orders
}

// Tick advances the simulation one step: market dynamics first, then matching
// against the refreshed liquidity. Only invariant violations are returned;
// rejections surface as events.
func (s *Simulator) Tick(ts time.Time) error {
	dt := time.Duration(0)
	if !s.lastNow.IsZero() {
		dt = ts.Sub(s.lastNow)
	}
	s.tick++
	s.now = ts

	for _, pair := range s.pairOrder {
		s.advanceMarket(pair, dt)
	}
	if err := s.matchOrders(); err != nil {
		return err
	}

	s.lastNow = ts
	return nil
}

func (s *Simulator) Statistics() Statistics {
	return s.stats
}

// Fills returns every execution of the run in order.
func (s *Simulator) Fills() []common.Fill {
	fills := make([]common.Fill, len(s.fills))
	copy(fills, s.fills)
	return fills
}

// Reset drops every order and book so the simulator can host a fresh run.
// Balances belong to the manager and are reset by its owner.
func (s *Simulator) Reset() {
	s.active = make(map[common.OrderId]*trackedOrder)
	s.staleFor = make(map[string]int)
	s.pendingDt = make(map[string]time.Duration)
	s.stats = Statistics{}
	s.fills = nil
	s.seqNext = 0
	s.tick = 0
	s.now = time.Time{}
	s.lastNow = time.Time{}
	for _, pair := range s.pairOrder {
		s.regimes[pair.Symbol] = s.dynamics.Regime
		s.books[pair.Symbol] = s.buildBook(pair, s.dynamics.InitialMid)
	}
}

func (s *Simulator) post(id bus.EventId, data any) {
	if err := s.router.Post(id, data); err != nil {
		slog.Warn("event dropped",
			"component", simulatorComponentName,
			"event", id,
			"error", err)
	}
}

func (s *Simulator) postBalance(asset string) {
	s.post(bus.BalanceUpdatedEvent, common.BalanceUpdated{
		Asset:       asset,
		Balance:     s.balances.Get(asset),
		Source:      simulatorComponentName,
		ExecutionID: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.now,
	})
}
