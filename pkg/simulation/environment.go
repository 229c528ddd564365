package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/balance"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/bus"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange/sandbox"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

const environmentComponentName = "simulation.environment"

type State int

const (
	StateNotInitialized State = iota
	StateInitialized
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotInitialized:
		return "not-initialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// sandboxFacade is the strategy-facing view: the simulator's market and order
// surface plus balances and event subscriptions.
type sandboxFacade struct {
	*sandbox.Simulator
	balances *balance.Manager
	router   *bus.Router
}

func (f *sandboxFacade) Balance(asset string) common.Balance {
	return f.balances.Get(asset)
}

func (f *sandboxFacade) Balances() []common.Balance {
	return f.balances.All()
}

func (f *sandboxFacade) Subscribe(id bus.EventId, handler bus.Handler) bus.SubscriptionID {
	return f.router.Subscribe(id, handler)
}

func (f *sandboxFacade) Unsubscribe(sid bus.SubscriptionID) bool {
	return f.router.Unsubscribe(sid)
}

// Environment owns one simulation run: it wires the router, the balance
// manager and the simulator, drives the tick loop, and settles into exactly
// one terminal state. A finished environment is not reusable; build a new one
// for the next run.
type Environment struct {
	conf Configuration

	router    *bus.Router
	balances  *balance.Manager
	simulator *sandbox.Simulator
	facade    *sandboxFacade

	strategies []Strategy
	audit      *auditTrail

	state      State
	cleanedUp  bool
	failedTick int
	startedAt  time.Time
	finishedAt time.Time
	ticksRun   int
}

func NewEnvironment(conf Configuration) (*Environment, error) {
	if conf.EventCapacity <= 0 {
		conf.EventCapacity = defaultEventCapacity
	}
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	router := bus.NewRouter(conf.EventCapacity)
	balances := balance.NewManager()
	simulator := sandbox.NewSimulator(balances, router,
		sandbox.WithRand(rand.New(rand.NewSource(conf.Seed))),
		sandbox.WithSlippage(conf.Slippage),
		sandbox.WithDynamics(conf.Dynamics))

	for _, pair := range conf.Pairs {
		simulator.AddTradingPair(pair)
	}
	for asset, amount := range conf.InitialBalances {
		balances.Set(asset, amount)
	}

	e := &Environment{
		conf:      conf,
		router:    router,
		balances:  balances,
		simulator: simulator,
		state:     StateInitialized,
	}
	e.facade = &sandboxFacade{
		Simulator: simulator,
		balances:  balances,
		router:    router,
	}
	return e, nil
}

// AddStrategy registers a strategy. Registration order is invocation order
// within each tick. Only valid before Run.
func (e *Environment) AddStrategy(strategy Strategy) error {
	if e.state != StateInitialized {
		return fmt.Errorf("%w: cannot add strategy while %s", ErrInvalidState, e.state)
	}
	e.strategies = append(e.strategies, strategy)
	return nil
}

// RemoveStrategy unregisters a strategy by name. Only valid before Run;
// returns false when no strategy carries the name.
func (e *Environment) RemoveStrategy(name string) bool {
	if e.state != StateInitialized {
		return false
	}
	for i, strategy := range e.strategies {
		if strategy.Name() == name {
			e.strategies = append(e.strategies[:i], e.strategies[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Environment) State() State {
	return e.state
}

// Sandbox exposes the strategy-facing surface, mainly for tests and tooling.
func (e *Environment) Sandbox() Sandbox {
	return e.facade
}

// Run executes the configured number of ticks. It returns a report even when
// the run fails; err then carries the FatalError that stopped it. Cleanup,
// strategy OnFinish included, happens exactly once on every exit path.
func (e *Environment) Run(ctx context.Context) (report *Report, err error) {
	if e.state != StateInitialized {
		return nil, fmt.Errorf("%w: run requires %s, environment is %s", ErrInvalidState, StateInitialized, e.state)
	}
	e.state = StateRunning
	e.startedAt = time.Now()
	e.audit = newAuditTrail(e.equity())

	tick := 0
	defer func() {
		if rec := recover(); rec != nil {
			err = &FatalError{Tick: tick, Origin: "panic", Err: fmt.Errorf("%v", rec)}
		}
		if err != nil {
			e.state = StateFailed
			e.failedTick = tick
		} else {
			e.state = StateCompleted
		}
		e.cleanup(ctx)
		e.finishedAt = time.Now()
		report = e.buildReport()
	}()

	for _, strategy := range e.strategies {
		if initErr := strategy.OnInit(ctx, e.facade); initErr != nil {
			err = &FatalError{Tick: tick, Origin: "strategy " + strategy.Name(), Err: initErr}
			return
		}
	}
	if dispatchErr := e.router.DispatchPending(ctx); dispatchErr != nil {
		err = &FatalError{Tick: tick, Origin: "router", Err: dispatchErr}
		return
	}

	ticks := e.conf.Ticks()
	for tick = 1; tick <= ticks; tick++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = &FatalError{Tick: tick, Origin: "context", Err: ctxErr}
			return
		}

		ts := e.conf.StartTime.Add(time.Duration(tick) * e.conf.TickInterval)
		if tickErr := e.simulator.Tick(ts); tickErr != nil {
			err = &FatalError{Tick: tick, Origin: "simulator", Err: tickErr}
			return
		}

		for _, strategy := range e.strategies {
			if strategyErr := strategy.OnTick(ctx, e.facade); strategyErr != nil {
				err = &FatalError{Tick: tick, Origin: "strategy " + strategy.Name(), Err: strategyErr}
				return
			}
		}

		// Every event produced this tick is delivered before the tick ends,
		// so subscriber state is consistent at the boundary.
		if dispatchErr := e.router.DispatchPending(ctx); dispatchErr != nil {
			err = &FatalError{Tick: tick, Origin: "router", Err: dispatchErr}
			return
		}

		e.audit.observe(e.equity())
		e.ticksRun = tick
	}
	return
}

func (e *Environment) cleanup(ctx context.Context) {
	if e.cleanedUp {
		return
	}
	e.cleanedUp = true

	// Finish hooks still run when the run failed; a panicking hook must not
	// block the remaining ones.
	for _, strategy := range e.strategies {
		e.finishStrategy(ctx, strategy)
	}

	drainCtx := context.WithoutCancel(ctx)
	if err := e.router.DispatchPending(drainCtx); err != nil {
		slog.Warn("failed to drain events during cleanup",
			"component", environmentComponentName,
			"error", err)
	}

	slog.Info("simulation cleanup complete",
		"component", environmentComponentName,
		"state", e.state,
		"ticks", e.ticksRun)
}

func (e *Environment) finishStrategy(ctx context.Context, strategy Strategy) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("strategy finish hook failed",
				"component", environmentComponentName,
				"strategy", strategy.Name(),
				"panic", rec)
		}
	}()
	strategy.OnFinish(ctx, e.facade)
}

// equity marks every balance to market: base assets at their pair's mid,
// quote and unpaired assets at face value.
func (e *Environment) equity() fixed.Point {
	mids := make(map[string]fixed.Point, len(e.conf.Pairs))
	quotes := make(map[string]bool, len(e.conf.Pairs))
	for _, pair := range e.conf.Pairs {
		if _, ok := mids[pair.Base]; !ok {
			mids[pair.Base] = e.simulator.GetPrice(pair, exchange.PriceMid)
		}
		quotes[pair.Quote] = true
	}

	total := fixed.Zero
	for _, bal := range e.balances.All() {
		if mid, ok := mids[bal.Asset]; ok && !quotes[bal.Asset] {
			total = total.Add(bal.Total.Mul(mid))
			continue
		}
		total = total.Add(bal.Total)
	}
	return total
}
