package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

var testPair = common.NewPair("BTC", "USDT")

func testConfiguration() Configuration {
	conf := DefaultConfiguration()
	conf.Duration = time.Minute
	conf.TickInterval = time.Second
	conf.Pairs = []common.TradingPair{testPair}
	conf.InitialBalances = map[string]fixed.Point{
		"USDT": fixed.FromInt64(10_000, 0),
	}
	conf.Dynamics.InitialMid = fixed.FromInt64(30_000, 0)
	return conf
}

// scriptedStrategy counts callbacks and optionally fails at a given tick.
type scriptedStrategy struct {
	name string

	failAtTick int
	failErr    error

	initCalls   int
	tickCalls   int
	finishCalls int

	onTick func(sb Sandbox) error
}

func (s *scriptedStrategy) Name() string { return s.name }

func (s *scriptedStrategy) OnInit(_ context.Context, _ Sandbox) error {
	s.initCalls++
	return nil
}

func (s *scriptedStrategy) OnTick(_ context.Context, sb Sandbox) error {
	s.tickCalls++
	if s.failAtTick > 0 && s.tickCalls == s.failAtTick {
		return s.failErr
	}
	if s.onTick != nil {
		return s.onTick(sb)
	}
	return nil
}

func (s *scriptedStrategy) OnFinish(_ context.Context, _ Sandbox) {
	s.finishCalls++
}

func TestSimulationEnvironment_CompletesExactTickCount(t *testing.T) {
	conf := testConfiguration()
	env, err := NewEnvironment(conf)
	require.NoError(t, err)

	strategy := &scriptedStrategy{name: "counter"}
	require.NoError(t, env.AddStrategy(strategy))

	report, err := env.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, env.State())
	assert.Equal(t, 60, report.TicksRun)
	assert.Equal(t, 60, strategy.tickCalls)
	assert.Equal(t, 1, strategy.initCalls)
	assert.Equal(t, 1, strategy.finishCalls)
	assert.Equal(t, conf.StartTime.Add(time.Minute), report.SimulatedEnd)
}

func TestSimulationEnvironment_StrategyErrorFailsRunAndCleansUpOnce(t *testing.T) {
	env, err := NewEnvironment(testConfiguration())
	require.NoError(t, err)

	boom := errors.New("boom")
	failing := &scriptedStrategy{name: "failing", failAtTick: 10, failErr: boom}
	bystander := &scriptedStrategy{name: "bystander"}
	require.NoError(t, env.AddStrategy(failing))
	require.NoError(t, env.AddStrategy(bystander))

	report, err := env.Run(context.Background())
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, fatal.Tick)

	assert.Equal(t, StateFailed, env.State())
	require.NotNil(t, report, "a failed run still reports")
	assert.Equal(t, StateFailed, report.State)
	assert.Equal(t, 10, report.FailedTick)

	// Cleanup ran exactly once for every strategy, even the innocent one.
	assert.Equal(t, 1, failing.finishCalls)
	assert.Equal(t, 1, bystander.finishCalls)

	// The failing strategy went first, so the bystander never saw tick 10.
	assert.Equal(t, 9, bystander.tickCalls)
}

func TestSimulationEnvironment_PanicBecomesFatalError(t *testing.T) {
	env, err := NewEnvironment(testConfiguration())
	require.NoError(t, err)

	strategy := &scriptedStrategy{name: "panicky"}
	strategy.onTick = func(Sandbox) error {
		if strategy.tickCalls == 5 {
			panic("unexpected state")
		}
		return nil
	}
	require.NoError(t, env.AddStrategy(strategy))

	report, err := env.Run(context.Background())
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, StateFailed, env.State())
	assert.NotNil(t, report)
	assert.Equal(t, 1, strategy.finishCalls)
}

func TestSimulationEnvironment_ContextCancellation(t *testing.T) {
	env, err := NewEnvironment(testConfiguration())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	strategy := &scriptedStrategy{name: "canceller"}
	strategy.onTick = func(Sandbox) error {
		if strategy.tickCalls == 3 {
			cancel()
		}
		return nil
	}
	require.NoError(t, env.AddStrategy(strategy))

	report, err := env.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StateFailed, env.State())
	assert.Equal(t, 1, strategy.finishCalls)
	assert.NotNil(t, report)
}

func TestSimulationEnvironment_StateMachine(t *testing.T) {
	env, err := NewEnvironment(testConfiguration())
	require.NoError(t, err)
	assert.Equal(t, StateInitialized, env.State())

	_, err = env.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, env.State())

	// A finished environment cannot run again or take strategies.
	_, err = env.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, env.AddStrategy(&scriptedStrategy{name: "late"}), ErrInvalidState)
	assert.False(t, env.RemoveStrategy("late"))
}

func TestSimulationEnvironment_RemoveStrategy(t *testing.T) {
	env, err := NewEnvironment(testConfiguration())
	require.NoError(t, err)

	removed := &scriptedStrategy{name: "removed"}
	kept := &scriptedStrategy{name: "kept"}
	require.NoError(t, env.AddStrategy(removed))
	require.NoError(t, env.AddStrategy(kept))

	assert.True(t, env.RemoveStrategy("removed"))
	assert.False(t, env.RemoveStrategy("removed"))

	_, err = env.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, removed.tickCalls)
	assert.Zero(t, removed.finishCalls)
	assert.Equal(t, 60, kept.tickCalls)
}

func TestSimulationEnvironment_InvalidConfiguration(t *testing.T) {
	conf := testConfiguration()
	conf.TickInterval = 0
	_, err := NewEnvironment(conf)
	assert.Error(t, err)

	conf = testConfiguration()
	conf.Pairs = nil
	_, err = NewEnvironment(conf)
	assert.Error(t, err)

	conf = testConfiguration()
	conf.InitialBalances = map[string]fixed.Point{"USDT": fixed.One.Neg()}
	_, err = NewEnvironment(conf)
	assert.Error(t, err)
}

// tradingStrategy buys once at the fifth tick and sells everything near the
// end, exercising the full order path through the environment.
type tradingStrategy struct {
	bought fixed.Point
}

func (s *tradingStrategy) Name() string                          { return "trading" }
func (s *tradingStrategy) OnInit(context.Context, Sandbox) error { return nil }
func (s *tradingStrategy) OnFinish(context.Context, Sandbox)     {}

func (s *tradingStrategy) OnTick(_ context.Context, sb Sandbox) error {
	open := sb.OpenOrders(common.TradingPair{})
	if len(open) > 0 {
		return nil
	}
	if s.bought.IsZero() {
		order, err := sb.PlaceOrder(common.OrderCandidate{
			Pair:   testPair,
			Side:   common.OrderSideBuy,
			Type:   common.OrderTypeMarket,
			Amount: fixed.MustFromString("0.05"),
		})
		if err != nil {
			return err
		}
		s.bought = order.Amount
	}
	return nil
}

func TestSimulationEnvironment_DeterministicRuns(t *testing.T) {
	run := func() *Report {
		conf := testConfiguration()
		conf.Seed = 1234
		env, err := NewEnvironment(conf)
		require.NoError(t, err)
		require.NoError(t, env.AddStrategy(&tradingStrategy{}))

		report, err := env.Run(context.Background())
		require.NoError(t, err)
		return report
	}

	first := run()
	second := run()

	assert.Equal(t, first.FinalEquity.String(), second.FinalEquity.String())
	assert.Equal(t, first.PnL.String(), second.PnL.String())
	assert.Equal(t, first.Exchange.FillCount, second.Exchange.FillCount)
	assert.Equal(t, first.Exchange.TotalVolume.String(), second.Exchange.TotalVolume.String())
}

func TestSimulationEnvironment_ReportReflectsTrading(t *testing.T) {
	conf := testConfiguration()
	env, err := NewEnvironment(conf)
	require.NoError(t, err)
	require.NoError(t, env.AddStrategy(&tradingStrategy{}))

	report, err := env.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.InitialEquity.Eq(fixed.FromInt64(10_000, 0)))
	assert.NotZero(t, report.Exchange.OrdersPlaced)
	assert.NotZero(t, report.Exchange.FillCount)
	assert.NotZero(t, report.Bus.PostCount)
	assert.NotZero(t, report.Bus.DispatchCount)
	assert.NotEmpty(t, report.FinalBalances)

	// Nothing should be left locked at the end of a completed run with no
	// resting orders.
	sb := env.Sandbox()
	if len(sb.OpenOrders(common.TradingPair{})) == 0 {
		for _, bal := range report.FinalBalances {
			assert.True(t, bal.Locked.IsZero(), "asset %s still locked", bal.Asset)
		}
	}

	mid := sb.GetPrice(testPair, exchange.PriceMid)
	assert.True(t, mid.IsPos())
}
