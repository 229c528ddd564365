package simulation

import (
	"time"

	"go.uber.org/zap"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/bus"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange/sandbox"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// Report is the outcome of one run. It is produced on every exit path, so a
// failed run still reports what happened up to the failing tick.
type Report struct {
	ExecutionID utility.ExecutionID
	State       State
	FailedTick  int

	SimulatedStart time.Time
	SimulatedEnd   time.Time
	TicksRun       int
	WallTime       time.Duration

	InitialEquity fixed.Point
	FinalEquity   fixed.Point
	PnL           fixed.Point
	PnLPercent    fixed.Point

	MaxDrawdownPercent   fixed.Point
	AnnualizedVolatility fixed.Point
	SharpeRatio          fixed.Point
	SortinoRatio         fixed.Point

	Exchange sandbox.Statistics
	Bus      bus.Statistics

	FinalBalances []common.Balance
}

func (e *Environment) buildReport() *Report {
	return &Report{
		ExecutionID:          utility.GetExecutionID(),
		State:                e.state,
		FailedTick:           e.failedTick,
		SimulatedStart:       e.conf.StartTime,
		SimulatedEnd:         e.conf.StartTime.Add(time.Duration(e.ticksRun) * e.conf.TickInterval),
		TicksRun:             e.ticksRun,
		WallTime:             e.finishedAt.Sub(e.startedAt),
		InitialEquity:        e.audit.initial,
		FinalEquity:          e.audit.finalEquity(),
		PnL:                  e.audit.pnl(),
		PnLPercent:           e.audit.pnlPercent(),
		MaxDrawdownPercent:   e.audit.maxDrawdownPercent(),
		AnnualizedVolatility: e.audit.annualizedVolatility(),
		SharpeRatio:          e.audit.sharpe(),
		SortinoRatio:         e.audit.sortino(),
		Exchange:             e.simulator.Statistics(),
		Bus:                  e.router.Statistics(),
		FinalBalances:        e.balances.All(),
	}
}

func (r *Report) Print(logger *zap.Logger) {
	logger.Info("simulation report",
		zap.String("execution_id", r.ExecutionID.String()),
		zap.String("state", r.State.String()),
		zap.Int("ticks", r.TicksRun),
		zap.Duration("wall_time", r.WallTime),
		zap.String("initial_equity", r.InitialEquity.String()),
		zap.String("final_equity", r.FinalEquity.String()),
		zap.String("pnl", r.PnL.String()),
		zap.String("pnl_pct", r.PnLPercent.String()),
		zap.String("max_drawdown_pct", r.MaxDrawdownPercent.String()),
		zap.String("annualized_vol", r.AnnualizedVolatility.String()),
		zap.String("sharpe", r.SharpeRatio.String()),
		zap.String("sortino", r.SortinoRatio.String()))

	logger.Info("execution statistics",
		zap.Uint64("orders_placed", r.Exchange.OrdersPlaced),
		zap.Uint64("orders_filled", r.Exchange.OrdersFilled),
		zap.Uint64("orders_cancelled", r.Exchange.OrdersCancelled),
		zap.Uint64("orders_rejected", r.Exchange.OrdersRejected),
		zap.Uint64("partial_fills", r.Exchange.PartialFills),
		zap.String("volume", r.Exchange.TotalVolume.String()),
		zap.String("avg_slippage_bps", r.Exchange.AverageSlippageBps().String()))

	logger.Info("event bus statistics",
		zap.Uint64("events_posted", r.Bus.PostCount),
		zap.Uint64("post_failures", r.Bus.PostFails),
		zap.Uint64("events_dispatched", r.Bus.DispatchCount),
		zap.Uint64("dispatch_failures", r.Bus.DispatchFails),
		zap.Float64("throughput", r.Bus.Throughput()))

	for _, bal := range r.FinalBalances {
		logger.Info("final balance",
			zap.String("asset", bal.Asset),
			zap.String("total", bal.Total.String()),
			zap.String("available", bal.Available.String()),
			zap.String("locked", bal.Locked.String()))
	}
}
