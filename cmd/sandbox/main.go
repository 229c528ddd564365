package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/MementoRC/hb-strategy-sandbox/examples/strategy"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/simulation"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf := simulation.DefaultConfiguration()
	conf.StartTime = SimulationStart
	conf.Duration = SimulationDuration
	conf.TickInterval = TickInterval
	conf.EventCapacity = RouterEventCapacity
	conf.Seed = Seed
	conf.Pairs = []common.TradingPair{Pair}
	conf.InitialBalances = map[string]fixed.Point{
		Pair.Quote: InitialQuoteBalance,
	}
	conf.Dynamics.InitialMid = InitialMid

	env, err := simulation.NewEnvironment(conf)
	if err != nil {
		logger.Fatal("error creating environment", zap.Error(err))
	}

	if err := env.AddStrategy(strategy.NewMeanReversion(Pair, StrategyNotional, StrategyWindow)); err != nil {
		logger.Fatal("error adding strategy", zap.Error(err))
	}

	report, err := env.Run(ctx)
	if err != nil {
		logger.Error("simulation failed", zap.Error(err))
	}
	report.Print(logger)
}
