package main

import (
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

var (
	SimulationStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	Pair = common.NewPair("BTC", "USDT")

	InitialQuoteBalance = fixed.FromInt64(10_000, 0)
	StrategyNotional    = fixed.FromInt64(500, 0)
	InitialMid          = fixed.FromInt64(30_000, 0)
)

const (
	SimulationDuration  = time.Hour
	TickInterval        = time.Second
	RouterEventCapacity = 4096
	Seed                = 42
	StrategyWindow      = 30
)
