package simulation

import (
	"errors"
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange/sandbox"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

const defaultEventCapacity = 4096

// Configuration fully determines a run. Two runs with equal configurations
// and deterministic strategies produce identical reports.
type Configuration struct {
	StartTime    time.Time
	Duration     time.Duration
	TickInterval time.Duration

	Pairs           []common.TradingPair
	InitialBalances map[string]fixed.Point

	// Seed feeds the market dynamics and slippage randomness.
	Seed int64

	// EventCapacity bounds the router queue. Zero picks the default.
	EventCapacity int

	Slippage sandbox.SlippageConfig
	Dynamics sandbox.DynamicsConfig
}

func DefaultConfiguration() Configuration {
	return Configuration{
		StartTime:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration:      time.Hour,
		TickInterval:  time.Second,
		Seed:          1,
		EventCapacity: defaultEventCapacity,
		Slippage:      sandbox.DefaultSlippageConfig(),
		Dynamics:      sandbox.DefaultDynamicsConfig(),
	}
}

func (c Configuration) validate() error {
	if c.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("tick interval must be positive")
	}
	if c.TickInterval > c.Duration {
		return errors.New("tick interval exceeds duration")
	}
	if len(c.Pairs) == 0 {
		return errors.New("at least one trading pair is required")
	}
	for asset, amount := range c.InitialBalances {
		if asset == "" {
			return errors.New("initial balance with empty asset")
		}
		if amount.IsNeg() {
			return errors.New("negative initial balance for " + asset)
		}
	}
	return nil
}

// Ticks is the exact number of iterations a run executes.
func (c Configuration) Ticks() int {
	return int(c.Duration / c.TickInterval)
}
