package simulation

import (
	"context"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/bus"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/exchange"
)

// Sandbox is everything a strategy may touch: market data, order entry,
// balances and event subscriptions. It is safe to call from strategy
// callbacks only; strategies run sequentially inside the tick loop.
type Sandbox interface {
	exchange.Market
	exchange.OrderGateway

	Balance(asset string) common.Balance
	Balances() []common.Balance

	// Subscribe registers for an event; dispatch order follows subscription
	// order within a tick.
	Subscribe(id bus.EventId, handler bus.Handler) bus.SubscriptionID
	Unsubscribe(sid bus.SubscriptionID) bool
}

// Strategy is user trading logic hosted by the environment. OnTick runs once
// per tick for each registered strategy, in registration order. An error from
// OnInit or OnTick fails the run; OnFinish always runs, exactly once.
type Strategy interface {
	Name() string
	OnInit(ctx context.Context, sb Sandbox) error
	OnTick(ctx context.Context, sb Sandbox) error
	OnFinish(ctx context.Context, sb Sandbox)
}
