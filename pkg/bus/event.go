package bus

import (
	"context"
	"log/slog"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
)

type EventId uint8

const (
	OrderPlacedEvent EventId = iota
	OrderFilledEvent
	OrderCancelledEvent
	OrderRejectedEvent
	BalanceUpdatedEvent
	PriceUpdatedEvent
)

func (id EventId) String() string {
	switch id {
	case OrderPlacedEvent:
		return "order-placed"
	case OrderFilledEvent:
		return "order-filled"
	case OrderCancelledEvent:
		return "order-cancelled"
	case OrderRejectedEvent:
		return "order-rejected"
	case BalanceUpdatedEvent:
		return "balance-updated"
	case PriceUpdatedEvent:
		return "price-updated"
	default:
		return "unknown"
	}
}

// Handler receives the raw event payload. Use the typed adapters below to
// subscribe with a concrete payload type.
type Handler func(ctx context.Context, data any)

type OrderPlacedHandler func(context.Context, common.OrderPlaced)
type OrderFilledHandler func(context.Context, common.OrderFilled)
type OrderCancelledHandler func(context.Context, common.OrderCancelled)
type OrderRejectedHandler func(context.Context, common.OrderRejected)
type BalanceUpdatedHandler func(context.Context, common.BalanceUpdated)
type PriceUpdatedHandler func(context.Context, common.PriceUpdated)

func OnOrderPlaced(h OrderPlacedHandler) Handler {
	return func(ctx context.Context, data any) {
		if ev, ok := data.(common.OrderPlaced); ok {
			h(ctx, ev)
			return
		}
		slog.Warn("invalid payload for order placed event", "data", data)
	}
}

func OnOrderFilled(h OrderFilledHandler) Handler {
	return func(ctx context.Context, data any) {
		if ev, ok := data.(common.OrderFilled); ok {
			h(ctx, ev)
			return
		}
		slog.Warn("invalid payload for order filled event", "data", data)
	}
}

func OnOrderCancelled(h OrderCancelledHandler) Handler {
	return func(ctx context.Context, data any) {
		if ev, ok := data.(common.OrderCancelled); ok {
			h(ctx, ev)
			return
		}
		slog.Warn("invalid payload for order cancelled event", "data", data)
	}
}

func OnOrderRejected(h OrderRejectedHandler) Handler {
	return func(ctx context.Context, data any) {
		if ev, ok := data.(common.OrderRejected); ok {
			h(ctx, ev)
			return
		}
		slog.Warn("invalid payload for order rejected event", "data", data)
	}
}

func OnBalanceUpdated(h BalanceUpdatedHandler) Handler {
	return func(ctx context.Context, data any) {
		if ev, ok := data.(common.BalanceUpdated); ok {
			h(ctx, ev)
			return
		}
		slog.Warn("invalid payload for balance updated event", "data", data)
	}
}

func OnPriceUpdated(h PriceUpdatedHandler) Handler {
	return func(ctx context.Context, data any) {
		if ev, ok := data.(common.PriceUpdated); ok {
			h(ctx, ev)
			return
		}
		slog.Warn("invalid payload for price updated event", "data", data)
	}
}
