package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var ErrCapacityReached = errors.New("event capacity reached")

type event struct {
	id   EventId
	data any
}

// SubscriptionID is the handle returned by Subscribe, used to unsubscribe.
type SubscriptionID uint64

type subscriber struct {
	sid     SubscriptionID
	handler Handler
}

// Router is a bounded publish/subscribe dispatcher. Subscribers of one event
// id are invoked in subscription order, and DispatchPending drains the queue
// to completion, so state at a tick boundary is deterministic. A panicking
// subscriber is recovered and skipped; remaining subscribers still run.
//
// Subscribe/Unsubscribe and DispatchPending are meant to be driven from one
// goroutine; only Post and the statistics counters are safe for concurrent
// use.
type Router struct {
	events chan event

	subscribers map[EventId][]subscriber
	sidCounter  SubscriptionID

	runTime       time.Duration
	postCount     atomic.Uint64
	postFails     atomic.Uint64
	dispatchCount atomic.Uint64
	dispatchFails atomic.Uint64
}

func NewRouter(eventCapacity int) *Router {
	if eventCapacity <= 0 {
		eventCapacity = 1
	}
	return &Router{
		events:      make(chan event, eventCapacity),
		subscribers: make(map[EventId][]subscriber),
	}
}

// Subscribe appends the handler to the ordered list for the event id.
// Subscription order is dispatch order.
func (r *Router) Subscribe(id EventId, handler Handler) SubscriptionID {
	r.sidCounter++
	r.subscribers[id] = append(r.subscribers[id], subscriber{
		sid:     r.sidCounter,
		handler: handler,
	})
	return r.sidCounter
}

// Unsubscribe removes the subscription, keeping the relative order of the
// remaining subscribers. Returns false for an unknown handle.
func (r *Router) Unsubscribe(sid SubscriptionID) bool {
	for id, subs := range r.subscribers {
		for i, sub := range subs {
			if sub.sid == sid {
				r.subscribers[id] = append(subs[:i:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Post enqueues an event without blocking.
func (r *Router) Post(id EventId, data any) error {
	select {
	case r.events <- event{id, data}:
		r.postCount.Add(1)
		return nil
	default:
		r.postFails.Add(1)
		return ErrCapacityReached
	}
}

// DispatchPending synchronously drains every queued event, including events
// posted by subscribers while draining. The tick loop calls this before a
// tick is considered finished.
func (r *Router) DispatchPending(ctx context.Context) error {
	start := time.Now()
	defer func() {
		r.runTime += time.Since(start)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-r.events:
			r.dispatch(ctx, ev)
		default:
			return nil
		}
	}
}

// Exec dispatches events until the context is cancelled. Used when the router
// runs free instead of being drained at tick boundaries.
func (r *Router) Exec(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	go func() {
		start := time.Now()
		defer func() {
			r.runTime += time.Since(start)
		}()

		for {
			select {
			case <-ctx.Done():
				done <- ctx.Err()
				return
			case ev := <-r.events:
				r.dispatch(ctx, ev)
			}
		}
	}()

	return done
}

func (r *Router) dispatch(ctx context.Context, ev event) {
	r.dispatchCount.Add(1)

	// No subscribers is a no-op, not an error.
	for _, sub := range r.subscribers[ev.id] {
		r.invoke(ctx, sub, ev)
	}
}

func (r *Router) invoke(ctx context.Context, sub subscriber, ev event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.dispatchFails.Add(1)
			slog.Warn("event subscriber failed",
				"event", ev.id,
				"subscription", sub.sid,
				"panic", rec)
		}
	}()

	sub.handler(ctx, ev.data)
}

func (r *Router) Statistics() Statistics {
	return Statistics{
		RunTime:       r.runTime,
		PostCount:     r.postCount.Load(),
		PostFails:     r.postFails.Load(),
		DispatchCount: r.dispatchCount.Load(),
		DispatchFails: r.dispatchFails.Load(),
	}
}
