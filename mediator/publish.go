package mediator

import (
	"context"
	"log/slog"
	"reflect"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	stderrors "errors"
	"teamspace/observability"
)

const DefaultHandlerTimeout = 5 * time.Second

// Event is an immutable fact published once its state change is committed.
type Event interface {
	Name() string
	OccurredAt() time.Time
}

type EventHandlerFunc[E Event] func(ctx context.Context, evt E) error

type subscription struct {
	name   string
	handle func(ctx context.Context, evt Event) error
}

// EventBus delivers each event to every handler subscribed to its concrete type.
//
// Delivery is best-effort: each handler runs in its own goroutine with its own
// timeout, and a failing or panicking handler is logged without affecting the
// others or the publisher. Handlers are never retried.
type EventBus struct {
	log           *slog.Logger
	timeout       time.Duration
	mu            sync.RWMutex
	subscriptions map[reflect.Type][]subscription
}

func NewEventBus(log *slog.Logger, handlerTimeout time.Duration) *EventBus {
	if handlerTimeout <= 0 {
		handlerTimeout = DefaultHandlerTimeout
	}
	return &EventBus{
		log:           log,
		timeout:       handlerTimeout,
		subscriptions: make(map[reflect.Type][]subscription),
	}
}

// Subscribe adds handle for events of the concrete type E. name identifies the handler in logs and metrics.
func Subscribe[E Event](bus *EventBus, name string, handle EventHandlerFunc[E]) {
	t := reflect.TypeFor[E]()
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscriptions[t] = append(bus.subscriptions[t], subscription{
		name: name,
		handle: func(ctx context.Context, evt Event) error {
			return handle(ctx, evt.(E))
		},
	})
}

// HandlerCount returns how many handlers are subscribed to the type of evt.
func (b *EventBus) HandlerCount(evt Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions[reflect.TypeOf(evt)])
}

// Publish runs every handler of evt and waits for them at most the handler timeout.
// The caller's cancellation does not reach the handlers.
func (b *EventBus) Publish(ctx context.Context, evt Event) {
	if evt == nil {
		return
	}
	b.mu.RLock()
	subs := slices.Clone(b.subscriptions[reflect.TypeOf(evt)])
	b.mu.RUnlock()

	if len(subs) == 0 {
		b.log.Debug("No handler for event", "event", evt.Name())
		return
	}

	detached := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.deliver(detached, sub, evt)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		b.log.Warn("Event handlers still running after timeout", "event", evt.Name(), "timeout", b.timeout)
	}
}

func (b *EventBus) deliver(ctx context.Context, sub subscription, evt Event) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			observability.IncEventHandler(evt.Name(), sub.name, observability.OutcomePanic)
			b.log.Error("Event handler panicked",
				"event", evt.Name(),
				"handler", sub.name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	err := sub.handle(ctx, evt)
	switch {
	case err == nil:
		observability.IncEventHandler(evt.Name(), sub.name, observability.OutcomeSuccess)
		b.log.Debug("Event handled", "event", evt.Name(), "handler", sub.name)
	case stderrors.Is(err, context.DeadlineExceeded):
		observability.IncEventHandler(evt.Name(), sub.name, observability.OutcomeTimeout)
		b.log.Warn("Event handler timed out", "event", evt.Name(), "handler", sub.name, "timeout", b.timeout)
	default:
		observability.IncEventHandler(evt.Name(), sub.name, observability.OutcomeFailure)
		b.log.Error("Event handler failed", "event", evt.Name(), "handler", sub.name, "error", err)
	}
}
