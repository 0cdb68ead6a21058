// Package mediator routes typed requests to exactly one handler through a chain of
// behaviors, and publishes domain events to every subscribed handler.
package mediator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"

	stderrors "errors"
	"teamspace/errors"
	"teamspace/result"

	"github.com/samber/lo"
)

// Builder collects handlers and behaviors. Registration problems are reported together by Build.
type Builder struct {
	log       *slog.Logger
	events    *EventBus
	routes    map[reflect.Type]route
	behaviors []Behavior
	expected  []reflect.Type
	errs      []error
}

func NewBuilder(log *slog.Logger, events *EventBus) *Builder {
	return &Builder{
		log:    log,
		events: events,
		routes: make(map[reflect.Type]route),
	}
}

// Register binds the handler of request type Q. A second handler for the same type fails Build.
func Register[Q Request[R], R any](b *Builder, handle HandlerFunc[Q, R]) {
	t := reflect.TypeFor[Q]()
	if _, exists := b.routes[t]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", errors.ErrDuplicateHandler, t))
		return
	}
	b.routes[t] = route{
		requestName:  typeName(t),
		responseName: reflect.TypeFor[R]().String(),
		handle: func(ctx context.Context, req any) Response {
			return handle(ctx, req.(Q))
		},
	}
}

// Use appends behaviors. The first one registered is the outermost.
func (b *Builder) Use(behaviors ...Behavior) *Builder {
	b.behaviors = append(b.behaviors, behaviors...)
	return b
}

// Expect declares request types the application dispatches, so that a missing
// handler is caught by Build instead of the first Send.
func (b *Builder) Expect(requests ...any) *Builder {
	for _, r := range requests {
		if _, ok := r.(request); !ok {
			b.errs = append(b.errs, fmt.Errorf("%w: %T", errors.ErrNotARequest, r))
			continue
		}
		b.expected = append(b.expected, reflect.TypeOf(r))
	}
	return b
}

func (b *Builder) Build() (*Mediator, error) {
	errs := slices.Clone(b.errs)
	for _, t := range lo.Uniq(b.expected) {
		if _, ok := b.routes[t]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", errors.ErrMissingHandler, t))
		}
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}

	events := b.events
	if events == nil {
		events = NewEventBus(b.log, DefaultHandlerTimeout)
	}
	b.log.Debug("Mediator built",
		"requests", len(b.routes),
		"behaviors", len(b.behaviors),
	)
	return &Mediator{
		log:       b.log,
		events:    events,
		routes:    maps.Clone(b.routes),
		behaviors: slices.Clone(b.behaviors),
	}, nil
}

// Mediator is immutable once built and safe for concurrent use.
type Mediator struct {
	log       *slog.Logger
	events    *EventBus
	routes    map[reflect.Type]route
	behaviors []Behavior
}

// Send dispatches req to its handler. The error is non-nil only when ctx was
// cancelled before the handler produced a result; business failures are in the Result.
// Sending a request type without handler panics with errors.ErrHandlerNotRegistered.
func Send[R any](ctx context.Context, m *Mediator, req Request[R]) (result.Result[R], error) {
	rt, ok := m.routes[reflect.TypeOf(req)]
	if !ok {
		panic(fmt.Errorf("%w: %T", errors.ErrHandlerNotRegistered, req))
	}
	call := Call{Request: req, RequestName: rt.requestName, ResponseName: rt.responseName}

	resp, err := m.dispatch(ctx, call, rt.handle)
	if err != nil {
		return result.Result[R]{}, err
	}
	return resp.(result.Result[R]), nil
}

// Publish forwards evt to the event bus.
func (m *Mediator) Publish(ctx context.Context, evt Event) {
	m.events.Publish(ctx, evt)
}

func (m *Mediator) Events() *EventBus { return m.events }

func (m *Mediator) dispatch(ctx context.Context, call Call, handle func(context.Context, any) Response) (Response, error) {
	next := func(ctx context.Context) (Response, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp := handle(ctx, call.Request)
		if !resp.IsSuccess() && IsCancellation(resp.Err()) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return resp, nil
	}
	for i := len(m.behaviors) - 1; i >= 0; i-- {
		behavior, inner := m.behaviors[i], next
		next = func(ctx context.Context) (Response, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return behavior.Handle(ctx, call, inner)
		}
	}
	return next(ctx)
}

func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
