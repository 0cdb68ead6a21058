package mediator

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"teamspace/errors"
	"teamspace/result"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type renameBoard struct {
	Returns[string]
	BoardID int
	Name    string
}

type countBoards struct {
	Returns[int]
}

type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) add(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

func recording(rec *recorder, name string) Behavior {
	return BehaviorFunc(func(ctx context.Context, call Call, next Next) (Response, error) {
		rec.add(name + ">")
		resp, err := next(ctx)
		rec.add("<" + name)
		return resp, err
	})
}

func TestMediator_Send_Returns_Handler_Result_Through_Behaviors(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &recorder{}

	// Given a handler for renameBoard wrapped by two behaviors and the logging behavior
	b := NewBuilder(log, nil)
	b.Use(recording(rec, "outer"), recording(rec, "inner"), NewLoggingBehavior(log))
	Register(b, func(ctx context.Context, cmd renameBoard) result.Result[string] {
		rec.add("handler")
		return result.Success(strings.ToUpper(cmd.Name))
	})
	m, err := b.Build()
	req.NoError(err)

	// When the command is sent
	res, err := Send[string](context.Background(), m, renameBoard{BoardID: 42, Name: "roadmap"})

	// Then the handler result comes back unchanged
	req.NoError(err)
	req.True(res.IsSuccess())
	req.Equal("ROADMAP", res.Value())

	// And behaviors ran in onion order
	req.Equal([]string{"outer>", "inner>", "handler", "<inner", "<outer"}, rec.all())

	// And the dispatch was logged
	req.Contains(buf.String(), "Dispatch succeeded")
	req.Contains(buf.String(), "request=renameBoard")
}

func TestMediator_Send_Failure_Is_Returned_As_Data(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	b := NewBuilder(log, nil).Use(NewLoggingBehavior(log))
	Register(b, func(ctx context.Context, q countBoards) result.Result[int] {
		return result.FailureOf[int](errors.ErrForbidden)
	})
	m, err := b.Build()
	req.NoError(err)

	res, err := Send[int](context.Background(), m, countBoards{})

	req.NoError(err)
	req.True(res.IsFailure())
	req.ErrorIs(res.Err(), errors.ErrForbidden)
	req.Contains(buf.String(), "Dispatch failed")
}

func TestMediator_Build_Fails_On_Duplicate_Handler(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	handler := func(ctx context.Context, q countBoards) result.Result[int] { return result.Success(1) }

	// Given two handlers for the same query
	b := NewBuilder(log, nil)
	Register(b, handler)
	Register(b, handler)

	// When the mediator is built
	m, err := b.Build()

	// Then startup fails before any dispatch
	req.Nil(m)
	req.ErrorIs(err, errors.ErrDuplicateHandler)
}

func TestMediator_Build_Fails_On_Missing_Handler(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given renameBoard is expected but nobody handles it
	b := NewBuilder(log, nil).Expect(renameBoard{}, countBoards{})
	Register(b, func(ctx context.Context, q countBoards) result.Result[int] { return result.Success(3) })

	// When the mediator is built
	m, err := b.Build()

	// Then startup fails and names the request
	req.Nil(m)
	req.ErrorIs(err, errors.ErrMissingHandler)
	req.Contains(err.Error(), "renameBoard")
}

func TestMediator_Build_Rejects_Non_Request(t *testing.T) {
	req := require.New(t)

	_, err := NewBuilder(logs.GetLoggerFromLevel(slog.LevelDebug), nil).Expect("not a request").Build()

	req.ErrorIs(err, errors.ErrNotARequest)
}

func TestMediator_Send_Unregistered_Request_Panics(t *testing.T) {
	req := require.New(t)
	m, err := NewBuilder(logs.GetLoggerFromLevel(slog.LevelDebug), nil).Build()
	req.NoError(err)

	req.PanicsWithError(errors.ErrHandlerNotRegistered.Error()+": mediator.countBoards", func() {
		_, _ = Send[int](context.Background(), m, countBoards{})
	})
}

func TestMediator_Send_Cancellation_Stops_The_Chain(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given a first behavior cancelling the dispatch before calling next
	cancelling := BehaviorFunc(func(ctx context.Context, call Call, next Next) (Response, error) {
		rec.add("cancelling")
		cancel()
		return next(ctx)
	})
	b := NewBuilder(log, nil).Use(cancelling, recording(rec, "second"))
	Register(b, func(ctx context.Context, cmd renameBoard) result.Result[string] {
		rec.add("handler")
		return result.Success(cmd.Name)
	})
	m, err := b.Build()
	req.NoError(err)

	// When the command is sent
	res, err := Send[string](ctx, m, renameBoard{Name: "stale"})

	// Then a cancellation comes back
	req.ErrorIs(err, context.Canceled)
	req.True(res.IsFailure())

	// And neither the next behavior nor the handler ran
	req.Equal([]string{"cancelling"}, rec.all())
}

func TestMediator_Send_Already_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	called := false
	b := NewBuilder(logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	Register(b, func(ctx context.Context, q countBoards) result.Result[int] {
		called = true
		return result.Success(1)
	})
	m, err := b.Build()
	req.NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Send[int](ctx, m, countBoards{})

	req.ErrorIs(err, context.Canceled)
	req.False(called)
}

func TestMediator_Handler_Failure_From_Cancelled_Context_Is_A_Cancellation(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBuilder(logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	Register(b, func(ctx context.Context, q countBoards) result.Result[int] {
		cancel()
		return result.FailureOf[int](ctx.Err())
	})
	m, err := b.Build()
	req.NoError(err)

	_, err = Send[int](ctx, m, countBoards{})

	req.ErrorIs(err, context.Canceled)
}

func TestMediator_Panic_Propagates_After_Logging(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	b := NewBuilder(log, nil).Use(NewLoggingBehavior(log))
	Register(b, func(ctx context.Context, q countBoards) result.Result[int] {
		panic("index corrupted")
	})
	m, err := b.Build()
	req.NoError(err)

	req.PanicsWithValue("index corrupted", func() {
		_, _ = Send[int](context.Background(), m, countBoards{})
	})
	req.Contains(buf.String(), "Dispatch panicked")
}
