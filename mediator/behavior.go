package mediator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"teamspace/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Next runs the rest of the chain.
type Next func(ctx context.Context) (Response, error)

// Behavior wraps every dispatch. It observes the call and must return what next returned.
type Behavior interface {
	Handle(ctx context.Context, call Call, next Next) (Response, error)
}

type BehaviorFunc func(ctx context.Context, call Call, next Next) (Response, error)

func (f BehaviorFunc) Handle(ctx context.Context, call Call, next Next) (Response, error) {
	return f(ctx, call, next)
}

type LoggingBehavior struct {
	log *slog.Logger
}

func NewLoggingBehavior(log *slog.Logger) *LoggingBehavior {
	return &LoggingBehavior{log: log}
}

func (b *LoggingBehavior) Handle(ctx context.Context, call Call, next Next) (Response, error) {
	start := time.Now()
	b.log.Debug("Dispatch started", "request", call.RequestName)
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Dispatch panicked",
				"request", call.RequestName,
				"duration_ms", time.Since(start).Milliseconds(),
				"panic", r)
			panic(r)
		}
	}()

	resp, err := next(ctx)
	elapsed := time.Since(start).Milliseconds()
	switch {
	case err != nil && IsCancellation(err):
		b.log.Info("Dispatch cancelled", "request", call.RequestName, "duration_ms", elapsed, "reason", err)
	case err != nil:
		b.log.Error("Dispatch aborted", "request", call.RequestName, "duration_ms", elapsed, "error", err)
	case resp.IsSuccess():
		b.log.Info("Dispatch succeeded", "request", call.RequestName, "duration_ms", elapsed)
	default:
		b.log.Warn("Dispatch failed", "request", call.RequestName, "duration_ms", elapsed, "reason", resp.Err())
	}
	return resp, err
}

// TracingBehavior opens one span per dispatch, named after the request type.
type TracingBehavior struct {
	tracer trace.Tracer
}

func NewTracingBehavior(tracer trace.Tracer) *TracingBehavior {
	return &TracingBehavior{tracer: tracer}
}

func (b *TracingBehavior) Handle(ctx context.Context, call Call, next Next) (Response, error) {
	ctx, span := b.tracer.Start(ctx, call.RequestName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("request.type", call.RequestName),
			attribute.String("response.type", call.ResponseName),
		))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			span.AddEvent("exception", trace.WithAttributes(
				attribute.String("exception.type", fmt.Sprintf("%T", r)),
				attribute.String("exception.message", fmt.Sprint(r)),
			))
			span.SetStatus(codes.Error, fmt.Sprint(r))
			panic(r)
		}
	}()

	resp, err := next(ctx)
	switch {
	case err != nil && IsCancellation(err):
		span.AddEvent("cancelled", trace.WithAttributes(attribute.String("reason", err.Error())))
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case resp.IsSuccess():
		span.SetAttributes(attribute.Bool("result.success", true))
		span.SetStatus(codes.Ok, "")
	default:
		span.SetAttributes(attribute.Bool("result.success", false))
		span.SetStatus(codes.Error, resp.Err().Error())
	}
	return resp, err
}

// MetricsBehavior counts dispatches per outcome and observes their duration.
type MetricsBehavior struct{}

func NewMetricsBehavior() MetricsBehavior { return MetricsBehavior{} }

func (MetricsBehavior) Handle(ctx context.Context, call Call, next Next) (Response, error) {
	start := time.Now()
	defer func() {
		observability.DispatchDuration.WithLabelValues(call.RequestName).Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			observability.IncDispatch(call.RequestName, observability.OutcomePanic)
			panic(r)
		}
	}()

	resp, err := next(ctx)
	switch {
	case err != nil:
		observability.IncDispatch(call.RequestName, observability.OutcomeCancelled)
	case resp.IsSuccess():
		observability.IncDispatch(call.RequestName, observability.OutcomeSuccess)
	default:
		observability.IncDispatch(call.RequestName, observability.OutcomeFailure)
	}
	return resp, err
}
