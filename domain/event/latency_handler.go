package event

import (
	"context"
	"log/slog"
	"time"

	"teamspace/mediator"
)

// LatencyHandler measures the lead time between an event occurring and its handlers running.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
	now              func() time.Time
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold, now: time.Now}
}

// Observe logs the lead time of evt and warns when it crosses the threshold.
func (h *LatencyHandler) Observe(evt mediator.Event) time.Duration {
	leadTime := h.now().Sub(evt.OccurredAt())

	h.log.Debug("telemetry: event latency",
		"event", evt.Name(),
		"lead_time_ms", leadTime.Milliseconds(),
	)
	if h.latencyThreshold > 0 && leadTime > h.latencyThreshold {
		h.log.Warn("High event latency detected", "event", evt.Name(), "lead_time", leadTime)
	}
	return leadTime
}

// Latency adapts h to the bus for the event type E.
func Latency[E mediator.Event](h *LatencyHandler) mediator.EventHandlerFunc[E] {
	return func(_ context.Context, evt E) error {
		h.Observe(evt)
		return nil
	}
}
