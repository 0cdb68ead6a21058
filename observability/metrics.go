package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
	OutcomePanic     = "panic"
	OutcomeTimeout   = "timeout"
)

var (
	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamspace_dispatch_total",
		Help: "Requests dispatched through the mediator by request type and outcome",
	}, []string{"request", "outcome"})

	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teamspace_dispatch_duration_seconds",
		Help:    "Wall-clock duration of a dispatch including behaviors",
		Buckets: prometheus.DefBuckets,
	}, []string{"request"})

	EventHandlerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamspace_event_handler_total",
		Help: "Event handler executions by event, handler and outcome",
	}, []string{"event", "handler", "outcome"})

	HubSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamspace_hub_sent_total",
		Help: "Real-time messages enqueued to connections by event name",
	}, []string{"event"})

	HubDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamspace_hub_dropped_total",
		Help: "Real-time messages dropped by reason",
	}, []string{"reason"})

	HubConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamspace_hub_connections",
		Help: "Live real-time connections",
	})

	ConversationSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamspace_conversation_sessions",
		Help: "Conversation sessions held in memory",
	})

	ConversationEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamspace_conversation_evictions_total",
		Help: "Conversation sessions evicted after the idle TTL",
	})

	ProcessCPUPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamspace_process_cpu_percent",
		Help: "CPU usage of the server process",
	})

	ProcessRSSBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamspace_process_rss_bytes",
		Help: "Resident memory of the server process",
	})
)

func IncDispatch(request, outcome string) {
	DispatchTotal.WithLabelValues(labelOrUnknown(request), labelOrUnknown(outcome)).Inc()
}

func IncEventHandler(event, handler, outcome string) {
	EventHandlerTotal.WithLabelValues(labelOrUnknown(event), labelOrUnknown(handler), labelOrUnknown(outcome)).Inc()
}

// IncHubDrop records a real-time message that never reached its queue.
func IncHubDrop(reason string) {
	HubDroppedTotal.WithLabelValues(labelOrUnknown(reason)).Inc()
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teamspace_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamspace_http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})
)
