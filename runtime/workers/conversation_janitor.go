package workers

import (
	"context"
	"log/slog"
	"time"

	"teamspace/observability"
)

// Sweeper is a store whose idle entries expire.
type Sweeper interface {
	Cleanup() int
	Len() int
}

// ConversationJanitor evicts idle conversations even when nobody touches the cache.
type ConversationJanitor struct {
	log      *slog.Logger
	sessions Sweeper
	interval time.Duration
}

func NewConversationJanitor(log *slog.Logger, sessions Sweeper, interval time.Duration) *ConversationJanitor {
	return &ConversationJanitor{log: log, sessions: sessions, interval: interval}
}

func (w *ConversationJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping conversation janitor")
			return nil
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ConversationJanitor) sweep() {
	removed := w.sessions.Cleanup()
	remaining := w.sessions.Len()
	observability.ConversationEvictions.Add(float64(removed))
	observability.ConversationSessions.Set(float64(remaining))
	if removed > 0 {
		w.log.Info("Idle conversations evicted", "count", removed, "remaining", remaining)
	}
}
