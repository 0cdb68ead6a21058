package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"teamspace/observability"

	"github.com/shirou/gopsutil/process"
)

type ConnectionCounter interface {
	ConnectionCount() int
}

type SessionCounter interface {
	Len() int
}

// HealthMonitor samples the server process and the in-memory state into gauges.
type HealthMonitor struct {
	log         *slog.Logger
	connections ConnectionCounter
	sessions    SessionCounter
	interval    time.Duration
	pid         int32
}

func NewHealthMonitor(log *slog.Logger, connections ConnectionCounter, sessions SessionCounter, interval time.Duration) *HealthMonitor {
	return &HealthMonitor{
		log:         log,
		connections: connections,
		sessions:    sessions,
		interval:    interval,
		pid:         int32(os.Getpid()),
	}
}

func (w *HealthMonitor) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *HealthMonitor) sample(p *process.Process) {
	observability.HubConnections.Set(float64(w.connections.ConnectionCount()))
	observability.ConversationSessions.Set(float64(w.sessions.Len()))

	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Error while finding process cpu usage", "error", err)
		return
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		w.log.Error("Error while finding process memory usage", "error", err)
		return
	}
	observability.ProcessCPUPercent.Set(cpu)
	observability.ProcessRSSBytes.Set(float64(mem.RSS))
	w.log.Debug("Process sampled", "cpu_percent", cpu, "rss_bytes", mem.RSS)
}
