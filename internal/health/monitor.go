// Package health tracks per-server and per-tool call reliability.
// State is in-memory soft state: advisory, never persisted, and rebuildable
// from observed behavior. The monitor itself cannot fail; recording functions
// are pure bookkeeping.
package health

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/errors"
)

const (
	// DefaultUnhealthyThreshold is the consecutive error count at which a
	// server flips to unhealthy.
	DefaultUnhealthyThreshold = 5

	// DefaultDecayWindow is how stale the last error must be before the
	// consecutive error count decays back to zero.
	DefaultDecayWindow = time.Hour

	// DefaultSweepInterval is how often the decay sweep runs.
	DefaultSweepInterval = 30 * time.Second
)

// Monitor maintains health records for MCP servers.
// It is safe for concurrent use by multiple goroutines.
// NewMonitor should be used to create instances of Monitor.
type Monitor struct {
	mu      sync.RWMutex
	records map[string]*domain.ServerHealth

	logger        hclog.Logger
	threshold     int
	decayWindow   time.Duration
	sweepInterval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// Option mutates Monitor construction defaults.
type Option func(*Monitor)

// WithThreshold overrides the consecutive error threshold.
func WithThreshold(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.threshold = n
		}
	}
}

// WithDecayWindow overrides the error decay window.
func WithDecayWindow(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.decayWindow = d
		}
	}
}

// WithSweepInterval overrides the decay sweep interval.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.sweepInterval = d
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMonitor creates an empty, concurrency-safe health monitor.
func NewMonitor(logger hclog.Logger, opt ...Option) *Monitor {
	m := &Monitor{
		records:       make(map[string]*domain.ServerHealth),
		logger:        logger.Named("health"),
		threshold:     DefaultUnhealthyThreshold,
		decayWindow:   DefaultDecayWindow,
		sweepInterval: DefaultSweepInterval,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opt {
		o(m)
	}
	return m
}

// Start runs the periodic decay sweep until the context is canceled.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Stopping health decay sweep")
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// RecordSuccess counts a successful tool call for a server, resets the
// consecutive error streak, and flips the server back to healthy.
func (m *Monitor) RecordSuccess(serverID, toolName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(serverID)
	now := m.now()

	rec.SuccessCount++
	rec.ConsecutiveErrors = 0
	rec.LastSuccess = &now

	if rec.Status != domain.HealthStatusHealthy {
		if rec.Status == domain.HealthStatusUnhealthy {
			m.logger.Info("Server recovered", "server", serverID)
		}
		rec.Status = domain.HealthStatusHealthy
	}

	stats := rec.Tools[toolName]
	stats.SuccessCount++
	rec.Tools[toolName] = stats
}

// RecordError counts a failed tool call for a server. Once the consecutive
// error streak reaches the threshold the server flips to unhealthy; repeated
// crossings are idempotent.
func (m *Monitor) RecordError(serverID, toolName, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.record(serverID)
	now := m.now()

	rec.ErrorCount++
	rec.ConsecutiveErrors++
	rec.LastError = message
	rec.LastErrorTime = &now

	if rec.ConsecutiveErrors >= m.threshold && rec.Status != domain.HealthStatusUnhealthy {
		rec.Status = domain.HealthStatusUnhealthy
		m.logger.Warn(
			"Server marked unhealthy",
			"server", serverID,
			"consecutiveErrors", rec.ConsecutiveErrors,
			"lastError", message,
		)
	}

	stats := rec.Tools[toolName]
	stats.ErrorCount++
	rec.Tools[toolName] = stats
}

// Sweep decays stale error streaks: servers whose last error is older than the
// decay window get their consecutive error count reset, and flip back to
// healthy if they have ever recorded a success.
func (m *Monitor) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.decayWindow)
	for id, rec := range m.records {
		if rec.ConsecutiveErrors == 0 || rec.LastErrorTime == nil {
			continue
		}
		if rec.LastErrorTime.After(cutoff) {
			continue
		}

		rec.ConsecutiveErrors = 0
		if rec.Status == domain.HealthStatusUnhealthy && rec.SuccessCount > 0 {
			rec.Status = domain.HealthStatusHealthy
			m.logger.Info("Server error streak decayed, marking healthy", "server", id)
		}
	}
}

// ServerHealth returns a copy of the health record for a single server.
func (m *Monitor) ServerHealth(serverID string) (domain.ServerHealth, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[serverID]
	if !ok {
		return domain.ServerHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, serverID)
	}
	return copyRecord(rec), nil
}

// Report returns copies of all known health records.
func (m *Monitor) Report() []domain.ServerHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ServerHealth, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, copyRecord(rec))
	}

	slices.SortFunc(out, func(a, b domain.ServerHealth) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	return out
}

// UnhealthyServers returns the ids of all servers currently unhealthy.
func (m *Monitor) UnhealthyServers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for id, rec := range m.records {
		if rec.Status == domain.HealthStatusUnhealthy {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// SuccessRate returns the fraction of recorded calls that succeeded for a
// server, 1.0 when nothing has been recorded.
func (m *Monitor) SuccessRate(serverID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[serverID]
	if !ok {
		return 1.0
	}
	return rec.SuccessRate()
}

// Reset discards all recorded history for a server.
func (m *Monitor) Reset(serverID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, serverID)
}

// record returns the existing record for a server, creating one lazily on the
// first event. Callers must hold the write lock.
func (m *Monitor) record(serverID string) *domain.ServerHealth {
	rec, ok := m.records[serverID]
	if !ok {
		rec = &domain.ServerHealth{
			Name:   serverID,
			Status: domain.HealthStatusUnknown,
			Tools:  make(map[string]domain.ToolStats),
		}
		m.records[serverID] = rec
	}
	return rec
}

func copyRecord(rec *domain.ServerHealth) domain.ServerHealth {
	out := *rec
	out.Tools = maps.Clone(rec.Tools)
	return out
}
