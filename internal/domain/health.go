package domain

import "time"

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// HealthStatus represents the internal state of an MCP server's reliability.
type HealthStatus string

// ToolStats accumulates per-tool call outcomes for a server.
type ToolStats struct {
	SuccessCount int `json:"successCount"`
	ErrorCount   int `json:"errorCount"`
}

// ServerHealth tracks the internal health state for an MCP server.
// Records are advisory in-memory soft state, rebuildable from observed
// behavior, and are created lazily on the first recorded event.
type ServerHealth struct {
	Name              string               `json:"name"`
	Status            HealthStatus         `json:"status"`
	SuccessCount      int                  `json:"successCount"`
	ErrorCount        int                  `json:"errorCount"`
	ConsecutiveErrors int                  `json:"consecutiveErrors"`
	LastError         string               `json:"lastError,omitempty"`
	LastErrorTime     *time.Time           `json:"lastErrorTime,omitempty"`
	LastSuccess       *time.Time           `json:"lastSuccess,omitempty"`
	Tools             map[string]ToolStats `json:"tools,omitempty"`
}

// SuccessRate returns the fraction of recorded calls that succeeded.
// A server with no recorded calls reports 1.0 (optimistic default).
func (h ServerHealth) SuccessRate() float64 {
	total := h.SuccessCount + h.ErrorCount
	if total == 0 {
		return 1.0
	}
	return float64(h.SuccessCount) / float64(total)
}
