package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/domain"
)

// DomainServerHealth is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainServerHealth domain.ServerHealth

// ToolStats reports per-tool call counters.
type ToolStats struct {
	SuccessCount int `doc:"Number of successful calls" json:"successCount"`
	ErrorCount   int `doc:"Number of failed calls"     json:"errorCount"`
}

// ServerHealth is the API shape of one server's tracked health.
type ServerHealth struct {
	Name              string               `doc:"Server id"                                   json:"name"`
	Status            string               `doc:"Current status: healthy, unhealthy, unknown" json:"status"`
	SuccessCount      int                  `doc:"Total successful tool calls"                 json:"successCount"`
	ErrorCount        int                  `doc:"Total failed tool calls"                     json:"errorCount"`
	ConsecutiveErrors int                  `doc:"Current unbroken error streak"               json:"consecutiveErrors"`
	SuccessRate       float64              `doc:"Success fraction, 1.0 when no calls yet"     json:"successRate"`
	LastError         string               `doc:"Most recent error message"                   json:"lastError,omitempty"`
	LastErrorTime     *time.Time           `doc:"When the most recent error happened"         json:"lastErrorTime,omitempty"`
	LastSuccess       *time.Time           `doc:"When the most recent success happened"       json:"lastSuccess,omitempty"`
	Tools             map[string]ToolStats `doc:"Per-tool call counters"                      json:"tools,omitempty"`
}

// ServersHealthResponse is the response for GET /health/servers
type ServersHealthResponse struct {
	Body struct {
		Servers []ServerHealth `doc:"Tracked MCP server health statuses" json:"servers"`
	}
}

// ServerHealthRequest represents the incoming request for obtaining ServerHealth.
type ServerHealthRequest struct {
	Name string `doc:"Id of the server to check" example:"filesystem" path:"name"`
}

// ServerHealthResponse represents the wrapped API response for a ServerHealth.
type ServerHealthResponse struct {
	Body ServerHealth
}

// ResetServerHealthResponse acknowledges a health reset.
type ResetServerHealthResponse struct {
	Body struct {
		Reset string `doc:"Id of the server whose history was discarded" json:"reset"`
	}
}

// ToAPIType converts a wrapped domain type to an API-safe type.
func (d DomainServerHealth) ToAPIType(rate float64) ServerHealth {
	out := ServerHealth{
		Name:              d.Name,
		Status:            string(d.Status),
		SuccessCount:      d.SuccessCount,
		ErrorCount:        d.ErrorCount,
		ConsecutiveErrors: d.ConsecutiveErrors,
		SuccessRate:       rate,
		LastError:         d.LastError,
	}
	if d.LastErrorTime != nil && !d.LastErrorTime.IsZero() {
		t := *d.LastErrorTime
		out.LastErrorTime = &t
	}
	if d.LastSuccess != nil && !d.LastSuccess.IsZero() {
		t := *d.LastSuccess
		out.LastSuccess = &t
	}
	if len(d.Tools) > 0 {
		out.Tools = make(map[string]ToolStats, len(d.Tools))
		for name, stats := range d.Tools {
			out.Tools[name] = ToolStats{
				SuccessCount: stats.SuccessCount,
				ErrorCount:   stats.ErrorCount,
			}
		}
	}
	return out
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, monitor contracts.HealthMonitor, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listServersHealth",
			Method:      http.MethodGet,
			Path:        "/servers",
			Summary:     "List the health statuses for all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersHealthResponse, error) {
			return handleHealthServers(monitor)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getServerHealth",
			Method:      http.MethodGet,
			Path:        "/servers/{name}",
			Summary:     "Get the health status of a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerHealthRequest) (*ServerHealthResponse, error) {
			return handleHealthServer(monitor, input.Name)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "resetServerHealth",
			Method:      http.MethodDelete,
			Path:        "/servers/{name}",
			Summary:     "Discard the recorded health history for a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerHealthRequest) (*ResetServerHealthResponse, error) {
			return handleHealthReset(monitor, input.Name)
		},
	)
}

// handleHealthServers is the handler for retrieving the current health for all tracked MCP servers.
func handleHealthServers(monitor contracts.HealthMonitor) (*ServersHealthResponse, error) {
	servers := monitor.Report()

	apiServers := make([]ServerHealth, 0, len(servers))
	for _, s := range servers {
		apiServers = append(apiServers, DomainServerHealth(s).ToAPIType(monitor.SuccessRate(s.Name)))
	}

	resp := &ServersHealthResponse{}
	resp.Body.Servers = apiServers

	return resp, nil
}

// handleHealthServer is the handler for retrieving the current health of the specified MCP server.
func handleHealthServer(monitor contracts.HealthMonitor, name string) (*ServerHealthResponse, error) {
	health, err := monitor.ServerHealth(name)
	if err != nil {
		return nil, err
	}

	response := &ServerHealthResponse{}
	response.Body = DomainServerHealth(health).ToAPIType(monitor.SuccessRate(name))

	return response, nil
}

// handleHealthReset discards all recorded history for a server.
func handleHealthReset(monitor contracts.HealthMonitor, name string) (*ResetServerHealthResponse, error) {
	if _, err := monitor.ServerHealth(name); err != nil {
		return nil, err
	}

	monitor.Reset(name)

	resp := &ResetServerHealthResponse{}
	resp.Body.Reset = name

	return resp, nil
}
