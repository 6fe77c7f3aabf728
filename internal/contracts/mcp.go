package contracts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentpad/mcphub/internal/domain"
)

// ToolClient is the subset of MCP client behavior the hub depends on.
// *client.Client from mark3labs/mcp-go satisfies it; tests supply fakes.
type ToolClient interface {
	// Initialize performs the MCP handshake.
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)

	// ListTools returns the tools the server declares.
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)

	// CallTool invokes a named tool with arguments.
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

	// Ping checks server liveness.
	Ping(ctx context.Context) error

	// Close tears down the transport.
	Close() error
}

// ConnectionManager provides the consumer-facing surface over live MCP server
// connections.
type ConnectionManager interface {
	// Connect validates, launches, and registers a connection for a config.
	Connect(ctx context.Context, cfg domain.ServerConfig) error

	// Disconnect closes and removes the connection for a server id.
	Disconnect(id string) error

	// DisconnectAll disconnects every live connection, tolerating individual
	// failures. It never returns an error.
	DisconnectAll(ctx context.Context)

	// ListTools returns the normalized tool list for a connected server.
	ListTools(ctx context.Context, id string) ([]mcp.Tool, error)

	// CallTool invokes a tool on a connected server and returns the
	// normalized result.
	CallTool(ctx context.Context, id string, call domain.ToolCall) (*mcp.CallToolResult, error)

	// IsConnected reports whether a server id has a live connection.
	IsConnected(id string) bool

	// ConnectedServers returns the ids of all live connections.
	ConnectedServers() []string

	// Ping is a best-effort liveness probe; it never returns an error.
	Ping(ctx context.Context, id string) bool
}

// HealthMonitor consumes tool call outcomes and serves health reports.
type HealthMonitor interface {
	// RecordSuccess counts a successful call and restores healthy status.
	RecordSuccess(serverID, toolName string)

	// RecordError counts a failed call, flipping to unhealthy at the
	// consecutive error threshold.
	RecordError(serverID, toolName, message string)

	// ServerHealth returns the record for a single server.
	ServerHealth(serverID string) (domain.ServerHealth, error)

	// Report returns all known health records.
	Report() []domain.ServerHealth

	// UnhealthyServers returns ids of currently unhealthy servers.
	UnhealthyServers() []string

	// SuccessRate returns the success fraction, 1.0 when nothing recorded.
	SuccessRate(serverID string) float64

	// Reset discards all history for a server.
	Reset(serverID string)
}

// ConfigStore exposes persisted server declarations to the core. The core
// only consumes LoadConfiguration; mutation happens through the CLI.
type ConfigStore interface {
	// LoadConfiguration returns declared servers keyed by id, split by
	// enablement.
	LoadConfiguration() (enabled map[string]domain.ServerConfig, disabled map[string]domain.ServerConfig)
}
