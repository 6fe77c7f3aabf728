package connection

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/errors"
	"github.com/agentpad/mcphub/internal/registry"
	"github.com/agentpad/mcphub/internal/security"
)

const (
	// DefaultConnectTimeout is the hard ceiling for dial plus handshake.
	DefaultConnectTimeout = 15 * time.Second

	clientName = "mcphub"

	// disconnectFanout bounds concurrent disconnects in DisconnectAll.
	disconnectFanout = 8
)

// connState tracks the per-id lifecycle. There is no persisted reconnecting
// state: reconnection is a fresh Connect after a Disconnect.
type connState int

const (
	stateConnecting connState = iota
	stateConnected
)

type conn struct {
	cfg    domain.ServerConfig
	client contracts.ToolClient
	state  connState

	// pkg is the package extracted during validation, kept for diagnostics.
	pkg string
}

// Manager owns all live MCP server connections: at most one per server id,
// never persisted, exclusively owned here. It is safe for concurrent use by
// multiple goroutines; operations on different server ids never interfere.
// NewManager should be used to create instances of Manager.
type Manager struct {
	mu    sync.Mutex
	conns map[string]*conn

	logger         hclog.Logger
	validator      *security.Validator
	dialer         Dialer
	registry       *registry.Registry
	connectTimeout time.Duration
}

// Compile-time interface check.
var _ contracts.ConnectionManager = (*Manager)(nil)

// Option mutates Manager construction defaults.
type Option func(*Manager)

// WithConnectTimeout overrides the dial-plus-handshake ceiling.
func WithConnectTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.connectTimeout = d
		}
	}
}

// NewManager creates an empty connection manager.
func NewManager(
	logger hclog.Logger,
	validator *security.Validator,
	dialer Dialer,
	reg *registry.Registry,
	opt ...Option,
) *Manager {
	m := &Manager{
		conns:          make(map[string]*conn),
		logger:         logger.Named("connection"),
		validator:      validator,
		dialer:         dialer,
		registry:       reg,
		connectTimeout: DefaultConnectTimeout,
	}
	for _, o := range opt {
		o(m)
	}
	return m
}

// Connect validates the config, establishes the transport, performs the MCP
// handshake, and registers the live connection under the config's id.
// A second Connect for an id that is connected (or mid-connect) fails with
// ErrAlreadyConnected; connections are never silently replaced.
func (m *Manager) Connect(ctx context.Context, cfg domain.ServerConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrBadRequest, err)
	}

	var pkg string
	if cfg.Transport == domain.TransportStdio {
		verdict := m.validator.Validate(cfg.Command, cfg.Args, security.ModeRuntime)
		if !verdict.Allowed {
			return fmt.Errorf("%w: %s", errors.ErrValidationRejected, verdict.Reason)
		}
		pkg = verdict.Package
	}

	// Claim the id before any I/O so concurrent connects for the same id
	// serialize: exactly one wins, the rest fail fast.
	m.mu.Lock()
	if _, exists := m.conns[cfg.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrAlreadyConnected, cfg.ID)
	}
	m.conns[cfg.ID] = &conn{cfg: cfg, state: stateConnecting, pkg: pkg}
	m.mu.Unlock()

	c, err := m.establish(ctx, cfg)
	if err != nil {
		m.release(cfg.ID)
		diagnosis := diagnose(cfg, pkg, err, m.registry)
		m.logger.Error("Connection failed", "server", cfg.ID, "error", err, "diagnosis", diagnosis)
		return fmt.Errorf("%w: %s: %s", errors.ErrConnectionFailed, cfg.ID, diagnosis)
	}

	m.mu.Lock()
	entry, ok := m.conns[cfg.ID]
	if !ok {
		// The placeholder vanished while the handshake was in flight.
		m.mu.Unlock()
		_ = c.Close()
		return fmt.Errorf("%w: %s: connection released during handshake", errors.ErrConnectionFailed, cfg.ID)
	}
	entry.client = c
	entry.state = stateConnected
	m.mu.Unlock()

	m.logger.Info("Connected to MCP server", "server", cfg.ID, "transport", cfg.Transport)
	return nil
}

// establish dials and handshakes under the connect ceiling, tearing down any
// partially-established client on failure or timeout.
func (m *Manager) establish(ctx context.Context, cfg domain.ServerConfig) (contracts.ToolClient, error) {
	connectCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	c, err := m.dialer.Dial(connectCtx, cfg)
	if err != nil {
		return nil, err
	}

	_, err = c.Initialize(connectCtx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: "latest",
			ClientInfo:      mcp.Implementation{Name: clientName, Version: "1.0.0"},
		},
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// release removes an id from the live set.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// Disconnect closes the transport for a server id. The id is removed from the
// live set regardless of the close outcome so a failed close can never leave
// a phantom connected entry.
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	entry, ok := m.conns[id]
	if !ok || entry.state != stateConnected {
		// A Connecting placeholder belongs to the in-flight Connect; it is
		// not disconnectable and must not be stolen out from under it.
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrNotConnected, id)
	}
	delete(m.conns, id)
	m.mu.Unlock()

	if err := entry.client.Close(); err != nil {
		m.logger.Warn("Error closing connection", "server", id, "error", err)
		return fmt.Errorf("close failed for '%s': %w", id, err)
	}

	m.logger.Info("Disconnected from MCP server", "server", id)
	return nil
}

// DisconnectAll fans out disconnects concurrently and joins regardless of
// individual outcomes. It never fails overall.
func (m *Manager) DisconnectAll(_ context.Context) {
	ids := m.ConnectedServers()

	g := new(errgroup.Group)
	g.SetLimit(disconnectFanout)
	for _, id := range ids {
		g.Go(func() error {
			if err := m.Disconnect(id); err != nil {
				m.logger.Warn("Disconnect failed during shutdown", "server", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ListTools returns the tools for a connected server, normalized so every
// entry carries a name, description, and an object input schema.
func (m *Manager) ListTools(ctx context.Context, id string) ([]mcp.Tool, error) {
	c, err := m.liveClient(id)
	if err != nil {
		return nil, err
	}

	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrToolListFailed, id, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s: no result", errors.ErrToolListFailed, id)
	}

	tools := make([]mcp.Tool, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, normalizeTool(tool))
	}
	return tools, nil
}

// CallTool invokes a tool on a connected server. Transport-level failures map
// to ErrToolExecutionFailed; results are normalized so the content slice is
// never nil.
func (m *Manager) CallTool(ctx context.Context, id string, call domain.ToolCall) (*mcp.CallToolResult, error) {
	c, err := m.liveClient(id)
	if err != nil {
		return nil, err
	}

	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      call.Name,
			Arguments: call.Arguments,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", errors.ErrToolExecutionFailed, id, call.Name, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s/%s: result was nil", errors.ErrToolExecutionFailed, id, call.Name)
	}

	if result.Content == nil {
		result.Content = []mcp.Content{}
	}
	return result, nil
}

// IsConnected reports whether a server id has a fully-established connection.
func (m *Manager) IsConnected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.conns[id]
	return ok && entry.state == stateConnected
}

// ConnectedServers returns the sorted ids of all fully-established
// connections.
func (m *Manager) ConnectedServers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.conns))
	for id, entry := range m.conns {
		if entry.state == stateConnected {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Ping is a best-effort liveness probe: it attempts a tool listing and
// reports whether it succeeded. It never returns an error.
func (m *Manager) Ping(ctx context.Context, id string) bool {
	_, err := m.ListTools(ctx, id)
	return err == nil
}

// liveClient returns the client for a fully-established connection.
// No I/O happens for unknown ids.
func (m *Manager) liveClient(id string) (contracts.ToolClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.conns[id]
	if !ok || entry.state != stateConnected {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotConnected, id)
	}
	return entry.client, nil
}

// normalizeTool fills the defaults consumers rely on: a trimmed name, and an
// input schema that is always an object with non-nil properties.
func normalizeTool(tool mcp.Tool) mcp.Tool {
	tool.Name = strings.TrimSpace(tool.Name)
	if tool.InputSchema.Type == "" {
		tool.InputSchema.Type = "object"
	}
	if tool.InputSchema.Properties == nil {
		tool.InputSchema.Properties = map[string]any{}
	}
	return tool
}
