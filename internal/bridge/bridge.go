// Package bridge flattens the tools of every connected, enabled MCP server
// into a single collision-free namespace of invocable handles.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/errors"
)

// discoveryFanout bounds concurrent connect-and-list attempts during a
// discovery pass.
const discoveryFanout = 8

// degenerateLiterals mark bridge keys built from malformed upstream data.
var degenerateLiterals = []string{"undefined", "null"}

// ToolHandle is one invocable tool in the flat namespace. It holds only the
// routing coordinates and a validator compiled from the declared schema; the
// live connection stays with the connection manager.
type ToolHandle struct {
	Key         string
	ServerID    string
	ToolName    string
	Description string
	InputSchema mcp.ToolInputSchema

	validator *inputValidator
	bridge    *Bridge
}

// Bridge builds and invokes tool handles. Handles are rediscovered on every
// Tools call so enablement changes take effect without a restart.
// NewBridge should be used to create instances of Bridge.
type Bridge struct {
	logger  hclog.Logger
	conns   contracts.ConnectionManager
	health  contracts.HealthMonitor
	configs contracts.ConfigStore
}

// NewBridge creates a bridge over the given connection manager, health
// monitor, and config store.
func NewBridge(
	logger hclog.Logger,
	conns contracts.ConnectionManager,
	health contracts.HealthMonitor,
	configs contracts.ConfigStore,
) *Bridge {
	return &Bridge{
		logger:  logger.Named("bridge"),
		conns:   conns,
		health:  health,
		configs: configs,
	}
}

// Tools discovers every tool on every enabled server and returns the flat
// handle namespace keyed by '{serverID}_{toolName}'. Servers that fail to
// connect or list are logged and skipped; one broken server never hides the
// others.
func (b *Bridge) Tools(ctx context.Context) map[string]*ToolHandle {
	enabled, _ := b.configs.LoadConfiguration()

	type discovery struct {
		serverID string
		tools    []mcp.Tool
	}

	var (
		mu      sync.Mutex
		results []discovery
	)

	g := new(errgroup.Group)
	g.SetLimit(discoveryFanout)
	for id, cfg := range enabled {
		g.Go(func() error {
			tools, err := b.discover(ctx, id, cfg)
			if err != nil {
				b.logger.Error("Skipping server during tool discovery", "server", id, "error", err)
				return nil
			}
			mu.Lock()
			results = append(results, discovery{serverID: id, tools: tools})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Registration order decides collisions, so it cannot depend on which
	// discovery goroutine finished first.
	slices.SortFunc(results, func(a, b discovery) int {
		return strings.Compare(a.serverID, b.serverID)
	})

	handles := make(map[string]*ToolHandle)
	for _, d := range results {
		for _, tool := range d.tools {
			b.register(handles, d.serverID, tool)
		}
	}
	return handles
}

// Handle rediscovers the namespace and returns the handle for one bridge
// key. Unknown keys surface as ErrToolNotFound.
func (b *Bridge) Handle(ctx context.Context, key string) (*ToolHandle, error) {
	handle, ok := b.Tools(ctx)[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrToolNotFound, key)
	}
	return handle, nil
}

// discover ensures a live connection for the server and lists its tools.
func (b *Bridge) discover(ctx context.Context, id string, cfg domain.ServerConfig) ([]mcp.Tool, error) {
	if !b.conns.IsConnected(id) {
		if err := b.conns.Connect(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return b.conns.ListTools(ctx, id)
}

// register adds a handle for a discovered tool, dropping malformed entries
// and resolving key collisions in favor of the first registration.
func (b *Bridge) register(handles map[string]*ToolHandle, serverID string, tool mcp.Tool) {
	if strings.TrimSpace(tool.Name) == "" {
		b.logger.Error("Skipping tool with empty name", "server", serverID)
		return
	}

	key := fmt.Sprintf("%s_%s", serverID, tool.Name)
	lower := strings.ToLower(key)
	for _, literal := range degenerateLiterals {
		if strings.Contains(lower, literal) {
			b.logger.Error("Dropping tool with degenerate bridge key", "key", key)
			return
		}
	}

	if _, exists := handles[key]; exists {
		b.logger.Error("Bridge key collision, keeping the first registration", "key", key)
		return
	}

	handles[key] = &ToolHandle{
		Key:         key,
		ServerID:    serverID,
		ToolName:    tool.Name,
		Description: tool.Description,
		InputSchema: tool.InputSchema,
		validator:   newInputValidator(tool.InputSchema),
		bridge:      b,
	}
}

// Invoke validates the arguments, routes the call, reports the outcome to
// the health monitor, and returns the flattened text result. A tool that is
// unreachable surfaces as ErrNotConnected; a tool that ran and failed
// surfaces as ErrToolExecutionFailed so callers can retry just the call.
func (h *ToolHandle) Invoke(ctx context.Context, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := h.validator.Validate(args); err != nil {
		return "", fmt.Errorf("%w: %s: %w", errors.ErrBadRequest, h.Key, err)
	}

	result, err := h.bridge.conns.CallTool(ctx, h.ServerID, domain.ToolCall{
		Name:      h.ToolName,
		Arguments: args,
	})
	if err != nil {
		h.bridge.health.RecordError(h.ServerID, h.ToolName, err.Error())
		return "", err
	}

	text := flattenContent(result.Content)
	if result.IsError {
		message := text
		if message == "" {
			message = "tool reported an error without detail"
		}
		h.bridge.health.RecordError(h.ServerID, h.ToolName, message)
		return "", fmt.Errorf("%w: %s: %s", errors.ErrToolExecutionFailed, h.Key, message)
	}

	h.bridge.health.RecordSuccess(h.ServerID, h.ToolName)

	if len(result.Content) == 0 {
		return serializeFallback(result), nil
	}
	return text, nil
}

// flattenContent joins structured content into one text block. Text items
// pass through verbatim; anything else renders as a bracketed placeholder
// naming its payload.
func flattenContent(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, item := range content {
		switch c := item.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image: %s]", c.MIMEType))
		case mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[audio: %s]", c.MIMEType))
		case mcp.EmbeddedResource:
			parts = append(parts, "[embedded resource]")
		default:
			parts = append(parts, fmt.Sprintf("[%T]", item))
		}
	}
	return strings.Join(parts, "\n")
}

// serializeFallback renders a result with no structured content as JSON so
// the caller still receives something inspectable.
func serializeFallback(result *mcp.CallToolResult) string {
	raw, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	return string(raw)
}
