// Package connection establishes and supervises channels to MCP servers.
// It owns the transport factory, the live connection set, and the mapping of
// raw transport failures to actionable diagnostics.
package connection

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/client"
	mcptransport "github.com/mark3labs/mcp-go/client/transport"

	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/runtime"
)

// Dialer builds a transport-level client for a validated server config.
// The returned client is started but not yet initialized.
type Dialer interface {
	Dial(ctx context.Context, cfg domain.ServerConfig) (contracts.ToolClient, error)
}

// Factory is the production Dialer. It resolves stdio executables through the
// runtime resolver and builds the matching mcp-go client per declared
// transport. NewFactory should be used to create instances of Factory.
type Factory struct {
	logger   hclog.Logger
	resolver *runtime.Resolver
}

// NewFactory creates a transport factory.
func NewFactory(logger hclog.Logger, resolver *runtime.Resolver) *Factory {
	return &Factory{
		logger:   logger.Named("transport"),
		resolver: resolver,
	}
}

// Dial builds a client for the config's transport.
// Callers are expected to have validated the config already.
func (f *Factory) Dial(ctx context.Context, cfg domain.ServerConfig) (contracts.ToolClient, error) {
	switch cfg.Transport {
	case domain.TransportStdio:
		return f.dialStdio(cfg)
	case domain.TransportHTTP:
		return f.dialHTTP(ctx, cfg)
	case domain.TransportSSE:
		return f.dialSSE(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown transport '%s' for server '%s'", cfg.Transport, cfg.ID)
	}
}

// dialStdio spawns the server as a subprocess speaking MCP over stdin/stdout.
// Package-runner commands are resolved to real binaries first so launches work
// from GUI processes with a minimal inherited PATH.
func (f *Factory) dialStdio(cfg domain.ServerConfig) (contracts.ToolClient, error) {
	command := cfg.Command
	if runtime.IsPackageRunner(command) {
		resolved, err := f.resolver.Resolve(command)
		if err != nil {
			return nil, err
		}
		command = resolved
	}

	env := f.resolver.Environ(cfg.Env)

	f.logger.Debug(
		"Spawning stdio MCP server",
		"server", cfg.ID,
		"command", command,
		"args", cfg.Args,
	)

	stdioClient, err := client.NewStdioMCPClient(command, env, cfg.Args...)
	if err != nil {
		return nil, err
	}

	return stdioClient, nil
}

// dialHTTP builds a streamable HTTP client for the config's base URL.
func (f *Factory) dialHTTP(ctx context.Context, cfg domain.ServerConfig) (contracts.ToolClient, error) {
	f.logger.Debug("Connecting streamable HTTP MCP server", "server", cfg.ID, "baseUrl", cfg.BaseURL)

	httpClient, err := client.NewStreamableHttpClient(cfg.BaseURL, mcptransport.WithHTTPHeaders(cfg.Headers))
	if err != nil {
		return nil, err
	}

	if err := httpClient.Start(ctx); err != nil {
		_ = httpClient.Close()
		return nil, err
	}

	return httpClient, nil
}

// dialSSE builds a server-sent events client for the config's base URL.
func (f *Factory) dialSSE(ctx context.Context, cfg domain.ServerConfig) (contracts.ToolClient, error) {
	f.logger.Debug("Connecting SSE MCP server", "server", cfg.ID, "baseUrl", cfg.BaseURL)

	sseClient, err := client.NewSSEMCPClient(cfg.BaseURL, client.WithHeaders(cfg.Headers))
	if err != nil {
		return nil, err
	}

	if err := sseClient.Start(ctx); err != nil {
		_ = sseClient.Close()
		return nil, err
	}

	return sseClient, nil
}
