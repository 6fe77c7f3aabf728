package domain

import (
	"fmt"
	"strings"
)

const (
	// TransportStdio runs the server as a subprocess speaking MCP over standard I/O.
	TransportStdio Transport = "stdio"

	// TransportHTTP reaches the server over a streamable HTTP session.
	TransportHTTP Transport = "http"

	// TransportSSE reaches the server over a server-sent events session.
	TransportSSE Transport = "sse"
)

// Transport identifies the channel type used to reach a tool provider.
type Transport string

// ServerConfig declares how to reach a single MCP server.
// Stdio servers require Command; http/sse servers require BaseURL.
// Configs originate from user input, imports, or deep links and are only
// mutated through explicit configuration store updates.
type ServerConfig struct {
	ID        string            `json:"id"                  toml:"id"`
	Transport Transport         `json:"transport"           toml:"transport"`
	Command   string            `json:"command,omitempty"   toml:"command,omitempty"`
	Args      []string          `json:"args,omitempty"      toml:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"       toml:"env,omitempty"`
	BaseURL   string            `json:"baseUrl,omitempty"   toml:"base_url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"   toml:"headers,omitempty"`
}

// Validate enforces the per-transport invariants for a server config.
func (c ServerConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("server config has empty id")
	}

	switch c.Transport {
	case TransportStdio:
		if strings.TrimSpace(c.Command) == "" {
			return fmt.Errorf("server '%s': stdio transport requires a command", c.ID)
		}
	case TransportHTTP, TransportSSE:
		if strings.TrimSpace(c.BaseURL) == "" {
			return fmt.Errorf("server '%s': %s transport requires a base URL", c.ID, c.Transport)
		}
	default:
		return fmt.Errorf("server '%s': unknown transport '%s'", c.ID, c.Transport)
	}

	return nil
}
