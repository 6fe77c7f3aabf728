package config

import (
	"github.com/agentpad/mcphub/internal/domain"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	AddServer(entry ServerEntry) error
	RemoveServer(name string) error
	UpdateServer(entry ServerEntry) error
	EnableServer(name string) error
	DisableServer(name string) error
	ListServers() []ServerEntry
	LoadConfiguration() (enabled map[string]domain.ServerConfig, disabled map[string]domain.ServerConfig)
}

type DefaultLoader struct{}

// Config represents the .mcphub.toml file structure.
type Config struct {
	Servers        []ServerEntry `toml:"servers"`
	configFilePath string        `toml:"-"`
}

// ServerEntry represents the persisted declaration of a single MCP server.
type ServerEntry struct {
	// Name is the unique server id referenced by the user, e.g. 'filesystem'.
	Name string `json:"name" toml:"name" yaml:"name"`

	// Transport selects how the server is reached: stdio, http, or sse.
	Transport string `json:"transport" toml:"transport" yaml:"transport"`

	// Command is the executable for stdio servers, e.g. 'npx'.
	Command string `json:"command,omitempty" toml:"command,omitempty" yaml:"command,omitempty"`

	// Args are passed to the command verbatim.
	Args []string `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`

	// Env holds extra environment variables for stdio servers.
	Env map[string]string `json:"env,omitempty" toml:"env,omitempty" yaml:"env,omitempty"`

	// URL is the endpoint for http and sse servers.
	URL string `json:"url,omitempty" toml:"url,omitempty" yaml:"url,omitempty"`

	// Headers are sent with every request for http and sse servers.
	Headers map[string]string `json:"headers,omitempty" toml:"headers,omitempty" yaml:"headers,omitempty"`

	// Disabled keeps the declaration without launching the server.
	Disabled bool `json:"disabled,omitempty" toml:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// ServerConfig converts the persisted entry into the runtime declaration.
func (e ServerEntry) ServerConfig() domain.ServerConfig {
	return domain.ServerConfig{
		ID:        e.Name,
		Transport: domain.Transport(e.Transport),
		Command:   e.Command,
		Args:      e.Args,
		Env:       e.Env,
		BaseURL:   e.URL,
		Headers:   e.Headers,
	}
}
