package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/perms"
)

// Init creates the base skeleton configuration file for the mcphub project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `servers = []`

	if err := os.WriteFile(path, []byte(content), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'mcphub init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// AddServer attempts to persist a new MCP server to the configuration file (.mcphub.toml).
func (c *Config) AddServer(entry ServerEntry) error {
	c.Servers = append(c.Servers, entry)

	if err := c.validate(); err != nil {
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// RemoveServer removes a server entry by name from the configuration file (.mcphub.toml).
func (c *Config) RemoveServer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}

	filtered := make([]ServerEntry, 0, len(c.Servers))
	for _, s := range c.Servers {
		if s.Name != name {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) == len(c.Servers) {
		return fmt.Errorf("%w: '%s'", ErrServerNotFound, name)
	}

	c.Servers = filtered

	if err := c.validate(); err != nil {
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// UpdateServer replaces the entry matching the given entry's name.
func (c *Config) UpdateServer(entry ServerEntry) error {
	idx := c.indexOf(entry.Name)
	if idx == -1 {
		return fmt.Errorf("%w: '%s'", ErrServerNotFound, entry.Name)
	}

	previous := c.Servers[idx]
	c.Servers[idx] = entry

	if err := c.validate(); err != nil {
		c.Servers[idx] = previous
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// EnableServer marks a server for launch on the next daemon start or
// discovery pass.
func (c *Config) EnableServer(name string) error {
	return c.setDisabled(name, false)
}

// DisableServer keeps the declaration but excludes the server from launch.
func (c *Config) DisableServer(name string) error {
	return c.setDisabled(name, true)
}

func (c *Config) setDisabled(name string, disabled bool) error {
	idx := c.indexOf(name)
	if idx == -1 {
		return fmt.Errorf("%w: '%s'", ErrServerNotFound, name)
	}

	if c.Servers[idx].Disabled == disabled {
		return nil
	}
	c.Servers[idx].Disabled = disabled

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// ListServers returns a copy of the currently configured server entries.
// This provides read-only access to the internal configuration without exposing direct mutation of the underlying slice.
func (c *Config) ListServers() []ServerEntry {
	return slices.Clone(c.Servers)
}

// LoadConfiguration returns the declared servers keyed by id, split by
// enablement.
func (c *Config) LoadConfiguration() (map[string]domain.ServerConfig, map[string]domain.ServerConfig) {
	enabled := make(map[string]domain.ServerConfig)
	disabled := make(map[string]domain.ServerConfig)

	for _, entry := range c.Servers {
		if entry.Disabled {
			disabled[entry.Name] = entry.ServerConfig()
			continue
		}
		enabled[entry.Name] = entry.ServerConfig()
	}

	return enabled, disabled
}

// SaveConfig saves the current configuration to the config file.
func (c *Config) SaveConfig() error {
	return c.saveConfig()
}

func (c *Config) indexOf(name string) int {
	return slices.IndexFunc(c.Servers, func(e ServerEntry) bool {
		return e.Name == name
	})
}

func (c *Config) saveConfig() error {
	if c.configFilePath == "" {
		return fmt.Errorf("config file path not present")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configFilePath, data, perms.RegularFile)
}

// validate orchestrates validation of configuration structure.
func (c *Config) validate() error {
	if err := c.validateDistinct(); err != nil {
		return err
	}

	for _, entry := range c.Servers {
		if err := entry.ServerConfig().Validate(); err != nil {
			return fmt.Errorf("server '%s': %w", entry.Name, err)
		}
	}

	return nil
}

// validateDistinct ensures that all server entries are distinct by name.
func (c *Config) validateDistinct() error {
	seen := map[string]struct{}{}

	for _, entry := range c.Servers {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("server entry has empty name")
		}
		if _, ok := seen[entry.Name]; ok {
			return fmt.Errorf("duplicate server name '%s'", entry.Name)
		}
		seen[entry.Name] = struct{}{}
	}
	return nil
}
