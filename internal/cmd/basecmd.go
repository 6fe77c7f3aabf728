package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/agentpad/mcphub/internal/flags"
	"github.com/agentpad/mcphub/internal/perms"
	"github.com/agentpad/mcphub/internal/registry"
)

// version is set at build time using -ldflags.
var version = "dev"

// Version reports the build version of the hub.
func Version() string {
	return version
}

type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the current logger for the command
func (c *BaseCmd) Logger() hclog.Logger {
	if c.logger != nil {
		return c.logger
	}

	// Get log level from flags first, then environment, then default
	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = strings.ToLower(os.Getenv(flags.EnvVarLogLevel))
		if logLevel == "" {
			logLevel = flags.DefaultLogLevel
		}
	}

	// Get log path from flags first, then environment
	logPath := flags.LogPath
	if logPath == "" {
		logPath = strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))
	}

	// Configure logger output
	var output io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file (%s): %v, using stderr\n", logPath, err)
		} else {
			output = f
		}
	}

	// Using flags/env for fallback logger
	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "mcphub",
		Level:  hclog.LevelFromString(logLevel),
		Output: output,
	})

	return c.logger
}

// CreateRegistry loads the package catalog, preferring the configured remote
// registry and falling back to the embedded one.
func (c *BaseCmd) CreateRegistry() *registry.Registry {
	url := strings.TrimSpace(os.Getenv(flags.EnvVarRegistry))
	if url == "" {
		url = registry.DefaultRegistryURL
	}
	return registry.Load(c.Logger(), url)
}
