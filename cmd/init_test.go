package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/flags"
)

func TestInitCommand(t *testing.T) {
	t.Run("creates skeleton config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), ".mcphub.toml")

		output := &bytes.Buffer{}
		c := NewInitCmd(&cmd.BaseCmd{})
		c.SetOut(output)
		c.SetErr(output)

		previousConfigFile := flags.ConfigFile
		defer func() { flags.ConfigFile = previousConfigFile }()
		flags.ConfigFile = configPath

		require.NoError(t, c.Execute())
		assert.Contains(t, output.String(), "Created "+configPath)

		raw, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "servers = []")
	})

	t.Run("refuses to overwrite existing config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), ".mcphub.toml")
		require.NoError(t, os.WriteFile(configPath, []byte("servers = []\n"), 0o644))

		c := NewInitCmd(&cmd.BaseCmd{})
		c.SetOut(&bytes.Buffer{})
		c.SetErr(&bytes.Buffer{})

		previousConfigFile := flags.ConfigFile
		defer func() { flags.ConfigFile = previousConfigFile }()
		flags.ConfigFile = configPath

		err := c.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}
