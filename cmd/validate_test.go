package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpad/mcphub/internal/cmd"
)

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		expectedOutputs []string
		expectedError   string
	}{
		{
			name: "verified npx package allowed",
			args: []string{"npx", "-y", "@modelcontextprotocol/server-filesystem"},
			expectedOutputs: []string{
				"✓ allowed: npx -y @modelcontextprotocol/server-filesystem",
				"package: @modelcontextprotocol/server-filesystem",
			},
		},
		{
			name: "flag-shaped args after the command are not parsed as cobra flags",
			args: []string{"npx", "-y", "@modelcontextprotocol/server-filesystem", "/tmp"},
			expectedOutputs: []string{
				"✓ allowed: npx -y @modelcontextprotocol/server-filesystem /tmp",
			},
		},
		{
			name:            "blocked shell rejected",
			args:            []string{"bash", "-c", "echo hi"},
			expectedOutputs: []string{"✗ rejected: bash -c echo hi", "blocked"},
			expectedError:   "launch command rejected",
		},
		{
			name:            "npx code exec flag rejected",
			args:            []string{"npx", "--eval", "process.exit()"},
			expectedOutputs: []string{"✗ rejected", "arbitrary code execution"},
			expectedError:   "launch command rejected",
		},
		{
			name:            "unverified package rejected in whitelist mode",
			args:            []string{"--mode", "whitelist", "npx", "-y", "some-random-package"},
			expectedOutputs: []string{"✗ rejected", "not whitelisted"},
			expectedError:   "launch command rejected",
		},
		{
			name:            "custom executable allowed with warning",
			args:            []string{"my-custom-server", "--port", "9000"},
			expectedOutputs: []string{"✓ allowed: my-custom-server --port 9000", "warning:"},
		},
		{
			name:          "unsupported mode",
			args:          []string{"--mode", "paranoid", "npx", "foo"},
			expectedError: "unsupported mode 'paranoid'",
		},
		{
			name:          "unsupported format",
			args:          []string{"--format", "xml", "npx", "foo"},
			expectedError: "unsupported format 'xml'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output := &bytes.Buffer{}

			c := NewValidateCmd(&cmd.BaseCmd{})
			c.SetOut(output)
			c.SetErr(output)
			c.SetArgs(tc.args)

			err := c.Execute()

			if tc.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
			} else {
				assert.NoError(t, err)
			}

			for _, expectedOutput := range tc.expectedOutputs {
				assert.Contains(t, output.String(), expectedOutput)
			}
		})
	}
}

func TestValidateCommand_JSONFormat(t *testing.T) {
	output := &bytes.Buffer{}

	c := NewValidateCmd(&cmd.BaseCmd{})
	c.SetOut(output)
	c.SetErr(output)
	c.SetArgs([]string{"--format", "json", "uvx", "mcp-server-fetch"})

	require.NoError(t, c.Execute())

	var result struct {
		Command string `json:"command"`
		Mode    string `json:"mode"`
		Allowed bool   `json:"allowed"`
		Package string `json:"package"`
	}
	require.NoError(t, json.Unmarshal(output.Bytes(), &result))
	assert.Equal(t, "uvx", result.Command)
	assert.Equal(t, "runtime", result.Mode)
	assert.True(t, result.Allowed)
	assert.Equal(t, "mcp-server-fetch", result.Package)
}
