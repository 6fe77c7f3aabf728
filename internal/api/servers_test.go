package api

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestDomainTool_ToAPIType(t *testing.T) {
	t.Parallel()

	src := mcp.Tool{
		Name:        "read_file",
		Description: "Reads a file from disk",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"path": map[string]any{"type": "string"},
			},
			Required: []string{"path"},
		},
	}

	got := domainTool(src).ToAPIType()

	require.Equal(t, "read_file", got.Name)
	require.Equal(t, "Reads a file from disk", got.Description)
	require.Equal(t, "object", got.InputSchema.Type)
	require.Equal(t, []string{"path"}, got.InputSchema.Required)
	require.Contains(t, got.InputSchema.Properties, "path")
}
