package api

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentpad/mcphub/internal/bridge"
)

// BridgedTool is the API shape of one entry in the flat tool namespace.
type BridgedTool struct {
	Key         string     `doc:"Unique bridge key, '{serverId}_{toolName}'" json:"key"`
	Server      string     `doc:"Id of the providing server"                 json:"server"`
	Tool        string     `doc:"Name of the tool on its server"             json:"tool"`
	Description string     `doc:"Description of what the tool does"          json:"description,omitempty"`
	InputSchema JSONSchema `doc:"Input parameters schema"                    json:"inputSchema"`
}

// BridgedToolsResponse is the response for GET /tools.
type BridgedToolsResponse struct {
	Body struct {
		Tools []BridgedTool `doc:"Flat namespace of every available tool" json:"tools"`
	}
}

// BridgedToolCallRequest invokes one entry of the flat namespace.
type BridgedToolCallRequest struct {
	Key  string         `doc:"Bridge key of the tool to invoke" example:"filesystem_read_file" path:"key"`
	Body map[string]any `doc:"Arguments for the tool"`
}

// BridgedToolCallResponse carries the flattened text result of an invocation.
type BridgedToolCallResponse struct {
	Body struct {
		Result string `doc:"Flattened text result" json:"result"`
	}
}

// RegisterToolRoutes sets up the flat cross-server tool namespace endpoints.
func RegisterToolRoutes(routerAPI huma.API, b *bridge.Bridge, apiPathPrefix string) {
	toolsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Tools"}

	huma.Register(
		toolsAPI,
		huma.Operation{
			OperationID: "listBridgedTools",
			Method:      http.MethodGet,
			Summary:     "List every tool of every enabled server as one flat namespace",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*BridgedToolsResponse, error) {
			return handleBridgedTools(ctx, b)
		},
	)

	huma.Register(
		toolsAPI,
		huma.Operation{
			OperationID: "callBridgedTool",
			Method:      http.MethodPost,
			Path:        "/{key}",
			Summary:     "Invoke a tool by its bridge key",
			Tags:        tags,
		},
		func(ctx context.Context, input *BridgedToolCallRequest) (*BridgedToolCallResponse, error) {
			return handleBridgedToolCall(ctx, b, input)
		},
	)
}

// handleBridgedTools rediscovers and returns the flat tool namespace, sorted
// by key for stable output.
func handleBridgedTools(ctx context.Context, b *bridge.Bridge) (*BridgedToolsResponse, error) {
	handles := b.Tools(ctx)

	tools := make([]BridgedTool, 0, len(handles))
	for _, handle := range handles {
		tools = append(tools, BridgedTool{
			Key:         handle.Key,
			Server:      handle.ServerID,
			Tool:        handle.ToolName,
			Description: handle.Description,
			InputSchema: JSONSchema{
				Type:       handle.InputSchema.Type,
				Properties: handle.InputSchema.Properties,
				Required:   handle.InputSchema.Required,
			},
		})
	}
	slices.SortFunc(tools, func(a, b BridgedTool) int {
		return strings.Compare(a.Key, b.Key)
	})

	resp := &BridgedToolsResponse{}
	resp.Body.Tools = tools

	return resp, nil
}

// handleBridgedToolCall invokes a bridge key discovered in the current pass.
func handleBridgedToolCall(ctx context.Context, b *bridge.Bridge, input *BridgedToolCallRequest) (*BridgedToolCallResponse, error) {
	handle, err := b.Handle(ctx, input.Key)
	if err != nil {
		return nil, err
	}

	result, err := handle.Invoke(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	resp := &BridgedToolCallResponse{}
	resp.Body.Result = result

	return resp, nil
}
