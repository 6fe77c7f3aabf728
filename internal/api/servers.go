package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/domain"
)

// ServersResponse represents the wrapped API response for a list of servers.
type ServersResponse struct {
	Body struct {
		Servers []string `doc:"Ids of all connected servers" json:"servers"`
	}
}

// ServerToolsRequest represents the incoming API request for listing a server's tools.
type ServerToolsRequest struct {
	Name string `doc:"Id of the server to lookup tools for" example:"filesystem" path:"name"`
}

// ServerToolsResponse represents the wrapped API response for a server's tools.
type ServerToolsResponse struct {
	Body struct {
		Tools []Tool `doc:"Tools declared by the server" json:"tools"`
	}
}

// ServerToolCallRequest represents the incoming API request to call a tool on a particular server.
type ServerToolCallRequest struct {
	Server string         `doc:"Id of the server"         example:"filesystem" path:"server"`
	Tool   string         `doc:"Name of the tool to call" example:"read_file"  path:"tool"`
	Body   map[string]any `doc:"Arguments for the tool"`
}

// ToolCallResponse represents the wrapped API response for calling a tool.
type ToolCallResponse struct {
	Body struct {
		Content []ContentItem `doc:"Structured result content" json:"content"`
		IsError bool          `doc:"Whether the tool reported an error" json:"isError"`
	}
}

// ContentItem is one element of a tool call result.
type ContentItem struct {
	Type string `doc:"Content kind, e.g. text" json:"type"`
	Text string `doc:"Text payload for text content" json:"text,omitempty"`
}

// Tool is the API shape of one declared tool.
type Tool struct {
	Name        string     `doc:"Name of the tool"                  json:"name"`
	Description string     `doc:"Description of what the tool does" json:"description,omitempty"`
	InputSchema JSONSchema `doc:"Input parameters schema"           json:"inputSchema"`
}

// JSONSchema defines the structure for a JSON schema object.
type JSONSchema struct {
	// Type defines the type for this schema, e.g. "object".
	Type string `json:"type"`

	// Properties represents a property name and associated object definition.
	Properties map[string]any `json:"properties,omitempty"`

	// Required lists the (keys of) Properties that are required.
	Required []string `json:"required,omitempty"`
}

// domainTool wraps mcp.Tool for conversion to Tool via ToAPIType.
type domainTool mcp.Tool

// ToAPIType converts a wrapped mcp.Tool to its API shape.
func (t domainTool) ToAPIType() Tool {
	return Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: JSONSchema{
			Type:       t.InputSchema.Type,
			Properties: t.InputSchema.Properties,
			Required:   t.InputSchema.Required,
		},
	}
}

// RegisterServerRoutes sets up server and per-server tool API endpoints.
func RegisterServerRoutes(
	routerAPI huma.API,
	conns contracts.ConnectionManager,
	monitor contracts.HealthMonitor,
	apiPathPrefix string,
) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Summary:     "List all connected servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersResponse, error) {
			return handleServers(conns)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServerTools",
			Method:      http.MethodGet,
			Path:        "/{name}/tools",
			Summary:     "List server tools",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ServerToolsRequest) (*ServerToolsResponse, error) {
			return handleServerTools(ctx, conns, input.Name)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "callServerTool",
			Method:      http.MethodPost,
			Path:        "/{server}/tools/{tool}",
			Summary:     "Call a tool on a server",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ServerToolCallRequest) (*ToolCallResponse, error) {
			return handleServerToolCall(ctx, conns, monitor, input)
		},
	)
}

// handleServers returns the ids of all connected MCP servers.
func handleServers(conns contracts.ConnectionManager) (*ServersResponse, error) {
	resp := &ServersResponse{}
	resp.Body.Servers = conns.ConnectedServers()

	return resp, nil
}

// handleServerTools returns the declared tools for a connected server.
func handleServerTools(ctx context.Context, conns contracts.ConnectionManager, name string) (*ServerToolsResponse, error) {
	tools, err := conns.ListTools(ctx, name)
	if err != nil {
		return nil, err
	}

	apiTools := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		apiTools = append(apiTools, domainTool(tool).ToAPIType())
	}

	resp := &ServerToolsResponse{}
	resp.Body.Tools = apiTools

	return resp, nil
}

// handleServerToolCall invokes a tool and records the outcome with the
// health monitor.
func handleServerToolCall(
	ctx context.Context,
	conns contracts.ConnectionManager,
	monitor contracts.HealthMonitor,
	input *ServerToolCallRequest,
) (*ToolCallResponse, error) {
	result, err := conns.CallTool(ctx, input.Server, domain.ToolCall{
		Name:      input.Tool,
		Arguments: input.Body,
	})
	if err != nil {
		monitor.RecordError(input.Server, input.Tool, err.Error())
		return nil, err
	}

	monitor.RecordSuccess(input.Server, input.Tool)

	resp := &ToolCallResponse{}
	resp.Body.IsError = result.IsError
	resp.Body.Content = make([]ContentItem, 0, len(result.Content))
	for _, item := range result.Content {
		switch c := item.(type) {
		case mcp.TextContent:
			resp.Body.Content = append(resp.Body.Content, ContentItem{Type: "text", Text: c.Text})
		default:
			resp.Body.Content = append(resp.Body.Content, ContentItem{Type: "other"})
		}
	}

	return resp, nil
}
