package bridge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/agentpad/mcphub/internal/domain"
	hub "github.com/agentpad/mcphub/internal/errors"
)

type fakeConns struct {
	mu sync.Mutex

	connected map[string]bool
	tools     map[string][]mcp.Tool
	listDelay map[string]time.Duration
	results   map[string]*mcp.CallToolResult

	connectErr map[string]error
	callErr    map[string]error

	lastCall domain.ToolCall
}

func (f *fakeConns) Connect(_ context.Context, cfg domain.ServerConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.connectErr[cfg.ID]; err != nil {
		return err
	}
	if f.connected == nil {
		f.connected = map[string]bool{}
	}
	f.connected[cfg.ID] = true
	return nil
}

func (f *fakeConns) Disconnect(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.connected, id)
	return nil
}

func (f *fakeConns) DisconnectAll(_ context.Context) {}

func (f *fakeConns) ListTools(_ context.Context, id string) ([]mcp.Tool, error) {
	if delay := f.listDelay[id]; delay > 0 {
		time.Sleep(delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected[id] {
		return nil, fmt.Errorf("%w: %s", hub.ErrNotConnected, id)
	}
	return f.tools[id], nil
}

func (f *fakeConns) CallTool(_ context.Context, id string, call domain.ToolCall) (*mcp.CallToolResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCall = call
	if !f.connected[id] {
		return nil, fmt.Errorf("%w: %s", hub.ErrNotConnected, id)
	}
	if err := f.callErr[id]; err != nil {
		return nil, err
	}
	result, ok := f.results[id]
	if !ok {
		result = &mcp.CallToolResult{Content: []mcp.Content{}}
	}
	return result, nil
}

func (f *fakeConns) IsConnected(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[id]
}

func (f *fakeConns) ConnectedServers() []string { return nil }

func (f *fakeConns) Ping(_ context.Context, id string) bool { return f.IsConnected(id) }

type fakeHealth struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (f *fakeHealth) RecordSuccess(serverID, toolName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, serverID+"/"+toolName)
}

func (f *fakeHealth) RecordError(serverID, toolName, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, serverID+"/"+toolName)
}

func (f *fakeHealth) ServerHealth(string) (domain.ServerHealth, error) {
	return domain.ServerHealth{}, hub.ErrHealthNotTracked
}

func (f *fakeHealth) Report() []domain.ServerHealth { return nil }
func (f *fakeHealth) UnhealthyServers() []string    { return nil }
func (f *fakeHealth) SuccessRate(string) float64    { return 1.0 }
func (f *fakeHealth) Reset(string)                  {}

type fakeStore struct {
	enabled map[string]domain.ServerConfig
}

func (f *fakeStore) LoadConfiguration() (map[string]domain.ServerConfig, map[string]domain.ServerConfig) {
	return f.enabled, nil
}

func enabledConfigs(ids ...string) map[string]domain.ServerConfig {
	out := make(map[string]domain.ServerConfig, len(ids))
	for _, id := range ids {
		out[id] = domain.ServerConfig{ID: id, Transport: domain.TransportStdio, Command: "npx"}
	}
	return out
}

func newTestBridge(conns *fakeConns, health *fakeHealth, store *fakeStore) *Bridge {
	return NewBridge(hclog.NewNullLogger(), conns, health, store)
}

func TestBridge_ToolsFlattensNamespace(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools: map[string][]mcp.Tool{
			"fs":    {{Name: "read_file"}, {Name: "write_file"}},
			"fetch": {{Name: "fetch", Description: "Fetch a URL"}},
		},
	}
	b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("fs", "fetch")})

	handles := b.Tools(t.Context())

	require.Len(t, handles, 3)
	require.Contains(t, handles, "fs_read_file")
	require.Contains(t, handles, "fs_write_file")
	require.Contains(t, handles, "fetch_fetch")
	require.Equal(t, "Fetch a URL", handles["fetch_fetch"].Description)

	// Discovery connected the enabled servers on demand.
	require.True(t, conns.IsConnected("fs"))
	require.True(t, conns.IsConnected("fetch"))
}

func TestBridge_ToolsFaultIsolation(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools:      map[string][]mcp.Tool{"healthy": {{Name: "ok"}}},
		connectErr: map[string]error{"broken": fmt.Errorf("%w: broken", hub.ErrConnectionFailed)},
	}
	b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("healthy", "broken")})

	handles := b.Tools(t.Context())

	require.Len(t, handles, 1)
	require.Contains(t, handles, "healthy_ok")
}

func TestBridge_ToolsDropsMalformedEntries(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools: map[string][]mcp.Tool{
			"srv": {
				{Name: "good"},
				{Name: "   "},
				{Name: "undefined"},
				{Name: "null_tool"},
			},
		},
	}
	b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("srv")})

	handles := b.Tools(t.Context())

	require.Len(t, handles, 1)
	require.Contains(t, handles, "srv_good")
}

func TestBridge_ToolsCollisionFirstWins(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools: map[string][]mcp.Tool{
			"srv": {
				{Name: "dup", Description: "first"},
				{Name: "dup", Description: "second"},
			},
		},
	}
	b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("srv")})

	handles := b.Tools(t.Context())

	require.Len(t, handles, 1)
	require.Equal(t, "first", handles["srv_dup"].Description)
}

func TestBridge_ToolsCollisionDeterministicAcrossServers(t *testing.T) {
	t.Parallel()

	// Servers 'a' (tool 'b_c') and 'a_b' (tool 'c') both produce the key
	// 'a_b_c'. The lexicographically first server id must win no matter
	// which discovery goroutine finishes first.
	for name, delayed := range map[string]string{
		"slower first server":  "a",
		"slower second server": "a_b",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			conns := &fakeConns{
				tools: map[string][]mcp.Tool{
					"a":   {{Name: "b_c"}},
					"a_b": {{Name: "c"}},
				},
				listDelay: map[string]time.Duration{delayed: 50 * time.Millisecond},
			}
			b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("a", "a_b")})

			handles := b.Tools(t.Context())

			require.Len(t, handles, 1)
			require.Equal(t, "a", handles["a_b_c"].ServerID)
			require.Equal(t, "b_c", handles["a_b_c"].ToolName)
		})
	}
}

func TestBridge_Handle(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{tools: map[string][]mcp.Tool{"fs": {{Name: "read"}}}}
	b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("fs")})

	handle, err := b.Handle(t.Context(), "fs_read")
	require.NoError(t, err)
	require.Equal(t, "fs_read", handle.Key)

	_, err = b.Handle(t.Context(), "fs_missing")
	require.ErrorIs(t, err, hub.ErrToolNotFound)
}

func TestToolHandle_InvokeSuccess(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools: map[string][]mcp.Tool{"fs": {{
			Name: "read_file",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{"path": map[string]any{"type": "string"}},
				Required:   []string{"path"},
			},
		}}},
		results: map[string]*mcp.CallToolResult{"fs": {
			Content: []mcp.Content{
				mcp.TextContent{Type: "text", Text: "line one"},
				mcp.TextContent{Type: "text", Text: "line two"},
			},
		}},
	}
	health := &fakeHealth{}
	b := newTestBridge(conns, health, &fakeStore{enabled: enabledConfigs("fs")})

	handle := b.Tools(t.Context())["fs_read_file"]
	require.NotNil(t, handle)

	out, err := handle.Invoke(t.Context(), map[string]any{"path": "/tmp/x"})
	require.NoError(t, err)
	require.Equal(t, "line one\nline two", out)
	require.Equal(t, []string{"fs/read_file"}, health.successes)
	require.Equal(t, "read_file", conns.lastCall.Name)
}

func TestToolHandle_InvokeValidation(t *testing.T) {
	t.Parallel()

	schema := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"path":  map[string]any{"type": "string"},
			"depth": map[string]any{"type": "number"},
			"all":   map[string]any{"type": "boolean"},
			"globs": map[string]any{"type": "array"},
			"extra": map[string]any{"type": "custom-thing"},
		},
		Required: []string{"path"},
	}

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name: "all kinds accepted",
			args: map[string]any{
				"path":  "/tmp",
				"depth": float64(2),
				"all":   true,
				"globs": []any{"*.go"},
				"extra": map[string]any{"anything": "goes"},
			},
		},
		{
			name:    "missing required",
			args:    map[string]any{"depth": float64(1)},
			wantErr: "missing required argument 'path'",
		},
		{
			name:    "wrong string",
			args:    map[string]any{"path": 42},
			wantErr: "must be a string",
		},
		{
			name:    "wrong number",
			args:    map[string]any{"path": "/tmp", "depth": "deep"},
			wantErr: "must be a number",
		},
		{
			name:    "wrong boolean",
			args:    map[string]any{"path": "/tmp", "all": "yes"},
			wantErr: "must be a boolean",
		},
		{
			name:    "wrong array",
			args:    map[string]any{"path": "/tmp", "globs": "*.go"},
			wantErr: "must be an array",
		},
		{
			name: "undeclared argument passes through",
			args: map[string]any{"path": "/tmp", "surprise": struct{}{}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			conns := &fakeConns{
				tools:   map[string][]mcp.Tool{"fs": {{Name: "list", InputSchema: schema}}},
				results: map[string]*mcp.CallToolResult{"fs": {Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "ok"}}}},
			}
			b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("fs")})
			handle := b.Tools(t.Context())["fs_list"]
			require.NotNil(t, handle)

			_, err := handle.Invoke(t.Context(), tc.args)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, hub.ErrBadRequest)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestToolHandle_InvokeTransportFailureRecordsError(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools:   map[string][]mcp.Tool{"fs": {{Name: "read"}}},
		callErr: map[string]error{"fs": fmt.Errorf("%w: boom", hub.ErrToolExecutionFailed)},
	}
	health := &fakeHealth{}
	b := newTestBridge(conns, health, &fakeStore{enabled: enabledConfigs("fs")})
	handle := b.Tools(t.Context())["fs_read"]

	_, err := handle.Invoke(t.Context(), nil)
	require.ErrorIs(t, err, hub.ErrToolExecutionFailed)
	require.Equal(t, []string{"fs/read"}, health.errors)
	require.Empty(t, health.successes)
}

func TestToolHandle_InvokeToolErrorResult(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools: map[string][]mcp.Tool{"fs": {{Name: "read"}}},
		results: map[string]*mcp.CallToolResult{"fs": {
			IsError: true,
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "file not found"}},
		}},
	}
	health := &fakeHealth{}
	b := newTestBridge(conns, health, &fakeStore{enabled: enabledConfigs("fs")})
	handle := b.Tools(t.Context())["fs_read"]

	_, err := handle.Invoke(t.Context(), nil)
	require.ErrorIs(t, err, hub.ErrToolExecutionFailed)
	require.ErrorContains(t, err, "file not found")
	require.Equal(t, []string{"fs/read"}, health.errors)
}

func TestToolHandle_InvokeNotConnectedDistinct(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{tools: map[string][]mcp.Tool{"fs": {{Name: "read"}}}}
	health := &fakeHealth{}
	b := newTestBridge(conns, health, &fakeStore{enabled: enabledConfigs("fs")})
	handle := b.Tools(t.Context())["fs_read"]
	require.NotNil(t, handle)

	// The server drops between discovery and invocation.
	require.NoError(t, conns.Disconnect("fs"))

	_, err := handle.Invoke(t.Context(), nil)
	require.ErrorIs(t, err, hub.ErrNotConnected)
	require.NotErrorIs(t, err, hub.ErrToolExecutionFailed)
}

func TestFlattenContent(t *testing.T) {
	t.Parallel()

	out := flattenContent([]mcp.Content{
		mcp.TextContent{Type: "text", Text: "hello"},
		mcp.ImageContent{Type: "image", MIMEType: "image/png"},
		mcp.EmbeddedResource{Type: "resource"},
	})

	require.Equal(t, "hello\n[image: image/png]\n[embedded resource]", out)
}

func TestToolHandle_InvokeEmptyContentFallsBackToJSON(t *testing.T) {
	t.Parallel()

	conns := &fakeConns{
		tools:   map[string][]mcp.Tool{"fs": {{Name: "touch"}}},
		results: map[string]*mcp.CallToolResult{"fs": {Content: []mcp.Content{}}},
	}
	b := newTestBridge(conns, &fakeHealth{}, &fakeStore{enabled: enabledConfigs("fs")})
	handle := b.Tools(t.Context())["fs_touch"]

	out, err := handle.Invoke(t.Context(), nil)
	require.NoError(t, err)
	require.Contains(t, out, "content")
}
