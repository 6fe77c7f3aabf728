package connection

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/registry"
)

func TestDiagnose(t *testing.T) {
	t.Parallel()

	reg := registry.Load(hclog.NewNullLogger(), "")

	tests := []struct {
		name string
		cfg  domain.ServerConfig
		pkg  string
		err  error
		want string
	}{
		{
			name: "missing runtime names the installer",
			cfg:  domain.ServerConfig{ID: "fs", Transport: domain.TransportStdio, Command: "npx"},
			err:  errors.New(`exec: "npx": executable file not found in $PATH`),
			want: "install Node.js",
		},
		{
			name: "missing uvx names uv",
			cfg:  domain.ServerConfig{ID: "fetch", Transport: domain.TransportStdio, Command: "uvx"},
			err:  errors.New("fork/exec /usr/bin/uvx: no such file or directory"),
			want: "install uv",
		},
		{
			name: "permission denied",
			cfg:  domain.ServerConfig{ID: "custom", Transport: domain.TransportStdio, Command: "./server"},
			err:  errors.New("fork/exec ./server: permission denied"),
			want: "not executable",
		},
		{
			name: "deprecated package suggests the alternative",
			cfg:  domain.ServerConfig{ID: "pup", Transport: domain.TransportStdio, Command: "npx"},
			pkg:  "@modelcontextprotocol/server-puppeteer",
			err:  errors.New("write |1: broken pipe"),
			want: "@playwright/mcp",
		},
		{
			name: "unknown package flags the name",
			cfg:  domain.ServerConfig{ID: "typo", Transport: domain.TransportStdio, Command: "npx"},
			pkg:  "@example/definitely-not-real",
			err:  errors.New("unexpected EOF"),
			want: "not in the known server registry",
		},
		{
			name: "abrupt exit without a package runner",
			cfg:  domain.ServerConfig{ID: "bin", Transport: domain.TransportStdio, Command: "./server"},
			err:  errors.New("exit status 1"),
			want: "exited before completing the handshake",
		},
		{
			name: "http connection refused",
			cfg:  domain.ServerConfig{ID: "remote", Transport: domain.TransportHTTP, BaseURL: "http://localhost:9000/mcp"},
			err:  errors.New("dial tcp 127.0.0.1:9000: connect: connection refused"),
			want: "cannot reach",
		},
		{
			name: "http auth rejection",
			cfg:  domain.ServerConfig{ID: "remote", Transport: domain.TransportHTTP, BaseURL: "https://api.example.com/mcp"},
			err:  errors.New("request failed with status 401 Unauthorized"),
			want: "rejected the credentials",
		},
		{
			name: "sse wrong path",
			cfg:  domain.ServerConfig{ID: "remote", Transport: domain.TransportSSE, BaseURL: "https://api.example.com/events"},
			err:  errors.New("request failed with status 404 Not Found"),
			want: "check the URL path",
		},
		{
			name: "handshake timeout",
			cfg:  domain.ServerConfig{ID: "slow", Transport: domain.TransportStdio, Command: "./server"},
			err:  errors.New("context deadline exceeded"),
			want: "did not complete the handshake in time",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := diagnose(tc.cfg, tc.pkg, tc.err, reg)
			require.Contains(t, got, tc.want)
			require.Contains(t, got, tc.err.Error(), "the raw error must be preserved")
		})
	}
}
