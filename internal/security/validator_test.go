package security

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	return NewValidator(hclog.NewNullLogger())
}

func TestValidate_DenyListRejectsRegardlessOfArgs(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{name: "bash with destructive args", command: "bash", args: []string{"-c", "rm -rf /"}},
		{name: "bash with no args", command: "bash", args: nil},
		{name: "bash by absolute path", command: "/bin/bash", args: []string{"--version"}},
		{name: "powershell on windows", command: "powershell.exe", args: []string{"-File", "x.ps1"}},
		{name: "rm", command: "rm", args: []string{"-rf", "/tmp/x"}},
		{name: "curl", command: "curl", args: []string{"https://example.com"}},
		{name: "sudo", command: "sudo", args: []string{"npx", "-y", "safe-pkg"}},
		{name: "kill", command: "kill", args: []string{"-9", "1"}},
		{name: "dd", command: "dd", args: []string{"if=/dev/zero"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for _, mode := range []Mode{ModeRuntime, ModeWhitelist} {
				result := v.Validate(tc.command, tc.args, mode)
				require.False(t, result.Allowed, "mode %s should reject", mode)
				require.NotEmpty(t, result.Reason)
				require.Contains(t, result.Reason, normalizeCommand(tc.command))
			}
		})
	}
}

func TestValidate_Npx(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	tests := []struct {
		name        string
		args        []string
		mode        Mode
		wantAllowed bool
		wantPackage string
		wantReason  string
	}{
		{
			name:        "runtime mode accepts filesystem server",
			args:        []string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp"},
			mode:        ModeRuntime,
			wantAllowed: true,
			wantPackage: "@modelcontextprotocol/server-filesystem",
		},
		{
			name:        "whitelist mode accepts trusted namespace",
			args:        []string{"-y", "@modelcontextprotocol/server-memory"},
			mode:        ModeWhitelist,
			wantAllowed: true,
			wantPackage: "@modelcontextprotocol/server-memory",
		},
		{
			name:        "whitelist mode accepts trusted namespace with version",
			args:        []string{"-y", "@modelcontextprotocol/server-filesystem@1.2.3"},
			mode:        ModeWhitelist,
			wantAllowed: true,
			wantPackage: "@modelcontextprotocol/server-filesystem@1.2.3",
		},
		{
			name:        "whitelist mode accepts verified package",
			args:        []string{"-y", "firecrawl-mcp"},
			mode:        ModeWhitelist,
			wantAllowed: true,
			wantPackage: "firecrawl-mcp",
		},
		{
			name:        "whitelist mode rejects unknown package",
			args:        []string{"-y", "some-random-package"},
			mode:        ModeWhitelist,
			wantAllowed: false,
			wantReason:  "some-random-package",
		},
		{
			name:        "runtime mode accepts the same unknown package",
			args:        []string{"-y", "some-random-package"},
			mode:        ModeRuntime,
			wantAllowed: true,
			wantPackage: "some-random-package",
		},
		{
			name:        "eval flag rejected in any position",
			args:        []string{"-y", "safe-pkg", "-e", "process.exit(1)"},
			mode:        ModeRuntime,
			wantAllowed: false,
			wantReason:  "-e",
		},
		{
			name:        "call flag rejected",
			args:        []string{"--call", "something"},
			mode:        ModeRuntime,
			wantAllowed: false,
			wantReason:  "--call",
		},
		{
			name:        "print flag rejected",
			args:        []string{"-p", "console.log(1)", "some-pkg"},
			mode:        ModeRuntime,
			wantAllowed: false,
			wantReason:  "-p",
		},
		{
			name:        "long print flag rejected",
			args:        []string{"--print", "process.env", "some-pkg"},
			mode:        ModeRuntime,
			wantAllowed: false,
			wantReason:  "--print",
		},
		{
			name:        "shell auto fallback rejected",
			args:        []string{"--shell-auto-fallback"},
			mode:        ModeRuntime,
			wantAllowed: false,
			wantReason:  "--shell-auto-fallback",
		},
		{
			name:        "missing package rejected",
			args:        []string{"-y", "--quiet"},
			mode:        ModeRuntime,
			wantAllowed: false,
			wantReason:  "no package",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := v.Validate("npx", tc.args, tc.mode)
			require.Equal(t, tc.wantAllowed, result.Allowed)
			if tc.wantAllowed {
				require.Equal(t, tc.wantPackage, result.Package)
			} else {
				require.Contains(t, result.Reason, tc.wantReason)
			}
		})
	}
}

func TestValidate_Uv(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	tests := []struct {
		name        string
		command     string
		args        []string
		wantAllowed bool
		wantReason  string
	}{
		{name: "uvx plain package", command: "uvx", args: []string{"mcp-server-time"}, wantAllowed: true},
		{name: "uvx with version", command: "uvx", args: []string{"mcp-server-fetch==1.0"}, wantAllowed: true},
		{
			name:        "uvx dangerous pattern",
			command:     "uvx",
			args:        []string{"pkg", "--cmd", "__import__('os')"},
			wantAllowed: false,
			wantReason:  "__import__",
		},
		{
			name:        "uvx subprocess pattern",
			command:     "uvx",
			args:        []string{"subprocess.call(['rm'])"},
			wantAllowed: false,
			wantReason:  "subprocess",
		},
		{name: "uv run", command: "uv", args: []string{"run", "server.py"}, wantAllowed: true},
		{name: "uv tool run", command: "uv", args: []string{"tool", "run", "mcp-server-git"}, wantAllowed: true},
		{
			name:        "uv pip install",
			command:     "uv",
			args:        []string{"pip", "install", "anything"},
			wantAllowed: false,
			wantReason:  "pip install",
		},
		{
			name:        "uv tool install",
			command:     "uv",
			args:        []string{"tool", "install", "anything"},
			wantAllowed: false,
			wantReason:  "tool install",
		},
		{
			name:        "uv self update",
			command:     "uv",
			args:        []string{"self", "update"},
			wantAllowed: false,
			wantReason:  "self update",
		},
		{
			name:        "uv cache clear",
			command:     "uv",
			args:        []string{"cache", "clear"},
			wantAllowed: false,
			wantReason:  "cache clear",
		},
		{
			name:        "uv unknown subcommand",
			command:     "uv",
			args:        []string{"sync"},
			wantAllowed: false,
			wantReason:  "sync",
		},
		{
			name:        "uv without subcommand",
			command:     "uv",
			args:        nil,
			wantAllowed: false,
			wantReason:  "no subcommand",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := v.Validate(tc.command, tc.args, ModeRuntime)
			require.Equal(t, tc.wantAllowed, result.Allowed)
			if !tc.wantAllowed {
				require.Contains(t, result.Reason, tc.wantReason)
			}
		})
	}
}

func TestValidate_Python(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	tests := []struct {
		name        string
		command     string
		args        []string
		wantAllowed bool
		wantReason  string
	}{
		{name: "module launch", command: "python", args: []string{"-m", "mcp_server_git"}, wantAllowed: true},
		{name: "python3 module launch", command: "python3", args: []string{"-m", "my_server"}, wantAllowed: true},
		{name: "script launch", command: "python", args: []string{"server.py", "--port", "8080"}, wantAllowed: true},
		{name: "zipapp launch", command: "python", args: []string{"bundle.pyz"}, wantAllowed: true},
		{
			name:        "pip module blocked",
			command:     "python",
			args:        []string{"-m", "pip", "install", "x"},
			wantAllowed: false,
			wantReason:  "pip",
		},
		{
			name:        "ensurepip blocked",
			command:     "python3",
			args:        []string{"-m", "ensurepip"},
			wantAllowed: false,
			wantReason:  "ensurepip",
		},
		{
			name:        "venv blocked",
			command:     "python",
			args:        []string{"-m", "venv", "env"},
			wantAllowed: false,
			wantReason:  "venv",
		},
		{
			name:        "inline code blocked",
			command:     "python",
			args:        []string{"-c", "print(1)"},
			wantAllowed: false,
			wantReason:  "-c",
		},
		{
			name:        "eval in args blocked",
			command:     "python",
			args:        []string{"run.py; eval(input())"},
			wantAllowed: false,
			wantReason:  "eval(",
		},
		{
			name:        "neither module nor script",
			command:     "python",
			args:        []string{"--version"},
			wantAllowed: false,
			wantReason:  "-m <module>",
		},
		{
			name:        "bare interpreter",
			command:     "python",
			args:        nil,
			wantAllowed: false,
			wantReason:  "-m <module>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := v.Validate(tc.command, tc.args, ModeRuntime)
			require.Equal(t, tc.wantAllowed, result.Allowed)
			if !tc.wantAllowed {
				require.Contains(t, result.Reason, tc.wantReason)
			}
		})
	}
}

func TestValidate_Node(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	tests := []struct {
		name        string
		args        []string
		wantAllowed bool
		wantReason  string
	}{
		{name: "js script", args: []string{"server.js"}, wantAllowed: true},
		{name: "esm script", args: []string{"dist/index.mjs", "--stdio"}, wantAllowed: true},
		{name: "cjs script", args: []string{"build/main.cjs"}, wantAllowed: true},
		{name: "eval flag", args: []string{"-e", "require('fs')"}, wantAllowed: false, wantReason: "-e"},
		{name: "print flag", args: []string{"--print", "1+1"}, wantAllowed: false, wantReason: "--print"},
		{name: "inspect flag", args: []string{"--inspect=0.0.0.0:9229", "server.js"}, wantAllowed: false, wantReason: "--inspect"},
		{name: "require preload", args: []string{"-r", "evil", "server.js"}, wantAllowed: false, wantReason: "-r"},
		{name: "no script", args: []string{"--version"}, wantAllowed: false, wantReason: ".js"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := v.Validate("node", tc.args, ModeRuntime)
			require.Equal(t, tc.wantAllowed, result.Allowed)
			if !tc.wantAllowed {
				require.Contains(t, result.Reason, tc.wantReason)
			}
		})
	}
}

func TestValidate_CustomExecutableWarns(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	result := v.Validate("my-custom-server", []string{"--port", "9000"}, ModeRuntime)
	require.True(t, result.Allowed)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "my-custom-server")
}

func TestValidate_Deterministic(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t)

	args := []string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp"}
	first := v.Validate("npx", args, ModeWhitelist)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, v.Validate("npx", args, ModeWhitelist))
	}
}
