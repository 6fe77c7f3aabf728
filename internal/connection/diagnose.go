package connection

import (
	"fmt"
	"strings"

	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/registry"
	"github.com/agentpad/mcphub/internal/runtime"
)

// diagnose turns a raw connect failure into an actionable message. The raw
// error text is always preserved so nothing is hidden by the translation.
func diagnose(cfg domain.ServerConfig, pkg string, err error, reg *registry.Registry) string {
	if err == nil {
		return ""
	}

	switch cfg.Transport {
	case domain.TransportHTTP, domain.TransportSSE:
		return diagnoseRemote(cfg, err)
	default:
		return diagnoseStdio(cfg, pkg, err, reg)
	}
}

func diagnoseStdio(cfg domain.ServerConfig, pkg string, err error, reg *registry.Registry) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "executable file not found"),
		strings.Contains(lower, "no such file or directory"):
		return fmt.Sprintf(
			"command '%s' is not installed (%s): %s",
			cfg.Command, installHint(cfg.Command), msg,
		)
	case strings.Contains(lower, "permission denied"):
		return fmt.Sprintf("command '%s' is not executable, check file permissions: %s", cfg.Command, msg)
	case abruptExit(lower):
		if runtime.IsPackageRunner(cfg.Command) && pkg != "" && reg != nil {
			return diagnosePackage(pkg, reg, msg)
		}
		return fmt.Sprintf("server process exited before completing the handshake: %s", msg)
	case strings.Contains(lower, "context deadline exceeded"):
		return fmt.Sprintf("server did not complete the handshake in time: %s", msg)
	default:
		return msg
	}
}

// diagnosePackage consults the registry when a package-runner process died
// right after launch, which usually means the package itself is the problem.
func diagnosePackage(pkg string, reg *registry.Registry, msg string) string {
	validation := reg.ValidatePackage(pkg)
	switch validation.Status {
	case registry.PackageDeprecated:
		if validation.Alternative != "" {
			return fmt.Sprintf(
				"package '%s' is deprecated, use '%s' instead: %s",
				pkg, validation.Alternative, msg,
			)
		}
		return fmt.Sprintf("package '%s' is deprecated and no longer maintained: %s", pkg, msg)
	case registry.PackageUnknown:
		return fmt.Sprintf(
			"package '%s' is not in the known server registry, check the package name: %s",
			pkg, msg,
		)
	default:
		return fmt.Sprintf("package '%s' failed to start, its installation may have failed: %s", pkg, msg)
	}
}

func diagnoseRemote(cfg domain.ServerConfig, err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no such host"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "network is unreachable"):
		return fmt.Sprintf("cannot reach '%s', check the URL and that the server is running: %s", cfg.BaseURL, msg)
	case strings.Contains(lower, "401"), strings.Contains(lower, "403"):
		return fmt.Sprintf("server at '%s' rejected the credentials, check the configured headers: %s", cfg.BaseURL, msg)
	case strings.Contains(lower, "404"):
		return fmt.Sprintf("no MCP endpoint at '%s', check the URL path: %s", cfg.BaseURL, msg)
	case strings.Contains(lower, "context deadline exceeded"):
		return fmt.Sprintf("server at '%s' did not respond in time: %s", cfg.BaseURL, msg)
	default:
		return msg
	}
}

// abruptExit matches the ways a child process death surfaces through the
// stdio transport.
func abruptExit(lower string) bool {
	return strings.Contains(lower, "broken pipe") ||
		strings.Contains(lower, "file already closed") ||
		strings.Contains(lower, "exit status") ||
		strings.Contains(lower, "eof")
}

func installHint(command string) string {
	switch strings.ToLower(command) {
	case string(runtime.NPX), string(runtime.Node):
		return "install Node.js to provide it"
	case string(runtime.UVX), string(runtime.UV):
		return "install uv to provide it"
	case "python", "python3":
		return "install Python to provide it"
	default:
		return "install it or correct the command path"
	}
}
