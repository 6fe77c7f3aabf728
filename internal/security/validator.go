// Package security decides whether a declared server launch command is safe
// to spawn. Validation is a pure function of (command, args, mode): identical
// inputs always produce identical verdicts, and no I/O is performed.
package security

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const (
	// ModeRuntime is applied to every launch regardless of origin.
	// It blocks categorically dangerous commands and flags without requiring
	// pre-approval of the target package.
	ModeRuntime Mode = "runtime"

	// ModeWhitelist is applied to launches from implicitly-untrusted origins
	// (deep links, imported configuration). In addition to every runtime rule
	// it requires npx packages to be pre-approved.
	ModeWhitelist Mode = "whitelist"
)

// Mode selects the strictness of validation.
type Mode string

// Result is the verdict for a single launch command.
// A rejection names the offending token, flag, or package in Reason; callers
// must treat any rejection as "do not spawn".
type Result struct {
	Allowed  bool
	Reason   string
	Package  string
	Warnings []string
}

// Validator inspects untrusted server launch commands before they become
// child processes. NewValidator should be used to create instances.
type Validator struct {
	logger hclog.Logger
}

// NewValidator creates a validator. The logger only records verdicts; it never
// influences them.
func NewValidator(logger hclog.Logger) *Validator {
	return &Validator{
		logger: logger.Named("security"),
	}
}

// Validate inspects (command, args) under the given mode.
func (v *Validator) Validate(command string, args []string, mode Mode) Result {
	result := v.validate(command, args, mode)

	if result.Allowed {
		v.logger.Debug("Launch command validated", "command", command, "mode", mode, "package", result.Package)
		for _, w := range result.Warnings {
			v.logger.Warn("Launch command warning", "command", command, "warning", w)
		}
	} else {
		v.logger.Warn("Launch command rejected", "command", command, "mode", mode, "reason", result.Reason)
	}

	return result
}

func (v *Validator) validate(command string, args []string, mode Mode) Result {
	name := normalizeCommand(command)
	if name == "" {
		return reject("empty command")
	}

	if category, denied := denyListed[name]; denied {
		return reject(fmt.Sprintf("command '%s' is blocked: %s", name, category))
	}

	switch name {
	case "npx":
		return validateNpx(args, mode)
	case "uvx":
		return validateUvx(args)
	case "uv":
		return validateUv(args)
	case "python", "python3", "python2":
		return validatePython(args)
	case "node", "nodejs":
		return validateNode(args)
	default:
		return Result{
			Allowed:  true,
			Warnings: []string{fmt.Sprintf("custom executable '%s' is not recognized; it will run unsandboxed", name)},
		}
	}
}

// normalizeCommand reduces a command to a comparable token: lowercased
// basename with any Windows executable suffix removed.
func normalizeCommand(command string) string {
	name := strings.ToLower(filepath.Base(strings.TrimSpace(command)))
	name = strings.TrimSuffix(name, ".exe")
	return name
}

func validateNpx(args []string, mode Mode) Result {
	// Code-execution flags are rejected no matter where they appear.
	for _, arg := range args {
		flag := strings.ToLower(arg)
		if eq := strings.Index(flag, "="); eq != -1 {
			flag = flag[:eq]
		}
		if _, bad := npxCodeExecFlags[flag]; bad {
			return reject(fmt.Sprintf("npx flag '%s' allows arbitrary code execution", arg))
		}
	}

	pkg := extractNpxPackage(args)
	if pkg == "" {
		return reject("npx invocation has no package argument")
	}

	if mode == ModeWhitelist {
		base := stripPackageVersion(pkg)
		if _, ok := verifiedPackages[base]; !ok && !strings.HasPrefix(base, trustedNamespacePrefix) {
			return reject(fmt.Sprintf("package '%s' is not whitelisted for untrusted origins", pkg))
		}
	}

	return Result{Allowed: true, Package: pkg}
}

// extractNpxPackage returns the first argument that is not a recognized
// no-risk flag and not flag-shaped.
func extractNpxPackage(args []string) string {
	for _, arg := range args {
		if _, safe := npxSafeFlags[strings.ToLower(arg)]; safe {
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return arg
	}
	return ""
}

// stripPackageVersion removes a trailing @version, preserving scoped package
// prefixes such as @scope/name.
func stripPackageVersion(pkg string) string {
	if idx := strings.LastIndex(pkg, "@"); idx > 0 {
		return pkg[:idx]
	}
	return pkg
}

func validateUvx(args []string) Result {
	// uvx runs packages in ephemeral isolated environments, so only embedded
	// code patterns are checked.
	for _, arg := range args {
		lower := strings.ToLower(arg)
		for _, pattern := range dangerousCodePatterns {
			if strings.Contains(lower, pattern) {
				return reject(fmt.Sprintf("uvx argument contains dangerous code pattern '%s'", pattern))
			}
		}
	}

	return Result{Allowed: true, Package: firstPositional(args)}
}

func validateUv(args []string) Result {
	first := firstPositional(args)
	if first == "" {
		return reject("uv invocation has no subcommand")
	}

	second := secondPositional(args)
	phrase := first
	if second != "" {
		phrase = first + " " + second
	}

	if _, denied := uvDeniedSubcommands[first]; denied {
		return reject(fmt.Sprintf("uv subcommand '%s' manages packages and cannot launch a server", first))
	}
	if _, denied := uvDeniedSubcommands[phrase]; denied {
		return reject(fmt.Sprintf("uv subcommand '%s' manages packages and cannot launch a server", phrase))
	}

	if first == "run" || phrase == "tool run" {
		return Result{Allowed: true}
	}

	return reject(fmt.Sprintf("uv subcommand '%s' is not recognized as safe (expected 'run' or 'tool run')", first))
}

func validatePython(args []string) Result {
	for i, arg := range args {
		lower := strings.ToLower(arg)

		if lower == "-c" || lower == "--command" {
			return reject(fmt.Sprintf("python flag '%s' executes inline code", arg))
		}
		if strings.Contains(lower, "eval(") || strings.Contains(lower, "exec(") {
			return reject(fmt.Sprintf("python argument contains dangerous code pattern: %s", arg))
		}

		if lower == "-m" {
			if i+1 >= len(args) {
				return reject("python -m requires a module name")
			}
			module := strings.ToLower(args[i+1])
			if _, dangerous := pythonDangerousModules[module]; dangerous {
				return reject(fmt.Sprintf("python module '%s' is blocked", args[i+1]))
			}
			return Result{Allowed: true, Package: args[i+1]}
		}
	}

	for _, arg := range args {
		lower := strings.ToLower(arg)
		if strings.HasSuffix(lower, ".py") || strings.HasSuffix(lower, ".pyz") {
			return Result{Allowed: true, Package: arg}
		}
	}

	return reject("python invocation requires '-m <module>' or a .py/.pyz script path")
}

func validateNode(args []string) Result {
	for _, arg := range args {
		flag := strings.ToLower(arg)
		if eq := strings.Index(flag, "="); eq != -1 {
			flag = flag[:eq]
		}
		if _, blocked := nodeBlockedFlags[flag]; blocked {
			return reject(fmt.Sprintf("node flag '%s' evaluates or preloads code", arg))
		}
		if strings.HasPrefix(flag, "--inspect") {
			return reject(fmt.Sprintf("node flag '%s' enables the inspector", arg))
		}
	}

	for _, arg := range args {
		lower := strings.ToLower(arg)
		if strings.HasSuffix(lower, ".js") || strings.HasSuffix(lower, ".mjs") || strings.HasSuffix(lower, ".cjs") {
			return Result{Allowed: true, Package: arg}
		}
	}

	return reject("node invocation requires a .js/.mjs/.cjs script path")
}

func firstPositional(args []string) string {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return ""
}

func secondPositional(args []string) string {
	seen := false
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if seen {
			return arg
		}
		seen = true
	}
	return ""
}

func reject(reason string) Result {
	return Result{Allowed: false, Reason: reason}
}
