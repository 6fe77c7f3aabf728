package security

// Static rule data for the command security validator.
// These sets are deliberately hardcoded: the validator must produce identical
// verdicts for identical inputs regardless of network or registry state.

// denyListed maps categorically dangerous executables to the category used in
// rejection messages. Matching is performed on the lowercased basename of the
// command, so '/bin/bash' and 'bash' are treated identically.
var denyListed = map[string]string{
	// Shell interpreters.
	"sh":             "shell interpreter",
	"bash":           "shell interpreter",
	"zsh":            "shell interpreter",
	"fish":           "shell interpreter",
	"dash":           "shell interpreter",
	"ksh":            "shell interpreter",
	"csh":            "shell interpreter",
	"tcsh":           "shell interpreter",
	"cmd":            "shell interpreter",
	"powershell":     "shell interpreter",
	"pwsh":           "shell interpreter",

	// Destructive filesystem tools.
	"rm":     "destructive filesystem tool",
	"rmdir":  "destructive filesystem tool",
	"del":    "destructive filesystem tool",
	"format": "destructive filesystem tool",
	"mkfs":   "destructive filesystem tool",
	"dd":     "destructive filesystem tool",
	"shred":  "destructive filesystem tool",

	// Network transfer tools.
	"curl":   "network transfer tool",
	"wget":   "network transfer tool",
	"nc":     "network transfer tool",
	"ncat":   "network transfer tool",
	"netcat": "network transfer tool",
	"telnet": "network transfer tool",

	// Process and system control tools.
	"kill":      "process control tool",
	"killall":   "process control tool",
	"pkill":     "process control tool",
	"shutdown":  "system control tool",
	"reboot":    "system control tool",
	"halt":      "system control tool",
	"init":      "system control tool",
	"systemctl": "system control tool",
	"launchctl": "system control tool",

	// Privilege escalation tools.
	"sudo":   "privilege escalation tool",
	"su":     "privilege escalation tool",
	"doas":   "privilege escalation tool",
	"runas":  "privilege escalation tool",
	"pkexec": "privilege escalation tool",
}

// npxSafeFlags are recognized no-risk npx flags skipped when extracting the
// package name.
var npxSafeFlags = map[string]struct{}{
	"-y":               {},
	"--yes":            {},
	"-q":               {},
	"--quiet":          {},
	"--verbose":        {},
	"--no":             {},
	"--no-install":     {},
	"--prefer-online":  {},
	"--prefer-offline": {},
}

// npxCodeExecFlags cause immediate rejection anywhere in an npx argument list.
var npxCodeExecFlags = map[string]struct{}{
	"-e":                    {},
	"--eval":                {},
	"-c":                    {},
	"--call":                {},
	"-p":                    {},
	"--print":               {},
	"--shell-auto-fallback": {},
}

// trustedNamespacePrefix is the package namespace accepted without an exact
// whitelist entry in whitelist mode.
const trustedNamespacePrefix = "@modelcontextprotocol/"

// verifiedPackages is the curated allow-list consulted in whitelist mode for
// packages outside the trusted namespace.
var verifiedPackages = map[string]struct{}{
	"@playwright/mcp":             {},
	"@notionhq/notion-mcp-server": {},
	"firecrawl-mcp":               {},
	"tavily-mcp":                  {},
	"mcp-server-sqlite-npx":       {},
	"graphlit-mcp-server":         {},
}

// dangerousCodePatterns are substrings rejected inside uvx/python arguments
// because they indicate embedded code execution.
var dangerousCodePatterns = []string{
	"import os",
	"os.system",
	"subprocess",
	"eval(",
	"exec(",
	"__import__",
}

// uvDeniedSubcommands are uv package-management subcommand phrases that must
// not be reachable from a server launch.
var uvDeniedSubcommands = map[string]struct{}{
	"pip install":    {},
	"pip uninstall":  {},
	"tool install":   {},
	"tool uninstall": {},
	"self update":    {},
	"cache clear":    {},
	"cache prune":    {},
	"add":            {},
	"remove":         {},
	"venv":           {},
}

// pythonDangerousModules are modules rejected after 'python -m'.
var pythonDangerousModules = map[string]struct{}{
	"pip":          {},
	"pip3":         {},
	"easy_install": {},
	"ensurepip":    {},
	"site":         {},
	"venv":         {},
	"virtualenv":   {},
}

// nodeBlockedFlags are node flags that evaluate, print, or preload code.
var nodeBlockedFlags = map[string]struct{}{
	"-e":            {},
	"--eval":        {},
	"-p":            {},
	"--print":       {},
	"-r":            {},
	"--require":     {},
	"-i":            {},
	"--interactive": {},
}
