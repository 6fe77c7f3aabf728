package runtime

// Runtime represents the type of runtime an MCP server can be run under.
type Runtime string

const (
	// NPX represents the 'npx' Node package runner (Node Package Execute) for NodeJS packages.
	NPX Runtime = "npx"

	// UVX represents the 'uvx' UV runner for Python packages.
	UVX Runtime = "uvx"

	// UV represents the 'uv' project runner for Python packages.
	UV Runtime = "uv"

	Python Runtime = "python"

	Node Runtime = "node"
)

// IsPackageRunner reports whether a command resolves packages from a remote
// registry at launch time (and therefore benefits from binary resolution and
// PATH augmentation).
func IsPackageRunner(command string) bool {
	switch Runtime(command) {
	case NPX, UVX, UV:
		return true
	default:
		return false
	}
}
