// Package runtime resolves the real executables behind package-runner
// launch commands and builds the augmented environment they are spawned with.
// GUI-launched desktop processes inherit a minimal PATH, so resolution cannot
// rely on the caller's shell profile.
package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Resolver locates launch executables and augments process environments.
// NewResolver should be used to create instances of Resolver.
type Resolver struct {
	logger hclog.Logger

	// lookPath is swappable for tests.
	lookPath func(file string) (string, error)
}

// NewResolver creates a resolver backed by the host filesystem.
func NewResolver(logger hclog.Logger, lookPath func(string) (string, error)) *Resolver {
	return &Resolver{
		logger:   logger.Named("runtime"),
		lookPath: lookPath,
	}
}

// wellKnownBinDirs are fixed install locations probed after PATH lookup, in
// order. Directories that don't exist are skipped.
func wellKnownBinDirs(home string) []string {
	return []string{
		"/usr/local/bin",
		"/opt/homebrew/bin",
		"/usr/bin",
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, ".volta", "bin"),
		filepath.Join(home, ".fnm"),
		filepath.Join(home, ".cargo", "bin"),
	}
}

// nvmVersionsDir holds per-version node installs; the bin dir of every
// installed version is probed.
func nvmVersionsDir(home string) string {
	return filepath.Join(home, ".nvm", "versions", "node")
}

// Resolve locates the real executable for a launch command.
// PATH lookup wins; otherwise fixed well-known install locations are probed.
// Commands given as explicit paths are returned untouched.
func (r *Resolver) Resolve(command string) (string, error) {
	if strings.ContainsRune(command, os.PathSeparator) {
		return command, nil
	}

	if path, err := r.lookPath(command); err == nil {
		r.logger.Debug("Resolved executable via PATH", "command", command, "path", path)
		return path, nil
	}

	home, _ := os.UserHomeDir()
	for _, dir := range r.probeDirs(home) {
		candidate := filepath.Join(dir, command)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			r.logger.Debug("Resolved executable via well-known location", "command", command, "path", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("executable '%s' not found in PATH or well-known install locations", command)
}

// probeDirs returns the existing well-known bin directories, including any
// per-version nvm install dirs.
func (r *Resolver) probeDirs(home string) []string {
	var dirs []string
	for _, dir := range wellKnownBinDirs(home) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}

	nvmDir := nvmVersionsDir(home)
	if versions, err := os.ReadDir(nvmDir); err == nil {
		for _, v := range versions {
			if !v.IsDir() {
				continue
			}
			bin := filepath.Join(nvmDir, v.Name(), "bin")
			if info, err := os.Stat(bin); err == nil && info.IsDir() {
				dirs = append(dirs, bin)
			}
		}
	}

	return dirs
}

// Environ builds the environment for a spawned server: the current process
// environment with overrides applied, except PATH, which is always the
// augmented value so resolved runtimes stay reachable. All other
// caller-supplied variables win on conflict.
func (r *Resolver) Environ(overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	for k, v := range overrides {
		if k == "PATH" {
			continue
		}
		envMap[k] = v
	}

	envMap["PATH"] = r.augmentedPath(envMap["PATH"])

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// augmentedPath appends existing well-known bin directories to base,
// de-duplicating entries while preserving order.
func (r *Resolver) augmentedPath(base string) string {
	home, _ := os.UserHomeDir()

	seen := make(map[string]struct{})
	var parts []string
	appendDir := func(dir string) {
		if dir == "" {
			return
		}
		if _, dup := seen[dir]; dup {
			return
		}
		seen[dir] = struct{}{}
		parts = append(parts, dir)
	}

	for _, dir := range filepath.SplitList(base) {
		appendDir(dir)
	}
	for _, dir := range r.probeDirs(home) {
		appendDir(dir)
	}

	return strings.Join(parts, string(os.PathListSeparator))
}
