package runtime

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestIsPackageRunner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    bool
	}{
		{command: "npx", want: true},
		{command: "uvx", want: true},
		{command: "uv", want: true},
		{command: "python", want: false},
		{command: "node", want: false},
		{command: "my-server", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.command, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, IsPackageRunner(tc.command))
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("PATH lookup wins", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(hclog.NewNullLogger(), func(file string) (string, error) {
			return "/resolved/" + file, nil
		})

		path, err := r.Resolve("npx")
		require.NoError(t, err)
		require.Equal(t, "/resolved/npx", path)
	})

	t.Run("explicit path returned untouched", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(hclog.NewNullLogger(), func(string) (string, error) {
			return "", fmt.Errorf("should not be called")
		})

		path, err := r.Resolve("/usr/local/bin/custom-server")
		require.NoError(t, err)
		require.Equal(t, "/usr/local/bin/custom-server", path)
	})

	t.Run("missing executable errors with command name", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(hclog.NewNullLogger(), func(file string) (string, error) {
			return "", fmt.Errorf("not found")
		})

		_, err := r.Resolve("definitely-not-installed-xyz")
		require.Error(t, err)
		require.Contains(t, err.Error(), "definitely-not-installed-xyz")
	})
}

func TestResolver_Environ(t *testing.T) {
	t.Parallel()

	// lookPath unused by Environ.
	r := NewResolver(hclog.NewNullLogger(), func(file string) (string, error) {
		return "", fmt.Errorf("not found")
	})

	t.Run("overrides win except PATH", func(t *testing.T) {
		env := r.Environ(map[string]string{
			"MY_API_KEY": "secret",
			"PATH":       "/attacker/bin",
		})

		envMap := make(map[string]string, len(env))
		for _, e := range env {
			parts := strings.SplitN(e, "=", 2)
			require.Len(t, parts, 2)
			envMap[parts[0]] = parts[1]
		}

		require.Equal(t, "secret", envMap["MY_API_KEY"])
		require.NotEqual(t, "/attacker/bin", envMap["PATH"])
		require.NotEmpty(t, envMap["PATH"])
	})

	t.Run("augmented PATH has no duplicates", func(t *testing.T) {
		env := r.Environ(nil)

		var path string
		for _, e := range env {
			if strings.HasPrefix(e, "PATH=") {
				path = strings.TrimPrefix(e, "PATH=")
			}
		}
		require.NotEmpty(t, path)

		seen := make(map[string]int)
		for _, dir := range filepath.SplitList(path) {
			seen[dir]++
			require.Equal(t, 1, seen[dir], "duplicate PATH entry: %s", dir)
		}
	})
}
