package perms

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionConstants(t *testing.T) {
	t.Parallel()

	require.Equal(t, os.FileMode(0o644), RegularFile)
	require.Equal(t, os.FileMode(0o600), SecureFile)
	require.Equal(t, os.FileMode(0o755), RegularDir)
	require.Equal(t, os.FileMode(0o700), SecureDir)
}

func TestRegularFileOnDisk(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX permission bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("servers = []"), RegularFile))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, RegularFile, info.Mode().Perm())
}
