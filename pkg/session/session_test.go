package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointConfigDirAt redirects os.UserConfigDir into a temp dir.
func pointConfigDirAt(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("config dir override not supported on windows")
	}

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	return dir
}

func TestLoad_NoSessionSaved(t *testing.T) {
	pointConfigDirAt(t)

	token, err := Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSaveLoadClear(t *testing.T) {
	pointConfigDirAt(t)

	require.NoError(t, Save("abc123"))

	token, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	// Save replaces the slot.
	require.NoError(t, Save("def456"))

	token, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "def456", token)

	require.NoError(t, Clear())

	token, err = Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestClear_Idempotent(t *testing.T) {
	pointConfigDirAt(t)

	require.NoError(t, Clear())
	require.NoError(t, Clear())
}

func TestSave_FilePermissions(t *testing.T) {
	pointConfigDirAt(t)

	require.NoError(t, Save("abc123"))

	path, err := Path()
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_TrimsWhitespace(t *testing.T) {
	pointConfigDirAt(t)

	path, err := Path()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"token": "  abc123  "}`), 0o600))

	token, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestLoad_CorruptFile(t *testing.T) {
	pointConfigDirAt(t)

	path, err := Path()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing session file")
}
