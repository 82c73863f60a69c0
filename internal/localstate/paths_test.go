package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirCreatesPrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".garmin_session")

	got, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestEnsureDirExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := EnsureDir("~/.fitsync")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".fitsync"), got)
}

func TestEnsureDirRejectsEmpty(t *testing.T) {
	_, err := EnsureDir("")
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(path, []byte("new contents"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new contents", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, Exists(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "absent", "f"), []byte("x"), 0o600)
	assert.Error(t, err)
	assert.False(t, Exists(filepath.Join(t.TempDir(), "absent")))
}
