package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteScript(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		name := "direct"
		if atomic {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "import_legacy.sql")

			require.NoError(t, WriteScript(path, "A;\nB;", atomic))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "A;\nB;", string(got), "no trailing newline")
		})
	}
}

func TestWriteScript_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sql")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer"), 0o644))

	require.NoError(t, WriteScript(path, "fresh;", true))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh;", string(got))
}

func TestWriteScript_EmptyScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sql")
	require.NoError(t, WriteScript(path, "", true))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteScript_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteScript(filepath.Join(dir, "out.sql"), "x;", true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.sql", entries[0].Name())
}

func TestWriteScript_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.sql")

	assert.Error(t, WriteScript(path, "x;", true))
	assert.Error(t, WriteScript(path, "x;", false))
}
