package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_WriteRead(t *testing.T) {
	s := NewFileStorage(0644)
	path := filepath.Join(t.TempDir(), "data_fld_maplink.bin")

	require.NoError(t, s.Write(path, []byte("first")))
	data, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)

	t.Run("overwrite replaces content", func(t *testing.T) {
		require.NoError(t, s.Write(path, []byte("second")))
		data, err := s.Read(path)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), data)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "data_fld_maplink.bin", entries[0].Name())
	})

	t.Run("permissions applied", func(t *testing.T) {
		other := filepath.Join(filepath.Dir(path), "private.bin")
		require.NoError(t, NewFileStorage(0600).Write(other, []byte("x")))
		info, err := os.Stat(other)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}

func TestFileStorage_ReadMissing(t *testing.T) {
	_, err := NewFileStorage(0644).Read(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFileStorage_WriteFailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(0644)

	// Renaming a file over a non-empty directory fails after the temp file is written.
	target := filepath.Join(dir, "out.bin")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0644))

	err := s.Write(target, []byte("data"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file %s left behind", e.Name())
	}
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTempPath(t *testing.T) {
	id := ksuid.New()
	path := TempPath(filepath.Join("maps", "link.yaml"), id)

	assert.Equal(t, "maps", filepath.Dir(path))
	assert.Equal(t, ".link.yaml."+id.String()+".tmp", filepath.Base(path))
	assert.NotEqual(t, path, TempPath(filepath.Join("maps", "link.yaml"), ksuid.New()))
}
