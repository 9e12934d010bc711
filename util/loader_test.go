package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.xml", "c.XML", "notes.txt", "image.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xml"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested.xml", "d.xml"), []byte("x"), 0o600))

	paths, err := ListFiles(dir, ".xml")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.xml"),
		filepath.Join(dir, "b.xml"),
		filepath.Join(dir, "c.XML"),
	}, paths)
}

func TestListFilesMultipleExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"clip.mp4", "clip.avi", "clip.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	paths, err := ListFiles(dir, ".mp4", ".avi")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestListFilesMissingDirectory(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"), ".xml")
	assert.Error(t, err)
}

func TestListFilesEmpty(t *testing.T) {
	paths, err := ListFiles(t.TempDir(), ".xml")
	require.NoError(t, err)
	assert.Empty(t, paths)
}
