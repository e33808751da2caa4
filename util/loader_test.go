package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-speedcam/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame-10.jpg", "ten")
	touch(t, dir, "frame-2.png", "two")
	touch(t, dir, "frame-1.webp", "one")
	touch(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame-3.jpg"), 0o700))

	frames, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, []int{1, 2, 10}, []int{frames[0].Frame, frames[1].Frame, frames[2].Frame})
	assert.Equal(t, images.FormatWebP, frames[0].Format)
	assert.Equal(t, images.FormatPNG, frames[1].Format)
	assert.Equal(t, images.FormatJPEG, frames[2].Format)
	assert.Equal(t, []byte("ten"), frames[2].Data)
	assert.Equal(t, filepath.Join(dir, "frame-10.jpg"), frames[2].Path)
}

func TestLoadDirectoryImageFiles_Errors(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	touch(t, dir, "snapshot.jpg", "no number")
	_, err = LoadDirectoryImageFiles(dir)
	assert.Error(t, err)
}
