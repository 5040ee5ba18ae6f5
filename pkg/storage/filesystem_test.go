package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRelPath(t *testing.T) {
	assert.True(t, SafeRelPath("activity-blogs/pic.png"))
	assert.True(t, SafeRelPath("pic.png"))
	assert.False(t, SafeRelPath("../etc/passwd"))
	assert.False(t, SafeRelPath("activity-blogs/../../etc/passwd"))
	assert.False(t, SafeRelPath(`activity-blogs\pic.png`))
	assert.False(t, SafeRelPath("/etc/passwd"))
}

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	written, err := store.SaveStream("activity-blogs/pic.png", strings.NewReader("pngdata"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), written)

	file, info, err := store.Open("activity-blogs/pic.png")
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	assert.Equal(t, int64(7), info.Size())
}

func TestLocalStorageRejectsEscape(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("../escape.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsafePath)

	_, _, err = store.Open(`..\..\escape.txt`)
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestLocalStorageDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.SaveStream("pic.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete("pic.png"))

	_, statErr := os.Stat(filepath.Join(dir, "pic.png"))
	assert.True(t, os.IsNotExist(statErr))

	// Deleting a missing file is not an error.
	assert.NoError(t, store.Delete("pic.png"))
}

func TestContentTypeByExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeByExt("a.jpg"))
	assert.Equal(t, "image/jpeg", ContentTypeByExt("a.JPEG"))
	assert.Equal(t, "image/png", ContentTypeByExt("a.png"))
	assert.Equal(t, "image/gif", ContentTypeByExt("a.gif"))
	assert.Equal(t, "image/webp", ContentTypeByExt("a.webp"))
	assert.Equal(t, "image/svg+xml", ContentTypeByExt("a.svg"))
	assert.Equal(t, "application/octet-stream", ContentTypeByExt("a.bin"))
	assert.Equal(t, "application/octet-stream", ContentTypeByExt("noext"))
}
