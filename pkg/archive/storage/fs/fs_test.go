package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivehub/archive-hub/pkg/archive/storage/fs"
)

func newBackend(t *testing.T, urlPrefix string) *fs.Backend {
	t.Helper()
	backend, err := fs.New(fs.Config{
		BaseDir:   t.TempDir(),
		URLPrefix: urlPrefix,
	})
	require.NoError(t, err)
	return backend
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}

func TestUploadDownloadDelete(t *testing.T) {
	backend := newBackend(t, "")
	ctx := context.Background()

	err := backend.Upload(ctx, "nested/dir/test.txt", strings.NewReader("file body"))
	require.NoError(t, err)

	rc, err := backend.Download(ctx, "nested/dir/test.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "file body", string(data))

	require.NoError(t, backend.Delete(ctx, "nested/dir/test.txt"))
	_, err = backend.Download(ctx, "nested/dir/test.txt")
	assert.Error(t, err)
}

func TestDeleteCleansEmptyDirectories(t *testing.T) {
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{BaseDir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "a/b/c.txt", strings.NewReader("x")))
	require.NoError(t, backend.Delete(ctx, "a/b/c.txt"))

	_, err = os.Stat(filepath.Join(dir, "a"))
	assert.True(t, os.IsNotExist(err), "empty directories are removed")
	_, err = os.Stat(dir)
	assert.NoError(t, err, "the base directory stays")
}

func TestRejectsTraversalKeys(t *testing.T) {
	backend := newBackend(t, "")
	ctx := context.Background()

	err := backend.Upload(ctx, "../escape.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = backend.Download(ctx, "/etc/passwd")
	assert.Error(t, err)
}

func TestGetDownloadURL(t *testing.T) {
	backend := newBackend(t, "/api/v1/uploads/")

	url, err := backend.GetDownloadURL(context.Background(), "abc/file.epub", "My Book.epub")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/uploads/download/abc/file.epub?filename=My+Book.epub", url)

	url, err = backend.GetDownloadURL(context.Background(), "abc/file.epub", "")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/uploads/download/abc/file.epub", url)
}

func TestGetDownloadURLWithoutPrefix(t *testing.T) {
	backend := newBackend(t, "")
	_, err := backend.GetDownloadURL(context.Background(), "key", "f.txt")
	assert.Error(t, err)
}
