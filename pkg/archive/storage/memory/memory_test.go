package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivehub/archive-hub/pkg/archive/storage/memory"
)

func TestUploadDownloadDelete(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	err := backend.Upload(ctx, "docs/test.txt", strings.NewReader("stored bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Len())

	rc, err := backend.Download(ctx, "docs/test.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "stored bytes", string(data))

	require.NoError(t, backend.Delete(ctx, "docs/test.txt"))
	assert.Equal(t, 0, backend.Len())

	_, err = backend.Download(ctx, "docs/test.txt")
	assert.Error(t, err)
}

func TestDeleteMissingObject(t *testing.T) {
	backend := memory.New()
	err := backend.Delete(context.Background(), "missing")
	assert.Error(t, err)
}

func TestGetDownloadURLUnsupported(t *testing.T) {
	backend := memory.New()
	_, err := backend.GetDownloadURL(context.Background(), "any", "file.txt")
	assert.Error(t, err)
}

func TestUploadOverwrites(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key", strings.NewReader("first")))
	require.NoError(t, backend.Upload(ctx, "key", strings.NewReader("second")))
	assert.Equal(t, 1, backend.Len())

	rc, err := backend.Download(ctx, "key")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
