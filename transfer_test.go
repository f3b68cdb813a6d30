package objfs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/objfs"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/memory"
)

func TestCopyToLocal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	drv, backend := newTestDriver(t, objfs.Options{TempDir: dir, ChunkSize: 3})
	seed(t, backend, "docs/a.txt")

	local, err := drv.CopyToLocal(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(local))
	assert.True(t, strings.HasSuffix(local, ".txt"))

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "content of docs/a.txt", string(data))

	again, err := drv.CopyToLocal(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.NotEqual(t, local, again)
	assert.Equal(t, 2, backend.Calls(memory.OpGet), "always downloads")

	_, err = drv.CopyToLocal(ctx, "missing")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestAddFile(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{})
	seed(t, backend, "docs/", "dir/")

	local := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(local, []byte("<!DOCTYPE html><html><body>hi</body></html>"), 0o600))

	info, err := drv.AddFile(ctx, local, "docs/", "")
	require.NoError(t, err)
	assert.Equal(t, "docs/page.html", info.Identifier)
	assert.True(t, strings.HasPrefix(info.MimeType, "text/html"), info.MimeType)

	require.NoError(t, os.WriteFile(local, []byte("plain now"), 0o600))
	info, err = drv.AddFile(ctx, local, "docs/", "page.html")
	require.NoError(t, err)
	assert.Equal(t, int64(len("plain now")), info.Size, "existing object is overwritten")

	_, err = drv.AddFile(ctx, local, "/", "dir/")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = drv.AddFile(ctx, filepath.Join(t.TempDir(), "missing"), "docs/", "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReplaceFile(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{})
	seed(t, backend, "a.txt")

	local := filepath.Join(t.TempDir(), "new.bin")
	require.NoError(t, os.WriteFile(local, []byte("fresh"), 0o600))

	require.NoError(t, drv.ReplaceFile(ctx, "a.txt", local))
	content, err := drv.ReadContent(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), content)

	info, err := drv.FileInfo(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", info.MimeType)

	_, statErr := os.Stat(local)
	assert.NoError(t, statErr, "local file is left in place")

	err = drv.ReplaceFile(ctx, "missing", local)
	assert.Equal(t, errors.CodeNoSuchFile, errors.GetCode(err))
}

func TestCopyFolderFromStorage(t *testing.T) {
	ctx := context.Background()
	src, srcBackend := newTestDriver(t, objfs.Options{})
	seed(t, srcBackend, "media/", "media/a.txt", "media/sub/", "media/sub/b.txt", "media/implicit/c.txt")
	dst, dstBackend := newTestDriver(t, objfs.Options{})

	target, err := dst.CopyFolderFromStorage(ctx, src, "media/", "/", "imported")
	require.NoError(t, err)
	assert.Equal(t, "imported/", target)

	assert.Equal(t, []string{
		"imported/",
		"imported/a.txt",
		"imported/implicit/",
		"imported/implicit/c.txt",
		"imported/sub/",
		"imported/sub/b.txt",
	}, dstBackend.Keys())

	content, err := dst.ReadContent(ctx, "imported/sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "content of media/sub/b.txt", string(content))

	info, err := dst.FileInfo(ctx, "imported/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", info.MimeType)
}
