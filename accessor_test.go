package objfs_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/objfs"
	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/memory"
)

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("metadata is cached", func(t *testing.T) {
		drv, backend := newTestDriver(t, objfs.Options{})
		seed(t, backend, "a.txt")

		for i := 0; i < 3; i++ {
			obj, found, err := drv.Fetch(ctx, "/a.txt", objfs.ModeMetadata)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "a.txt", obj.Name)
			assert.Nil(t, obj.Content)
		}
		assert.Equal(t, 1, backend.Calls(memory.OpHead))
	})

	t.Run("full record carries content", func(t *testing.T) {
		drv, backend := newTestDriver(t, objfs.Options{})
		seed(t, backend, "a.txt")

		for i := 0; i < 2; i++ {
			obj, found, err := drv.Fetch(ctx, "a.txt", objfs.ModeFull)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte("content of a.txt"), obj.Content)
		}
		assert.Equal(t, 1, backend.Calls(memory.OpGet))
		assert.Equal(t, 0, backend.Calls(memory.OpHead))
	})

	t.Run("absence is not an error and not cached", func(t *testing.T) {
		drv, backend := newTestDriver(t, objfs.Options{})

		for i := 0; i < 2; i++ {
			obj, found, err := drv.Fetch(ctx, "missing.txt", objfs.ModeMetadata)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, obj)
		}
		assert.Equal(t, 2, backend.Calls(memory.OpHead))
	})

	t.Run("backend failure is surfaced", func(t *testing.T) {
		drv, backend := newTestDriver(t, objfs.Options{})
		seed(t, backend, "a.txt")
		backend.Fail(memory.OpHead, "a.txt", errors.New(errors.CodeNetwork, "connection reset"))

		_, found, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
		require.Error(t, err)
		assert.False(t, found)
		assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))
		assert.True(t, errors.IsRetryable(err))
	})

	t.Run("root is synthetic", func(t *testing.T) {
		drv, backend := newTestDriver(t, objfs.Options{})

		obj, found, err := drv.Fetch(ctx, "/", objfs.ModeMetadata)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, core.IsDirectory(obj))
		assert.Equal(t, 0, backend.Calls(memory.OpHead))
	})

	t.Run("cached records are copies", func(t *testing.T) {
		drv, backend := newTestDriver(t, objfs.Options{})
		seed(t, backend, "a.txt")

		obj, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
		require.NoError(t, err)
		obj.ContentType = "mutated"

		again, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
		require.NoError(t, err)
		assert.Equal(t, "text/plain", again.ContentType)
	})
}

func TestMutationInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{})
	seed(t, backend, "a.txt")

	before, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
	require.NoError(t, err)
	full, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeFull)
	require.NoError(t, err)
	require.Equal(t, []byte("content of a.txt"), full.Content)

	_, err = drv.SetContents(ctx, "a.txt", []byte("v2"))
	require.NoError(t, err)

	after, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
	require.NoError(t, err)
	assert.NotEqual(t, before.Headers[memory.VersionHeader], after.Headers[memory.VersionHeader])
	assert.Equal(t, backend.Version("a.txt"), mustVersion(t, after))

	content, err := drv.ReadContent(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), content)
}

func TestExternalWritesAreServedFromCache(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{})
	seed(t, backend, "a.txt")

	first, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
	require.NoError(t, err)

	backend.Touch("a.txt", []byte("changed elsewhere"))

	second, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
	require.NoError(t, err)
	assert.Equal(t, first.Headers[memory.VersionHeader], second.Headers[memory.VersionHeader])

	require.NoError(t, drv.FlushCache(ctx))
	third, _, err := drv.Fetch(ctx, "a.txt", objfs.ModeMetadata)
	require.NoError(t, err)
	assert.Equal(t, backend.Version("a.txt"), mustVersion(t, third))
}

func TestExistence(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{})
	seed(t, backend, "docs/", "docs/a.txt", "implicit/b.txt")
	require.NoError(t, backend.PutObject(ctx, "typed", bytes.NewReader(nil), core.PutOptions{ContentType: core.DirectoryContentType}))

	tests := []struct {
		name   string
		fn     func(context.Context, string) (bool, error)
		id     string
		expect bool
	}{
		{"file exists", drv.FileExists, "docs/a.txt", true},
		{"file is not a folder", drv.FolderExists, "docs/a.txt", false},
		{"marker is a folder", drv.FolderExists, "docs/", true},
		{"folder without slash", drv.FolderExists, "docs", true},
		{"marker is not a file", drv.FileExists, "docs/", false},
		{"typed marker is not a file", drv.FileExists, "typed", false},
		{"root is a folder", drv.FolderExists, "/", true},
		{"root is not a file", drv.FileExists, "/", false},
		{"implicit folder hidden by default", drv.FolderExists, "implicit/", false},
		{"missing file", drv.FileExists, "nope.txt", false},
		{"exists", drv.Exists, "docs/a.txt", true},
		{"missing", drv.Exists, "nope.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestImplicitFolders(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{ImplicitFolders: true})
	seed(t, backend, "implicit/deep/b.txt")

	ok, err := drv.FolderExists(ctx, "implicit/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = drv.FolderExists(ctx, "implicit/deep")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = drv.FolderExists(ctx, "empty/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInFolderHelpers(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{})
	seed(t, backend, "docs/", "docs/sub/", "docs/a.txt")

	ok, err := drv.FileExistsInFolder(ctx, "a.txt", "docs/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = drv.FolderExistsInFolder(ctx, "sub", "docs/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = drv.FolderExistsInFolder(ctx, "a.txt", "docs/")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = drv.IsWithin(ctx, "docs/", "docs/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = drv.IsWithin(ctx, "docs/", "docs/missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = drv.IsWithin(ctx, "other/", "docs/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileInfo(t *testing.T) {
	ctx := context.Background()
	drv, backend := newTestDriver(t, objfs.Options{StorageID: "main"})
	seed(t, backend, "docs/a.txt")

	info, err := drv.FileInfo(ctx, "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name)
	assert.Equal(t, "docs/a.txt", info.Identifier)
	assert.Equal(t, int64(len("content of docs/a.txt")), info.Size)
	assert.Equal(t, "text/plain", info.MimeType)
	assert.Equal(t, "main", info.StorageID)
	// sha1("docs/a.txt") and sha1("docs/")
	assert.Len(t, info.IdentifierHash, 40)
	assert.Len(t, info.FolderHash, 40)
	assert.NotEqual(t, info.IdentifierHash, info.FolderHash)

	_, err = drv.FileInfo(ctx, "docs/missing.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrNotExist))
}

func TestReadContentMissing(t *testing.T) {
	drv, _ := newTestDriver(t, objfs.Options{})
	_, err := drv.ReadContent(context.Background(), "nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func mustVersion(t *testing.T, obj *core.Object) int64 {
	t.Helper()
	var v int64
	for _, c := range obj.Headers[memory.VersionHeader] {
		require.True(t, c >= '0' && c <= '9')
		v = v*10 + int64(c-'0')
	}
	return v
}
