package swift

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ncw "github.com/ncw/swift/v2"
	"github.com/ncw/swift/v2/rs"
	"github.com/ncw/swift/v2/swifttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/objfs"
	"github.com/jmgilman/objfs/backendtest"
	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
)

var containerSeq atomic.Int64

// startServer runs an in-process Swift server for the test.
func startServer(t *testing.T) *swifttest.SwiftServer {
	t.Helper()
	srv, err := swifttest.NewSwiftServer("localhost")
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

// newBackend returns a backend on a fresh container of srv.
func newBackend(t *testing.T, srv *swifttest.SwiftServer, tempURLKey string) *Backend {
	t.Helper()
	b, err := New(Config{
		Container:  fmt.Sprintf("objfs-%d", containerSeq.Add(1)),
		TempURLKey: tempURLKey,
		DisableCDN: true,
		Connection: &rs.RsConnection{Connection: ncw.Connection{
			UserName: swifttest.TEST_ACCOUNT,
			ApiKey:   swifttest.TEST_ACCOUNT,
			AuthUrl:  srv.AuthURL,
		}},
	})
	require.NoError(t, err)
	require.NoError(t, b.EnsureContainer(context.Background()))
	return b
}

func TestConformance(t *testing.T) {
	srv := startServer(t)
	backendtest.TestSuite(t, func() core.Backend {
		return newBackend(t, srv, "")
	})
}

func TestEnsureContainer(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, startServer(t), "")

	_, _, err := b.conn.Container(ctx, b.Container())
	require.NoError(t, err)
	require.NoError(t, b.EnsureContainer(ctx), "existing container is left alone")
}

func TestBulkDeleteFallback(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, startServer(t), "")
	for _, k := range []string{"a.txt", "b.txt"} {
		require.NoError(t, b.PutObject(ctx, k, strings.NewReader(k), core.PutOptions{ContentType: "text/plain"}))
	}

	res, err := b.BulkDelete(ctx, []string{"a.txt", "b.txt", "missing.txt"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, 1, res.NotFound)
	assert.Empty(t, res.Errors)

	_, err = b.HeadObject(ctx, "a.txt")
	assert.ErrorIs(t, err, core.ErrNotExist)
}

func TestKeyFromPath(t *testing.T) {
	b := &Backend{container: "media"}
	assert.Equal(t, "a b/c.txt", b.keyFromPath("/media/a%20b/c.txt"))
	assert.Equal(t, "x.txt", b.keyFromPath("/v1/AUTH_acct/media/x.txt"))
}

func TestObjectNameLimit(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, startServer(t), "")

	err := b.PutObject(ctx, strings.Repeat("k", maxObjectNameLength+1), strings.NewReader(""), core.PutOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestURLs(t *testing.T) {
	ctx := context.Background()
	srv := startServer(t)

	t.Run("cdn disabled", func(t *testing.T) {
		b := newBackend(t, srv, "")
		u, err := b.ContainerCDNURL(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, u)
		u, err = b.ObjectCDNURL(ctx, "a.txt", false)
		require.NoError(t, err)
		assert.Empty(t, u)
	})

	t.Run("temp url without key", func(t *testing.T) {
		b := newBackend(t, srv, "")
		_, err := b.TempURL(ctx, "a.txt", "GET", time.Minute)
		assert.ErrorIs(t, err, core.ErrUnsupported)
	})

	t.Run("temp url", func(t *testing.T) {
		b := newBackend(t, srv, "secret")
		u, err := b.TempURL(ctx, "dir/a.txt", "GET", time.Minute)
		require.NoError(t, err)
		assert.Contains(t, u, b.Container()+"/dir/a.txt")
		assert.Contains(t, u, "temp_url_sig=")
		assert.Contains(t, u, "temp_url_expires=")
	})
}

func TestDriverOnSwift(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, startServer(t), "secret")
	drv, err := objfs.New(ctx, b, objfs.Options{FolderConcurrency: 2})
	require.NoError(t, err)
	assert.False(t, drv.Capabilities().Public)

	folder, err := drv.CreateFolder(ctx, "docs", "/")
	require.NoError(t, err)
	require.Equal(t, "docs/", folder)
	_, err = drv.CreateFolder(ctx, "sub", folder)
	require.NoError(t, err)

	_, err = drv.CreateFile(ctx, "a.txt", "docs/")
	require.NoError(t, err)
	n, err := drv.SetContents(ctx, "docs/a.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	require.NoError(t, drv.Create(ctx, "docs/sub/b.txt", strings.NewReader("b"), core.PutOptions{ContentType: "text/plain"}))

	files, err := drv.ListFiles(ctx, "docs/", objfs.ListOptions{Recursive: true})
	require.NoError(t, err)
	var ids []string
	for _, f := range files {
		ids = append(ids, f.Identifier)
	}
	assert.Equal(t, []string{"docs/sub/b.txt", "docs/a.txt"}, ids)

	folders, err := drv.ListFolders(ctx, "/", objfs.ListOptions{})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "docs/", folders[0].Identifier)

	moved, err := drv.MoveFolder(ctx, "docs/", "/", "archive")
	require.NoError(t, err)
	to, ok := moved.Lookup("docs/a.txt")
	require.True(t, ok)
	assert.Equal(t, "archive/a.txt", to)

	content, err := drv.ReadContent(ctx, "archive/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	exists, err := drv.FolderExists(ctx, "docs/")
	require.NoError(t, err)
	assert.False(t, exists)

	u, err := drv.PublicURL(ctx, "archive/a.txt")
	require.NoError(t, err)
	assert.Contains(t, u, "temp_url_sig=")

	deleted, err := drv.DeleteFolder(ctx, "archive/", true)
	require.NoError(t, err)
	assert.True(t, deleted)

	objects, err := b.ListObjects(ctx, core.ListOptions{Recursive: true})
	require.NoError(t, err)
	assert.Empty(t, objects)
}
