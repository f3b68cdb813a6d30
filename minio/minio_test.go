package minio

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
)

func newOffline(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Config{
		Endpoint:  "localhost:9000",
		Bucket:    "media",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	b := newOffline(t)
	assert.Equal(t, "media", b.Container())

	_, err := New(Config{Bucket: "media"})
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestTempURL(t *testing.T) {
	ctx := context.Background()
	b := newOffline(t)

	u, err := b.TempURL(ctx, "docs/a.txt", "GET", 30*time.Second)
	require.NoError(t, err)
	assert.Contains(t, u, "/media/docs/a.txt")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=30")

	u, err = b.TempURL(ctx, "docs/a.txt", "put", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Signature=")

	_, err = b.TempURL(ctx, "docs/a.txt", "DELETE", time.Minute)
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestNoCDN(t *testing.T) {
	ctx := context.Background()
	b := newOffline(t)

	u, err := b.ContainerCDNURL(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, u)

	u, err = b.ObjectCDNURL(ctx, "a.txt", false)
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestFromListing(t *testing.T) {
	prefix := fromListing(minio.ObjectInfo{Key: "a/c/"})
	assert.True(t, prefix.Synthetic)
	assert.True(t, core.IsDirectory(prefix))

	marker := fromListing(minio.ObjectInfo{Key: "a/", ETag: "d41d8cd98f00b204e9800998ecf8427e", LastModified: time.Now()})
	assert.False(t, marker.Synthetic)
	assert.True(t, marker.Directory)

	file := fromListing(minio.ObjectInfo{
		Key:          "a/b.txt",
		ETag:         `"abc"`,
		Size:         3,
		LastModified: time.Now(),
		ContentType:  "text/plain",
		UserMetadata: minio.StringMap{"Owner": "bob"},
	})
	assert.False(t, file.Directory)
	assert.Equal(t, "abc", file.ETag)
	assert.Equal(t, int64(3), file.Bytes)
	assert.Equal(t, "bob", file.Headers["Owner"])
}
