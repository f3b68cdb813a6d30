package minio

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
)

// Backend implements core.Backend for MinIO/S3-compatible storage.
type Backend struct {
	client *minio.Client
	bucket string
	region string
}

// New creates a MinIO-backed object store.
// Returns error if configuration is invalid. No request is made until the
// first operation.
func New(cfg Config) (*Backend, error) {
	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	return &Backend{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// Container implements core.Backend.
func (b *Backend) Container() string {
	return b.bucket
}

func fail(op, key string, err error) error {
	return errs.PathError(op, key, errs.Minio(err))
}

// HeadObject implements core.Backend.
func (b *Backend) HeadObject(ctx context.Context, key string) (*core.Object, error) {
	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fail("head", key, err)
	}
	return fromInfo(info), nil
}

// GetObject implements core.Backend.
// The returned reader streams the object; it is not buffered in memory.
func (b *Backend) GetObject(ctx context.Context, key string) (*core.Object, io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fail("get", key, err)
	}

	// GetObject is lazy; Stat surfaces missing keys before the first read.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, nil, fail("get", key, err)
	}
	return fromInfo(info), obj, nil
}

// PutObject implements core.Backend. Readers reporting their length are
// uploaded in a single request; others are streamed in parts.
func (b *Backend) PutObject(ctx context.Context, key string, r io.Reader, opts core.PutOptions) error {
	size := int64(-1)
	if l, ok := r.(interface{ Len() int }); ok {
		size = int64(l.Len())
	}

	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Headers,
	})
	if err != nil {
		return fail("put", key, err)
	}
	return nil
}

// DeleteObject implements core.Backend. S3 deletes are idempotent, so a
// missing key is not an error.
func (b *Backend) DeleteObject(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fail("delete", key, err)
	}
	return nil
}

// ListObjects implements core.Backend. Direct listings report common
// prefixes as synthetic directories.
func (b *Backend) ListObjects(ctx context.Context, opts core.ListOptions) ([]*core.Object, error) {
	var result []*core.Object
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: opts.Recursive,
	}) {
		if object.Err != nil {
			return nil, fail("list", opts.Prefix, object.Err)
		}
		result = append(result, fromListing(object))
	}
	return result, nil
}

// CopyObject implements core.Backend with a server-side copy. Metadata is
// carried over from the source.
func (b *Backend) CopyObject(ctx context.Context, src, dst string) error {
	_, err := b.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: b.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: b.bucket, Object: src},
	)
	if err != nil {
		return fail("copy", src, err)
	}
	return nil
}

// BulkDelete implements core.Backend using the batch delete API.
// S3 does not report missing keys, so NotFound is always zero.
func (b *Backend) BulkDelete(ctx context.Context, keys []string) (*core.BulkResult, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	result := &core.BulkResult{Errors: make(map[string]error)}
	for rerr := range b.client.RemoveObjects(ctx, b.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			result.Errors[rerr.ObjectName] = errs.Minio(rerr.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fail("bulk_delete", b.bucket, err)
	}
	result.Deleted = len(keys) - len(result.Errors)
	return result, nil
}

// EnsureContainer implements core.ContainerEnsurer.
func (b *Backend) EnsureContainer(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fail("ensure_container", b.bucket, err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.region}); err != nil {
		return fail("create_container", b.bucket, err)
	}
	return nil
}

// ContainerCDNURL implements core.URLBackend. Buckets have no CDN.
func (b *Backend) ContainerCDNURL(context.Context, bool) (string, error) {
	return "", nil
}

// ObjectCDNURL implements core.URLBackend. Buckets have no CDN.
func (b *Backend) ObjectCDNURL(context.Context, string, bool) (string, error) {
	return "", nil
}

// TempURL implements core.URLBackend with presigned GET and PUT URLs.
func (b *Backend) TempURL(ctx context.Context, key, method string, ttl time.Duration) (string, error) {
	var (
		u   *url.URL
		err error
	)
	switch strings.ToUpper(method) {
	case http.MethodGet:
		u, err = b.client.PresignedGetObject(ctx, b.bucket, key, ttl, nil)
	case http.MethodPut:
		u, err = b.client.PresignedPutObject(ctx, b.bucket, key, ttl)
	default:
		return "", errs.PathError("temp_url", key, core.ErrUnsupported)
	}
	if err != nil {
		return "", fail("temp_url", key, err)
	}
	return u.String(), nil
}

func fromInfo(info minio.ObjectInfo) *core.Object {
	obj := &core.Object{
		Name:         info.Key,
		LastModified: info.LastModified,
		Bytes:        info.Size,
		ContentType:  info.ContentType,
		ETag:         strings.Trim(info.ETag, `"`),
	}
	if len(info.UserMetadata) > 0 {
		obj.Headers = make(map[string]string, len(info.UserMetadata))
		for k, v := range info.UserMetadata {
			obj.Headers[k] = v
		}
	}
	obj.Directory = core.IsDirectory(obj)
	return obj
}

// fromListing converts a listing entry. Common prefixes carry neither an
// ETag nor a modification time.
func fromListing(info minio.ObjectInfo) *core.Object {
	if strings.HasSuffix(info.Key, "/") && info.ETag == "" && info.LastModified.IsZero() {
		return &core.Object{
			Name:        info.Key,
			ContentType: core.DirectoryContentType,
			Directory:   true,
			Synthetic:   true,
		}
	}
	return fromInfo(info)
}

// Compile-time interface checks.
var (
	_ core.Backend          = (*Backend)(nil)
	_ core.URLBackend       = (*Backend)(nil)
	_ core.ContainerEnsurer = (*Backend)(nil)
)
