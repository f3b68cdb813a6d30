package swift

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	ncw "github.com/ncw/swift/v2"
	"github.com/ncw/swift/v2/rs"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// CDN response headers.
const (
	headerCDNEnabled = "X-Cdn-Enabled"
	headerCDNURI     = "X-Cdn-Uri"
	headerCDNSSLURI  = "X-Cdn-Ssl-Uri"
)

// Backend implements core.Backend on a Swift container.
type Backend struct {
	conn       *rs.RsConnection
	container  string
	tempURLKey string
	disableCDN bool

	cdnMu  sync.Mutex
	cdn    ncw.Headers
	cdnSet bool
}

// New creates a Swift backend.
// Returns error if the configuration is invalid. Authentication happens
// lazily on the first request.
func New(cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn := cfg.Connection
	if conn == nil {
		conn = &rs.RsConnection{
			Connection: ncw.Connection{
				UserName: cfg.Username,
				ApiKey:   cfg.APIKey,
				AuthUrl:  cfg.identityURL(),
				Region:   cfg.Region,
			},
		}
	}

	return &Backend{
		conn:       conn,
		container:  cfg.Container,
		tempURLKey: cfg.TempURLKey,
		disableCDN: cfg.DisableCDN,
	}, nil
}

// Container implements core.Backend.
func (b *Backend) Container() string {
	return b.container
}

// fail converts a swift error for op on key.
func fail(op, key string, err error) error {
	return errs.PathError(op, key, errs.Swift(err))
}

// HeadObject implements core.Backend.
func (b *Backend) HeadObject(ctx context.Context, key string) (*core.Object, error) {
	info, headers, err := b.conn.Object(ctx, b.container, key)
	if err != nil {
		return nil, fail("head", key, err)
	}
	obj := fromListing(info)
	obj.Name = key
	obj.Headers = metadata(headers)
	return obj, nil
}

// GetObject implements core.Backend.
func (b *Backend) GetObject(ctx context.Context, key string) (*core.Object, io.ReadCloser, error) {
	file, headers, err := b.conn.ObjectOpen(ctx, b.container, key, false, nil)
	if err != nil {
		return nil, nil, fail("get", key, err)
	}
	return fromHeaders(key, headers), file, nil
}

// PutObject implements core.Backend.
func (b *Backend) PutObject(ctx context.Context, key string, r io.Reader, opts core.PutOptions) error {
	if err := checkKey("put", key); err != nil {
		return err
	}
	var h ncw.Headers
	if len(opts.Headers) > 0 {
		h = ncw.Headers(opts.Headers)
	}
	if _, err := b.conn.ObjectPut(ctx, b.container, key, r, true, "", opts.ContentType, h); err != nil {
		return fail("put", key, err)
	}
	return nil
}

// DeleteObject implements core.Backend.
func (b *Backend) DeleteObject(ctx context.Context, key string) error {
	if err := b.conn.ObjectDelete(ctx, b.container, key); err != nil {
		return fail("delete", key, err)
	}
	return nil
}

// ListObjects implements core.Backend. Direct listings use "/" as the
// delimiter, so sub folders come back as pseudo directories.
func (b *Backend) ListObjects(ctx context.Context, opts core.ListOptions) ([]*core.Object, error) {
	lo := &ncw.ObjectsOpts{Prefix: opts.Prefix}
	if !opts.Recursive {
		lo.Delimiter = '/'
	}

	objects, err := b.conn.ObjectsAll(ctx, b.container, lo)
	if err != nil {
		return nil, fail("list", opts.Prefix, err)
	}

	result := make([]*core.Object, 0, len(objects))
	for _, o := range objects {
		result = append(result, fromListing(o))
	}
	return result, nil
}

// CopyObject implements core.Backend.
func (b *Backend) CopyObject(ctx context.Context, src, dst string) error {
	if err := checkKey("copy", dst); err != nil {
		return err
	}
	if _, err := b.conn.ObjectCopy(ctx, b.container, src, b.container, dst, nil); err != nil {
		return fail("copy", src, err)
	}
	return nil
}

// BulkDelete implements core.Backend. Clusters without the bulk middleware
// answer 403; keys are then deleted one by one.
func (b *Backend) BulkDelete(ctx context.Context, keys []string) (*core.BulkResult, error) {
	res, err := b.conn.BulkDelete(ctx, b.container, keys)
	if stderrors.Is(err, ncw.Forbidden) {
		return b.deleteEach(ctx, keys), nil
	}
	// A failed response status still carries per-object errors.
	if err != nil && len(res.Errors) == 0 {
		return nil, fail("bulk_delete", b.container, err)
	}

	result := &core.BulkResult{
		Deleted:  int(res.NumberDeleted),
		NotFound: int(res.NumberNotFound),
		Errors:   make(map[string]error, len(res.Errors)),
	}
	for path, e := range res.Errors {
		result.Errors[b.keyFromPath(path)] = errs.Swift(e)
	}
	return result, nil
}

// keyFromPath extracts the object name from a bulk response path, which is
// either "/container/name" or "/v1/account/container/name".
func (b *Backend) keyFromPath(path string) string {
	marker := "/" + b.container + "/"
	if i := strings.Index(path, marker); i >= 0 {
		path = path[i+len(marker):]
	}
	if key, err := url.PathUnescape(path); err == nil {
		return key
	}
	return path
}

func (b *Backend) deleteEach(ctx context.Context, keys []string) *core.BulkResult {
	result := &core.BulkResult{Errors: make(map[string]error)}
	for _, key := range keys {
		err := b.DeleteObject(ctx, key)
		switch {
		case err == nil:
			result.Deleted++
		case errs.IsNotExist(err):
			result.NotFound++
		default:
			result.Errors[key] = err
		}
	}
	return result
}

// EnsureContainer implements core.ContainerEnsurer.
func (b *Backend) EnsureContainer(ctx context.Context) error {
	_, _, err := b.conn.Container(ctx, b.container)
	if err == nil {
		return nil
	}
	if err != ncw.ContainerNotFound {
		return fail("ensure_container", b.container, err)
	}
	if err := b.conn.ContainerCreate(ctx, b.container, nil); err != nil {
		return fail("create_container", b.container, err)
	}
	return nil
}

// cdnHeaders returns the container's CDN metadata, fetched once.
// Containers unknown to the CDN service report no headers.
func (b *Backend) cdnHeaders(ctx context.Context) (ncw.Headers, error) {
	if b.disableCDN {
		return nil, nil
	}

	b.cdnMu.Lock()
	defer b.cdnMu.Unlock()
	if b.cdnSet {
		return b.cdn, nil
	}

	headers, err := b.conn.ContainerCDNMeta(ctx, b.container)
	switch {
	case err == ncw.ContainerNotFound || err == ncw.Forbidden:
		headers = nil
	case err != nil:
		return nil, fail("cdn", b.container, err)
	}
	b.cdn, b.cdnSet = headers, true
	return headers, nil
}

// ContainerCDNURL implements core.URLBackend.
func (b *Backend) ContainerCDNURL(ctx context.Context, secure bool) (string, error) {
	h, err := b.cdnHeaders(ctx)
	if err != nil || h == nil {
		return "", err
	}
	if enabled, _ := strconv.ParseBool(h[headerCDNEnabled]); !enabled {
		return "", nil
	}
	base := h[headerCDNURI]
	if secure {
		base = h[headerCDNSSLURI]
	}
	if base == "" {
		return "", nil
	}
	return strings.TrimRight(base, "/") + "/", nil
}

// ObjectCDNURL implements core.URLBackend.
func (b *Backend) ObjectCDNURL(ctx context.Context, key string, secure bool) (string, error) {
	base, err := b.ContainerCDNURL(ctx, secure)
	if err != nil || base == "" {
		return "", err
	}
	return base + pathutil.EscapeKey(key), nil
}

// TempURL implements core.URLBackend.
func (b *Backend) TempURL(ctx context.Context, key, method string, ttl time.Duration) (string, error) {
	if b.tempURLKey == "" {
		return "", errs.PathError("temp_url", key, core.ErrUnsupported)
	}
	if !b.conn.Authenticated() {
		if err := b.conn.Authenticate(ctx); err != nil {
			return "", fail("temp_url", key, err)
		}
	}
	return b.conn.ObjectTempUrl(b.container, key, b.tempURLKey, method, time.Now().Add(ttl)), nil
}

// fromListing converts a listing entry or HEAD result.
func fromListing(o ncw.Object) *core.Object {
	if o.PseudoDirectory {
		return &core.Object{
			Name:        o.Name,
			ContentType: core.DirectoryContentType,
			Directory:   true,
			Synthetic:   true,
		}
	}
	return &core.Object{
		Name:         o.Name,
		LastModified: o.LastModified,
		Bytes:        o.Bytes,
		ContentType:  o.ContentType,
		ETag:         o.Hash,
		Directory:    o.ContentType == core.DirectoryContentType,
	}
}

// fromHeaders builds a record from GET response headers.
func fromHeaders(key string, h ncw.Headers) *core.Object {
	obj := &core.Object{
		Name:        key,
		ContentType: h["Content-Type"],
		ETag:        strings.Trim(h["Etag"], `"`),
		Headers:     metadata(h),
	}
	obj.Directory = obj.ContentType == core.DirectoryContentType
	if n, err := strconv.ParseInt(h["Content-Length"], 10, 64); err == nil {
		obj.Bytes = n
	}
	if t, err := http.ParseTime(h["Last-Modified"]); err == nil {
		obj.LastModified = t
	}
	return obj
}

// metadata keeps the user metadata headers of an object.
func metadata(h ncw.Headers) map[string]string {
	meta := h.ObjectMetadata()
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

// Compile-time interface checks.
var (
	_ core.Backend          = (*Backend)(nil)
	_ core.URLBackend       = (*Backend)(nil)
	_ core.ContainerEnsurer = (*Backend)(nil)
)

// maxObjectNameLength is the Swift limit on object names in bytes.
const maxObjectNameLength = 1024

// errInvalidKey rejects keys Swift cannot store.
var errInvalidKey = errors.New(errors.CodeInvalidInput, "swift: object name exceeds 1024 bytes")

func checkKey(op, key string) error {
	if len(key) > maxObjectNameLength {
		return errs.PathError(op, key, errInvalidKey)
	}
	return nil
}
