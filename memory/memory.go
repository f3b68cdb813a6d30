// Package memory provides an in-memory core.Backend.
//
// The backend keeps objects in a map and mimics the listing behavior of
// Swift and S3. It counts every call per operation and can inject failures
// per operation and key, which makes it the backend of choice for unit
// tests. Every write bumps a global version stored in the
// X-Object-Version header, so tests can observe whether a record is fresh.
package memory

import (
	"bytes"
	"context"
	"crypto/md5" // #nosec G501 -- ETag emulation
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/internal/errs"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// VersionHeader carries the write version of an object.
const VersionHeader = "X-Object-Version"

// Op names a backend operation for counting and fault injection.
type Op string

// Backend operations.
const (
	OpHead            Op = "head"
	OpGet             Op = "get"
	OpPut             Op = "put"
	OpDelete          Op = "delete"
	OpList            Op = "list"
	OpCopy            Op = "copy"
	OpBulkDelete      Op = "bulk_delete"
	OpEnsureContainer Op = "ensure_container"
)

// Backend is an in-memory object store.
type Backend struct {
	mu        sync.RWMutex
	container string
	objects   map[string]*core.Object
	version   int64
	calls     map[Op]int
	faults    map[Op]map[string]error
	cdnURI    string
	cdnSSLURI string
	tempKey   string
	now       func() time.Time
}

// New creates an empty backend for container.
func New(container string) *Backend {
	return &Backend{
		container: container,
		objects:   make(map[string]*core.Object),
		calls:     make(map[Op]int),
		faults:    make(map[Op]map[string]error),
		now:       time.Now,
	}
}

// Container implements core.Backend.
func (b *Backend) Container() string {
	return b.container
}

// Calls returns how often op was invoked.
func (b *Backend) Calls(op Op) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.calls[op]
}

// ResetCalls zeroes all call counters.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = make(map[Op]int)
}

// Fail makes op fail with err for key. An empty key matches every key.
func (b *Backend) Fail(op Op, key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.faults[op] == nil {
		b.faults[op] = make(map[string]error)
	}
	b.faults[op][key] = err
}

// ClearFaults removes all injected failures.
func (b *Backend) ClearFaults() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults = make(map[Op]map[string]error)
}

// EnableCDN makes the container CDN enabled with the given base URIs.
func (b *Backend) EnableCDN(uri, sslURI string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cdnURI = uri
	b.cdnSSLURI = sslURI
}

// SetTempURLKey sets the key used to sign temporary URLs.
func (b *Backend) SetTempURLKey(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tempKey = key
}

// Keys returns every stored key in order.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Version returns the write version of key, or 0 when it does not exist.
func (b *Backend) Version(key string) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	if !ok {
		return 0
	}
	v, _ := strconv.ParseInt(obj.Headers[VersionHeader], 10, 64)
	return v
}

// Touch bumps the version of key without going through the counted API,
// emulating a write by another client.
func (b *Backend) Touch(key string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store(key, content, "", nil)
}

// SetETag overrides the ETag of key, e.g. with a multipart upload tag.
func (b *Backend) SetETag(key, etag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if obj, ok := b.objects[key]; ok {
		obj.ETag = etag
	}
}

// begin counts op and returns the fault injected for key, if any.
// The caller must hold the write lock.
func (b *Backend) begin(op Op, key string) error {
	b.calls[op]++
	if f, ok := b.faults[op]; ok {
		if err, ok := f[key]; ok {
			return err
		}
		if err, ok := f[""]; ok {
			return err
		}
	}
	return nil
}

// store writes an object. The caller must hold the write lock.
func (b *Backend) store(key string, content []byte, contentType string, headers map[string]string) *core.Object {
	sum := md5.Sum(content) // #nosec G401
	b.version++

	if contentType == "" {
		contentType = "application/octet-stream"
		if prev, ok := b.objects[key]; ok {
			contentType = prev.ContentType
		}
	}

	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	h[VersionHeader] = strconv.FormatInt(b.version, 10)

	obj := &core.Object{
		Name:         key,
		LastModified: b.now().UTC(),
		Bytes:        int64(len(content)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		Headers:      h,
		Content:      append([]byte(nil), content...),
	}
	b.objects[key] = obj
	return obj
}

func metadataOnly(obj *core.Object) *core.Object {
	c := obj.Clone()
	c.Content = nil
	return c
}

// HeadObject implements core.Backend.
func (b *Backend) HeadObject(_ context.Context, key string) (*core.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(OpHead, key); err != nil {
		return nil, errs.PathError("head", key, err)
	}
	obj, ok := b.objects[key]
	if !ok {
		return nil, errs.PathError("head", key, core.ErrNotExist)
	}
	return metadataOnly(obj), nil
}

// GetObject implements core.Backend.
func (b *Backend) GetObject(_ context.Context, key string) (*core.Object, io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(OpGet, key); err != nil {
		return nil, nil, errs.PathError("get", key, err)
	}
	obj, ok := b.objects[key]
	if !ok {
		return nil, nil, errs.PathError("get", key, core.ErrNotExist)
	}
	content := append([]byte(nil), obj.Content...)
	return metadataOnly(obj), io.NopCloser(bytes.NewReader(content)), nil
}

// PutObject implements core.Backend.
func (b *Backend) PutObject(_ context.Context, key string, r io.Reader, opts core.PutOptions) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errs.PathError("put", key, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(OpPut, key); err != nil {
		return errs.PathError("put", key, err)
	}
	b.store(key, content, opts.ContentType, opts.Headers)
	return nil
}

// DeleteObject implements core.Backend.
func (b *Backend) DeleteObject(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(OpDelete, key); err != nil {
		return errs.PathError("delete", key, err)
	}
	if _, ok := b.objects[key]; !ok {
		return errs.PathError("delete", key, core.ErrNotExist)
	}
	delete(b.objects, key)
	return nil
}

// ListObjects implements core.Backend. Non-recursive listings report sub
// folders once, as their marker object when one exists and as a synthetic
// entry otherwise.
func (b *Backend) ListObjects(_ context.Context, opts core.ListOptions) ([]*core.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(OpList, opts.Prefix); err != nil {
		return nil, errs.PathError("list", opts.Prefix, err)
	}

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := make([]*core.Object, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		rest := k[len(opts.Prefix):]
		idx := strings.Index(rest, "/")
		if opts.Recursive || idx < 0 {
			result = append(result, metadataOnly(b.objects[k]))
			continue
		}

		sub := opts.Prefix + rest[:idx+1]
		if seen[sub] {
			continue
		}
		seen[sub] = true
		if marker, ok := b.objects[sub]; ok {
			result = append(result, metadataOnly(marker))
			continue
		}
		result = append(result, &core.Object{
			Name:        sub,
			ContentType: core.DirectoryContentType,
			Directory:   true,
			Synthetic:   true,
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// CopyObject implements core.Backend.
func (b *Backend) CopyObject(_ context.Context, src, dst string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(OpCopy, src); err != nil {
		return errs.PathError("copy", src, err)
	}
	obj, ok := b.objects[src]
	if !ok {
		return errs.PathError("copy", src, core.ErrNotExist)
	}
	headers := make(map[string]string, len(obj.Headers))
	for k, v := range obj.Headers {
		if k != VersionHeader {
			headers[k] = v
		}
	}
	b.store(dst, obj.Content, obj.ContentType, headers)
	return nil
}

// BulkDelete implements core.Backend. Injected faults fail individual keys.
func (b *Backend) BulkDelete(_ context.Context, keys []string) (*core.BulkResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[OpBulkDelete]++
	if err := b.faults[OpBulkDelete][""]; err != nil {
		return nil, errs.PathError("bulk_delete", b.container, err)
	}

	result := &core.BulkResult{Errors: make(map[string]error)}
	for _, key := range keys {
		if err, ok := b.faults[OpBulkDelete][key]; ok {
			result.Errors[key] = err
			continue
		}
		if _, ok := b.objects[key]; !ok {
			result.NotFound++
			continue
		}
		delete(b.objects, key)
		result.Deleted++
	}
	return result, nil
}

// EnsureContainer implements core.ContainerEnsurer.
func (b *Backend) EnsureContainer(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.begin(OpEnsureContainer, b.container)
}

// ObjectCDNURL implements core.URLBackend.
func (b *Backend) ObjectCDNURL(ctx context.Context, key string, secure bool) (string, error) {
	base, err := b.ContainerCDNURL(ctx, secure)
	if err != nil || base == "" {
		return "", err
	}
	return base + pathutil.EscapeKey(key), nil
}

// ContainerCDNURL implements core.URLBackend.
func (b *Backend) ContainerCDNURL(_ context.Context, secure bool) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	base := b.cdnURI
	if secure {
		base = b.cdnSSLURI
	}
	if base == "" {
		return "", nil
	}
	return strings.TrimRight(base, "/") + "/", nil
}

// TempURL implements core.URLBackend.
func (b *Backend) TempURL(_ context.Context, key, method string, ttl time.Duration) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.tempKey == "" {
		return "", errs.PathError("temp_url", key, core.ErrUnsupported)
	}
	expires := b.now().Add(ttl).Unix()
	return fmt.Sprintf("memory://%s/%s?method=%s&temp_url_expires=%d", b.container, pathutil.EscapeKey(key), method, expires), nil
}

// Compile-time interface checks.
var (
	_ core.Backend          = (*Backend)(nil)
	_ core.URLBackend       = (*Backend)(nil)
	_ core.ContainerEnsurer = (*Backend)(nil)
)
