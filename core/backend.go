package core

import (
	"context"
	"io"
	"time"
)

// Backend is the capability set objfs needs from a flat object store.
// Keys are normalized identifiers without a leading separator.
type Backend interface {
	// Container returns the name of the container or bucket.
	Container() string

	// HeadObject returns the metadata of key without its content.
	HeadObject(ctx context.Context, key string) (*Object, error)

	// GetObject returns the metadata of key and a reader over its content.
	// The caller must close the reader.
	GetObject(ctx context.Context, key string) (*Object, io.ReadCloser, error)

	// PutObject creates or replaces key with the content of r.
	PutObject(ctx context.Context, key string, r io.Reader, opts PutOptions) error

	// DeleteObject removes key.
	DeleteObject(ctx context.Context, key string) error

	// ListObjects enumerates objects below a prefix, ordered by key.
	ListObjects(ctx context.Context, opts ListOptions) ([]*Object, error)

	// CopyObject copies src to dst on the server side.
	CopyObject(ctx context.Context, src, dst string) error

	// BulkDelete removes many keys in as few requests as the backend allows.
	BulkDelete(ctx context.Context, keys []string) (*BulkResult, error)
}

// PutOptions configures an upload.
type PutOptions struct {
	ContentType string
	Headers     map[string]string
}

// ListOptions configures an enumeration.
type ListOptions struct {
	// Prefix restricts the listing to keys starting with it. The empty
	// prefix lists the whole container.
	Prefix string

	// Recursive lists all descendants instead of direct children only.
	Recursive bool
}

// BulkResult reports the outcome of a bulk delete.
type BulkResult struct {
	Deleted  int
	NotFound int

	// Errors maps keys that could not be deleted to their failure.
	Errors map[string]error
}

// OK reports whether every key was deleted or already absent.
func (r *BulkResult) OK() bool {
	return r != nil && len(r.Errors) == 0
}

// FailedKeys returns the keys that could not be deleted.
func (r *BulkResult) FailedKeys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Errors))
	for k := range r.Errors {
		keys = append(keys, k)
	}
	return keys
}

// URLBackend is implemented by backends that can hand out URLs.
type URLBackend interface {
	// ObjectCDNURL returns the CDN URL of key, or "" when the container is
	// not CDN enabled.
	ObjectCDNURL(ctx context.Context, key string, secure bool) (string, error)

	// ContainerCDNURL returns the CDN base URL of the container, or "" when
	// the container is not CDN enabled.
	ContainerCDNURL(ctx context.Context, secure bool) (string, error)

	// TempURL returns a signed URL granting method on key for ttl.
	TempURL(ctx context.Context, key, method string, ttl time.Duration) (string, error)
}

// ContainerEnsurer is implemented by backends that can create their
// container when it does not exist.
type ContainerEnsurer interface {
	EnsureContainer(ctx context.Context) error
}
