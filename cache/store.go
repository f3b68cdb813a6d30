package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jmgilman/objfs/core"
)

// EntryKind distinguishes records from listings.
type EntryKind string

// Entry kinds.
const (
	KindObject  EntryKind = "object"
	KindListing EntryKind = "listing"
)

// Entry is a cached value.
type Entry struct {
	Kind    EntryKind      `json:"kind"`
	Object  *core.Object   `json:"object,omitempty"`
	Listing []*core.Object `json:"listing,omitempty"`
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := &Entry{Kind: e.Kind, Object: e.Object.Clone()}
	if e.Listing != nil {
		c.Listing = cloneListing(e.Listing)
	}
	return c
}

func cloneListing(in []*core.Object) []*core.Object {
	out := make([]*core.Object, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}

// Store is the key-value contract the cache is built on.
type Store interface {
	// Get returns the entry stored under key. The boolean is false on a miss.
	Get(ctx context.Context, key string) (*Entry, bool, error)

	// Set stores e under key without expiry.
	Set(ctx context.Context, key string, e *Entry) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Flush removes every entry.
	Flush(ctx context.Context) error
}

// MemoryStore is an in-process Store backed by go-cache. Entries are copied
// on the way in and out.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	// Zero cleanup interval: nothing expires, so no janitor is needed.
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 0)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.(*Entry).Clone(), true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, e *Entry) error {
	s.c.Set(key, e.Clone(), gocache.NoExpiration)
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Flush implements Store.
func (s *MemoryStore) Flush(_ context.Context) error {
	s.c.Flush()
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.c.ItemCount()
}

var _ Store = (*MemoryStore)(nil)
