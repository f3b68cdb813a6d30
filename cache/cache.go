package cache

import (
	"context"

	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/internal/pathutil"
)

// Options configures a Cache.
type Options struct {
	Logger  *Logger
	Metrics *Metrics
}

// Cache is the typed view over a Store used by the driver. Reads failing in
// the store degrade to misses; invalidation failures are returned because a
// surviving entry would be served stale.
type Cache struct {
	store   Store
	log     *Logger
	metrics *Metrics
}

// New creates a Cache on store. A nil store selects a fresh MemoryStore.
func New(store Store, opts Options) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	return &Cache{store: store, log: opts.Logger, metrics: opts.Metrics}
}

// Store returns the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

// Object returns the record cached for id in view p.
func (c *Cache) Object(ctx context.Context, id string, p Prefix) (*core.Object, bool) {
	key := Key(id, p)
	e, ok := c.get(ctx, key, OpGetObject)
	if !ok || e.Kind != KindObject || e.Object == nil {
		c.miss(ctx, OpGetObject, key, p)
		return nil, false
	}
	c.hit(ctx, OpGetObject, key, p)
	return e.Object, true
}

// SetObject caches o for id in view p.
func (c *Cache) SetObject(ctx context.Context, id string, p Prefix, o *core.Object) {
	c.set(ctx, Key(id, p), &Entry{Kind: KindObject, Object: o}, OpSetObject)
}

// Listing returns the listing cached for folder.
func (c *Cache) Listing(ctx context.Context, folder string, recursive bool) ([]*core.Object, bool) {
	p := listPrefix(recursive)
	key := Key(folder, p)
	e, ok := c.get(ctx, key, OpGetListing)
	if !ok || e.Kind != KindListing {
		c.miss(ctx, OpGetListing, key, p)
		return nil, false
	}
	c.hit(ctx, OpGetListing, key, p)
	if e.Listing == nil {
		return []*core.Object{}, true
	}
	return e.Listing, true
}

// SetListing caches the listing of folder.
func (c *Cache) SetListing(ctx context.Context, folder string, recursive bool, objs []*core.Object) {
	c.set(ctx, Key(folder, listPrefix(recursive)), &Entry{Kind: KindListing, Listing: objs}, OpSetListing)
}

// Invalidate removes the full and metadata records of id together with the
// listings of every folder that contains it.
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	c.metrics.Invalidations.Inc()
	if err := c.remove(ctx, Key(id, PrefixPartial), Key(id, PrefixFull)); err != nil {
		return err
	}
	return c.InvalidateListings(ctx, id)
}

// InvalidateListings removes both listings of every folder above id.
// Direct listings of higher ancestors hold pseudo folders derived from id.
func (c *Cache) InvalidateListings(ctx context.Context, id string) error {
	parent := pathutil.ParentOf(id)
	if err := c.InvalidatePath(ctx, parent); err != nil {
		return err
	}

	keys := 2
	for !pathutil.IsRoot(parent) {
		parent = pathutil.ParentOf(parent)
		if err := c.InvalidatePath(ctx, parent); err != nil {
			return err
		}
		keys += 2
	}
	LogInvalidation(ctx, c.log, id, keys)
	return nil
}

// InvalidatePath removes both listings of folder.
func (c *Cache) InvalidatePath(ctx context.Context, folder string) error {
	return c.remove(ctx, Key(folder, PrefixList), Key(folder, PrefixListRecursive))
}

// Flush removes every cached entry.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.store.Flush(ctx); err != nil {
		c.metrics.StoreErrors.WithLabelValues(string(OpFlush)).Inc()
		return errors.Wrap(err, errors.CodeBackend, "flush cache")
	}
	c.log.Info(ctx, "cache flushed")
	return nil
}

func (c *Cache) get(ctx context.Context, key string, op Operation) (*Entry, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.metrics.StoreErrors.WithLabelValues(string(op)).Inc()
		c.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return nil, false
	}
	return e, ok
}

func (c *Cache) set(ctx context.Context, key string, e *Entry, op Operation) {
	if err := c.store.Set(ctx, key, e); err != nil {
		c.metrics.StoreErrors.WithLabelValues(string(op)).Inc()
		c.log.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (c *Cache) remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.store.Remove(ctx, key); err != nil {
			c.metrics.StoreErrors.WithLabelValues(string(OpInvalidate)).Inc()
			c.log.Error(ctx, "cache invalidation failed", "key", key, "error", err)
			return errors.WithContext(
				errors.Wrapf(err, errors.CodeBackend, "invalidate cache key %s", key),
				"key", key,
			)
		}
	}
	return nil
}

func (c *Cache) hit(ctx context.Context, op Operation, key string, p Prefix) {
	c.metrics.Hits.WithLabelValues(viewLabel(p)).Inc()
	LogCacheHit(ctx, c.log, op, key)
}

func (c *Cache) miss(ctx context.Context, op Operation, key string, p Prefix) {
	c.metrics.Misses.WithLabelValues(viewLabel(p)).Inc()
	LogCacheMiss(ctx, c.log, op, key)
}

func listPrefix(recursive bool) Prefix {
	if recursive {
		return PrefixListRecursive
	}
	return PrefixList
}
