// Package cache implements the objfs metadata cache.
//
// The cache maps (identifier, view) pairs to object records or listings.
// There are four views per identifier:
//
//   - PrefixFull: the record of a full fetch, including content
//   - PrefixPartial: the record of a metadata-only fetch
//   - PrefixList: the direct children of a folder
//   - PrefixListRecursive: all descendants of a folder
//
// Entries never expire. Correctness relies on explicit invalidation at every
// mutation, so a stale hit after a mutation is a bug rather than tolerated
// staleness. Invalidate removes all four views that a change to an
// identifier can affect.
//
// Storage is pluggable through Store. MemoryStore keeps entries in process
// and RedisStore shares them between processes.
//
// Basic usage:
//
//	c := cache.New(cache.NewMemoryStore(), cache.Options{})
//	if obj, ok := c.Object(ctx, id, cache.PrefixPartial); ok {
//	    return obj
//	}
package cache
