package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/jmgilman/objfs/errors"
)

// DefaultRedisNamespace prefixes every key written by RedisStore.
const DefaultRedisNamespace = "objfs:"

// RedisStore shares cache entries between processes through Redis. Values
// are JSON encoded and never expire.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore creates a store on client. An empty namespace selects
// DefaultRedisNamespace.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisStore{client: client, namespace: namespace}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := s.client.Get(ctx, s.namespace+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.CodeBackend, "redis get %s", key)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, errors.Wrapf(err, errors.CodeInternal, "decode cache entry %s", key)
	}
	return &e, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "encode cache entry %s", key)
	}
	if err := s.client.Set(ctx, s.namespace+key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, errors.CodeBackend, "redis set %s", key)
	}
	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.namespace+key).Err(); err != nil {
		return errors.Wrapf(err, errors.CodeBackend, "redis del %s", key)
	}
	return nil
}

// Flush removes every key in the store's namespace.
func (s *RedisStore) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.namespace+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, errors.CodeBackend, "redis scan")
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, errors.CodeBackend, "redis flush")
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
