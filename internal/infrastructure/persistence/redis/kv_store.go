package redis

import (
	"context"
	"errors"
)

// KVStore implements mood.KeyValueStore on top of Cache. Values never
// expire: mood history is durable.
type KVStore struct {
	cache *Cache
}

// NewKVStore creates a KVStore.
func NewKVStore(cache *Cache) *KVStore {
	return &KVStore{cache: cache}
}

// Get returns the raw value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.cache.GetString(ctx, s.cache.Key(key))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set replaces the value stored under key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.cache.SetString(ctx, s.cache.Key(key), value, 0)
}

// Ping checks the underlying connection.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

// Close closes the underlying connection.
func (s *KVStore) Close() error {
	return s.cache.Close()
}
