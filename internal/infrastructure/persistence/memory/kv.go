// Package memory provides an in-process key-value store for development
// runs and tests. Contents are lost on restart.
package memory

import (
	"context"
	"sync"
)

// KVStore is an in-memory implementation of mood.KeyValueStore.
type KVStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewKVStore creates an empty store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set replaces the value stored under key.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Ping always succeeds.
func (s *KVStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *KVStore) Close() error { return nil }
