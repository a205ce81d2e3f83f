package postgres

import (
	"context"
	"fmt"
)

// KVStore implements mood.KeyValueStore over the wellness_kv table.
type KVStore struct {
	conn *Connection
}

// NewKVStore creates a KVStore. Migrations must have been applied.
func NewKVStore(conn *Connection) *KVStore {
	return &KVStore{conn: conn}
}

// Get returns the raw value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow(ctx, `SELECT value FROM wellness_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if IsNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("postgres: get %q: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value stored under key.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO wellness_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("postgres: set %q: %w", key, err)
	}
	return nil
}

// Ping checks the underlying connection.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the underlying pool.
func (s *KVStore) Close() error {
	s.conn.Close()
	return nil
}
