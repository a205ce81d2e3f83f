package redis

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to the Redis instance named by REDIS_TEST_ADDR
// (host:port) and skips the test when it is unset.
func newTestCache(t *testing.T) *Cache {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	cfg := DefaultConfig()
	host, port, ok := splitHostPort(addr)
	require.True(t, ok, "REDIS_TEST_ADDR must be host:port")
	cfg.Host = host
	cfg.Port = port
	cfg.DB = 15
	cfg.KeyNamespace = "wellness-test:" + strconv.FormatInt(time.Now().UnixNano(), 10) + ":"

	cache, err := NewCache(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func splitHostPort(addr string) (string, int, bool) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false
	}
	return host, port, true
}

func TestKVStore_GetMissing(t *testing.T) {
	store := NewKVStore(newTestCache(t))

	val, ok, err := store.Get(context.Background(), "moodCheckins_nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestKVStore_SetThenGet(t *testing.T) {
	cache := newTestCache(t)
	store := NewKVStore(cache)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "moodCheckins_s1", `[{"id":1}]`))
	t.Cleanup(func() { _ = cache.Delete(ctx, cache.Key("moodCheckins_s1")) })

	val, ok, err := store.Get(ctx, "moodCheckins_s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, val)
}

func TestConfig_Addr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, PrefixWellness, cfg.KeyNamespace)
}

func TestCache_RejectsEmptyKey(t *testing.T) {
	c := NewCacheFromClient(nil, DefaultConfig())

	_, err := c.GetString(context.Background(), "")
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.SetString(context.Background(), "", "x", 0), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.SetString(context.Background(), "k", "x", -time.Second), ErrCacheInvalidTTL)
}
