package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newTestMemoryCache(t *testing.T, opts ...MemoryOption) *MemoryCache {
	t.Helper()
	mc, err := NewMemoryCache(append([]MemoryOption{WithMemoryCleanup(0)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	mc := newTestMemoryCache(t)

	require.NoError(t, mc.Set(ctx, "forecast:1", payload{Name: "a", Value: 1.5}, time.Minute))

	var got payload
	require.NoError(t, mc.Get(ctx, "forecast:1", &got))
	assert.Equal(t, payload{Name: "a", Value: 1.5}, got)

	var missing payload
	assert.ErrorIs(t, mc.Get(ctx, "forecast:2", &missing), ErrCacheMiss)
}

func TestMemoryCacheRawString(t *testing.T) {
	ctx := context.Background()
	mc := newTestMemoryCache(t)

	require.NoError(t, mc.Set(ctx, "k", "hello", time.Minute))
	var s string
	require.NoError(t, mc.Get(ctx, "k", &s))
	assert.Equal(t, "hello", s)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := newTestMemoryCache(t)

	require.NoError(t, mc.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecent(t *testing.T) {
	ctx := context.Background()
	mc := newTestMemoryCache(t, WithMemoryLimits(2, 0))

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	var s string
	require.NoError(t, mc.Get(ctx, "a", &s))
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	assert.ErrorIs(t, mc.Get(ctx, "b", &s), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "a", &s))
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	mc := newTestMemoryCache(t)

	for _, k := range []string{"forecast:1", "forecast:2", "other:1"} {
		require.NoError(t, mc.Set(ctx, k, "x", time.Minute))
	}
	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("forecast")))

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "forecast:1", &s), ErrCacheMiss)
	assert.ErrorIs(t, mc.Get(ctx, "forecast:2", &s), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "other:1", &s))
}

func TestMemoryCacheTryLock(t *testing.T) {
	ctx := context.Background()
	mc := newTestMemoryCache(t)

	ok, err := mc.TryLock(ctx, "lock:warm", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mc.TryLock(ctx, "lock:warm", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mc.Unlock(ctx, "lock:warm"))
	ok, err = mc.TryLock(ctx, "lock:warm", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "forecast:42", GenerateKey("forecast", int64(42)))
	assert.Equal(t, "forecast:*", BuildPattern("forecast"))
}
