package kv

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) ValueKey(key string) string { return "rk:kv:" + key }

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newFakeRedis()
	store, err := NewRedisStore(backend)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, "lastEstimateNumber")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reports absent, not an error")

	require.NoError(t, store.Set(ctx, "lastEstimateNumber", "12"))
	assert.Equal(t, "12", backend.data["rk:kv:lastEstimateNumber"])

	value, ok, err := store.Get(ctx, "lastEstimateNumber")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12", value)

	require.NoError(t, store.SetWithTTL(ctx, "identity:a", "{}", time.Minute))
	assert.Equal(t, time.Minute, backend.ttls["rk:kv:identity:a"])

	require.NoError(t, store.Remove(ctx, "lastEstimateNumber"))
	_, ok, err = store.Get(ctx, "lastEstimateNumber")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStorePropagatesFailures(t *testing.T) {
	backend := newFakeRedis()
	backend.getErr = errors.New("connection refused")
	store, err := NewRedisStore(backend)
	require.NoError(t, err)

	_, _, err = store.Get(context.Background(), "lastEstimateNumber")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.getErr)

	_, err = NewRedisStore(nil)
	assert.Error(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.nowFunc = func() time.Time { return now }

	require.NoError(t, store.SetWithTTL(ctx, "identity:a", "cached", time.Minute))
	require.NoError(t, store.Set(ctx, "lastEstimateNumber", "3"))

	value, ok, err := store.Get(ctx, "identity:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached", value)

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Get(ctx, "identity:a")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are dropped")

	value, ok, err = store.Get(ctx, "lastEstimateNumber")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", value)

	assert.Error(t, store.Set(ctx, "  ", "x"))
}
