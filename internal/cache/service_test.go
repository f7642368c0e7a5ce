package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedis struct {
	redis.UniversalClient
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	svc := NewWithClient(fake, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "microcms:news", map[string]int{"limit": 3}, time.Hour))
	assert.Equal(t, time.Hour, fake.ttls["higapro:microcms:news"])

	var got map[string]int
	found, err := svc.Get(ctx, "microcms:news", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got["limit"])
}

func TestCacheMiss(t *testing.T) {
	svc := NewWithClient(newFakeRedis(), zap.NewNop())

	var got map[string]int
	found, err := svc.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheCorruptValue(t *testing.T) {
	fake := newFakeRedis()
	fake.data["higapro:broken"] = "{not json"
	svc := NewWithClient(fake, zap.NewNop())

	var got map[string]int
	found, err := svc.Get(context.Background(), "broken", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewCacheServiceHonoursContext(t *testing.T) {
	// Accepts connections but never answers, so only ctx can end the ping.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	addr := ln.Addr().(*net.TCPAddr)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err = NewCacheService(ctx, CacheConfig{Host: "127.0.0.1", Port: addr.Port}, zap.NewNop())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
