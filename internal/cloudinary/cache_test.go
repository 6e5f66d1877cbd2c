package cloudinary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	calls   int
	version int
	err     error
}

func (c *countingLookup) AssetVersion(context.Context, string) (int, error) {
	c.calls++
	return c.version, c.err
}

func TestCachedVersions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	next := &countingLookup{version: 42}
	cache := NewCachedVersions(next, client, time.Minute)
	ctx := context.Background()

	v, err := cache.AssetVersion(ctx, "base-red-v1")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = cache.AssetVersion(ctx, "base-red-v1")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, next.calls, "second lookup is served from redis")

	mr.FastForward(2 * time.Minute)
	_, err = cache.AssetVersion(ctx, "base-red-v1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls, "entry expires after the ttl")
}

func TestCachedVersions_FailuresNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	next := &countingLookup{err: errors.New("boom")}
	cache := NewCachedVersions(next, client, time.Minute)

	_, err := cache.AssetVersion(context.Background(), "base-red-v1")
	assert.Error(t, err)
	assert.False(t, mr.Exists(versionKeyPrefix+"base-red-v1"))
}

func TestCachedVersions_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	next := &countingLookup{version: 7}
	v, err := NewCachedVersions(next, client, time.Minute).AssetVersion(context.Background(), "base-red-v1")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
