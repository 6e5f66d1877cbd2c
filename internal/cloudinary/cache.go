package cloudinary

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const versionKeyPrefix = "goonies:asset-version:"

// CachedVersions memoizes successful version lookups in Redis. Failures are
// never cached and Redis errors fall through to the wrapped lookup.
type CachedVersions struct {
	next  VersionLookup
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewCachedVersions(next VersionLookup, client redis.UniversalClient, ttl time.Duration) *CachedVersions {
	return &CachedVersions{next: next, redis: client, ttl: ttl}
}

func (c *CachedVersions) AssetVersion(ctx context.Context, publicID string) (int, error) {
	key := versionKeyPrefix + publicID

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if v, convErr := strconv.Atoi(cached); convErr == nil && v > 0 {
			return v, nil
		}
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "Version cache read failed", "public_id", publicID, "error", err)
	}

	v, err := c.next.AssetVersion(ctx, publicID)
	if err != nil {
		return 0, err
	}
	if err := c.redis.Set(context.WithoutCancel(ctx), key, strconv.Itoa(v), c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Version cache write failed", "public_id", publicID, "error", err)
	}
	return v, nil
}
