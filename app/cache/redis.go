package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const entitlementKeyPrefix = "entitlement:"

// EntitlementCache remembers positive entitlement decisions only. Grants are
// never revoked, so a cached entry never goes stale.
type EntitlementCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewEntitlementCache(client redis.Cmdable, ttl time.Duration) *EntitlementCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EntitlementCache{client: client, ttl: ttl}
}

func (c *EntitlementCache) IsGranted(ctx context.Context, viewerID, videoID string) (bool, error) {
	err := c.client.Get(ctx, entitlementKey(viewerID, videoID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *EntitlementCache) MarkGranted(ctx context.Context, viewerID, videoID string) error {
	return c.client.Set(ctx, entitlementKey(viewerID, videoID), "1", c.ttl).Err()
}

func entitlementKey(viewerID, videoID string) string {
	return entitlementKeyPrefix + viewerID + ":" + videoID
}
