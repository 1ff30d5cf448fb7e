package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dashboardCacheTTL keeps cached dashboard payloads short-lived; the
// dashboard is advisory, not a ledger.
const dashboardCacheTTL = 30 * time.Second

const dashboardCacheVersionKey = "dashboard:version"

// RedisDashboardCache stores rendered dashboard payloads in Redis. Payload
// keys carry a version number and Invalidate bumps it, so every entry written
// before a store mutation stops being addressable after it. Superseded
// entries age out through the TTL.
type RedisDashboardCache struct {
	client *redis.Client
}

func NewRedisDashboardCache(client *redis.Client) *RedisDashboardCache {
	return &RedisDashboardCache{client: client}
}

func (c *RedisDashboardCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.versionedKey(ctx, key)).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *RedisDashboardCache) Set(ctx context.Context, key string, payload []byte) {
	c.client.Set(ctx, c.versionedKey(ctx, key), payload, dashboardCacheTTL)
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context) {
	c.client.Incr(ctx, dashboardCacheVersionKey)
}

func (c *RedisDashboardCache) versionedKey(ctx context.Context, key string) string {
	version, err := c.client.Get(ctx, dashboardCacheVersionKey).Int64()
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("dashboard:v%d:%s", version, key)
}
