package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"warden/internal/geo"
	"warden/pkg/platform/sentinel"
)

const geoKeyPrefix = "geo:ip:"

// RedisCache shares resolved records across instances. Keys expire when the
// record stops being fresh, so a hit is never older than the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, now: time.Now}
}

func (c *RedisCache) Get(ctx context.Context, ip string) (geo.IPGeolocation, error) {
	raw, err := c.client.Get(ctx, geoKeyPrefix+ip).Bytes()
	if errors.Is(err, redis.Nil) {
		return geo.IPGeolocation{}, sentinel.ErrNotFound
	}
	if err != nil {
		return geo.IPGeolocation{}, fmt.Errorf("get geolocation: %w", err)
	}
	var rec geo.IPGeolocation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return geo.IPGeolocation{}, fmt.Errorf("decode geolocation: %w", err)
	}
	return rec, nil
}

// Set stores rec for the remainder of its freshness window. Degraded or
// already stale records are skipped.
func (c *RedisCache) Set(ctx context.Context, rec geo.IPGeolocation) error {
	if rec.Degraded {
		return nil
	}
	remaining := c.ttl - c.now().Sub(rec.LastUpdated)
	if remaining <= 0 {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode geolocation: %w", err)
	}
	if err := c.client.Set(ctx, geoKeyPrefix+rec.IP, raw, remaining).Err(); err != nil {
		return fmt.Errorf("set geolocation: %w", err)
	}
	return nil
}
