package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKey = "stats:snapshot:v1"

// StatsCache stores the latest aggregated stats as JSON under a single key.
// A nil *StatsCache, or one without a client, never hits and never fails.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache wraps client. A non-positive ttl disables caching.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Load decodes the cached snapshot into dst and reports whether there was one.
func (c *StatsCache) Load(ctx context.Context, dst any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}

	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stats cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("stats cache decode: %w", err)
	}
	return true, nil
}

// Store replaces the cached snapshot.
func (c *StatsCache) Store(ctx context.Context, v any) error {
	if !c.enabled() {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot. Called after every mutation.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, statsKey).Err()
}
