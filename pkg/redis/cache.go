package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides JSON caching on top of Client
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
}

func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a cached value; a miss (or disabled Redis) returns false, nil
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, Key("cache", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, Key("cache", key), data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, Key("cache", key)).Err()
}

// TTLs
const (
	TTLLatestSignal = 5 * time.Minute  // one scheduler tick
	TTLVolatility   = 30 * time.Minute // fallback when a fetch fails; spans several ticks
)

// LatestSignalKey caches the newest record per symbol and expiry ("" = any expiry)
func LatestSignalKey(symbol, expiry string) string {
	if expiry == "" {
		return fmt.Sprintf("signal:latest:%s", symbol)
	}
	return fmt.Sprintf("signal:latest:%s:%s", symbol, expiry)
}

func VolatilityKey() string {
	return "vix:current"
}
