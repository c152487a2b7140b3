package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t))
	cfg := NSERateLimit(3)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, cfg.Limit, remaining)
	assert.NoError(t, limiter.Wait(context.Background(), cfg))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))

	var got string
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestNSERateLimit(t *testing.T) {
	tests := []struct {
		name       string
		perSecond  float64
		wantLimit  int
		wantWindow time.Duration
	}{
		{"two per second", 2, 2, time.Second},
		{"one per second", 1, 1, time.Second},
		{"one every two seconds", 0.5, 1, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NSERateLimit(tt.perSecond)
			assert.Equal(t, "nse", cfg.Key)
			assert.Equal(t, tt.wantLimit, cfg.Limit)
			assert.Equal(t, tt.wantWindow, cfg.Window)
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "optionpulse:coa1:NIFTY", Key("coa1", "NIFTY"))
	assert.Equal(t, "signal:latest:NIFTY", LatestSignalKey("NIFTY", ""))
	assert.Equal(t, "signal:latest:NIFTY:25-Jan-2024", LatestSignalKey("NIFTY", "25-Jan-2024"))
}

// Integration: requires REDIS_ADDR
func TestCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	client := Wrap(goredis.NewClient(&goredis.Options{Addr: addr}))
	defer client.Close()
	cache := NewCache(client)
	ctx := context.Background()

	type payload struct{ PCR float64 }
	require.NoError(t, cache.Set(ctx, "roundtrip", payload{PCR: 1.25}, time.Minute))

	var got payload
	found, err := cache.Get(ctx, "roundtrip", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1.25, got.PCR)

	limiter := NewRateLimiter(client)
	cfg := RateLimitConfig{Key: "test-" + time.Now().Format("150405.000"), Limit: 1, Window: time.Minute}
	allowed, _, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _, err = limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
}
