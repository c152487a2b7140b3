package supportstate

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/pkg/config"
	"github.com/wonny/optionpulse/pkg/database"
	"github.com/wonny/optionpulse/pkg/redis"
)

var callKey = contracts.SupportKey{Symbol: "NIFTY", Expiry: "25-Jan-2024", Side: contracts.Call}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, found, err := m.Get(ctx, callKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, callKey, contracts.SupportFromOI))
	v, found, err := m.Get(ctx, callKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, contracts.SupportFromOI, v)

	putKey := callKey
	putKey.Side = contracts.Put
	_, found, _ = m.Get(ctx, putKey)
	assert.False(t, found, "keys are scoped per side")
}

func TestMemory_ConcurrentKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for _, expiry := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(expiry string) {
			defer wg.Done()
			key := contracts.SupportKey{Symbol: "NIFTY", Expiry: expiry, Side: contracts.Call}
			for i := 0; i < 100; i++ {
				_ = m.Set(ctx, key, contracts.SupportFromVolume)
				_, _, _ = m.Get(ctx, key)
			}
		}(expiry)
	}
	wg.Wait()

	assert.Equal(t, 4, m.Len())
}

func TestStateless(t *testing.T) {
	ctx := context.Background()
	var s Stateless

	require.NoError(t, s.Set(ctx, callKey, contracts.SupportFromVolume))
	_, found, err := s.Get(ctx, callKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNew_SelectsBackend(t *testing.T) {
	disabled, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	assert.Equal(t, "memory", Name(New(disabled, nil, time.Hour)))
	assert.Equal(t, "memory", Name(New(nil, nil, time.Hour)))
	assert.Equal(t, "stateless", Name(Stateless{}))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "optionpulse:coa1:NIFTY:25-Jan-2024:CE:2024-01-25", redisKey(callKey, "2024-01-25"))
}

func TestTradingDay(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"morning session", time.Date(2024, 1, 25, 4, 0, 0, 0, time.UTC), "2024-01-25"},
		{"utc evening is next ist day", time.Date(2024, 1, 25, 20, 0, 0, 0, time.UTC), "2024-01-26"},
		{"ist midnight boundary", time.Date(2024, 1, 25, 18, 29, 59, 0, time.UTC), "2024-01-25"},
		{"just after ist midnight", time.Date(2024, 1, 25, 18, 30, 0, 0, time.UTC), "2024-01-26"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TradingDay(tt.at))
		})
	}
}

// fakeClock is advanced by tests to cross trading days
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMemory_ExpiresOnNextTradingDay(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 1, 25, 4, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.now = clock.now

	require.NoError(t, m.Set(ctx, callKey, contracts.SupportFromVolume))

	clock.t = clock.t.Add(6 * time.Hour)
	v, found, err := m.Get(ctx, callKey)
	require.NoError(t, err)
	assert.True(t, found, "same trading day keeps the lock")
	assert.Equal(t, contracts.SupportFromVolume, v)

	clock.t = clock.t.Add(24 * time.Hour)
	_, found, err = m.Get(ctx, callKey)
	require.NoError(t, err)
	assert.False(t, found, "a new trading day starts without a lock")

	require.NoError(t, m.Set(ctx, callKey, contracts.SupportFromOI))
	v, found, _ = m.Get(ctx, callKey)
	assert.True(t, found)
	assert.Equal(t, contracts.SupportFromOI, v)
}

// Integration: requires REDIS_ADDR
func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: addr}))
	defer client.Close()

	ctx := context.Background()
	store := NewRedis(client, time.Minute)
	key := contracts.SupportKey{Symbol: "TEST", Expiry: time.Now().Format("150405.000"), Side: contracts.Put}

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, key, contracts.SupportFromVolume))
	v, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, contracts.SupportFromVolume, v)

	store.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "next trading day reads a different key")
}

// Integration: requires DATABASE_URL
func TestPostgres_RoundTripAndDayRollover(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, (&database.DB{Pool: pool}).Migrate(ctx))

	clock := &fakeClock{t: time.Date(2024, 1, 25, 4, 0, 0, 0, time.UTC)}
	store := NewPostgres(pool)
	store.now = clock.now
	key := contracts.SupportKey{Symbol: "TEST", Expiry: time.Now().Format("150405.000"), Side: contracts.Call}
	defer pool.Exec(ctx, `DELETE FROM coa1_support_state WHERE symbol = $1 AND expiry_date = $2`, key.Symbol, key.Expiry)

	require.NoError(t, store.Set(ctx, key, contracts.SupportFromOI))
	v, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, contracts.SupportFromOI, v)

	clock.t = clock.t.Add(24 * time.Hour)
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "yesterday's row must not lock today")

	require.NoError(t, store.Set(ctx, key, contracts.SupportFromVolume))
	v, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, contracts.SupportFromVolume, v)
}
