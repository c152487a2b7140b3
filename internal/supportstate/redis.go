package supportstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/pkg/redis"
)

// Redis stores support state as optionpulse:coa1:{symbol}:{expiry}:{side}:{trading day}.
// ttl only evicts past days; a new day reads a different key.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, now: time.Now}
}

func redisKey(key contracts.SupportKey, day string) string {
	return redis.Key("coa1", key.Symbol, key.Expiry, string(key.Side), day)
}

func (r *Redis) Get(ctx context.Context, key contracts.SupportKey) (contracts.SupportFrom, bool, error) {
	v, err := r.client.Redis().Get(ctx, redisKey(key, TradingDay(r.now()))).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &contracts.SupportStateError{Op: "get", Key: key, Err: err}
	}

	value := contracts.SupportFrom(v)
	if !value.Valid() {
		return "", false, &contracts.SupportStateError{Op: "get", Key: key, Err: fmt.Errorf("unknown value %q", v)}
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key contracts.SupportKey, value contracts.SupportFrom) error {
	if err := r.client.Redis().Set(ctx, redisKey(key, TradingDay(r.now())), string(value), r.ttl).Err(); err != nil {
		return &contracts.SupportStateError{Op: "set", Key: key, Err: err}
	}
	return nil
}
