package supportstate

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/pkg/redis"
)

// New picks the backing store: Redis when enabled, else Postgres, else in-memory
func New(rc *redis.Client, pool *pgxpool.Pool, ttl time.Duration) contracts.SupportStateStore {
	switch {
	case rc != nil && rc.Enabled():
		return NewRedis(rc, ttl)
	case pool != nil:
		return NewPostgres(pool)
	}
	return NewMemory()
}

// Name describes a store for logs
func Name(store contracts.SupportStateStore) string {
	switch store.(type) {
	case *Redis:
		return "redis"
	case *Postgres:
		return "postgres"
	case *Memory:
		return "memory"
	case Stateless:
		return "stateless"
	}
	return "custom"
}
