package supportstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/optionpulse/internal/contracts"
)

// Postgres stores support state in coa1_support_state.
// One row per key; a row written on an earlier trading day reads as absent and is overwritten by the next Set.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

func (p *Postgres) Get(ctx context.Context, key contracts.SupportKey) (contracts.SupportFrom, bool, error) {
	query := `
		SELECT support_from
		FROM coa1_support_state
		WHERE symbol = $1 AND expiry_date = $2 AND side = $3 AND trading_day = $4
	`

	var v string
	err := p.pool.QueryRow(ctx, query, key.Symbol, key.Expiry, string(key.Side), TradingDay(p.now())).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) Set(ctx context.Context, key contracts.SupportKey, value contracts.SupportFrom) error {
	query := `
		INSERT INTO coa1_support_state (symbol, expiry_date, side, trading_day, support_from, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (symbol, expiry_date, side) DO UPDATE SET
			trading_day = EXCLUDED.trading_day,
			support_from = EXCLUDED.support_from,
			updated_at = NOW()
	`

	day := TradingDay(p.now())
	if _, err := p.pool.Exec(ctx, query, key.Symbol, key.Expiry, string(key.Side), day, string(value)); err != nil {
		return &contracts.SupportStateError{Op: "set", Key: key, Err: err}
	}
	return nil
}
