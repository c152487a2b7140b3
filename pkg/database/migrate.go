package database

import (
	"context"
	"fmt"
)

// schema is applied in order; every statement must be idempotent
var schema = []string{
	`create table if not exists option_chain_metrics (
		id uuid primary key,
		run_id uuid not null,
		symbol text not null,
		expiry_date text not null,
		atm_strike int not null,
		current_price double precision not null,
		volatility_index double precision not null,
		total_change_call_oi double precision not null,
		total_change_put_oi double precision not null,
		difference_total_change double precision not null,
		pcr double precision not null,
		call_interpretation text not null,
		put_interpretation text not null,
		volume_action_signal text not null,
		price_action_signal text not null,
		overall_market_signal text not null,
		vix_upper_strike int not null,
		vix_lower_strike int not null,
		signal_breakdown jsonb,
		coa1 jsonb not null,
		strikes jsonb not null,
		record_time timestamptz not null default now()
	);`,
	`create index if not exists idx_option_chain_metrics_symbol_time
		on option_chain_metrics (symbol, record_time desc);`,
	`create index if not exists idx_option_chain_metrics_symbol_expiry_time
		on option_chain_metrics (symbol, expiry_date, record_time desc);`,
	`create table if not exists coa1_support_state (
		symbol text not null,
		expiry_date text not null,
		side text not null,
		trading_day text not null default '',
		support_from text not null,
		updated_at timestamptz not null default now(),
		primary key (symbol, expiry_date, side)
	);`,
	// 거래일 컬럼 이전 테이블: 빈 값은 어떤 날과도 일치하지 않음
	`alter table coa1_support_state add column if not exists trading_day text not null default '';`,
}

// Migrate creates the tables this service writes to
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}
	return nil
}
