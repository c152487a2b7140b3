package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/optionpulse/internal/contracts"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ChainMetricsRepository implements contracts.MetricsRepository
// ⭐ SSOT: 옵션 체인 지표 저장/조회는 여기서만
type ChainMetricsRepository struct {
	pool *pgxpool.Pool
}

// NewChainMetricsRepository creates a new chain metrics repository
func NewChainMetricsRepository(pool *pgxpool.Pool) *ChainMetricsRepository {
	return &ChainMetricsRepository{pool: pool}
}

const selectColumns = `
	id, run_id, symbol, expiry_date, atm_strike, current_price, volatility_index,
	total_change_call_oi, total_change_put_oi, difference_total_change, pcr,
	call_interpretation, put_interpretation,
	volume_action_signal, price_action_signal, overall_market_signal,
	vix_upper_strike, vix_lower_strike,
	signal_breakdown, coa1, strikes, record_time
`

// Save inserts one record; per-strike entries and COA1 go to JSONB columns
func (r *ChainMetricsRepository) Save(ctx context.Context, rec *contracts.ChainMetricsRecord) error {
	query := `
		INSERT INTO option_chain_metrics (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	strikes := rec.Strikes
	if strikes == nil {
		strikes = []contracts.StrikeEntry{}
	}

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.RunID, rec.Symbol, rec.ExpiryDate, rec.ATMStrike, rec.CurrentPrice, rec.VolatilityIndex,
		rec.TotalChangeInCallOI, rec.TotalChangeInPutOI, rec.Difference, rec.PCR,
		string(rec.CallInterpretation), string(rec.PutInterpretation),
		string(rec.VolumeActionSignal), string(rec.PriceActionSignal), string(rec.OverallMarketSignal),
		rec.VIXUpperStrike, rec.VIXLowerStrike,
		rec.Breakdown, rec.COA1, strikes, rec.RecordTime,
	)
	if err != nil {
		return fmt.Errorf("failed to save chain metrics %s/%s: %w", rec.Symbol, rec.ExpiryDate, err)
	}
	return nil
}

// GetLatest returns the newest record for symbol (and expiry, when given).
// contracts.ErrNotFound when nothing is stored.
func (r *ChainMetricsRepository) GetLatest(ctx context.Context, symbol, expiry string) (*contracts.ChainMetricsRecord, error) {
	query := `SELECT ` + selectColumns + `
		FROM option_chain_metrics
		WHERE symbol = $1 AND ($2::text = '' OR expiry_date = $2::text)
		ORDER BY record_time DESC
		LIMIT 1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, symbol, expiry))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest chain metrics: %w", err)
	}
	return rec, nil
}

// List returns records newest first
func (r *ChainMetricsRepository) List(ctx context.Context, filter contracts.MetricsFilter) ([]*contracts.ChainMetricsRecord, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain metrics: %w", err)
	}
	defer rows.Close()

	records := make([]*contracts.ChainMetricsRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

// DeleteOlderThan removes records whose record_time is before cutoff
func (r *ChainMetricsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM option_chain_metrics WHERE record_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old chain metrics: %w", err)
	}
	return tag.RowsAffected(), nil
}

func buildListQuery(filter contracts.MetricsFilter) (string, []interface{}) {
	var where []string
	var args []interface{}

	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Symbol != "" {
		add("symbol = $%d", filter.Symbol)
	}
	if filter.Expiry != "" {
		add("expiry_date = $%d", filter.Expiry)
	}
	if !filter.Since.IsZero() {
		add("record_time >= $%d", filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + selectColumns + " FROM option_chain_metrics")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&sb, " ORDER BY record_time DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return sb.String(), args
}

func scanRecord(row pgx.Row) (*contracts.ChainMetricsRecord, error) {
	var rec contracts.ChainMetricsRecord
	var callInterp, putInterp, volume, price, overall string

	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.Symbol, &rec.ExpiryDate, &rec.ATMStrike, &rec.CurrentPrice, &rec.VolatilityIndex,
		&rec.TotalChangeInCallOI, &rec.TotalChangeInPutOI, &rec.Difference, &rec.PCR,
		&callInterp, &putInterp,
		&volume, &price, &overall,
		&rec.VIXUpperStrike, &rec.VIXLowerStrike,
		&rec.Breakdown, &rec.COA1, &rec.Strikes, &rec.RecordTime,
	)
	if err != nil {
		return nil, err
	}

	rec.CallInterpretation = contracts.ContractInterpretation(callInterp)
	rec.PutInterpretation = contracts.ContractInterpretation(putInterp)
	rec.VolumeActionSignal = contracts.Direction(volume)
	rec.PriceActionSignal = contracts.Direction(price)
	rec.OverallMarketSignal = contracts.MarketSignal(overall)
	return &rec, nil
}
