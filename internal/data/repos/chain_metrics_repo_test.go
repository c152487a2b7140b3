package repos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/pkg/database"
)

func TestBuildListQuery(t *testing.T) {
	since := time.Date(2024, 1, 19, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    contracts.MetricsFilter
		wantWhere string
		wantTail  string
		wantArgs  []interface{}
	}{
		{
			name:     "no filter uses default limit",
			filter:   contracts.MetricsFilter{},
			wantTail: "LIMIT $1 OFFSET $2",
			wantArgs: []interface{}{DefaultListLimit, 0},
		},
		{
			name:      "symbol and expiry",
			filter:    contracts.MetricsFilter{Symbol: "NIFTY", Expiry: "25-Jan-2024", Limit: 10, Offset: 20},
			wantWhere: "WHERE symbol = $1 AND expiry_date = $2",
			wantTail:  "LIMIT $3 OFFSET $4",
			wantArgs:  []interface{}{"NIFTY", "25-Jan-2024", 10, 20},
		},
		{
			name:      "since and clamped limit",
			filter:    contracts.MetricsFilter{Symbol: "BANKNIFTY", Since: since, Limit: 5000, Offset: -3},
			wantWhere: "WHERE symbol = $1 AND record_time >= $2",
			wantTail:  "LIMIT $3 OFFSET $4",
			wantArgs:  []interface{}{"BANKNIFTY", since, MaxListLimit, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			if tt.wantWhere != "" {
				assert.Contains(t, query, tt.wantWhere)
			} else {
				assert.NotContains(t, query, "WHERE")
			}
			assert.Contains(t, query, "ORDER BY record_time DESC")
			assert.Contains(t, query, tt.wantTail)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, (&database.DB{Pool: pool}).Migrate(context.Background()))
	return pool
}

func sampleRecord(symbol, expiry string, at time.Time) *contracts.ChainMetricsRecord {
	return &contracts.ChainMetricsRecord{
		ID:              uuid.New(),
		RunID:           uuid.New(),
		Symbol:          symbol,
		ExpiryDate:      expiry,
		ATMStrike:       18000,
		CurrentPrice:    18010.5,
		VolatilityIndex: 15,
		RecordTime:      at,
		ChainMetrics: contracts.ChainMetrics{
			TotalChangeInCallOI: 2100,
			TotalChangeInPutOI:  6300,
			Difference:          -4200,
			PCR:                 3,
			CallInterpretation:  contracts.BuyingContracts,
			PutInterpretation:   contracts.SellingContracts,
			VolumeActionSignal:  contracts.UpPlus,
			PriceActionSignal:   contracts.Up,
			OverallMarketSignal: contracts.Bullish,
			VIXUpperStrike:      18150,
			VIXLowerStrike:      17850,
			Breakdown:           &contracts.SignalBreakdown{Bullish: 7, BullishPercentage: 100},
			COA1: contracts.COA1Metrics{
				Call:   contracts.COA1Side{StrikeWithHighestVolume: 18000, SupportFrom: contracts.SupportFromBoth, DirectionalSignal: contracts.Strong},
				Put:    contracts.COA1Side{StrikeWithHighestVolume: 17500, SupportFrom: contracts.SupportFromBoth, DirectionalSignal: contracts.Strong},
				Signal: contracts.COA1EOB,
			},
			Strikes: []contracts.StrikeEntry{{StrikePrice: 18000}},
		},
	}
}

func TestChainMetricsRepository_Integration(t *testing.T) {
	pool := openTestPool(t)
	repo := NewChainMetricsRepository(pool)
	ctx := context.Background()

	symbol := "TEST" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM option_chain_metrics WHERE symbol = $1`, symbol)
	})

	now := time.Now().UTC().Truncate(time.Millisecond)
	older := sampleRecord(symbol, "25-Jan-2024", now.Add(-48*time.Hour))
	newer := sampleRecord(symbol, "01-Feb-2024", now)
	newer.Breakdown = nil
	newer.OverallMarketSignal = contracts.MarketSignalUndetermined

	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	latest, err := repo.GetLatest(ctx, symbol, "")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Nil(t, latest.Breakdown)
	assert.Equal(t, contracts.MarketSignalUndetermined, latest.OverallMarketSignal)

	byExpiry, err := repo.GetLatest(ctx, symbol, "25-Jan-2024")
	require.NoError(t, err)
	assert.Equal(t, older.ID, byExpiry.ID)
	require.NotNil(t, byExpiry.Breakdown)
	assert.Equal(t, 7, byExpiry.Breakdown.Bullish)
	assert.Equal(t, contracts.COA1EOB, byExpiry.COA1.Signal)
	assert.Len(t, byExpiry.Strikes, 1)

	list, err := repo.List(ctx, contracts.MetricsFilter{Symbol: symbol})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	_, err = repo.GetLatest(ctx, symbol, "25-Jan-2024")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}
