package contracts

import (
	"context"
	"fmt"
	"time"
)

// MarketDataSource fetches raw chain and volatility data from the exchange
// ⭐ SSOT: 시장 데이터 수집 인터페이스
type MarketDataSource interface {
	FetchChain(ctx context.Context, symbol string) (*ChainFeed, error)
	FetchVolatilityIndex(ctx context.Context) (float64, error)
}

// SupportKey scopes sticky COA1 state to one side of one symbol/expiry
type SupportKey struct {
	Symbol string
	Expiry string
	Side   Side
}

func (k SupportKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Symbol, k.Expiry, k.Side)
}

// SupportStateStore persists the last COA1 support source per key
// ⭐ SSOT: COA1 지지 상태 저장 인터페이스
type SupportStateStore interface {
	// Get returns found=false when nothing was stored for key
	Get(ctx context.Context, key SupportKey) (SupportFrom, bool, error)
	Set(ctx context.Context, key SupportKey, value SupportFrom) error
}

// ResultSink receives every derived record
type ResultSink interface {
	Save(ctx context.Context, record *ChainMetricsRecord) error
}

// MetricsRepository is the queryable result store
type MetricsRepository interface {
	ResultSink
	GetLatest(ctx context.Context, symbol, expiry string) (*ChainMetricsRecord, error)
	List(ctx context.Context, filter MetricsFilter) ([]*ChainMetricsRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
