package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/engine"
	"github.com/wonny/optionpulse/internal/supportstate"
	"github.com/wonny/optionpulse/internal/symbolconfig"
	"github.com/wonny/optionpulse/pkg/logger"
	"github.com/wonny/optionpulse/pkg/redis"
)

// ErrUnknownSymbol is returned by Run for a symbol missing from symbols.yaml
var ErrUnknownSymbol = errors.New("symbol not configured")

// Broadcaster receives every saved record (websocket hub)
type Broadcaster interface {
	Broadcast(rec *contracts.ChainMetricsRecord)
}

// Options tune one Service
type Options struct {
	Concurrency       int           // expiries derived in parallel per symbol
	StatelessFallback bool          // re-derive without stickiness when the support store fails
	RetryDelay        time.Duration // pause before the single per-symbol retry in RunAll
}

// RunResult is the outcome of one symbol run
type RunResult struct {
	RunID    uuid.UUID
	Symbol   string
	Records  []*contracts.ChainMetricsRecord
	Failed   map[string]error // expiry → error
	Duration time.Duration
}

// Service fetches, derives, stores and publishes option chain signals
// ⭐ SSOT: 수집 → 파생 → 저장 → 배포 흐름은 여기서만
type Service struct {
	source    contracts.MarketDataSource
	sink      contracts.ResultSink
	deriver   *engine.Deriver
	stateless *engine.Deriver
	symbols   *symbolconfig.File

	cache       *redis.Cache
	broadcaster Broadcaster

	opts   Options
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new pipeline service
func NewService(
	source contracts.MarketDataSource,
	sink contracts.ResultSink,
	store contracts.SupportStateStore,
	symbols *symbolconfig.File,
	log *logger.Logger,
	opts Options,
) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Service{
		source:    source,
		sink:      sink,
		deriver:   engine.New(store, log),
		stateless: engine.New(supportstate.Stateless{}, log),
		symbols:   symbols,
		cache:     redis.NewCache(nil),
		opts:      opts,
		logger:    log,
		now:       time.Now,
	}
}

// WithCache keeps the latest record and VIX in Redis
func (s *Service) WithCache(c *redis.Cache) *Service {
	s.cache = c
	return s
}

func (s *Service) WithBroadcaster(b Broadcaster) *Service {
	s.broadcaster = b
	return s
}

// Symbols lists the configured symbols
func (s *Service) Symbols() []string {
	return s.symbols.Names()
}

// Run runs one configured symbol by name
func (s *Service) Run(ctx context.Context, symbol string) (*RunResult, error) {
	sc, ok := s.symbols.Lookup(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return s.RunSymbol(ctx, sc)
}

// RunAll runs every configured symbol in order. A failed symbol is retried once,
// then logged; the next symbol proceeds either way.
func (s *Service) RunAll(ctx context.Context) ([]*RunResult, error) {
	results := make([]*RunResult, 0, len(s.symbols.Symbols))
	var failed []string

	for _, sc := range s.symbols.Symbols {
		res, err := s.RunSymbol(ctx, sc)
		if err != nil && ctx.Err() == nil {
			s.logger.WithField("symbol", sc.Symbol).WithError(err).Warn("Symbol run failed, retrying once")

			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.opts.RetryDelay):
			}
			res, err = s.RunSymbol(ctx, sc)
		}

		if err != nil {
			s.logger.WithField("symbol", sc.Symbol).WithError(err).Error("Symbol run failed")
			failed = append(failed, sc.Symbol)
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			continue
		}
		results = append(results, res)
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("%d of %d symbols failed: %v", len(failed), len(s.symbols.Symbols), failed)
	}
	return results, nil
}

// RunSymbol fetches the chain and VIX, then derives every resolved expiry.
// Fails only when fetching fails or no expiry produced a record.
func (s *Service) RunSymbol(ctx context.Context, sc symbolconfig.SymbolConfig) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID:  uuid.New(),
		Symbol: sc.Symbol,
		Failed: make(map[string]error),
	}
	log := s.logger.WithFields(map[string]interface{}{
		"symbol": sc.Symbol,
		"run_id": result.RunID.String(),
	})

	feed, vix, err := s.fetch(ctx, sc.Symbol)
	if err != nil {
		return nil, err
	}

	expiries := ResolveExpiries(sc, feed.Expiries)
	if len(expiries) == 0 {
		return nil, fmt.Errorf("%s: no expiries to process", sc.Symbol)
	}

	recordTime := s.now().UTC()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, expiry := range expiries {
		g.Go(func() error {
			rec, err := s.deriveAndSave(gctx, sc, feed, vix, expiry, result.RunID, recordTime)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[expiry] = err
				stage, _ := contracts.StageOf(err)
				log.WithFields(map[string]interface{}{
					"expiry": expiry,
					"stage":  stage.String(),
				}).WithError(err).Error("Expiry derivation failed")
				return nil
			}
			result.Records = append(result.Records, rec)
			return nil
		})
	}
	_ = g.Wait()

	order := make(map[string]int, len(expiries))
	for i, e := range expiries {
		order[e] = i
	}
	sort.Slice(result.Records, func(i, j int) bool {
		return order[result.Records[i].ExpiryDate] < order[result.Records[j].ExpiryDate]
	})
	result.Duration = time.Since(start)

	log.WithFields(map[string]interface{}{
		"expiries": len(expiries),
		"saved":    len(result.Records),
		"failed":   len(result.Failed),
		"vix":      vix,
		"duration": result.Duration.Seconds(),
	}).Info("Symbol run completed")

	if len(result.Records) == 0 {
		for _, e := range expiries {
			if err := result.Failed[e]; err != nil {
				return result, fmt.Errorf("%s: every expiry failed: %w", sc.Symbol, err)
			}
		}
		return result, fmt.Errorf("%s: every expiry failed", sc.Symbol)
	}
	return result, nil
}

// fetch pulls the chain and VIX concurrently
func (s *Service) fetch(ctx context.Context, symbol string) (*contracts.ChainFeed, float64, error) {
	var feed *contracts.ChainFeed
	var vix float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feed, err = s.source.FetchChain(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		vix, err = s.volatilityIndex(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("%s: fetch: %w", symbol, err)
	}
	return feed, vix, nil
}

// volatilityIndex falls back to the last cached VIX when the exchange call fails
func (s *Service) volatilityIndex(ctx context.Context) (float64, error) {
	vix, err := s.source.FetchVolatilityIndex(ctx)
	if err == nil {
		if cerr := s.cache.Set(ctx, redis.VolatilityKey(), vix, redis.TTLVolatility); cerr != nil {
			s.logger.WithError(cerr).Warn("Failed to cache VIX")
		}
		return vix, nil
	}

	var cached float64
	if hit, cerr := s.cache.Get(ctx, redis.VolatilityKey(), &cached); cerr == nil && hit {
		s.logger.WithError(err).WithField("vix", cached).Warn("VIX fetch failed, using cached value")
		return cached, nil
	}
	return 0, fmt.Errorf("volatility index: %w", err)
}

func (s *Service) deriveAndSave(
	ctx context.Context,
	sc symbolconfig.SymbolConfig,
	feed *contracts.ChainFeed,
	vix float64,
	expiry string,
	runID uuid.UUID,
	recordTime time.Time,
) (*contracts.ChainMetricsRecord, error) {
	in := engine.Input{
		Symbol:          sc.Symbol,
		Records:         feed.Records,
		UnderlyingPrice: feed.UnderlyingPrice,
		ValidStrikes:    feed.Strikes,
		Expiry:          expiry,
		VolatilityIndex: vix,
		Config:          engine.Config{StrikeRangeLimit: sc.Range(), StrikeStep: sc.StrikeStep},
	}

	res, err := s.deriver.Derive(ctx, in)
	if err != nil && s.opts.StatelessFallback && errors.Is(err, contracts.ErrSupportStateUnavailable) {
		s.logger.WithChain(sc.Symbol, expiry).WithError(err).Warn("Support state unavailable, deriving without stickiness")
		res, err = s.stateless.Derive(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	rec := &contracts.ChainMetricsRecord{
		ID:              uuid.New(),
		RunID:           runID,
		Symbol:          sc.Symbol,
		ExpiryDate:      expiry,
		ATMStrike:       res.ATMStrike,
		CurrentPrice:    feed.UnderlyingPrice,
		VolatilityIndex: vix,
		RecordTime:      recordTime,
		ChainMetrics:    *res.Metrics,
	}

	if err := s.sink.Save(ctx, rec); err != nil {
		return nil, contracts.AtStage(contracts.StagePublish, fmt.Errorf("save: %w", err))
	}

	s.publish(ctx, rec)
	return rec, nil
}

// publish caches the record as latest and pushes it to live subscribers
func (s *Service) publish(ctx context.Context, rec *contracts.ChainMetricsRecord) {
	for _, key := range []string{
		redis.LatestSignalKey(rec.Symbol, rec.ExpiryDate),
		redis.LatestSignalKey(rec.Symbol, ""),
	} {
		if err := s.cache.Set(ctx, key, rec, redis.TTLLatestSignal); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to cache latest record")
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(rec)
	}
}

// ResolveExpiries picks the expiries one run processes:
// the nearest TopExpiryCount listed ones, or the single fixed expiry.
func ResolveExpiries(sc symbolconfig.SymbolConfig, listed []string) []string {
	if !sc.AutoFillExpiries {
		if sc.Expiry == "" {
			return nil
		}
		return []string{sc.Expiry}
	}
	n := sc.TopExpiryCount
	if n <= 0 || len(listed) <= n {
		return listed
	}
	return listed[:n]
}
