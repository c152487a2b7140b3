package commands

import (
	"context"
	"fmt"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/data/repos"
	"github.com/wonny/optionpulse/internal/external/nse"
	"github.com/wonny/optionpulse/internal/pipeline"
	"github.com/wonny/optionpulse/internal/scheduler"
	"github.com/wonny/optionpulse/internal/scheduler/jobs"
	"github.com/wonny/optionpulse/internal/supportstate"
	"github.com/wonny/optionpulse/internal/symbolconfig"
	"github.com/wonny/optionpulse/pkg/config"
	"github.com/wonny/optionpulse/pkg/database"
	"github.com/wonny/optionpulse/pkg/logger"
	"github.com/wonny/optionpulse/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	cache   *redis.Cache
	store   contracts.SupportStateStore
	repo    *repos.ChainMetricsRepository
	symbols *symbolconfig.File
	service *pipeline.Service
}

// newApp wires config → logger → postgres → redis → NSE client → pipeline
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Symbol config
	symbols, err := symbolconfig.Load(cfg.SymbolsFile)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// 5. Redis (optional; a failed connection degrades to Postgres state and no cache)
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = nil
	}

	// 6. NSE client
	httpClient := nse.NewHTTPClient(cfg.NSE, log, rc)
	nseClient := nse.NewClient(httpClient, log, cfg.NSE)

	// 7. Stores
	store := supportstate.New(rc, db.Pool, cfg.Engine.SupportStateTTL)
	repo := repos.NewChainMetricsRepository(db.Pool)
	cache := redis.NewCache(rc)

	// 8. Pipeline
	service := pipeline.NewService(nseClient, repo, store, symbols, log, pipeline.Options{
		Concurrency:       cfg.Engine.Concurrency,
		StatelessFallback: cfg.Engine.StatelessFallback,
		RetryDelay:        cfg.Engine.RetryDelay,
	}).WithCache(cache)

	log.WithFields(map[string]interface{}{
		"symbols":       symbols.Names(),
		"support_store": supportstate.Name(store),
		"redis":         rc.Enabled(),
	}).Info("Application wired")

	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		redis:   rc,
		cache:   cache,
		store:   store,
		repo:    repo,
		symbols: symbols,
		service: service,
	}, nil
}

// newScheduler registers the signal and retention jobs
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewOptionSignalsJob(a.service, a.cfg.Engine.Schedule, a.log)); err != nil {
		return nil, fmt.Errorf("add option signals job: %w", err)
	}
	if err := sched.AddJob(jobs.NewRetentionJob(a.repo, a.cfg.Engine.Retention, a.cfg.Engine.RetentionSchedule, a.log)); err != nil {
		return nil, fmt.Errorf("add retention job: %w", err)
	}

	return sched, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}
