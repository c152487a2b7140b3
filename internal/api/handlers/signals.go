package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/pipeline"
	"github.com/wonny/optionpulse/pkg/logger"
	"github.com/wonny/optionpulse/pkg/redis"
)

// MetricsReader is the query side of the metrics repository
type MetricsReader interface {
	GetLatest(ctx context.Context, symbol, expiry string) (*contracts.ChainMetricsRecord, error)
	List(ctx context.Context, filter contracts.MetricsFilter) ([]*contracts.ChainMetricsRecord, error)
}

// SymbolRunner runs the pipeline for one configured symbol
type SymbolRunner interface {
	Run(ctx context.Context, symbol string) (*pipeline.RunResult, error)
}

// SignalHandler serves derived option chain signals
// ⭐ SSOT: 시그널 API 핸들러는 이 구조체에서만
type SignalHandler struct {
	repo   MetricsReader
	runner SymbolRunner
	cache  *redis.Cache
	logger *logger.Logger
}

// NewSignalHandler creates a new signal handler; cache may wrap a disabled client
func NewSignalHandler(repo MetricsReader, runner SymbolRunner, cache *redis.Cache, log *logger.Logger) *SignalHandler {
	if cache == nil {
		cache = redis.NewCache(nil)
	}
	return &SignalHandler{
		repo:   repo,
		runner: runner,
		cache:  cache,
		logger: log,
	}
}

func symbolParam(r *http.Request) string {
	return strings.ToUpper(mux.Vars(r)["symbol"])
}

// GetLatest returns the newest record for a symbol
// GET /api/signals/{symbol}/latest?expiry=
func (h *SignalHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := symbolParam(r)
	expiry := r.URL.Query().Get("expiry")

	var cached contracts.ChainMetricsRecord
	hit, err := h.cache.Get(ctx, redis.LatestSignalKey(symbol, expiry), &cached)
	if err != nil {
		h.logger.WithError(err).Warn("Latest signal cache read failed")
	}
	if hit {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	rec, err := h.repo.GetLatest(ctx, symbol, expiry)
	if errors.Is(err, contracts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No signals recorded for "+symbol)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to get latest signal")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest signal")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// ListResponse wraps a page of records
type ListResponse struct {
	Symbol  string                          `json:"symbol"`
	Count   int                             `json:"count"`
	Limit   int                             `json:"limit"`
	Offset  int                             `json:"offset"`
	Records []*contracts.ChainMetricsRecord `json:"records"`
}

// List returns stored records newest first
// GET /api/signals/{symbol}?expiry=&since=&limit=&offset=
func (h *SignalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := contracts.MetricsFilter{
		Symbol: symbolParam(r),
		Expiry: q.Get("expiry"),
	}

	var err error
	if filter.Limit, err = intQuery(q.Get("limit"), 50); err != nil || filter.Limit <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected positive integer)")
		return
	}
	if filter.Offset, err = intQuery(q.Get("offset"), 0); err != nil || filter.Offset < 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'offset' (expected non-negative integer)")
		return
	}
	if s := q.Get("since"); s != "" {
		if filter.Since, err = time.Parse(time.RFC3339, s); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'since' (expected RFC3339)")
			return
		}
	}

	records, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", filter.Symbol).Error("Failed to list signals")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve signals")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Symbol:  filter.Symbol,
		Count:   len(records),
		Limit:   filter.Limit,
		Offset:  filter.Offset,
		Records: records,
	})
}

// RunResponse reports a manual pipeline run
type RunResponse struct {
	RunID    string                          `json:"run_id"`
	Symbol   string                          `json:"symbol"`
	Duration string                          `json:"duration"`
	Records  []*contracts.ChainMetricsRecord `json:"records"`
	Failed   map[string]string               `json:"failed,omitempty"`
}

// Run derives signals for a configured symbol now
// POST /api/signals/{symbol}/run
func (h *SignalHandler) Run(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	res, err := h.runner.Run(r.Context(), symbol)
	if err != nil {
		status := runErrorStatus(err)
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"status": status,
		}).Warn("Manual run failed")
		respondError(w, status, err.Error())
		return
	}

	resp := RunResponse{
		RunID:    res.RunID.String(),
		Symbol:   res.Symbol,
		Duration: res.Duration.String(),
		Records:  res.Records,
	}
	if len(res.Failed) > 0 {
		resp.Failed = make(map[string]string, len(res.Failed))
		for expiry, ferr := range res.Failed {
			resp.Failed[expiry] = ferr.Error()
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// runErrorStatus maps pipeline errors onto HTTP status codes
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnknownSymbol):
		return http.StatusNotFound
	case contracts.IsConfigurationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrSupportStateUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func intQuery(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
