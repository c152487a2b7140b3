package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is anything /health can probe (database pool, redis client)
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness plus dependency status
type HealthHandler struct {
	deps      map[string]Pinger
	startedAt time.Time
}

// NewHealthHandler probes every named dependency on each request
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, startedAt: time.Now()}
}

// Health returns 200 when every dependency answers, 503 otherwise
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":  state,
		"service": "optionpulse",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"checks":  checks,
	})
}
