package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wonny/optionpulse/pkg/config"
	"github.com/wonny/optionpulse/pkg/httputil"
	"github.com/wonny/optionpulse/pkg/logger"
	"github.com/wonny/optionpulse/pkg/redis"
)

// Client handles communication with the NSE option chain API
// ⭐ SSOT: NSE API 호출은 이 클라이언트에서만
type Client struct {
	httpClient     *httputil.Client
	logger         *logger.Logger
	baseURL        string
	vixURL         string
	vixFallbackURL string

	mu     sync.Mutex
	warmed bool
}

// NewHTTPClient builds the throttled HTTP client NSE expects: browser headers,
// a local token bucket and, when enabled, the Redis window shared across processes
func NewHTTPClient(cfg config.NSEConfig, log *logger.Logger, rc *redis.Client) *httputil.Client {
	hc := httputil.New(log, cfg.Timeout).
		WithRetry(cfg.MaxRetries, httputil.DefaultInitialDelay).
		WithHeader("User-Agent", cfg.UserAgent).
		WithHeader("Accept", "application/json, text/plain, */*").
		WithHeader("Accept-Language", "en-US,en;q=0.9").
		WithHeader("Referer", cfg.BaseURL+"/option-chain").
		WithLocalLimiter(cfg.RequestsPerSec, cfg.Burst)

	if cfg.SharedRateLimit && rc.Enabled() {
		hc = hc.WithRateLimiter(redis.NewRateLimiter(rc), redis.NSERateLimit(cfg.RequestsPerSec))
	}
	return hc
}

// NewClient creates a new NSE client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.NSEConfig) *Client {
	return &Client{
		httpClient:     httpClient,
		logger:         log,
		baseURL:        cfg.BaseURL,
		vixURL:         cfg.VIXURL,
		vixFallbackURL: cfg.VIXFallbackURL,
	}
}

// warmUp visits the home page once so the cookie jar holds a session;
// the API answers 401 without it. Failures are logged and retried on the next call.
func (c *Client) warmUp(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return
	}

	if _, err := c.httpClient.GetBody(ctx, c.baseURL+"/"); err != nil {
		c.logger.WithError(err).Warn("NSE session warm-up failed")
		return
	}
	c.warmed = true
}

// resetSession forces a new warm-up after the API rejected the session
func (c *Client) resetSession() {
	c.mu.Lock()
	c.warmed = false
	c.mu.Unlock()
}

// fetchJSON GETs url and decodes the body into v
func (c *Client) fetchJSON(ctx context.Context, url string, v interface{}) error {
	c.warmUp(ctx)

	body, err := c.httpClient.GetBody(ctx, url)
	if err != nil {
		if httputil.IsAuthError(err) {
			c.resetSession()
		}
		return fmt.Errorf("HTTP request failed: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
