package nse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type vixResponse struct {
	CurrentVixSnapShot []struct {
		CurrentPrice json.RawMessage `json:"CURRENT_PRICE"`
	} `json:"currentVixSnapShot"`
}

// vixSelectors are tried in order on the HTML fallback page
var vixSelectors = []string{"#vixValue", ".vix-value", "#vixTable td"}

// FetchVolatilityIndex returns India VIX truncated to a whole number.
// JSON first; an HTML body (or the fallback page) is scraped with goquery.
func (c *Client) FetchVolatilityIndex(ctx context.Context) (float64, error) {
	c.warmUp(ctx)

	body, err := c.httpClient.GetBody(ctx, c.vixURL)
	if err == nil {
		var v float64
		if v, err = parseVIX(body); err == nil {
			return v, nil
		}
	}

	if c.vixFallbackURL == "" {
		return 0, fmt.Errorf("fetch volatility index: %w", err)
	}

	c.logger.WithError(err).Warn("VIX endpoint failed, scraping fallback page")

	page, ferr := c.httpClient.GetBody(ctx, c.vixFallbackURL)
	if ferr != nil {
		return 0, fmt.Errorf("fetch volatility index fallback: %w", ferr)
	}
	v, ferr := parseVIXHTML(page)
	if ferr != nil {
		return 0, fmt.Errorf("fetch volatility index fallback: %w", ferr)
	}
	return v, nil
}

// parseVIX accepts the JSON snapshot or, failing that, an HTML page
func parseVIX(body []byte) (float64, error) {
	var resp vixResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return parseVIXHTML(body)
	}
	if len(resp.CurrentVixSnapShot) == 0 {
		return 0, fmt.Errorf("currentVixSnapShot is empty")
	}

	raw := resp.CurrentVixSnapShot[0].CurrentPrice
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	return parseNumber(s)
}

func parseVIXHTML(body []byte) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("parse HTML: %w", err)
	}

	for _, sel := range vixSelectors {
		var value float64
		found := false
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, err := parseNumber(s.Text())
			if err != nil {
				return true
			}
			value, found = v, true
			return false
		})
		if found {
			return value, nil
		}
	}
	return 0, fmt.Errorf("no VIX value found in HTML")
}

// parseNumber strips thousands separators and truncates to an integer
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid VIX value %q", s)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid VIX value %q", s)
	}
	return math.Trunc(v), nil
}
