package nse

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/wonny/optionpulse/internal/contracts"
)

// chainResponse mirrors /api/option-chain-indices
type chainResponse struct {
	Records struct {
		ExpiryDates     []string   `json:"expiryDates"`
		Data            []chainRow `json:"data"`
		Timestamp       string     `json:"timestamp"`
		UnderlyingValue float64    `json:"underlyingValue"`
		StrikePrices    []float64  `json:"strikePrices"`
	} `json:"records"`
}

type chainRow struct {
	StrikePrice float64   `json:"strikePrice"`
	ExpiryDate  string    `json:"expiryDate"`
	CE          *sideData `json:"CE"`
	PE          *sideData `json:"PE"`
}

type sideData struct {
	StrikePrice          float64  `json:"strikePrice"`
	ExpiryDate           string   `json:"expiryDate"`
	OpenInterest         float64  `json:"openInterest"`
	ChangeInOpenInterest float64  `json:"changeinOpenInterest"`
	TotalTradedVolume    float64  `json:"totalTradedVolume"`
	ImpliedVolatility    *float64 `json:"impliedVolatility"`
	LastPrice            float64  `json:"lastPrice"`
	Change               float64  `json:"change"`
}

// FetchChain fetches the full option chain of an index symbol
// ⭐ SSOT: 옵션 체인 수집은 이 함수에서만
func (c *Client) FetchChain(ctx context.Context, symbol string) (*contracts.ChainFeed, error) {
	fullURL := fmt.Sprintf("%s/api/option-chain-indices?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	var resp chainResponse
	if err := c.fetchJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch option chain %s: %w", symbol, err)
	}
	if len(resp.Records.Data) == 0 {
		return nil, fmt.Errorf("fetch option chain %s: empty records", symbol)
	}

	feed := toFeed(symbol, &resp)

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"records":    len(feed.Records),
		"strikes":    len(feed.Strikes),
		"expiries":   len(feed.Expiries),
		"underlying": feed.UnderlyingPrice,
	}).Debug("Fetched option chain")

	return feed, nil
}

func toFeed(symbol string, resp *chainResponse) *contracts.ChainFeed {
	feed := &contracts.ChainFeed{
		Symbol:          symbol,
		UnderlyingPrice: resp.Records.UnderlyingValue,
		Expiries:        resp.Records.ExpiryDates,
		Timestamp:       resp.Records.Timestamp,
		Records:         make([]contracts.RawChainRecord, 0, len(resp.Records.Data)),
		Strikes:         make([]int, 0, len(resp.Records.StrikePrices)),
	}

	for _, s := range resp.Records.StrikePrices {
		feed.Strikes = append(feed.Strikes, int(s))
	}
	sort.Ints(feed.Strikes)

	for _, row := range resp.Records.Data {
		feed.Records = append(feed.Records, contracts.RawChainRecord{
			StrikePrice: int(row.StrikePrice),
			ExpiryDate:  row.ExpiryDate,
			Call:        row.CE.snapshot(),
			Put:         row.PE.snapshot(),
		})
	}

	return feed
}

func (s *sideData) snapshot() *contracts.ContractSnapshot {
	if s == nil {
		return nil
	}
	return &contracts.ContractSnapshot{
		StrikePrice:          int(s.StrikePrice),
		ExpiryDate:           s.ExpiryDate,
		LastPrice:            s.LastPrice,
		OpenInterest:         s.OpenInterest,
		ChangeInOpenInterest: s.ChangeInOpenInterest,
		ChangeInPremium:      s.Change,
		TotalTradedVolume:    s.TotalTradedVolume,
		ImpliedVolatility:    s.ImpliedVolatility,
	}
}
