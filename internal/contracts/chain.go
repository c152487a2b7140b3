package contracts

import "sort"

// ContractSnapshot is one side (call or put) of one strike as reported by the exchange
type ContractSnapshot struct {
	StrikePrice          int      `json:"strike_price"`
	ExpiryDate           string   `json:"expiry_date"`
	LastPrice            float64  `json:"last_price"`
	OpenInterest         float64  `json:"open_interest"`
	ChangeInOpenInterest float64  `json:"change_in_open_interest"`
	ChangeInPremium      float64  `json:"change_in_premium"`
	TotalTradedVolume    float64  `json:"total_traded_volume"`
	ImpliedVolatility    *float64 `json:"implied_volatility,omitempty"`
}

// Complete reports whether every required field is non-zero.
// Incomplete snapshots carry no signal and are dropped, not rejected.
func (c *ContractSnapshot) Complete() bool {
	return c != nil &&
		c.StrikePrice != 0 &&
		c.LastPrice != 0 &&
		c.OpenInterest != 0 &&
		c.ChangeInOpenInterest != 0 &&
		c.ChangeInPremium != 0 &&
		c.TotalTradedVolume != 0
}

// RawChainRecord is one row of the exchange chain: a strike/expiry with optional sides
type RawChainRecord struct {
	StrikePrice int               `json:"strike_price"`
	ExpiryDate  string            `json:"expiry_date"`
	Call        *ContractSnapshot `json:"ce,omitempty"`
	Put         *ContractSnapshot `json:"pe,omitempty"`
}

// SideEntry is a complete snapshot with its interpretation attached
type SideEntry struct {
	ContractSnapshot
	Interpretation ContractInterpretation `json:"interpretation"`
}

// StrikeSignals exist only when both sides of a strike are present
type StrikeSignals struct {
	PCR                float64      `json:"pcr"`
	VolumeActionSignal Direction    `json:"volume_action_signal"`
	PriceActionSignal  Direction    `json:"price_action_signal"`
	MarketSignal       MarketSignal `json:"market_signal"`
}

// StrikeEntry pairs the call and put side of one strike
type StrikeEntry struct {
	StrikePrice int            `json:"strike_price"`
	Call        *SideEntry     `json:"ce,omitempty"`
	Put         *SideEntry     `json:"pe,omitempty"`
	Signals     *StrikeSignals `json:"signals,omitempty"`
}

// Paired reports whether both sides are present
func (e StrikeEntry) Paired() bool {
	return e.Call != nil && e.Put != nil
}

// ChainSnapshot is the windowed chain for one expiry, ordered by strike
type ChainSnapshot struct {
	ExpiryDate string        `json:"expiry_date"`
	ATMStrike  int           `json:"atm_strike"`
	Strikes    []StrikeEntry `json:"strikes"`
}

// Calls returns every present call side in strike order
func (c *ChainSnapshot) Calls() []*SideEntry {
	out := make([]*SideEntry, 0, len(c.Strikes))
	for i := range c.Strikes {
		if c.Strikes[i].Call != nil {
			out = append(out, c.Strikes[i].Call)
		}
	}
	return out
}

// Puts returns every present put side in strike order
func (c *ChainSnapshot) Puts() []*SideEntry {
	out := make([]*SideEntry, 0, len(c.Strikes))
	for i := range c.Strikes {
		if c.Strikes[i].Put != nil {
			out = append(out, c.Strikes[i].Put)
		}
	}
	return out
}

// Sort orders strikes ascending
func (c *ChainSnapshot) Sort() {
	sort.Slice(c.Strikes, func(i, j int) bool {
		return c.Strikes[i].StrikePrice < c.Strikes[j].StrikePrice
	})
}

// ChainFeed is everything one exchange fetch returns for a symbol
type ChainFeed struct {
	Symbol          string           `json:"symbol"`
	Records         []RawChainRecord `json:"records"`
	UnderlyingPrice float64          `json:"underlying_price"`
	Strikes         []int            `json:"strikes"`  // sorted ascending
	Expiries        []string         `json:"expiries"` // exchange order, nearest first
	Timestamp       string           `json:"timestamp,omitempty"`
}
