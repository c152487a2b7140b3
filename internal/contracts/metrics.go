package contracts

import (
	"time"

	"github.com/google/uuid"
)

// NoStrike marks an empty COA1 slot (fewer than two distinct values on a side)
const NoStrike = -1

// SignalBreakdown counts the per-strike market signals inside the VIX band
type SignalBreakdown struct {
	Bullish            int     `json:"bullish"`
	Bearish            int     `json:"bearish"`
	Sideways           int     `json:"sideways"`
	BullishPercentage  float64 `json:"bullish_percentage"`
	BearishPercentage  float64 `json:"bearish_percentage"`
	SidewaysPercentage float64 `json:"sideways_percentage"`
}

// Total is the number of classified strikes
func (b SignalBreakdown) Total() int {
	return b.Bullish + b.Bearish + b.Sideways
}

// COA1Side is the support/resistance picture for one side of the chain
type COA1Side struct {
	StrikeWithHighestVolume       int               `json:"strike_with_highest_volume"`
	StrikeWithSecondHighestVolume int               `json:"strike_with_second_highest_volume"`
	StrikeWithHighestOI           int               `json:"strike_with_highest_oi"`
	StrikeWithSecondHighestOI     int               `json:"strike_with_second_highest_oi"`
	ITMStrike                     int               `json:"itm_strike"`
	SupportFrom                   SupportFrom       `json:"support_from"`
	DirectionalSignal             DirectionalSignal `json:"directional_signal"`
}

// COA1Metrics is the Chart-of-Accuracy-1 result
type COA1Metrics struct {
	Call   COA1Side   `json:"call"`
	Put    COA1Side   `json:"put"`
	Signal COA1Signal `json:"signal"`
}

// ChainMetrics is the chain-wide result of one derivation
type ChainMetrics struct {
	TotalChangeInCallOI float64                `json:"total_change_in_call_oi"`
	TotalChangeInPutOI  float64                `json:"total_change_in_put_oi"`
	Difference          float64                `json:"difference"` // call − put
	PCR                 float64                `json:"pcr"`
	CallInterpretation  ContractInterpretation `json:"call_interpretation"`
	PutInterpretation   ContractInterpretation `json:"put_interpretation"`
	VolumeActionSignal  Direction              `json:"volume_action_signal"`
	PriceActionSignal   Direction              `json:"price_action_signal"`
	OverallMarketSignal MarketSignal           `json:"overall_market_signal"`
	VIXUpperStrike      int                    `json:"vix_upper_strike"`
	VIXLowerStrike      int                    `json:"vix_lower_strike"`
	// Breakdown is nil when no classified strike fell inside the VIX band
	Breakdown *SignalBreakdown `json:"breakdown,omitempty"`
	COA1      COA1Metrics      `json:"coa1"`
	Strikes   []StrikeEntry    `json:"strikes"`
}

// ChainMetricsRecord is what the result sink persists
type ChainMetricsRecord struct {
	ID              uuid.UUID `json:"id"`
	RunID           uuid.UUID `json:"run_id"`
	Symbol          string    `json:"symbol"`
	ExpiryDate      string    `json:"expiry_date"`
	ATMStrike       int       `json:"atm_strike"`
	CurrentPrice    float64   `json:"current_price"`
	VolatilityIndex float64   `json:"volatility_index"`
	RecordTime      time.Time `json:"record_time"`

	ChainMetrics
}

// MetricsFilter narrows a stored-record listing
type MetricsFilter struct {
	Symbol string
	Expiry string // optional
	Since  time.Time
	Limit  int
	Offset int
}
