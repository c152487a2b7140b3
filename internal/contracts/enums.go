package contracts

// ContractInterpretation classifies one side of one strike from the signs of ΔP and ΔOI
type ContractInterpretation string

const (
	BuyingContracts          ContractInterpretation = "BUYING_CONTRACTS"
	SellingContracts         ContractInterpretation = "SELLING_CONTRACTS"
	SquareOffBoughtContracts ContractInterpretation = "SQUARE_OFF_BOUGHT_CONTRACTS"
	SquareOffSoldContracts   ContractInterpretation = "SQUARE_OFF_SOLD_CONTRACTS"
	NoSignificantMovement    ContractInterpretation = "NO_SIGNIFICANT_MOVEMENT"
)

// Direction is the shared vocabulary of volume-action, price-action and side signals
type Direction string

const (
	UpPlus   Direction = "UP_PLUS"
	Up       Direction = "UP"
	Neutral  Direction = "NEUTRAL"
	Down     Direction = "DOWN"
	DownPlus Direction = "DOWN_PLUS"
)

// MarketSignal is the per-strike and overall sentiment
type MarketSignal string

const (
	Bullish                   MarketSignal = "BULLISH"
	Bearish                   MarketSignal = "BEARISH"
	Sideways                  MarketSignal = "SIDEWAYS"
	SidewaysWithSlightBullish MarketSignal = "SIDEWAYS_WITH_SLIGHT_BULLISH"
	SidewaysWithSlightBearish MarketSignal = "SIDEWAYS_WITH_SLIGHT_BEARISH"
	// MarketSignalUndetermined: no classified strike fell inside the VIX band
	MarketSignalUndetermined MarketSignal = "UNDETERMINED"
)

// Side of an option contract
type Side string

const (
	Call Side = "CE"
	Put  Side = "PE"
)

// SupportFrom names the metric providing support/resistance on one side
type SupportFrom string

const (
	SupportFromVolume SupportFrom = "VOLUME"
	SupportFromOI     SupportFrom = "OI"
	SupportFromBoth   SupportFrom = "BOTH"
)

// Valid reports whether s is one of the three known values
func (s SupportFrom) Valid() bool {
	switch s {
	case SupportFromVolume, SupportFromOI, SupportFromBoth:
		return true
	}
	return false
}

// DirectionalSignal is the per-side COA1 strength classification
type DirectionalSignal string

const (
	Strong DirectionalSignal = "STRONG"
	WTB    DirectionalSignal = "WTB" // weakening toward bottom
	WTT    DirectionalSignal = "WTT" // weakening toward top
	Weak   DirectionalSignal = "WEAK"
	// DirectionalNeutral is never produced by a known SupportFrom
	DirectionalNeutral DirectionalSignal = "NEUTRAL"
)

// COA1Signal is the combined call/put directional outcome
type COA1Signal string

const (
	COA1EOB     COA1Signal = "EOB"
	COA1EOS     COA1Signal = "EOS"
	COA1EOR     COA1Signal = "EOR"
	COA1Bullish COA1Signal = "BULLISH"
	COA1Bearish COA1Signal = "BEARISH"
	COA1Neutral COA1Signal = "NEUTRAL"
)
