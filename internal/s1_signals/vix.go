package s1_signals

import (
	"fmt"
	"math"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/s0_chain"
)

// Band is the strike range implied by one trading day of volatility
type Band struct {
	DeviationFraction float64
	Deviation         float64
	Upper             int
	Lower             int
}

// Contains reports whether strike lies inside [Lower, Upper]
func (b Band) Contains(strike int) bool {
	return strike >= b.Lower && strike <= b.Upper
}

// VIXBand sizes the in-play band: atm ± atm·V/√365/100, rounded to the step
func VIXBand(vix float64, atm, step int) (Band, error) {
	if step <= 0 {
		return Band{}, &contracts.ConfigurationError{
			Field:   "strike_step",
			Message: fmt.Sprintf("must be positive, got %d", step),
		}
	}

	fraction := vix / math.Sqrt(365) / 100
	deviation := float64(atm) * fraction

	return Band{
		DeviationFraction: fraction,
		Deviation:         deviation,
		Upper:             s0_chain.RoundToStep(float64(atm)+deviation, step),
		Lower:             s0_chain.RoundToStep(float64(atm)-deviation, step),
	}, nil
}

// Breakdown counts per-strike market signals inside the band.
// Returns ErrEmptyVIXBand when nothing inside the band was classified.
func Breakdown(strikes []contracts.StrikeEntry, band Band) (contracts.SignalBreakdown, error) {
	var b contracts.SignalBreakdown
	for _, e := range strikes {
		if e.Signals == nil || !band.Contains(e.StrikePrice) {
			continue
		}
		switch e.Signals.MarketSignal {
		case contracts.Bullish:
			b.Bullish++
		case contracts.Bearish:
			b.Bearish++
		case contracts.Sideways:
			b.Sideways++
		}
	}

	total := b.Total()
	if total == 0 {
		return b, contracts.ErrEmptyVIXBand
	}

	b.BullishPercentage = float64(b.Bullish) / float64(total) * 100
	b.BearishPercentage = float64(b.Bearish) / float64(total) * 100
	b.SidewaysPercentage = float64(b.Sideways) / float64(total) * 100

	return b, nil
}

// OverallSignal applies the majority / sideways thresholds to percentages
func OverallSignal(bullishPct, bearishPct, sidewaysPct float64) contracts.MarketSignal {
	switch {
	case bullishPct > 50:
		return contracts.Bullish
	case bearishPct > 50:
		return contracts.Bearish
	case sidewaysPct > 20:
		switch {
		case bullishPct > bearishPct:
			return contracts.SidewaysWithSlightBullish
		case bullishPct < bearishPct:
			return contracts.SidewaysWithSlightBearish
		}
		return contracts.Sideways
	}
	return contracts.Sideways
}
