package s1_signals

import "github.com/wonny/optionpulse/internal/contracts"

// marketSignals: volume action → price action → signal. Missing pairs are SIDEWAYS.
var marketSignals = map[contracts.Direction]map[contracts.Direction]contracts.MarketSignal{
	contracts.UpPlus:   {contracts.Up: contracts.Bullish},
	contracts.Up:       {contracts.Up: contracts.Bullish},
	contracts.DownPlus: {contracts.Down: contracts.Bearish},
	contracts.Down:     {contracts.Down: contracts.Bearish},
}

// MarketSignal combines volume and price action into a sentiment
func MarketSignal(volumeAction, priceAction contracts.Direction) contracts.MarketSignal {
	if s, ok := marketSignals[volumeAction][priceAction]; ok {
		return s
	}
	return contracts.Sideways
}
