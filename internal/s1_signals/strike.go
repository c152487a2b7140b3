package s1_signals

import "github.com/wonny/optionpulse/internal/contracts"

// Quantities used for strike and chain signals are changes in open interest.

// ApplyStrikeSignals fills Signals on every paired strike; single-sided strikes stay bare
func ApplyStrikeSignals(snapshot *contracts.ChainSnapshot) {
	for i := range snapshot.Strikes {
		entry := &snapshot.Strikes[i]
		if !entry.Paired() {
			entry.Signals = nil
			continue
		}
		entry.Signals = strikeSignals(entry.Call, entry.Put)
	}
}

func strikeSignals(call, put *contracts.SideEntry) *contracts.StrikeSignals {
	callQty, putQty := call.ChangeInOpenInterest, put.ChangeInOpenInterest

	volume := VolumeActionSignal(callQty, putQty)
	price := PriceActionSignal(call.Interpretation, put.Interpretation, callQty, putQty)

	return &contracts.StrikeSignals{
		PCR:                PCR(callQty, putQty),
		VolumeActionSignal: volume,
		PriceActionSignal:  price,
		MarketSignal:       MarketSignal(volume, price),
	}
}
