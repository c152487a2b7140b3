package s1_signals

import "github.com/wonny/optionpulse/internal/contracts"

type volumeRule struct {
	match  func(pcr, put float64) bool
	signal contracts.Direction
}

// volumeRules are evaluated in order, first match wins.
// 0.5 < pcr < 1 only reaches the final DOWN by falling through; kept as is.
var volumeRules = []volumeRule{
	{func(pcr, _ float64) bool { return pcr > 2 }, contracts.UpPlus},
	{func(pcr, _ float64) bool { return pcr >= 1 }, contracts.Up},
	{func(pcr, put float64) bool { return pcr < 0 && put > 0 }, contracts.Up},
	{func(pcr, _ float64) bool { return pcr <= 0.5 }, contracts.DownPlus},
}

// VolumeActionSignal classifies call/put contract quantities
func VolumeActionSignal(call, put float64) contracts.Direction {
	pcr := PCR(call, put)
	for _, r := range volumeRules {
		if r.match(pcr, put) {
			return r.signal
		}
	}
	return contracts.Down
}
