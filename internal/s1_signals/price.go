package s1_signals

import "github.com/wonny/optionpulse/internal/contracts"

var callSideSignals = map[contracts.ContractInterpretation]contracts.Direction{
	contracts.BuyingContracts:          contracts.Up,
	contracts.SellingContracts:         contracts.Down,
	contracts.SquareOffBoughtContracts: contracts.Down,
	contracts.SquareOffSoldContracts:   contracts.Up,
	contracts.NoSignificantMovement:    contracts.Neutral,
}

var putSideSignals = map[contracts.ContractInterpretation]contracts.Direction{
	contracts.BuyingContracts:          contracts.Down,
	contracts.SellingContracts:         contracts.Up,
	contracts.SquareOffBoughtContracts: contracts.Up,
	contracts.SquareOffSoldContracts:   contracts.Down,
	contracts.NoSignificantMovement:    contracts.Neutral,
}

// defaultPriceAction is keyed by (call, put); anything missing is NEUTRAL
var defaultPriceAction = map[[2]contracts.Direction]contracts.Direction{
	{contracts.Up, contracts.Up}:     contracts.UpPlus,
	{contracts.Up, contracts.Down}:   contracts.Neutral,
	{contracts.Down, contracts.Up}:   contracts.Neutral,
	{contracts.Down, contracts.Down}: contracts.DownPlus,
}

// SideSignal maps an interpretation to UP/DOWN/NEUTRAL for the given side
func SideSignal(side contracts.Side, i contracts.ContractInterpretation) contracts.Direction {
	table := callSideSignals
	if side == contracts.Put {
		table = putSideSignals
	}
	if d, ok := table[i]; ok {
		return d
	}
	return contracts.Neutral
}

type priceRule struct {
	match func(pcr, total, put float64) bool
	side  contracts.Side
}

// priceRules pick one side's signal outright, first match wins
var priceRules = []priceRule{
	{func(pcr, _, _ float64) bool { return pcr > 2 }, contracts.Put},
	{func(pcr, _, _ float64) bool { return pcr > 0 && pcr < 1 }, contracts.Call},
	{func(pcr, total, put float64) bool { return pcr < 0 && total > 0 && total < put }, contracts.Put},
	{func(pcr, total, put float64) bool { return pcr < 0 && total > put }, contracts.Call},
	{func(pcr, total, _ float64) bool { return pcr < 0 && total < 0 }, contracts.Call},
}

// PriceActionSignal combines the side interpretations weighted by the quantities
func PriceActionSignal(callInterp, putInterp contracts.ContractInterpretation, call, put float64) contracts.Direction {
	callSignal := SideSignal(contracts.Call, callInterp)
	putSignal := SideSignal(contracts.Put, putInterp)

	pcr := PCR(call, put)
	total := call + put
	for _, r := range priceRules {
		if r.match(pcr, total, put) {
			if r.side == contracts.Put {
				return putSignal
			}
			return callSignal
		}
	}

	if d, ok := defaultPriceAction[[2]contracts.Direction{callSignal, putSignal}]; ok {
		return d
	}
	return contracts.Neutral
}
