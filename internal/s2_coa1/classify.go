package s2_coa1

import "github.com/wonny/optionpulse/internal/contracts"

// ITMStrikes picks the strike pair straddling the actual price.
// price below ATM: (ATM-step, ATM); otherwise (ATM, ATM+step).
func ITMStrikes(price float64, atm, step int) (callITM, putITM int) {
	if price < float64(atm) {
		return atm - step, atm
	}
	return atm, atm + step
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ClassifySupport names the metric whose leading strike is nearer the ITM reference.
// Equal leading strikes give BOTH; equal distances give OI.
func ClassifySupport(volumeStrike, oiStrike, itm int) contracts.SupportFrom {
	if volumeStrike == oiStrike {
		return contracts.SupportFromBoth
	}
	if abs(volumeStrike-itm) < abs(oiStrike-itm) {
		return contracts.SupportFromVolume
	}
	return contracts.SupportFromOI
}

func drift(l Leaders) contracts.DirectionalSignal {
	if !l.Weak() {
		return contracts.Strong
	}
	if l.SecondBelow() {
		return contracts.WTB
	}
	return contracts.WTT
}

// Directional classifies one side from its support source and leader strength
func Directional(support contracts.SupportFrom, volume, oi Leaders) contracts.DirectionalSignal {
	switch support {
	case contracts.SupportFromVolume:
		return drift(volume)
	case contracts.SupportFromOI:
		return drift(oi)
	case contracts.SupportFromBoth:
		if !volume.Weak() || !oi.Weak() {
			return contracts.Strong
		}
		switch {
		case volume.SecondBelow() && oi.SecondBelow():
			return contracts.WTB
		case volume.SecondAbove() && oi.SecondAbove():
			return contracts.WTT
		}
		return contracts.Weak
	}
	return contracts.DirectionalNeutral
}

// combinations is keyed by (call, put); anything missing, WEAK included, is NEUTRAL
var combinations = map[[2]contracts.DirectionalSignal]contracts.COA1Signal{
	{contracts.Strong, contracts.Strong}: contracts.COA1EOB,
	{contracts.Strong, contracts.WTT}:    contracts.COA1EOS,
	{contracts.Strong, contracts.WTB}:    contracts.COA1EOR,
	{contracts.WTT, contracts.Strong}:    contracts.COA1EOS,
	{contracts.WTT, contracts.WTT}:       contracts.COA1Bullish,
	{contracts.WTT, contracts.WTB}:       contracts.COA1Neutral,
	{contracts.WTB, contracts.Strong}:    contracts.COA1EOR,
	{contracts.WTB, contracts.WTT}:       contracts.COA1Neutral,
	{contracts.WTB, contracts.WTB}:       contracts.COA1Bearish,
}

// Combine maps the call and put directional signals to one COA1 signal
func Combine(call, put contracts.DirectionalSignal) contracts.COA1Signal {
	if s, ok := combinations[[2]contracts.DirectionalSignal{call, put}]; ok {
		return s
	}
	return contracts.COA1Neutral
}
