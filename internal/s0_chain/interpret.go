package s0_chain

import "github.com/wonny/optionpulse/internal/contracts"

type sign int8

const (
	negative sign = -1
	zero     sign = 0
	positive sign = 1
)

func signOf(v float64) sign {
	switch {
	case v > 0:
		return positive
	case v < 0:
		return negative
	}
	return zero
}

// interpretations is keyed by (sign ΔP, sign ΔOI); missing keys are NO_SIGNIFICANT_MOVEMENT
var interpretations = map[[2]sign]contracts.ContractInterpretation{
	{positive, positive}: contracts.BuyingContracts,
	{positive, negative}: contracts.SquareOffSoldContracts,
	{negative, positive}: contracts.SellingContracts,
	{negative, negative}: contracts.SquareOffBoughtContracts,
}

// Interpret classifies contract activity from the change in premium and open interest
func Interpret(changeInPremium, changeInOpenInterest float64) contracts.ContractInterpretation {
	if i, ok := interpretations[[2]sign{signOf(changeInPremium), signOf(changeInOpenInterest)}]; ok {
		return i
	}
	return contracts.NoSignificantMovement
}

// NewSideEntry attaches the interpretation to a snapshot
func NewSideEntry(c contracts.ContractSnapshot) *contracts.SideEntry {
	return &contracts.SideEntry{
		ContractSnapshot: c,
		Interpretation:   Interpret(c.ChangeInPremium, c.ChangeInOpenInterest),
	}
}
