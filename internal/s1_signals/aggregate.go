package s1_signals

import (
	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/s0_chain"
)

// Aggregate is the chain-wide view built from summed per-side deltas
type Aggregate struct {
	TotalChangeInCallOI      float64
	TotalChangeInPutOI       float64
	TotalChangeInCallPremium float64
	TotalChangeInPutPremium  float64
	Difference               float64
	PCR                      float64
	CallInterpretation       contracts.ContractInterpretation
	PutInterpretation        contracts.ContractInterpretation
	VolumeActionSignal       contracts.Direction
	PriceActionSignal        contracts.Direction
}

// ChainAggregate sums every windowed call and put side (paired or not)
func ChainAggregate(snapshot *contracts.ChainSnapshot) Aggregate {
	var agg Aggregate
	for _, c := range snapshot.Calls() {
		agg.TotalChangeInCallOI += c.ChangeInOpenInterest
		agg.TotalChangeInCallPremium += c.ChangeInPremium
	}
	for _, p := range snapshot.Puts() {
		agg.TotalChangeInPutOI += p.ChangeInOpenInterest
		agg.TotalChangeInPutPremium += p.ChangeInPremium
	}

	agg.Difference = agg.TotalChangeInCallOI - agg.TotalChangeInPutOI
	agg.PCR = PCR(agg.TotalChangeInCallOI, agg.TotalChangeInPutOI)
	agg.CallInterpretation = s0_chain.Interpret(agg.TotalChangeInCallPremium, agg.TotalChangeInCallOI)
	agg.PutInterpretation = s0_chain.Interpret(agg.TotalChangeInPutPremium, agg.TotalChangeInPutOI)
	agg.VolumeActionSignal = VolumeActionSignal(agg.TotalChangeInCallOI, agg.TotalChangeInPutOI)
	agg.PriceActionSignal = PriceActionSignal(
		agg.CallInterpretation, agg.PutInterpretation,
		agg.TotalChangeInCallOI, agg.TotalChangeInPutOI,
	)

	return agg
}
