package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/s0_chain"
	"github.com/wonny/optionpulse/internal/s1_signals"
	"github.com/wonny/optionpulse/internal/s2_coa1"
	"github.com/wonny/optionpulse/pkg/logger"
)

// Config carries strike range limit and strike step
type Config = s0_chain.Config

// Input is one (symbol, expiry) derivation request
type Input struct {
	Symbol          string
	Records         []contracts.RawChainRecord
	UnderlyingPrice float64
	ValidStrikes    []int
	Expiry          string
	VolatilityIndex float64
	Config          Config
}

// Result is the derived metrics plus the ATM they were anchored on
type Result struct {
	ATMStrike int
	Metrics   *contracts.ChainMetrics
}

// Deriver runs windowing → signals → VIX band → COA1 for one chain
// ⭐ SSOT: 옵션 체인 시그널 파생은 여기서만
type Deriver struct {
	coa1   *s2_coa1.Engine
	logger *logger.Logger
}

func New(store contracts.SupportStateStore, log *logger.Logger) *Deriver {
	return &Deriver{
		coa1:   s2_coa1.New(store),
		logger: log,
	}
}

// DeriveChainMetrics is the single-call form of Deriver.Derive
func DeriveChainMetrics(ctx context.Context, in Input, store contracts.SupportStateStore) (*contracts.ChainMetrics, error) {
	res, err := New(store, logger.Nop()).Derive(ctx, in)
	if err != nil {
		return nil, err
	}
	return res.Metrics, nil
}

// Derive computes ChainMetrics. Errors:
//   - *contracts.ConfigurationError for a bad step/range or a window outside the listed strikes
//   - *contracts.SupportStateError when the COA1 store fails
func (d *Deriver) Derive(ctx context.Context, in Input) (*Result, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, contracts.AtStage(contracts.StageChain, err)
	}

	atm := s0_chain.RoundToStep(in.UnderlyingPrice, in.Config.StrikeStep)
	window, err := s0_chain.SelectWindow(in.ValidStrikes, atm, in.Config)
	if err != nil {
		return nil, contracts.AtStage(contracts.StageChain, fmt.Errorf("select strike window: %w", err))
	}

	snapshot := s0_chain.BuildSnapshot(in.Records, in.Expiry, window, atm)
	s1_signals.ApplyStrikeSignals(&snapshot)
	agg := s1_signals.ChainAggregate(&snapshot)

	band, err := s1_signals.VIXBand(in.VolatilityIndex, atm, in.Config.StrikeStep)
	if err != nil {
		return nil, contracts.AtStage(contracts.StageSignals, err)
	}

	overall := contracts.MarketSignalUndetermined
	var breakdown *contracts.SignalBreakdown
	b, err := s1_signals.Breakdown(snapshot.Strikes, band)
	switch {
	case errors.Is(err, contracts.ErrEmptyVIXBand):
		d.logger.WithChain(in.Symbol, in.Expiry).WithFields(map[string]interface{}{
			"vix_lower": band.Lower,
			"vix_upper": band.Upper,
		}).Warn("No classified strikes inside VIX band, overall signal undetermined")
	case err != nil:
		return nil, contracts.AtStage(contracts.StageSignals, err)
	default:
		breakdown = &b
		overall = s1_signals.OverallSignal(b.BullishPercentage, b.BearishPercentage, b.SidewaysPercentage)
	}

	coa1, err := d.coa1.Compute(ctx, s2_coa1.Input{
		Symbol:       in.Symbol,
		CurrentPrice: in.UnderlyingPrice,
		StrikeStep:   in.Config.StrikeStep,
		Snapshot:     &snapshot,
	})
	if err != nil {
		return nil, contracts.AtStage(contracts.StageCOA1, err)
	}

	metrics := &contracts.ChainMetrics{
		TotalChangeInCallOI: agg.TotalChangeInCallOI,
		TotalChangeInPutOI:  agg.TotalChangeInPutOI,
		Difference:          agg.Difference,
		PCR:                 agg.PCR,
		CallInterpretation:  agg.CallInterpretation,
		PutInterpretation:   agg.PutInterpretation,
		VolumeActionSignal:  agg.VolumeActionSignal,
		PriceActionSignal:   agg.PriceActionSignal,
		OverallMarketSignal: overall,
		VIXUpperStrike:      band.Upper,
		VIXLowerStrike:      band.Lower,
		Breakdown:           breakdown,
		COA1:                *coa1,
		Strikes:             snapshot.Strikes,
	}

	d.logger.WithChain(in.Symbol, in.Expiry).WithFields(map[string]interface{}{
		"atm":     atm,
		"strikes": len(snapshot.Strikes),
		"pcr":     metrics.PCR,
		"overall": metrics.OverallMarketSignal,
		"coa1":    metrics.COA1.Signal,
	}).Debug("Chain metrics derived")

	return &Result{ATMStrike: atm, Metrics: metrics}, nil
}
