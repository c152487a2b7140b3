package s2_coa1

import (
	"context"
	"errors"

	"github.com/wonny/optionpulse/internal/contracts"
)

// Input is the windowed chain plus the prices COA1 is anchored on
type Input struct {
	Symbol       string
	CurrentPrice float64
	StrikeStep   int
	Snapshot     *contracts.ChainSnapshot
}

// Engine computes COA1 with sticky support sources held in store
type Engine struct {
	store contracts.SupportStateStore
}

func New(store contracts.SupportStateStore) *Engine {
	return &Engine{store: store}
}

// Compute derives COA1Metrics. Support-state failures are returned as
// *contracts.SupportStateError (errors.Is ErrSupportStateUnavailable).
func (e *Engine) Compute(ctx context.Context, in Input) (*contracts.COA1Metrics, error) {
	atm := in.Snapshot.ATMStrike
	callITM, putITM := ITMStrikes(in.CurrentPrice, atm, in.StrikeStep)

	callLeaders := scanSide(in.Snapshot.Calls(), func(strike int) bool { return strike >= callITM })
	putLeaders := scanSide(in.Snapshot.Puts(), func(strike int) bool { return strike <= putITM })

	callSupport, err := e.sticky(ctx, contracts.SupportKey{Symbol: in.Symbol, Expiry: in.Snapshot.ExpiryDate, Side: contracts.Call},
		ClassifySupport(callLeaders.volume.Strike, callLeaders.oi.Strike, callITM))
	if err != nil {
		return nil, err
	}
	putSupport, err := e.sticky(ctx, contracts.SupportKey{Symbol: in.Symbol, Expiry: in.Snapshot.ExpiryDate, Side: contracts.Put},
		ClassifySupport(putLeaders.volume.Strike, putLeaders.oi.Strike, putITM))
	if err != nil {
		return nil, err
	}

	call := side(callLeaders, callITM, callSupport)
	put := side(putLeaders, putITM, putSupport)

	return &contracts.COA1Metrics{
		Call:   call,
		Put:    put,
		Signal: Combine(call.DirectionalSignal, put.DirectionalSignal),
	}, nil
}

// sticky returns a stored non-BOTH source if one exists; otherwise stores computed
func (e *Engine) sticky(ctx context.Context, key contracts.SupportKey, computed contracts.SupportFrom) (contracts.SupportFrom, error) {
	prior, found, err := e.store.Get(ctx, key)
	if err != nil {
		return "", wrapStateErr("get", key, err)
	}
	if found && prior.Valid() && prior != contracts.SupportFromBoth {
		return prior, nil
	}

	if err := e.store.Set(ctx, key, computed); err != nil {
		return "", wrapStateErr("set", key, err)
	}
	return computed, nil
}

func wrapStateErr(op string, key contracts.SupportKey, err error) error {
	var stateErr *contracts.SupportStateError
	if errors.As(err, &stateErr) {
		return err
	}
	return &contracts.SupportStateError{Op: op, Key: key, Err: err}
}

func side(l sideLeaders, itm int, support contracts.SupportFrom) contracts.COA1Side {
	return contracts.COA1Side{
		StrikeWithHighestVolume:       l.volume.Strike,
		StrikeWithSecondHighestVolume: l.volume.SecondStrike,
		StrikeWithHighestOI:           l.oi.Strike,
		StrikeWithSecondHighestOI:     l.oi.SecondStrike,
		ITMStrike:                     itm,
		SupportFrom:                   support,
		DirectionalSignal:             Directional(support, l.volume, l.oi),
	}
}
