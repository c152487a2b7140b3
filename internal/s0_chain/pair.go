package s0_chain

import (
	"github.com/wonny/optionpulse/internal/contracts"
)

// BuildSnapshot keeps records of the requested expiry whose strike is inside window,
// drops incomplete sides and pairs call/put by strike.
// A strike with a single complete side is kept without derived signals.
// Repeated rows for one strike: the first complete side seen is kept.
func BuildSnapshot(records []contracts.RawChainRecord, expiry string, window []int, atm int) contracts.ChainSnapshot {
	inWindow := make(map[int]struct{}, len(window))
	for _, s := range window {
		inWindow[s] = struct{}{}
	}

	byStrike := make(map[int]*contracts.StrikeEntry, len(window))
	for _, r := range records {
		if r.ExpiryDate != expiry {
			continue
		}
		if _, ok := inWindow[r.StrikePrice]; !ok {
			continue
		}

		entry, ok := byStrike[r.StrikePrice]
		if !ok {
			entry = &contracts.StrikeEntry{StrikePrice: r.StrikePrice}
			byStrike[r.StrikePrice] = entry
		}
		if entry.Call == nil && r.Call.Complete() {
			entry.Call = NewSideEntry(*r.Call)
		}
		if entry.Put == nil && r.Put.Complete() {
			entry.Put = NewSideEntry(*r.Put)
		}
	}

	snapshot := contracts.ChainSnapshot{
		ExpiryDate: expiry,
		ATMStrike:  atm,
		Strikes:    make([]contracts.StrikeEntry, 0, len(byStrike)),
	}
	for _, entry := range byStrike {
		if entry.Call == nil && entry.Put == nil {
			continue
		}
		snapshot.Strikes = append(snapshot.Strikes, *entry)
	}
	snapshot.Sort()

	return snapshot
}
