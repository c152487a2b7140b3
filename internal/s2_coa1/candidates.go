package s2_coa1

import (
	"sort"

	"github.com/wonny/optionpulse/internal/contracts"
)

// WeaknessThresholdPct: a top value within this percentage of the runner-up is weak
const WeaknessThresholdPct = 20.0

// Leaders holds the highest and second-highest distinct values of one metric on one side
type Leaders struct {
	Max          float64
	SecondMax    float64
	HasMax       bool
	HasSecond    bool
	Strike       int
	SecondStrike int
}

// leaders ranks distinct values; a repeated value keeps the strike it was first seen at
func leaders(strikes []int, values []float64) Leaders {
	l := Leaders{Strike: contracts.NoStrike, SecondStrike: contracts.NoStrike}

	firstStrike := make(map[float64]int, len(values))
	distinct := make([]float64, 0, len(values))
	for i, v := range values {
		if _, seen := firstStrike[v]; seen {
			continue
		}
		firstStrike[v] = strikes[i]
		distinct = append(distinct, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))

	if len(distinct) > 0 {
		l.Max, l.HasMax, l.Strike = distinct[0], true, firstStrike[distinct[0]]
	}
	if len(distinct) > 1 {
		l.SecondMax, l.HasSecond, l.SecondStrike = distinct[1], true, firstStrike[distinct[1]]
	}
	return l
}

// Weak reports whether the top value is within WeaknessThresholdPct of the second.
// Without a second value, or with a non-positive top, the leader is not weak.
func (l Leaders) Weak() bool {
	if !l.HasMax || !l.HasSecond || l.Max <= 0 {
		return false
	}
	diff := l.Max - l.SecondMax
	if diff < 0 {
		diff = -diff
	}
	return diff/l.Max*100 <= WeaknessThresholdPct
}

// SecondBelow reports whether the runner-up sits at a lower strike than the leader
func (l Leaders) SecondBelow() bool {
	return l.SecondStrike < l.Strike
}

// SecondAbove reports whether the runner-up sits at a higher strike than the leader
func (l Leaders) SecondAbove() bool {
	return l.SecondStrike > l.Strike
}

// sideLeaders is the volume and OI ranking for one side
type sideLeaders struct {
	volume Leaders
	oi     Leaders
}

// scanSide ranks sides whose strike passes keep, in strike order
func scanSide(sides []*contracts.SideEntry, keep func(strike int) bool) sideLeaders {
	strikes := make([]int, 0, len(sides))
	volumes := make([]float64, 0, len(sides))
	ois := make([]float64, 0, len(sides))
	for _, s := range sides {
		if !keep(s.StrikePrice) {
			continue
		}
		strikes = append(strikes, s.StrikePrice)
		volumes = append(volumes, s.TotalTradedVolume)
		ois = append(ois, s.OpenInterest)
	}
	return sideLeaders{
		volume: leaders(strikes, volumes),
		oi:     leaders(strikes, ois),
	}
}
