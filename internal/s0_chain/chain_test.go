package s0_chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/internal/contracts"
)

func strikesAround(center, step, n int) []int {
	out := make([]int, 0, 2*n+1)
	for i := -n; i <= n; i++ {
		out = append(out, center+i*step)
	}
	return out
}

func snapshot(strike int, dP, dOI float64) *contracts.ContractSnapshot {
	return &contracts.ContractSnapshot{
		StrikePrice: strike, LastPrice: 100, OpenInterest: 1000,
		ChangeInOpenInterest: dOI, ChangeInPremium: dP, TotalTradedVolume: 500,
	}
}

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		value float64
		step  int
		want  int
	}{
		{18024.9, 50, 18000},
		{18025, 50, 18050}, // half rounds up
		{18049, 50, 18050},
		{43210, 100, 43200},
		{43250, 100, 43300},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundToStep(tt.value, tt.step), "value %v step %d", tt.value, tt.step)
	}
}

func TestSelectWindow(t *testing.T) {
	strikes := strikesAround(18000, 50, 10) // 21 strikes, ATM at index 10

	t.Run("full window", func(t *testing.T) {
		window, err := SelectWindow(strikes, 18000, Config{StrikeRangeLimit: 10, StrikeStep: 50})
		require.NoError(t, err)
		assert.Equal(t, strikes, window)
	})

	t.Run("narrow window", func(t *testing.T) {
		window, err := SelectWindow(strikes, 18000, Config{StrikeRangeLimit: 2, StrikeStep: 50})
		require.NoError(t, err)
		assert.Equal(t, []int{17900, 17950, 18000, 18050, 18100}, window)
	})

	t.Run("unsorted input", func(t *testing.T) {
		shuffled := []int{18100, 17900, 18000, 18050, 17950}
		window, err := SelectWindow(shuffled, 18000, Config{StrikeRangeLimit: 1, StrikeStep: 50})
		require.NoError(t, err)
		assert.Equal(t, []int{17950, 18000, 18050}, window)
		assert.Equal(t, 18100, shuffled[0], "input must not be reordered")
	})

	errCases := []struct {
		name string
		atm  int
		cfg  Config
	}{
		{"range exceeds strikes", 18000, Config{StrikeRangeLimit: 15, StrikeStep: 50}},
		{"window off the low end", 17550, Config{StrikeRangeLimit: 2, StrikeStep: 50}},
		{"atm not listed", 18025, Config{StrikeRangeLimit: 1, StrikeStep: 25}},
		{"zero step", 18000, Config{StrikeRangeLimit: 1, StrikeStep: 0}},
		{"negative step", 18000, Config{StrikeRangeLimit: 1, StrikeStep: -50}},
		{"negative range", 18000, Config{StrikeRangeLimit: -1, StrikeStep: 50}},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectWindow(strikes, tt.atm, tt.cfg)
			require.Error(t, err)
			assert.True(t, contracts.IsConfigurationError(err))
		})
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		dP, dOI float64
		want    contracts.ContractInterpretation
	}{
		{5, 100, contracts.BuyingContracts},
		{5, -100, contracts.SquareOffSoldContracts},
		{-5, 100, contracts.SellingContracts},
		{-5, -100, contracts.SquareOffBoughtContracts},
		{0, 100, contracts.NoSignificantMovement},
		{0, -100, contracts.NoSignificantMovement},
		{5, 0, contracts.NoSignificantMovement},
		{-5, 0, contracts.NoSignificantMovement},
		{0, 0, contracts.NoSignificantMovement},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Interpret(tt.dP, tt.dOI), "dP=%v dOI=%v", tt.dP, tt.dOI)
	}
}

func TestBuildSnapshot(t *testing.T) {
	window := []int{17950, 18000, 18050}
	incomplete := snapshot(18050, 2, 10)
	incomplete.TotalTradedVolume = 0

	records := []contracts.RawChainRecord{
		{StrikePrice: 18050, ExpiryDate: "25-Jan-2024", Call: incomplete, Put: snapshot(18050, -1, 20)},
		{StrikePrice: 18000, ExpiryDate: "25-Jan-2024", Call: snapshot(18000, 3, 40), Put: snapshot(18000, -2, -10)},
		{StrikePrice: 17950, ExpiryDate: "25-Jan-2024", Call: snapshot(17950, 1, 5)},
		{StrikePrice: 17900, ExpiryDate: "25-Jan-2024", Call: snapshot(17900, 1, 5)}, // outside window
		{StrikePrice: 18000, ExpiryDate: "01-Feb-2024", Call: snapshot(18000, 9, 9)}, // other expiry
	}

	snap := BuildSnapshot(records, "25-Jan-2024", window, 18000)

	require.Len(t, snap.Strikes, 3)
	assert.Equal(t, 18000, snap.ATMStrike)
	assert.Equal(t, "25-Jan-2024", snap.ExpiryDate)

	low, mid, high := snap.Strikes[0], snap.Strikes[1], snap.Strikes[2]
	assert.Equal(t, 17950, low.StrikePrice)
	assert.NotNil(t, low.Call)
	assert.Nil(t, low.Put)

	assert.True(t, mid.Paired())
	assert.Equal(t, contracts.BuyingContracts, mid.Call.Interpretation)
	assert.Equal(t, contracts.SquareOffBoughtContracts, mid.Put.Interpretation)
	assert.Equal(t, float64(40), mid.Call.ChangeInOpenInterest)

	assert.Nil(t, high.Call, "incomplete call must be dropped")
	assert.Equal(t, contracts.SellingContracts, high.Put.Interpretation)
	assert.Nil(t, high.Signals)
}

func TestBuildSnapshot_DropsStrikeWithNoCompleteSide(t *testing.T) {
	empty := snapshot(18000, 0, 0)
	empty.LastPrice = 0

	snap := BuildSnapshot([]contracts.RawChainRecord{
		{StrikePrice: 18000, ExpiryDate: "X", Call: empty},
	}, "X", []int{18000}, 18000)

	assert.Empty(t, snap.Strikes)
}

func TestBuildSnapshot_RepeatedStrikeKeepsFirstCompleteSide(t *testing.T) {
	first := snapshot(100, 1, 5)
	first.OpenInterest = 111
	second := snapshot(100, 1, 5)
	second.OpenInterest = 222
	put := snapshot(100, -1, 5)
	put.OpenInterest = 333
	incompleteCall := snapshot(100, 1, 5)
	incompleteCall.LastPrice = 0

	snap := BuildSnapshot([]contracts.RawChainRecord{
		{StrikePrice: 100, ExpiryDate: "X", Call: incompleteCall},
		{StrikePrice: 100, ExpiryDate: "X", Call: first},
		{StrikePrice: 100, ExpiryDate: "X", Call: second, Put: put},
	}, "X", []int{100}, 100)

	require.Len(t, snap.Strikes, 1)
	entry := snap.Strikes[0]
	require.True(t, entry.Paired())
	assert.Equal(t, float64(111), entry.Call.OpenInterest)
	assert.Equal(t, float64(333), entry.Put.OpenInterest, "a later row still fills the missing side")
}
