package s2_coa1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/optionpulse/internal/contracts"
)

type fakeStore struct {
	values map[contracts.SupportKey]contracts.SupportFrom
	sets   int
	getErr error
	setErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[contracts.SupportKey]contracts.SupportFrom{}}
}

func (f *fakeStore) Get(_ context.Context, key contracts.SupportKey) (contracts.SupportFrom, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key contracts.SupportKey, v contracts.SupportFrom) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = v
	return nil
}

func TestITMStrikes(t *testing.T) {
	call, put := ITMStrikes(17990, 18000, 50)
	assert.Equal(t, 17950, call)
	assert.Equal(t, 18000, put)

	call, put = ITMStrikes(18010, 18000, 50)
	assert.Equal(t, 18000, call)
	assert.Equal(t, 18050, put)

	call, put = ITMStrikes(18000, 18000, 50)
	assert.Equal(t, 18000, call)
	assert.Equal(t, 18050, put)
}

func TestLeaders(t *testing.T) {
	t.Run("distinct values", func(t *testing.T) {
		l := leaders([]int{100, 200, 300}, []float64{5, 9, 7})
		assert.Equal(t, 200, l.Strike)
		assert.Equal(t, 300, l.SecondStrike)
		assert.Equal(t, 9.0, l.Max)
		assert.Equal(t, 7.0, l.SecondMax)
	})

	t.Run("duplicate keeps first seen", func(t *testing.T) {
		l := leaders([]int{100, 200, 300}, []float64{9, 9, 4})
		assert.Equal(t, 100, l.Strike)
		assert.Equal(t, 300, l.SecondStrike)
	})

	t.Run("single distinct value", func(t *testing.T) {
		l := leaders([]int{100, 200}, []float64{9, 9})
		assert.Equal(t, 100, l.Strike)
		assert.Equal(t, contracts.NoStrike, l.SecondStrike)
		assert.False(t, l.HasSecond)
		assert.False(t, l.Weak())
	})

	t.Run("empty", func(t *testing.T) {
		l := leaders(nil, nil)
		assert.Equal(t, contracts.NoStrike, l.Strike)
		assert.Equal(t, contracts.NoStrike, l.SecondStrike)
		assert.False(t, l.Weak())
	})
}

func TestLeaders_Weak(t *testing.T) {
	tests := []struct {
		name      string
		max, next float64
		want      bool
	}{
		{"10 percent apart", 100, 90, true},
		{"exactly 20 percent", 100, 80, true},
		{"21 percent apart", 100, 79, false},
		{"far apart", 100, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Leaders{Max: tt.max, SecondMax: tt.next, HasMax: true, HasSecond: true}
			assert.Equal(t, tt.want, l.Weak())
		})
	}

	assert.False(t, Leaders{Max: 0, SecondMax: -5, HasMax: true, HasSecond: true}.Weak())
}

func TestClassifySupport(t *testing.T) {
	assert.Equal(t, contracts.SupportFromBoth, ClassifySupport(18000, 18000, 17950))
	assert.Equal(t, contracts.SupportFromVolume, ClassifySupport(18000, 18200, 17950))
	assert.Equal(t, contracts.SupportFromOI, ClassifySupport(18200, 18000, 17950))
	// equidistant goes to OI
	assert.Equal(t, contracts.SupportFromOI, ClassifySupport(17900, 18000, 17950))
	assert.Equal(t, contracts.SupportFromBoth, ClassifySupport(contracts.NoStrike, contracts.NoStrike, 17950))
}

func weak(strike, second int) Leaders {
	return Leaders{Max: 100, SecondMax: 95, HasMax: true, HasSecond: true, Strike: strike, SecondStrike: second}
}

func strong(strike, second int) Leaders {
	return Leaders{Max: 100, SecondMax: 10, HasMax: true, HasSecond: true, Strike: strike, SecondStrike: second}
}

func TestDirectional(t *testing.T) {
	tests := []struct {
		name    string
		support contracts.SupportFrom
		volume  Leaders
		oi      Leaders
		want    contracts.DirectionalSignal
	}{
		{"volume weak, second below", contracts.SupportFromVolume, weak(200, 100), strong(0, 0), contracts.WTB},
		{"volume weak, second above", contracts.SupportFromVolume, weak(200, 300), strong(0, 0), contracts.WTT},
		{"volume strong", contracts.SupportFromVolume, strong(200, 100), weak(0, 0), contracts.Strong},
		{"oi weak, second below", contracts.SupportFromOI, strong(0, 0), weak(200, 100), contracts.WTB},
		{"oi weak, second above", contracts.SupportFromOI, strong(0, 0), weak(200, 300), contracts.WTT},
		{"oi strong", contracts.SupportFromOI, weak(0, 0), strong(200, 300), contracts.Strong},
		{"both weak, both below", contracts.SupportFromBoth, weak(200, 100), weak(200, 150), contracts.WTB},
		{"both weak, both above", contracts.SupportFromBoth, weak(200, 300), weak(200, 250), contracts.WTT},
		{"both weak, mixed", contracts.SupportFromBoth, weak(200, 100), weak(200, 300), contracts.Weak},
		{"both, one strong", contracts.SupportFromBoth, weak(200, 100), strong(200, 100), contracts.Strong},
		{"unknown source", contracts.SupportFrom("PRICE"), weak(200, 100), weak(200, 100), contracts.DirectionalNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Directional(tt.support, tt.volume, tt.oi))
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		call, put contracts.DirectionalSignal
		want      contracts.COA1Signal
	}{
		{contracts.Strong, contracts.Strong, contracts.COA1EOB},
		{contracts.Strong, contracts.WTT, contracts.COA1EOS},
		{contracts.Strong, contracts.WTB, contracts.COA1EOR},
		{contracts.WTT, contracts.Strong, contracts.COA1EOS},
		{contracts.WTT, contracts.WTT, contracts.COA1Bullish},
		{contracts.WTT, contracts.WTB, contracts.COA1Neutral},
		{contracts.WTB, contracts.Strong, contracts.COA1EOR},
		{contracts.WTB, contracts.WTT, contracts.COA1Neutral},
		{contracts.WTB, contracts.WTB, contracts.COA1Bearish},
		{contracts.Weak, contracts.Strong, contracts.COA1Neutral},
		{contracts.Strong, contracts.Weak, contracts.COA1Neutral},
		{contracts.DirectionalNeutral, contracts.WTT, contracts.COA1Neutral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Combine(tt.call, tt.put), "%s x %s", tt.call, tt.put)
	}
}

func sideEntry(strike int, volume, oi float64) *contracts.SideEntry {
	return &contracts.SideEntry{ContractSnapshot: contracts.ContractSnapshot{
		StrikePrice: strike, TotalTradedVolume: volume, OpenInterest: oi,
	}}
}

// chain: call side leads by volume and OI at 18100; put side leads at 17900
func testSnapshot() *contracts.ChainSnapshot {
	return &contracts.ChainSnapshot{
		ExpiryDate: "25-Jan-2024",
		ATMStrike:  18000,
		Strikes: []contracts.StrikeEntry{
			{StrikePrice: 17900, Call: sideEntry(17900, 999, 999), Put: sideEntry(17900, 900, 700)},
			{StrikePrice: 17950, Call: sideEntry(17950, 50, 40), Put: sideEntry(17950, 100, 90)},
			{StrikePrice: 18000, Call: sideEntry(18000, 200, 150), Put: sideEntry(18000, 300, 200)},
			{StrikePrice: 18050, Call: sideEntry(18050, 400, 300), Put: sideEntry(18050, 999, 999)},
			{StrikePrice: 18100, Call: sideEntry(18100, 1000, 900)},
		},
	}
}

func TestCompute_Stateless(t *testing.T) {
	store := newFakeStore()
	metrics, err := New(store).Compute(context.Background(), Input{
		Symbol: "NIFTY", CurrentPrice: 18010, StrikeStep: 50, Snapshot: testSnapshot(),
	})
	require.NoError(t, err)

	// price above ATM: call ITM 18000, put ITM 18050
	assert.Equal(t, 18000, metrics.Call.ITMStrike)
	assert.Equal(t, 18050, metrics.Put.ITMStrike)

	// 17900 call excluded (below call ITM)
	assert.Equal(t, 18100, metrics.Call.StrikeWithHighestVolume)
	assert.Equal(t, 18050, metrics.Call.StrikeWithSecondHighestVolume)
	assert.Equal(t, 18100, metrics.Call.StrikeWithHighestOI)
	assert.Equal(t, contracts.SupportFromBoth, metrics.Call.SupportFrom)
	assert.Equal(t, contracts.Strong, metrics.Call.DirectionalSignal)

	// 18050 put included (put ITM 18050)
	assert.Equal(t, 18050, metrics.Put.StrikeWithHighestVolume)
	assert.Equal(t, 17900, metrics.Put.StrikeWithSecondHighestVolume)
	assert.Equal(t, 18050, metrics.Put.StrikeWithHighestOI)
	assert.Equal(t, contracts.SupportFromBoth, metrics.Put.SupportFrom)
	// volume 999 vs 900 (weak), OI 999 vs 700 (not weak) → STRONG
	assert.Equal(t, contracts.Strong, metrics.Put.DirectionalSignal)

	assert.Equal(t, contracts.COA1EOB, metrics.Signal)

	assert.Equal(t, 2, store.sets)
	assert.Equal(t, contracts.SupportFromBoth, store.values[contracts.SupportKey{Symbol: "NIFTY", Expiry: "25-Jan-2024", Side: contracts.Call}])
}

func TestCompute_StickyOverride(t *testing.T) {
	store := newFakeStore()
	callKey := contracts.SupportKey{Symbol: "NIFTY", Expiry: "25-Jan-2024", Side: contracts.Call}
	store.values[callKey] = contracts.SupportFromVolume

	metrics, err := New(store).Compute(context.Background(), Input{
		Symbol: "NIFTY", CurrentPrice: 18010, StrikeStep: 50, Snapshot: testSnapshot(),
	})
	require.NoError(t, err)

	// freshly computed BOTH overridden by the stored VOLUME
	assert.Equal(t, contracts.SupportFromVolume, metrics.Call.SupportFrom)
	assert.Equal(t, contracts.SupportFromVolume, store.values[callKey])
	// only the put side was written
	assert.Equal(t, 1, store.sets)
}

func TestCompute_PriorBothIsReplaced(t *testing.T) {
	store := newFakeStore()
	putKey := contracts.SupportKey{Symbol: "NIFTY", Expiry: "25-Jan-2024", Side: contracts.Put}
	store.values[putKey] = contracts.SupportFromBoth

	_, err := New(store).Compute(context.Background(), Input{
		Symbol: "NIFTY", CurrentPrice: 18010, StrikeStep: 50, Snapshot: testSnapshot(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.sets)
}

func TestCompute_StateErrors(t *testing.T) {
	cause := errors.New("redis down")

	for _, tc := range []struct {
		name  string
		store *fakeStore
	}{
		{"get fails", &fakeStore{values: map[contracts.SupportKey]contracts.SupportFrom{}, getErr: cause}},
		{"set fails", &fakeStore{values: map[contracts.SupportKey]contracts.SupportFrom{}, setErr: cause}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.store).Compute(context.Background(), Input{
				Symbol: "NIFTY", CurrentPrice: 18010, StrikeStep: 50, Snapshot: testSnapshot(),
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrSupportStateUnavailable))
			assert.True(t, errors.Is(err, cause))
		})
	}
}
