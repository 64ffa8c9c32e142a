package condition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// stubComputer serves canned value sequences keyed by indicator name.
type stubComputer struct {
	data   map[string][]float64
	warmup map[string]int
}

func (s *stubComputer) Compute(name string, params map[string]float64, bars series.Series) (indicator.Series, error) {
	values := s.data[name]
	return indicator.FromValues(values, s.warmup[name]), nil
}

func (s *stubComputer) MinBars(name string, params map[string]float64) (int, error) {
	return s.warmup[name] + 1, nil
}

func barsFromCloses(closes ...float64) series.Series {
	bars := make(series.Series, len(closes))
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = series.Bar{
			Symbol:    "TEST",
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
		}
	}
	return bars
}

func contextAt(t *testing.T, bars series.Series, rs *indicator.ResolvedSet, i int, pos PositionView) *Context {
	t.Helper()
	require.Less(t, i, len(bars))
	ctx := &Context{Index: i, Bar: bars[i], Indicators: rs, Position: pos}
	if i > 0 {
		ctx.Prev = &bars[i-1]
	}
	return ctx
}

func resolveRefs(t *testing.T, refs []indicator.Ref, bars series.Series, comp indicator.Computer) *indicator.ResolvedSet {
	t.Helper()
	rs, err := indicator.Resolve(refs, bars, comp)
	require.NoError(t, err)
	return rs
}

func TestCrossesAboveThreshold(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(28, 29, 31, 33)
	comp := &stubComputer{
		data:   map[string][]float64{"osc": {28, 29, 31, 33}},
		warmup: map[string]int{"osc": 0},
	}
	osc := indicator.Named("osc", nil)
	rs := resolveRefs(t, []indicator.Ref{osc}, bars, comp)

	cond := CrossesAbove(osc, Value(30))

	// No previous value at index 0; both sides below at index 1; the
	// upward transition lands at index 2; already above at index 3.
	want := []bool{false, false, true, false}
	for i, expected := range want {
		ctx := contextAt(t, bars, rs, i, PositionView{Side: Flat})
		assert.Equal(t, expected, cond.Evaluate(ctx), "index %d", i)
	}
}

func TestCrossesBelowRef(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(10, 10, 10, 10)
	comp := &stubComputer{
		data: map[string][]float64{
			"fast": {5, 6, 4, 3},
			"slow": {5, 5, 5, 5},
		},
		warmup: map[string]int{"fast": 0, "slow": 0},
	}
	fast := indicator.Named("fast", nil)
	slow := indicator.Named("slow", nil)
	rs := resolveRefs(t, []indicator.Ref{fast, slow}, bars, comp)

	cond := CrossesBelow(fast, RefOperand(slow))

	want := []bool{false, false, true, false}
	for i, expected := range want {
		ctx := contextAt(t, bars, rs, i, PositionView{Side: Flat})
		assert.Equal(t, expected, cond.Evaluate(ctx), "index %d", i)
	}
}

func TestCrossingAbsentValuesAreFalse(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(10, 20, 30, 40)
	comp := &stubComputer{
		data:   map[string][]float64{"osc": {0, 0, 25, 35}},
		warmup: map[string]int{"osc": 2},
	}
	osc := indicator.Named("osc", nil)
	rs := resolveRefs(t, []indicator.Ref{osc}, bars, comp)

	cond := CrossesAbove(osc, Value(30))

	// Index 3 transitions 25 -> 35, but index 2's value is the first
	// present one, so only index 3 can fire; at index 2 the previous
	// value is absent and the condition must be false, not an error.
	assert.False(t, cond.Evaluate(contextAt(t, bars, rs, 2, PositionView{})))
	assert.True(t, cond.Evaluate(contextAt(t, bars, rs, 3, PositionView{})))
}

func TestThresholdComparisons(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(50)
	rs := resolveRefs(t, nil, bars, &stubComputer{})
	close := indicator.Price(series.FieldClose)
	ctx := contextAt(t, bars, rs, 0, PositionView{})

	assert.True(t, Above(close, Value(40)).Evaluate(ctx))
	assert.False(t, Above(close, Value(50)).Evaluate(ctx))
	assert.True(t, Below(close, Value(60)).Evaluate(ctx))
	assert.False(t, Below(close, Value(50)).Evaluate(ctx))
	assert.True(t, Equals(close, Value(50)).Evaluate(ctx))
	assert.False(t, Equals(close, Value(50.1)).Evaluate(ctx))
	assert.True(t, Between(close, 40, 60).Evaluate(ctx))
	assert.True(t, Between(close, 60, 40).Evaluate(ctx), "bounds normalize")
	assert.False(t, Between(close, 51, 60).Evaluate(ctx))
}

func TestCombinators(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(50)
	rs := resolveRefs(t, nil, bars, &stubComputer{})
	ctx := contextAt(t, bars, rs, 0, PositionView{})

	assert.True(t, And(Bool(true), Bool(true)).Evaluate(ctx))
	assert.False(t, And(Bool(true), Bool(false)).Evaluate(ctx))
	assert.True(t, Or(Bool(false), Bool(true)).Evaluate(ctx))
	assert.False(t, Or(Bool(false), Bool(false)).Evaluate(ctx))
	assert.True(t, Not(Bool(false)).Evaluate(ctx))
	assert.True(t, And().Evaluate(ctx), "empty and is true")
	assert.False(t, Or().Evaluate(ctx), "empty or is false")
}

// countingCondition records how often it was evaluated.
type countingCondition struct {
	result bool
	calls  int
}

func (c *countingCondition) Evaluate(*Context) bool {
	c.calls++
	return c.result
}

func (c *countingCondition) Refs() []indicator.Ref { return nil }

func (c *countingCondition) Describe() string { return "counting" }

func TestCombinatorsShortCircuit(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(50)
	rs := resolveRefs(t, nil, bars, &stubComputer{})
	ctx := contextAt(t, bars, rs, 0, PositionView{})

	skipped := &countingCondition{result: true}
	assert.False(t, And(Bool(false), skipped).Evaluate(ctx))
	assert.Zero(t, skipped.calls, "and stops at the first false child")

	skipped = &countingCondition{result: false}
	assert.True(t, Or(Bool(true), skipped).Evaluate(ctx))
	assert.Zero(t, skipped.calls, "or stops at the first true child")
}

func TestCombinatorRefsDeduplicate(t *testing.T) {
	t.Parallel()

	osc := indicator.Named("osc", map[string]float64{"period": 14})
	cond := And(
		Above(osc, Value(30)),
		Or(Below(osc, Value(70)), CrossesAbove(osc, Value(50))),
	)
	assert.Len(t, cond.Refs(), 1)
}

func TestPositionPredicates(t *testing.T) {
	t.Parallel()

	bars := barsFromCloses(105)
	rs := resolveRefs(t, nil, bars, &stubComputer{})

	flat := contextAt(t, bars, rs, 0, PositionView{Side: Flat})
	long := contextAt(t, bars, rs, 0, PositionView{Side: Long, EntryPrice: 100, PeakPrice: 105})
	short := contextAt(t, bars, rs, 0, PositionView{Side: Short, EntryPrice: 100, PeakPrice: 100})

	assert.False(t, HasPosition().Evaluate(flat))
	assert.True(t, NoPosition().Evaluate(flat))
	assert.True(t, HasPosition().Evaluate(long))
	assert.True(t, IsLong().Evaluate(long))
	assert.False(t, IsShort().Evaluate(long))
	assert.True(t, IsShort().Evaluate(short))

	// Close is 105: the long marks to a gain, the short to a loss.
	assert.True(t, InProfit().Evaluate(long))
	assert.False(t, InLoss().Evaluate(long))
	assert.True(t, InLoss().Evaluate(short))
	assert.False(t, InProfit().Evaluate(short))
	assert.False(t, InProfit().Evaluate(flat))
	assert.False(t, InLoss().Evaluate(flat))
}

// evalRisk evaluates a risk predicate against a single bar closing at
// the given price.
func evalRisk(t *testing.T, cond Condition, close float64, pos PositionView) bool {
	t.Helper()
	bars := barsFromCloses(close)
	set := resolveRefs(t, nil, bars, &stubComputer{})
	return cond.Evaluate(contextAt(t, bars, set, 0, pos))
}

func TestRiskExitPredicates(t *testing.T) {
	t.Parallel()

	eval := func(cond Condition, close float64, pos PositionView) bool {
		return evalRisk(t, cond, close, pos)
	}

	long := PositionView{Side: Long, EntryPrice: 100, PeakPrice: 120}
	short := PositionView{Side: Short, EntryPrice: 100, PeakPrice: 80}

	assert.True(t, eval(StopLoss(0.05), 95, long))
	assert.False(t, eval(StopLoss(0.05), 96, long))
	assert.True(t, eval(StopLoss(0.05), 105, short))

	assert.True(t, eval(TakeProfit(0.10), 110, long))
	assert.False(t, eval(TakeProfit(0.10), 109, long))
	assert.True(t, eval(TakeProfit(0.10), 90, short))

	// Trailing distance is measured from the peak, not the entry.
	assert.True(t, eval(TrailingStop(0.05), 113, long))
	assert.False(t, eval(TrailingStop(0.05), 115, long))
	assert.True(t, eval(TrailingStop(0.05), 84, short))

	// Trailing take profit only fires while still in profit.
	assert.True(t, eval(TrailingTakeProfit(0.05), 113, long))
	assert.False(t, eval(TrailingTakeProfit(0.25), 90, long))

	// Flat positions never trigger risk exits.
	assert.False(t, eval(StopLoss(0.05), 1, PositionView{Side: Flat}))
}

func TestRiskExitFiresAtExactThreshold(t *testing.T) {
	t.Parallel()

	// entry*(1+pct) rounds to 110.00000000000001 in float64; a close of
	// exactly 110 must still breach the 10% target.
	long := PositionView{Side: Long, EntryPrice: 100, PeakPrice: 110}
	short := PositionView{Side: Short, EntryPrice: 100, PeakPrice: 90}

	assert.True(t, evalRisk(t, TakeProfit(0.10), 110, long))
	assert.True(t, evalRisk(t, StopLoss(0.05), 95, long))
	assert.True(t, evalRisk(t, TakeProfit(0.10), 90, short))
	assert.True(t, evalRisk(t, StopLoss(0.05), 105, short))
	assert.True(t, evalRisk(t, TrailingStop(0.05), 104.5, long))
	assert.True(t, evalRisk(t, TrailingStop(0.05), 94.5, short))
	assert.True(t, evalRisk(t, TrailingTakeProfit(0.05), 104.5, long))
}

func TestDescriptions(t *testing.T) {
	t.Parallel()

	osc := indicator.Named("rsi", map[string]float64{"period": 14})
	assert.Equal(t, "rsi(period=14) crosses above 30", CrossesAbove(osc, Value(30)).Describe())
	assert.Equal(t, "close above 50", Above(indicator.Price(series.FieldClose), Value(50)).Describe())
	assert.Equal(t, "(no position and close above 50)", And(NoPosition(), Above(indicator.Price(series.FieldClose), Value(50))).Describe())
	assert.Equal(t, "stop loss 5.00%", StopLoss(0.05).Describe())
	assert.Equal(t, "not (is long)", Not(IsLong()).Describe())
	assert.Equal(t, "true", Bool(true).Describe())
}
