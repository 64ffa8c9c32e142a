package backtester

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridopark/JonBuhBacktest/pkg/condition"
)

func equityCurve(values ...float64) []EquityPoint {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	points := make([]EquityPoint, len(values))
	for i, v := range values {
		points[i] = EquityPoint{Timestamp: ts.AddDate(0, 0, i), Value: v}
	}
	return points
}

func longTrade(entry, exit, size, commission float64) Trade {
	return Trade{
		Side:       condition.Long,
		EntryPrice: entry,
		ExitPrice:  exit,
		Size:       size,
		Commission: commission,
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	t.Parallel()

	m := Compute(10000, nil, nil)
	require.NotNil(t, m)
	assert.Zero(t, m.TotalReturn)
	assert.Zero(t, m.MaxDrawdown)
	assert.Nil(t, m.SharpeRatio)
	assert.Nil(t, m.SortinoRatio)
	assert.Nil(t, m.RecoveryBars)
	assert.Nil(t, m.ProfitFactor)
	assert.Zero(t, m.TotalTrades)
	assert.Zero(t, m.WinRate)
}

func TestComputeFlatCurve(t *testing.T) {
	t.Parallel()

	m := Compute(10000, equityCurve(10000, 10000, 10000, 10000), nil)
	assert.Zero(t, m.TotalReturn)
	assert.Zero(t, m.MaxDrawdown)
	assert.Nil(t, m.SharpeRatio, "zero variance has no Sharpe")
	assert.Nil(t, m.SortinoRatio, "no downside periods")
	assert.Nil(t, m.RecoveryBars)
}

func TestComputeTotalReturn(t *testing.T) {
	t.Parallel()

	m := Compute(10000, equityCurve(10000, 11000, 12000), nil)
	assert.InDelta(t, 0.2, m.TotalReturn, 1e-9)
}

func TestComputeSharpeAndSortino(t *testing.T) {
	t.Parallel()

	// Period returns are +10% then -5%.
	m := Compute(100, equityCurve(100, 110, 104.5), nil)

	require.NotNil(t, m.SharpeRatio)
	assert.InDelta(t, 0.2357, *m.SharpeRatio, 1e-3)

	require.NotNil(t, m.SortinoRatio)
	assert.InDelta(t, 0.5, *m.SortinoRatio, 1e-9)
}

func TestComputeDrawdownAndRecovery(t *testing.T) {
	t.Parallel()

	// Peak 110 at bar 1, trough 99 at bar 2, regained at bar 4.
	m := Compute(100, equityCurve(100, 110, 99, 104.5, 110), nil)
	assert.InDelta(t, 0.1, m.MaxDrawdown, 1e-9)
	require.NotNil(t, m.RecoveryBars)
	assert.Equal(t, 2, *m.RecoveryBars)
}

func TestComputeDrawdownWithoutRecovery(t *testing.T) {
	t.Parallel()

	m := Compute(100, equityCurve(100, 90, 95), nil)
	assert.InDelta(t, 0.1, m.MaxDrawdown, 1e-9)
	assert.Nil(t, m.RecoveryBars)
}

func TestComputeTradeStatistics(t *testing.T) {
	t.Parallel()

	trades := []Trade{
		longTrade(100, 110, 1, 0), // +10
		longTrade(100, 95, 1, 0),  // -5
		longTrade(100, 104, 1, 1), // +3 after commission
		longTrade(100, 99, 1, 1),  // -2 after commission
	}

	m := Compute(10000, nil, trades)
	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.InDelta(t, 0.5, m.WinRate, 1e-9)
	assert.InDelta(t, 6.5, m.AvgWin, 1e-9)
	assert.InDelta(t, -3.5, m.AvgLoss, 1e-9)
	assert.InDelta(t, 10.0, m.LargestWin, 1e-9)
	assert.InDelta(t, -5.0, m.LargestLoss, 1e-9)
	assert.InDelta(t, 2.0, m.TotalCommission, 1e-9)

	require.NotNil(t, m.ProfitFactor)
	assert.InDelta(t, 13.0/7.0, *m.ProfitFactor, 1e-9)
}

func TestComputeProfitFactorAbsentWithoutLosses(t *testing.T) {
	t.Parallel()

	trades := []Trade{longTrade(100, 110, 1, 0)}
	m := Compute(10000, nil, trades)
	assert.Nil(t, m.ProfitFactor)
	assert.InDelta(t, 1.0, m.WinRate, 1e-9)
}

func TestComputeShortTradePnL(t *testing.T) {
	t.Parallel()

	trade := Trade{
		Side:       condition.Short,
		EntryPrice: 100,
		ExitPrice:  90,
		Size:       2,
		Commission: 1,
	}
	assert.InDelta(t, 19.0, trade.NetPnL(), 1e-9)

	m := Compute(10000, nil, []Trade{trade})
	assert.Equal(t, 1, m.WinningTrades)
	assert.InDelta(t, 19.0, m.LargestWin, 1e-9)
}

func TestComputeIsPure(t *testing.T) {
	t.Parallel()

	equity := equityCurve(100, 110, 99, 104.5, 110)
	trades := []Trade{longTrade(100, 110, 1, 0), longTrade(100, 95, 1, 0)}

	first := Compute(100, equity, trades)
	second := Compute(100, equity, trades)
	assert.Equal(t, first, second)
}

func TestBreakEvenTradeCountsAsNeither(t *testing.T) {
	t.Parallel()

	m := Compute(10000, nil, []Trade{longTrade(100, 100, 1, 0)})
	assert.Equal(t, 1, m.TotalTrades)
	assert.Zero(t, m.WinningTrades)
	assert.Zero(t, m.LosingTrades)
	assert.Zero(t, m.WinRate)
	assert.Nil(t, m.ProfitFactor)
}
