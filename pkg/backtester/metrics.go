package backtester

import "math"

// PerformanceMetrics summarizes one run. Ratios that are undefined for
// the inputs (too few periods, zero variance, no losing trades, no
// recovery) are nil rather than zero or NaN.
type PerformanceMetrics struct {
	TotalReturn     float64  `json:"total_return"`
	SharpeRatio     *float64 `json:"sharpe_ratio,omitempty"`
	SortinoRatio    *float64 `json:"sortino_ratio,omitempty"`
	MaxDrawdown     float64  `json:"max_drawdown"`
	RecoveryBars    *int     `json:"recovery_bars,omitempty"`
	TotalTrades     int      `json:"total_trades"`
	WinningTrades   int      `json:"winning_trades"`
	LosingTrades    int      `json:"losing_trades"`
	WinRate         float64  `json:"win_rate"`
	ProfitFactor    *float64 `json:"profit_factor,omitempty"`
	AvgWin          float64  `json:"avg_win"`
	AvgLoss         float64  `json:"avg_loss"`
	LargestWin      float64  `json:"largest_win"`
	LargestLoss     float64  `json:"largest_loss"`
	TotalCommission float64  `json:"total_commission"`
}

// Compute derives metrics from the recorded equity curve and trade log.
// It is a pure function: identical inputs always produce identical
// metrics, and nothing is cached or mutated.
func Compute(initialCapital float64, equity []EquityPoint, trades []Trade) *PerformanceMetrics {
	m := &PerformanceMetrics{}

	if len(equity) > 0 && initialCapital > 0 {
		m.TotalReturn = equity[len(equity)-1].Value/initialCapital - 1
	}

	returns := periodReturns(equity)
	m.SharpeRatio = sharpe(returns)
	m.SortinoRatio = sortino(returns)
	m.MaxDrawdown, m.RecoveryBars = maxDrawdown(equity)

	m.TotalTrades = len(trades)
	var totalWins, totalLosses float64
	for _, t := range trades {
		pl := t.NetPnL()
		m.TotalCommission += t.Commission
		if pl > 0 {
			m.WinningTrades++
			totalWins += pl
			if pl > m.LargestWin {
				m.LargestWin = pl
			}
		} else if pl < 0 {
			m.LosingTrades++
			totalLosses += -pl
			if pl < m.LargestLoss {
				m.LargestLoss = pl
			}
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AvgWin = totalWins / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = -totalLosses / float64(m.LosingTrades)
	}
	if totalLosses > 0 {
		pf := totalWins / totalLosses
		m.ProfitFactor = &pf
	}

	return m
}

// periodReturns computes simple percentage changes between consecutive
// equity points; the first period has no return.
func periodReturns(equity []EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (equity[i].Value-prev)/prev)
	}
	return returns
}

// sharpe returns mean/stddev of the per-period returns (risk-free rate
// zero), or nil with fewer than 2 periods or zero deviation.
func sharpe(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	mean := meanOf(returns)
	var sumSquares float64
	for _, r := range returns {
		d := r - mean
		sumSquares += d * d
	}
	stddev := math.Sqrt(sumSquares / float64(len(returns)-1))
	if stddev == 0 {
		return nil
	}
	v := mean / stddev
	return &v
}

// sortino returns mean/downside-deviation, or nil when there are no
// negative periods to measure downside from.
func sortino(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	mean := meanOf(returns)
	var sumDownside float64
	downside := 0
	for _, r := range returns {
		if r < 0 {
			sumDownside += r * r
			downside++
		}
	}
	if downside == 0 {
		return nil
	}
	dev := math.Sqrt(sumDownside / float64(downside))
	if dev == 0 {
		return nil
	}
	v := mean / dev
	return &v
}

// maxDrawdown returns the largest peak-to-trough decline as a positive
// fraction, and the number of bars from that trough until equity
// regained the prior peak; recovery is nil when no later point returns
// to or above the peak.
func maxDrawdown(equity []EquityPoint) (float64, *int) {
	if len(equity) == 0 {
		return 0, nil
	}

	peak := equity[0].Value
	peakIdx := 0
	var maxDD float64
	ddPeakIdx, ddTroughIdx := -1, -1

	for i, pt := range equity {
		if pt.Value > peak {
			peak = pt.Value
			peakIdx = i
			continue
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - pt.Value) / peak
		if dd > maxDD {
			maxDD = dd
			ddPeakIdx = peakIdx
			ddTroughIdx = i
		}
	}

	if maxDD == 0 {
		return 0, nil
	}

	peakValue := equity[ddPeakIdx].Value
	for i := ddTroughIdx + 1; i < len(equity); i++ {
		if equity[i].Value >= peakValue {
			bars := i - ddTroughIdx
			return maxDD, &bars
		}
	}
	return maxDD, nil
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
