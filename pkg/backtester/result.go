package backtester

import (
	"fmt"
	"time"

	"github.com/ridopark/JonBuhBacktest/pkg/condition"
)

// EquityPoint is the portfolio value marked to market at one bar's
// close. The equity curve holds exactly one point per input bar, in bar
// order.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// SignalKind distinguishes entry from exit records.
type SignalKind string

const (
	SignalEntry SignalKind = "ENTRY"
	SignalExit  SignalKind = "EXIT"
)

// SignalRecord logs one fired entry or exit with the description of the
// condition that fired, for auditability.
type SignalRecord struct {
	BarIndex    int            `json:"bar_index"`
	Timestamp   time.Time      `json:"timestamp"`
	Kind        SignalKind     `json:"kind"`
	Side        condition.Side `json:"side"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
}

// Result contains everything one run produced.
type Result struct {
	StrategyName   string         `json:"strategy_name"`
	Symbol         string         `json:"symbol,omitempty"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	InitialCapital float64        `json:"initial_capital"`
	FinalCapital   float64        `json:"final_capital"`
	TotalReturn    float64        `json:"total_return"`
	TotalPL        float64        `json:"total_pl"`
	EquityCurve    []EquityPoint  `json:"equity_curve"`
	Trades         []Trade        `json:"trades"`
	Signals        []SignalRecord `json:"signals"`

	Metrics *PerformanceMetrics `json:"metrics"`
}

// Summary returns a human-readable report of the results.
func (r *Result) Summary() string {
	if r.Metrics == nil {
		r.Metrics = Compute(r.InitialCapital, r.EquityCurve, r.Trades)
	}
	m := r.Metrics

	summary := fmt.Sprintf(`
Backtest Results for %s
=======================
Period: %s to %s
Initial Capital: $%.2f
Final Capital: $%.2f
Total Return: %.2f%%
Total P&L: $%.2f
Max Drawdown: %.2f%%%s

Trade Statistics:
- Total Trades: %d
- Winning Trades: %d (%.1f%%)
- Losing Trades: %d
- Average Win: $%.2f
- Average Loss: $%.2f
- Largest Win: $%.2f
- Largest Loss: $%.2f
- Profit Factor: %s
- Commission Paid: $%.2f

Risk Metrics:
- Sharpe Ratio: %s
- Sortino Ratio: %s
`,
		r.StrategyName,
		r.StartDate.Format("2006-01-02"),
		r.EndDate.Format("2006-01-02"),
		r.InitialCapital,
		r.FinalCapital,
		m.TotalReturn*100,
		r.FinalCapital-r.InitialCapital,
		m.MaxDrawdown*100,
		recoveryNote(m.RecoveryBars),
		m.TotalTrades,
		m.WinningTrades,
		m.WinRate*100,
		m.LosingTrades,
		m.AvgWin,
		m.AvgLoss,
		m.LargestWin,
		m.LargestLoss,
		formatOptional(m.ProfitFactor),
		m.TotalCommission,
		formatOptional(m.SharpeRatio),
		formatOptional(m.SortinoRatio),
	)

	return summary
}

func recoveryNote(bars *int) string {
	if bars == nil {
		return ""
	}
	return fmt.Sprintf(" (recovered in %d bars)", *bars)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
