package condition

import (
	"fmt"

	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
)

// RiskKind names the four risk-exit predicates in their fixed
// evaluation priority order.
type RiskKind int

const (
	RiskStopLoss RiskKind = iota
	RiskTakeProfit
	RiskTrailingStop
	RiskTrailingTakeProfit
)

// String returns the predicate's display name.
func (k RiskKind) String() string {
	switch k {
	case RiskStopLoss:
		return "stop loss"
	case RiskTakeProfit:
		return "take profit"
	case RiskTrailingStop:
		return "trailing stop"
	default:
		return "trailing take profit"
	}
}

// RiskExit is a risk-exit predicate parameterized by a fractional
// threshold. It reads only the position snapshot and the current close,
// so the same predicate behaves identically regardless of which
// reference triggered entry. While flat it is always false.
type RiskExit struct {
	Kind RiskKind
	Pct  float64
}

// StopLoss fires when the close has moved against entry by pct.
func StopLoss(pct float64) *RiskExit {
	return &RiskExit{Kind: RiskStopLoss, Pct: pct}
}

// TakeProfit fires when the close has moved in favor of entry by pct.
func TakeProfit(pct float64) *RiskExit {
	return &RiskExit{Kind: RiskTakeProfit, Pct: pct}
}

// TrailingStop fires when the close has retreated pct from the most
// favorable price since entry.
func TrailingStop(pct float64) *RiskExit {
	return &RiskExit{Kind: RiskTrailingStop, Pct: pct}
}

// TrailingTakeProfit fires on the same retreat as TrailingStop but only
// while the position still marks to a profit, locking gains in rather
// than capping losses.
func TrailingTakeProfit(pct float64) *RiskExit {
	return &RiskExit{Kind: RiskTrailingTakeProfit, Pct: pct}
}

// Evaluate reports whether the threshold is breached at the current
// bar's close.
func (r *RiskExit) Evaluate(ctx *Context) bool {
	pos := ctx.Position
	if pos.Side == Flat || r.Pct <= 0 {
		return false
	}
	close := ctx.Bar.Close
	switch r.Kind {
	case RiskStopLoss:
		if pos.Side == Long {
			return atOrBelow(close, pos.EntryPrice*(1-r.Pct))
		}
		return atOrAbove(close, pos.EntryPrice*(1+r.Pct))
	case RiskTakeProfit:
		if pos.Side == Long {
			return atOrAbove(close, pos.EntryPrice*(1+r.Pct))
		}
		return atOrBelow(close, pos.EntryPrice*(1-r.Pct))
	case RiskTrailingStop:
		return trailingBreached(pos, close, r.Pct)
	case RiskTrailingTakeProfit:
		return unrealized(pos, close) > 0 && trailingBreached(pos, close, r.Pct)
	default:
		return false
	}
}

// Refs returns no references; risk exits read the position snapshot.
func (r *RiskExit) Refs() []indicator.Ref { return nil }

// Describe returns the predicate name and threshold.
func (r *RiskExit) Describe() string {
	return fmt.Sprintf("%s %.2f%%", r.Kind, r.Pct*100)
}

// trailingBreached measures the retreat from the most favorable
// excursion, not from entry: the peak high for longs, the trough low
// for shorts.
func trailingBreached(pos PositionView, close, pct float64) bool {
	if pos.Side == Long {
		return atOrBelow(close, pos.PeakPrice*(1-pct))
	}
	return atOrAbove(close, pos.PeakPrice*(1+pct))
}

// Thresholds like entry*(1+pct) carry float rounding error, so a close
// exactly at the documented level must still count as a breach.
func atOrAbove(v, threshold float64) bool {
	return v > threshold || approxEqual(v, threshold)
}

func atOrBelow(v, threshold float64) bool {
	return v < threshold || approxEqual(v, threshold)
}
