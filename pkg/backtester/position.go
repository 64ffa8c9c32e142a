package backtester

import (
	"time"

	"github.com/ridopark/JonBuhBacktest/pkg/condition"
	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// ExitReason records which rule closed a trade.
type ExitReason string

const (
	ExitSignal       ExitReason = "SIGNAL_EXIT"
	ExitStopLoss     ExitReason = "STOP_LOSS"
	ExitTakeProfit   ExitReason = "TAKE_PROFIT"
	ExitTrailingStop ExitReason = "TRAILING_STOP"
	ExitEndOfData    ExitReason = "END_OF_DATA"
)

// Position tracks one open position for the duration of a run.
// PeakPrice holds the most favorable excursion since entry: the highest
// high for longs, the lowest low for shorts.
type Position struct {
	Side            condition.Side
	EntryPrice      float64
	EntryTime       time.Time
	Size            float64
	PeakPrice       float64
	EntryCommission float64
}

// UpdatePeak advances the favorable extreme with the current bar. It
// runs before risk rules are evaluated so trailing distance is measured
// from the best price seen, not the entry price.
func (p *Position) UpdatePeak(bar series.Bar) {
	if p.Side == condition.Long {
		if bar.High > p.PeakPrice {
			p.PeakPrice = bar.High
		}
		return
	}
	if bar.Low < p.PeakPrice {
		p.PeakPrice = bar.Low
	}
}

// Snapshot returns the read-only view conditions evaluate against. A
// nil position snapshots as flat.
func (p *Position) Snapshot() condition.PositionView {
	if p == nil {
		return condition.PositionView{Side: condition.Flat}
	}
	return condition.PositionView{
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		EntryTime:  p.EntryTime,
		Size:       p.Size,
		PeakPrice:  p.PeakPrice,
	}
}

// MarketValue returns the position's contribution to equity at the
// given price: positive holdings for longs, the short liability for
// shorts.
func (p *Position) MarketValue(price float64) float64 {
	if p == nil {
		return 0
	}
	if p.Side == condition.Long {
		return p.Size * price
	}
	return -p.Size * price
}

// Trade is a closed round trip. Commission covers both legs.
type Trade struct {
	Side       condition.Side `json:"side"`
	EntryPrice float64        `json:"entry_price"`
	ExitPrice  float64        `json:"exit_price"`
	EntryTime  time.Time      `json:"entry_time"`
	ExitTime   time.Time      `json:"exit_time"`
	Size       float64        `json:"size"`
	Commission float64        `json:"commission"`
	ExitReason ExitReason     `json:"exit_reason"`
}

// NetPnL returns the trade's realized profit after commission.
func (t Trade) NetPnL() float64 {
	var gross float64
	if t.Side == condition.Long {
		gross = (t.ExitPrice - t.EntryPrice) * t.Size
	} else {
		gross = (t.EntryPrice - t.ExitPrice) * t.Size
	}
	return gross - t.Commission
}

// riskRule pairs a risk-exit predicate with the reason it reports. The
// rules slice built from a config is ordered; see riskRulesFromConfig.
type riskRule struct {
	cond   *condition.RiskExit
	reason ExitReason
}

// riskRulesFromConfig compiles the configured risk rules in their fixed
// priority order: stop-loss, take-profit, trailing-stop,
// trailing-take-profit. On a bar breaching several rules the first in
// this order names the exit. A trailing-take-profit breach reports
// TAKE_PROFIT.
func riskRulesFromConfig(cfg Config) []riskRule {
	var rules []riskRule
	if cfg.StopLossPct > 0 {
		rules = append(rules, riskRule{condition.StopLoss(cfg.StopLossPct), ExitStopLoss})
	}
	if cfg.TakeProfitPct > 0 {
		rules = append(rules, riskRule{condition.TakeProfit(cfg.TakeProfitPct), ExitTakeProfit})
	}
	if cfg.TrailingStopPct > 0 {
		rules = append(rules, riskRule{condition.TrailingStop(cfg.TrailingStopPct), ExitTrailingStop})
	}
	if cfg.TrailingTakeProfitPct > 0 {
		rules = append(rules, riskRule{condition.TrailingTakeProfit(cfg.TrailingTakeProfitPct), ExitTakeProfit})
	}
	return rules
}

// entryFill applies slippage against the entry: long entries pay up,
// short entries receive less.
func entryFill(side condition.Side, close, slippagePct float64) float64 {
	if side == condition.Long {
		return close * (1 + slippagePct)
	}
	return close * (1 - slippagePct)
}

// exitFill applies slippage against the exit: long exits receive less,
// short covers pay up.
func exitFill(side condition.Side, close, slippagePct float64) float64 {
	if side == condition.Long {
		return close * (1 - slippagePct)
	}
	return close * (1 + slippagePct)
}
