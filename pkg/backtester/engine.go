package backtester

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ridopark/JonBuhBacktest/pkg/condition"
	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
	"github.com/ridopark/JonBuhBacktest/pkg/logging"
	"github.com/ridopark/JonBuhBacktest/pkg/series"
	"github.com/ridopark/JonBuhBacktest/pkg/strategy"
)

// Engine runs one strategy over one symbol's bar series. A run is
// single-threaded and owns all of its state; separate Engine values may
// run concurrently with no shared mutable state between them.
type Engine struct {
	bars     series.Series
	strat    *strategy.Strategy
	cfg      Config
	computer indicator.Computer
	logger   zerolog.Logger
}

// New creates an engine over the given bars with the gct-ta backed
// indicator computer.
func New(strat *strategy.Strategy, bars series.Series, cfg Config) *Engine {
	return &Engine{
		bars:     bars,
		strat:    strat,
		cfg:      cfg,
		computer: indicator.NewGCTComputer(),
		logger:   logging.GetLogger("backtester"),
	}
}

// SetComputer swaps the indicator computation boundary, mainly for
// tests.
func (e *Engine) SetComputer(c indicator.Computer) {
	e.computer = c
}

// Run executes the backtest: resolve and precompute indicators, iterate
// bars in order driving the position state machine, then force-close
// any open position at the end of data.
func (e *Engine) Run() (*Result, error) {
	if e.strat == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrInvalidParameter)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	refs := e.strat.Refs()
	min, err := indicator.MaxWarmup(refs, e.computer)
	if err != nil {
		return nil, err
	}
	if len(e.bars) == 0 || len(e.bars) < min {
		return nil, fmt.Errorf("%w: have %d bars, need at least %d", ErrInsufficientData, len(e.bars), min)
	}

	resolved, err := indicator.Resolve(refs, e.bars, e.computer)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("strategy", e.strat.Name()).
		Int("bars", len(e.bars)).
		Float64("initial_capital", e.cfg.InitialCapital).
		Msg("Starting backtest execution")

	result := &Result{
		StrategyName:   e.strat.Name(),
		Symbol:         e.bars[0].Symbol,
		StartDate:      e.bars[0].Timestamp,
		EndDate:        e.bars[len(e.bars)-1].Timestamp,
		InitialCapital: e.cfg.InitialCapital,
		EquityCurve:    make([]EquityPoint, 0, len(e.bars)),
		Trades:         make([]Trade, 0),
		Signals:        make([]SignalRecord, 0),
	}

	rules := riskRulesFromConfig(e.cfg)
	cash := e.cfg.InitialCapital
	var pos *Position

	for i := range e.bars {
		bar := e.bars[i]
		var prev *series.Bar
		if i > 0 {
			prev = &e.bars[i-1]
		}

		// Favorable extreme moves before any risk rule looks at it.
		if pos != nil {
			pos.UpdatePeak(bar)
		}

		ctx := &condition.Context{
			Index:      i,
			Bar:        bar,
			Prev:       prev,
			Indicators: resolved,
			Position:   pos.Snapshot(),
		}

		if pos != nil {
			exited := false
			for _, rule := range rules {
				if rule.cond.Evaluate(ctx) {
					cash = e.closePosition(result, pos, i, bar, rule.reason, rule.cond.Describe(), cash)
					pos = nil
					exited = true
					break
				}
			}
			if !exited && e.strat.Exit().Evaluate(ctx) {
				cash = e.closePosition(result, pos, i, bar, ExitSignal, e.strat.Exit().Describe(), cash)
				pos = nil
			}
		} else if e.strat.Entry().Evaluate(ctx) {
			if e.strat.Side() == condition.Short && !e.cfg.AllowShort {
				e.logger.Debug().Int("bar", i).Msg("Short entry suppressed by long-only config")
			} else {
				pos, cash = e.openPosition(result, i, bar, cash)
			}
		}

		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Timestamp: bar.Timestamp,
			Value:     cash + pos.MarketValue(bar.Close),
		})
	}

	if pos != nil {
		last := len(e.bars) - 1
		cash = e.closePosition(result, pos, last, e.bars[last], ExitEndOfData, "end of data", cash)
		pos = nil
		result.EquityCurve[last].Value = cash
	}

	result.FinalCapital = cash
	result.TotalReturn = cash/e.cfg.InitialCapital - 1
	result.TotalPL = cash - e.cfg.InitialCapital
	result.Metrics = Compute(e.cfg.InitialCapital, result.EquityCurve, result.Trades)

	e.logger.Info().
		Int("trades", len(result.Trades)).
		Float64("final_capital", result.FinalCapital).
		Msg("Backtest completed")

	return result, nil
}

// openPosition fills an entry at the bar's close adjusted by slippage,
// committing the full cash balance net of the entry commission.
func (e *Engine) openPosition(result *Result, idx int, bar series.Bar, cash float64) (*Position, float64) {
	side := e.strat.Side()
	fill := entryFill(side, bar.Close, e.cfg.SlippagePct)

	var size, commission float64
	if side == condition.Long {
		size = cash / (fill * (1 + e.cfg.CommissionPct))
		commission = size * fill * e.cfg.CommissionPct
		cash -= size*fill + commission
	} else {
		size = cash / fill
		commission = size * fill * e.cfg.CommissionPct
		cash += size*fill - commission
	}

	pos := &Position{
		Side:            side,
		EntryPrice:      fill,
		EntryTime:       bar.Timestamp,
		Size:            size,
		PeakPrice:       fill,
		EntryCommission: commission,
	}

	result.Signals = append(result.Signals, SignalRecord{
		BarIndex:    idx,
		Timestamp:   bar.Timestamp,
		Kind:        SignalEntry,
		Side:        side,
		Price:       fill,
		Description: e.strat.Entry().Describe(),
	})

	e.logger.Debug().
		Int("bar", idx).
		Str("side", side.String()).
		Float64("fill", fill).
		Float64("size", size).
		Msg("Position opened")

	return pos, cash
}

// closePosition fills an exit at the bar's close adjusted by slippage,
// records the round trip, and returns the updated cash balance.
func (e *Engine) closePosition(result *Result, pos *Position, idx int, bar series.Bar, reason ExitReason, description string, cash float64) float64 {
	fill := exitFill(pos.Side, bar.Close, e.cfg.SlippagePct)
	notional := pos.Size * fill
	commission := notional * e.cfg.CommissionPct

	if pos.Side == condition.Long {
		cash += notional - commission
	} else {
		cash -= notional + commission
	}

	trade := Trade{
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  fill,
		EntryTime:  pos.EntryTime,
		ExitTime:   bar.Timestamp,
		Size:       pos.Size,
		Commission: pos.EntryCommission + commission,
		ExitReason: reason,
	}
	result.Trades = append(result.Trades, trade)

	result.Signals = append(result.Signals, SignalRecord{
		BarIndex:    idx,
		Timestamp:   bar.Timestamp,
		Kind:        SignalExit,
		Side:        pos.Side,
		Price:       fill,
		Description: description,
	})

	e.logger.Debug().
		Int("bar", idx).
		Str("side", pos.Side.String()).
		Str("reason", string(reason)).
		Float64("fill", fill).
		Float64("pnl", trade.NetPnL()).
		Msg("Position closed")

	return cash
}
