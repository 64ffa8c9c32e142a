package strategy

import (
	"fmt"

	"github.com/ridopark/JonBuhBacktest/pkg/condition"
	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// NewMACrossover buys when the fast SMA crosses above the slow SMA and
// sells when it crosses back below.
func NewMACrossover(fast, slow int) (*Strategy, error) {
	if fast >= slow {
		return nil, fmt.Errorf("%w: fast %d, slow %d", ErrConflictingPeriods, fast, slow)
	}
	fastMA := indicator.SMA(fast)
	slowMA := indicator.SMA(slow)
	return NewBuilder("ma_crossover").
		EnterWhen(condition.CrossesAbove(fastMA, condition.RefOperand(slowMA))).
		ExitWhen(condition.CrossesBelow(fastMA, condition.RefOperand(slowMA))).
		Build()
}

// NewRSIReversion buys when RSI drops below the low threshold and exits
// when it rises above the high threshold.
func NewRSIReversion(period int, low, high float64) (*Strategy, error) {
	if low >= high {
		return nil, fmt.Errorf("rsi thresholds conflict: low %g, high %g", low, high)
	}
	rsi := indicator.RSI(period)
	return NewBuilder("rsi_reversion").
		EnterWhen(condition.CrossesBelow(rsi, condition.Value(low))).
		ExitWhen(condition.CrossesAbove(rsi, condition.Value(high))).
		Build()
}

// NewBuyAndHold enters on the first bar and never signals an exit; the
// engine closes the position at the end of data.
func NewBuyAndHold() (*Strategy, error) {
	return NewBuilder("buy_and_hold").
		EnterWhen(condition.Bool(true)).
		ExitWhen(condition.Bool(false)).
		Build()
}

// NewBreakout buys when the close crosses above the upper Bollinger
// band and exits when it falls back through the middle band.
func NewBreakout(period int, dev float64) (*Strategy, error) {
	close := indicator.Price(series.FieldClose)
	return NewBuilder("bollinger_breakout").
		EnterWhen(condition.CrossesAbove(close, condition.RefOperand(indicator.BollingerUpper(period, dev)))).
		ExitWhen(condition.CrossesBelow(close, condition.RefOperand(indicator.BollingerMiddle(period, dev)))).
		Build()
}
