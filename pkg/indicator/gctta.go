package indicator

import (
	"errors"
	"fmt"

	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

var (
	errUnknownIndicator = errors.New("unknown indicator")
	errInvalidPeriod    = errors.New("invalid period")
	errInvalidDeviation = errors.New("invalid deviation multiplier")
	errNoData           = errors.New("no data")
)

// GCTComputer computes indicators with the gct-ta library. It is
// stateless and safe to share across concurrent runs.
type GCTComputer struct{}

// NewGCTComputer returns the gct-ta backed Computer.
func NewGCTComputer() GCTComputer {
	return GCTComputer{}
}

// MinBars reports the bars required before the named indicator produces
// its first value.
func (GCTComputer) MinBars(name string, params map[string]float64) (int, error) {
	switch name {
	case "sma", "ema", "bbands_upper", "bbands_middle", "bbands_lower":
		period, err := periodParam(name, params)
		if err != nil {
			return 0, err
		}
		return period, nil
	case "rsi", "atr":
		period, err := periodParam(name, params)
		if err != nil {
			return 0, err
		}
		return period + 1, nil
	case "macd", "macd_signal", "macd_hist":
		_, slow, signal, err := macdPeriods(name, params)
		if err != nil {
			return 0, err
		}
		return slow + signal - 1, nil
	default:
		return 0, &Error{Name: name, Err: errUnknownIndicator}
	}
}

// Compute calculates the named indicator over the full bar series,
// masking warm-up entries as absent.
func (c GCTComputer) Compute(name string, params map[string]float64, bars series.Series) (Series, error) {
	if len(bars) == 0 {
		return Series{}, &Error{Name: name, Err: errNoData}
	}
	warmup, err := c.MinBars(name, params)
	if err != nil {
		return Series{}, err
	}
	firstValid := warmup - 1

	var out []float64
	switch name {
	case "sma":
		period, _ := periodParam(name, params)
		out = indicators.SMA(bars.Closes(), period)
	case "ema":
		period, _ := periodParam(name, params)
		out = indicators.EMA(bars.Closes(), period)
	case "rsi":
		period, _ := periodParam(name, params)
		out = indicators.RSI(bars.Closes(), period)
	case "atr":
		period, _ := periodParam(name, params)
		out = indicators.ATR(bars.Highs(), bars.Lows(), bars.Closes(), period)
	case "macd", "macd_signal", "macd_hist":
		fast, slow, signal, _ := macdPeriods(name, params)
		macd, signalVals, hist := indicators.MACD(bars.Closes(), fast, slow, signal)
		switch name {
		case "macd":
			out = macd
		case "macd_signal":
			out = signalVals
		case "macd_hist":
			out = hist
		}
	case "bbands_upper", "bbands_middle", "bbands_lower":
		period, _ := periodParam(name, params)
		dev := params["dev"]
		upper, middle, lower := indicators.BBANDS(bars.Closes(), period, dev, dev, indicators.Sma)
		switch name {
		case "bbands_upper":
			out = upper
		case "bbands_middle":
			out = middle
		case "bbands_lower":
			out = lower
		}
	default:
		return Series{}, &Error{Name: name, Err: errUnknownIndicator}
	}

	return align(out, len(bars), firstValid), nil
}

// align maps the library's output onto bar indices. gct-ta keeps the
// last output value aligned with the last bar; shorter outputs are
// right-aligned and anything before the first valid index is masked.
func align(out []float64, total, firstValid int) Series {
	s := NewSeries(total)
	offset := total - len(out)
	for i, v := range out {
		idx := offset + i
		if idx >= firstValid {
			s.Set(idx, v)
		}
	}
	return s
}

func periodParam(name string, params map[string]float64) (int, error) {
	period := int(params["period"])
	if period <= 0 {
		return 0, &Error{Name: name, Err: errInvalidPeriod}
	}
	if name == "bbands_upper" || name == "bbands_middle" || name == "bbands_lower" {
		if params["dev"] <= 0 {
			return 0, &Error{Name: name, Err: errInvalidDeviation}
		}
	}
	return period, nil
}

func macdPeriods(name string, params map[string]float64) (fast, slow, signal int, err error) {
	fast = int(params["fast"])
	slow = int(params["slow"])
	signal = int(params["signal"])
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, 0, &Error{Name: name, Err: errInvalidPeriod}
	}
	if fast >= slow {
		return 0, 0, 0, &Error{Name: name, Err: fmt.Errorf("%w: fast %d must be shorter than slow %d", errInvalidPeriod, fast, slow)}
	}
	return fast, slow, signal, nil
}
