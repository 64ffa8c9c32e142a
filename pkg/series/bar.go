package series

import (
	"fmt"
	"time"
)

// Bar represents OHLCV data for a single time period
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Timeframe string    `json:"timeframe,omitempty"`
}

// TypicalPrice returns (high + low + close) / 3 for the bar
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// MedianPrice returns (high + low) / 2 for the bar
func (b Bar) MedianPrice() float64 {
	return (b.High + b.Low) / 2
}

// Series is an ordered sequence of bars for one symbol. The backtester
// only ever reads it; the caller retains ownership.
type Series []Bar

// Field identifies a per-bar price or volume value that can be read
// straight off the series without any computation.
type Field string

const (
	FieldOpen    Field = "open"
	FieldHigh    Field = "high"
	FieldLow     Field = "low"
	FieldClose   Field = "close"
	FieldVolume  Field = "volume"
	FieldTypical Field = "typical"
	FieldMedian  Field = "median"
)

// Valid reports whether f names a known price field.
func (f Field) Valid() bool {
	switch f {
	case FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume, FieldTypical, FieldMedian:
		return true
	}
	return false
}

// Value extracts the field from a single bar.
func (f Field) Value(b Bar) (float64, error) {
	switch f {
	case FieldOpen:
		return b.Open, nil
	case FieldHigh:
		return b.High, nil
	case FieldLow:
		return b.Low, nil
	case FieldClose:
		return b.Close, nil
	case FieldVolume:
		return b.Volume, nil
	case FieldTypical:
		return b.TypicalPrice(), nil
	case FieldMedian:
		return b.MedianPrice(), nil
	default:
		return 0, fmt.Errorf("unknown price field %q", string(f))
	}
}

// Values extracts the field across the whole series.
func (s Series) Values(f Field) ([]float64, error) {
	out := make([]float64, len(s))
	for i := range s {
		v, err := f.Value(s[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Opens returns the open prices for the series.
func (s Series) Opens() []float64 { return s.mustValues(FieldOpen) }

// Highs returns the high prices for the series.
func (s Series) Highs() []float64 { return s.mustValues(FieldHigh) }

// Lows returns the low prices for the series.
func (s Series) Lows() []float64 { return s.mustValues(FieldLow) }

// Closes returns the close prices for the series.
func (s Series) Closes() []float64 { return s.mustValues(FieldClose) }

// Volumes returns the volumes for the series.
func (s Series) Volumes() []float64 { return s.mustValues(FieldVolume) }

func (s Series) mustValues(f Field) []float64 {
	out, _ := s.Values(f)
	return out
}
