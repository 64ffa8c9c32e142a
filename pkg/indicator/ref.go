package indicator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// Ref names a value sequence a condition can read: either a raw price
// field or a computed indicator identified by name and parameters. Two
// refs with the same Key resolve to the same computed series within a
// run.
type Ref struct {
	Field  series.Field
	Name   string
	Params map[string]float64
}

// Price creates a reference to a raw price field.
func Price(f series.Field) Ref {
	return Ref{Field: f}
}

// Named creates a reference to a computed indicator.
func Named(name string, params map[string]float64) Ref {
	return Ref{Name: name, Params: params}
}

// SMA references a simple moving average of the close.
func SMA(period int) Ref {
	return Named("sma", map[string]float64{"period": float64(period)})
}

// EMA references an exponential moving average of the close.
func EMA(period int) Ref {
	return Named("ema", map[string]float64{"period": float64(period)})
}

// RSI references the relative strength index of the close.
func RSI(period int) Ref {
	return Named("rsi", map[string]float64{"period": float64(period)})
}

// ATR references the average true range.
func ATR(period int) Ref {
	return Named("atr", map[string]float64{"period": float64(period)})
}

// MACD references the MACD line for the given fast/slow/signal periods.
func MACD(fast, slow, signal int) Ref {
	return Named("macd", macdParams(fast, slow, signal))
}

// MACDSignal references the MACD signal line.
func MACDSignal(fast, slow, signal int) Ref {
	return Named("macd_signal", macdParams(fast, slow, signal))
}

// MACDHistogram references the MACD histogram.
func MACDHistogram(fast, slow, signal int) Ref {
	return Named("macd_hist", macdParams(fast, slow, signal))
}

// BollingerUpper references the upper Bollinger band on the close.
func BollingerUpper(period int, dev float64) Ref {
	return Named("bbands_upper", bbandsParams(period, dev))
}

// BollingerMiddle references the middle Bollinger band on the close.
func BollingerMiddle(period int, dev float64) Ref {
	return Named("bbands_middle", bbandsParams(period, dev))
}

// BollingerLower references the lower Bollinger band on the close.
func BollingerLower(period int, dev float64) Ref {
	return Named("bbands_lower", bbandsParams(period, dev))
}

func macdParams(fast, slow, signal int) map[string]float64 {
	return map[string]float64{
		"fast":   float64(fast),
		"slow":   float64(slow),
		"signal": float64(signal),
	}
}

func bbandsParams(period int, dev float64) map[string]float64 {
	return map[string]float64{"period": float64(period), "dev": dev}
}

// IsPrice reports whether the ref resolves directly from the bar series.
func (r Ref) IsPrice() bool {
	return r.Field != ""
}

// Key returns the canonical identity used for content-based
// deduplication: identical name and parameters produce identical keys.
func (r Ref) Key() string {
	if r.IsPrice() {
		return "price:" + string(r.Field)
	}
	if len(r.Params) == 0 {
		return r.Name + "()"
	}
	names := make([]string, 0, len(r.Params))
	for k := range r.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('(')
	for i, k := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(r.Params[k], 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// String returns a short human-readable form used in condition
// descriptions and signal records.
func (r Ref) String() string {
	if r.IsPrice() {
		return string(r.Field)
	}
	return r.Key()
}

// Param returns a named parameter as an int, with ok reporting presence.
func (r Ref) Param(name string) (int, bool) {
	v, ok := r.Params[name]
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Dedupe returns refs with duplicate keys removed, preserving first-seen
// order.
func Dedupe(refs []Ref) []Ref {
	seen := make(map[string]struct{}, len(refs))
	out := make([]Ref, 0, len(refs))
	for _, r := range refs {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Validate checks the ref is structurally sound before any computation.
func (r Ref) Validate() error {
	if r.IsPrice() {
		if r.Name != "" {
			return fmt.Errorf("ref has both price field %q and indicator name %q", r.Field, r.Name)
		}
		if !r.Field.Valid() {
			return fmt.Errorf("unknown price field %q", string(r.Field))
		}
		return nil
	}
	if r.Name == "" {
		return fmt.Errorf("ref has neither price field nor indicator name")
	}
	return nil
}
