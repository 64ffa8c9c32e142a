package backtester

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks a malformed configuration or strategy
	// setup. It is fatal to the run and reported before any computation
	// begins.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData marks a bar series shorter than the
	// strategy's maximum indicator warm-up. It is fatal and reported
	// before the bar loop starts.
	ErrInsufficientData = errors.New("insufficient data")
)

// Config is the immutable run configuration. Percentages are fractions:
// a 0.1% commission is 0.001. A zero stop/target/trailing percentage
// disables that rule.
type Config struct {
	InitialCapital        float64 `json:"initial_capital"`
	CommissionPct         float64 `json:"commission_pct"`
	SlippagePct           float64 `json:"slippage_pct"`
	StopLossPct           float64 `json:"stop_loss_pct,omitempty"`
	TakeProfitPct         float64 `json:"take_profit_pct,omitempty"`
	TrailingStopPct       float64 `json:"trailing_stop_pct,omitempty"`
	TrailingTakeProfitPct float64 `json:"trailing_take_profit_pct,omitempty"`
	AllowShort            bool    `json:"allow_short"`
}

// DefaultConfig returns a configuration with 0.1% commission and
// slippage and no risk rules.
func DefaultConfig(initialCapital float64) Config {
	return Config{
		InitialCapital: initialCapital,
		CommissionPct:  0.001,
		SlippagePct:    0.001,
	}
}

// Validate checks the configuration once, before any computation.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %g", ErrInvalidParameter, c.InitialCapital)
	}
	pcts := []struct {
		name string
		v    float64
	}{
		{"commission_pct", c.CommissionPct},
		{"slippage_pct", c.SlippagePct},
		{"stop_loss_pct", c.StopLossPct},
		{"take_profit_pct", c.TakeProfitPct},
		{"trailing_stop_pct", c.TrailingStopPct},
		{"trailing_take_profit_pct", c.TrailingTakeProfitPct},
	}
	for _, p := range pcts {
		if p.v < 0 || p.v >= 1 {
			return fmt.Errorf("%w: %s must be within [0, 1), got %g", ErrInvalidParameter, p.name, p.v)
		}
	}
	return nil
}
