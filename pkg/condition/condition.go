// Package condition provides the composable boolean predicates a
// strategy is assembled from. Conditions are pure: evaluation reads the
// per-bar context and returns a boolean, with no side effects and no
// hidden state, so a condition tree can be shared and re-evaluated
// freely. A condition whose required value is absent (indicator
// warm-up, no previous bar) evaluates to false, never to an error.
package condition

import (
	"time"

	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// Side is the direction of an open position.
type Side int

const (
	Flat Side = iota
	Long
	Short
)

// MarshalText renders the side as its display name in JSON output.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// String returns the side's display name.
func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// PositionView is the read-only position snapshot exposed to
// conditions. PeakPrice is the most favorable price seen since entry:
// the highest high for longs, the lowest low for shorts.
type PositionView struct {
	Side       Side
	EntryPrice float64
	EntryTime  time.Time
	Size       float64
	PeakPrice  float64
}

// Context is the per-step view a condition evaluates against. It lives
// for one evaluation call and must not be retained.
type Context struct {
	Index      int
	Bar        series.Bar
	Prev       *series.Bar
	Indicators *indicator.ResolvedSet
	Position   PositionView
}

// Value resolves a ref at the current bar.
func (c *Context) Value(ref indicator.Ref) (float64, bool) {
	if c.Indicators == nil {
		return 0, false
	}
	return c.Indicators.Value(ref, c.Index)
}

// PrevValue resolves a ref at the previous bar; absent at index 0.
func (c *Context) PrevValue(ref indicator.Ref) (float64, bool) {
	if c.Indicators == nil || c.Index == 0 {
		return 0, false
	}
	return c.Indicators.Value(ref, c.Index-1)
}

// Condition is a composable boolean predicate over the strategy
// context. Refs must return the complete set of indicator references
// Evaluate reads, independent of any context, so the resolver can
// precompute everything before the bar loop starts.
type Condition interface {
	Evaluate(ctx *Context) bool
	Refs() []indicator.Ref
	Describe() string
}

// Bool is a constant condition, mostly useful in tests and as a neutral
// element when composing.
type Bool bool

// Evaluate returns the constant.
func (b Bool) Evaluate(*Context) bool { return bool(b) }

// Refs returns no references.
func (b Bool) Refs() []indicator.Ref { return nil }

// Describe returns "true" or "false".
func (b Bool) Describe() string {
	if b {
		return "true"
	}
	return "false"
}
