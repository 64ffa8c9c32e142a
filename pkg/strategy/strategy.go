// Package strategy assembles entry/exit condition pairs into runnable
// trading strategies.
package strategy

import (
	"errors"
	"fmt"

	"github.com/ridopark/JonBuhBacktest/pkg/condition"
	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
)

var (
	// ErrMissingCondition is returned when a strategy lacks an entry or
	// exit condition.
	ErrMissingCondition = errors.New("strategy requires both entry and exit conditions")

	// ErrConflictingPeriods is returned when a preset's fast period is
	// not shorter than its slow period.
	ErrConflictingPeriods = errors.New("fast period must be shorter than slow period")
)

// Strategy is a named entry/exit condition pair plus the side it
// trades. It is immutable after construction and safe to share across
// concurrent runs.
type Strategy struct {
	name  string
	side  condition.Side
	entry condition.Condition
	exit  condition.Condition
}

// New creates a long strategy from an entry and exit condition.
func New(name string, entry, exit condition.Condition) (*Strategy, error) {
	return newStrategy(name, condition.Long, entry, exit)
}

func newStrategy(name string, side condition.Side, entry, exit condition.Condition) (*Strategy, error) {
	if name == "" {
		return nil, errors.New("strategy name must not be empty")
	}
	if entry == nil || exit == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingCondition, name)
	}
	if side == condition.Flat {
		return nil, fmt.Errorf("strategy %q cannot trade flat", name)
	}
	return &Strategy{name: name, side: side, entry: entry, exit: exit}, nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string { return s.name }

// Side returns the direction entries open.
func (s *Strategy) Side() condition.Side { return s.side }

// Entry returns the entry condition.
func (s *Strategy) Entry() condition.Condition { return s.entry }

// Exit returns the exit condition.
func (s *Strategy) Exit() condition.Condition { return s.exit }

// Refs returns the deduplicated union of indicator references the
// entry and exit conditions require.
func (s *Strategy) Refs() []indicator.Ref {
	refs := append(s.entry.Refs(), s.exit.Refs()...)
	return indicator.Dedupe(refs)
}
