package strategy

import "github.com/ridopark/JonBuhBacktest/pkg/condition"

// Builder assembles a strategy fluently:
//
//	s, err := strategy.NewBuilder("rsi_reversion").
//		EnterWhen(condition.CrossesBelow(indicator.RSI(14), condition.Value(30))).
//		ExitWhen(condition.CrossesAbove(indicator.RSI(14), condition.Value(70))).
//		Build()
type Builder struct {
	name  string
	side  condition.Side
	entry []condition.Condition
	exit  []condition.Condition
}

// NewBuilder starts a long strategy with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, side: condition.Long}
}

// Long makes entries open long positions.
func (b *Builder) Long() *Builder {
	b.side = condition.Long
	return b
}

// Short makes entries open short positions.
func (b *Builder) Short() *Builder {
	b.side = condition.Short
	return b
}

// EnterWhen adds an entry condition; multiple calls are combined with
// And.
func (b *Builder) EnterWhen(c condition.Condition) *Builder {
	b.entry = append(b.entry, c)
	return b
}

// ExitWhen adds an exit condition; multiple calls are combined with Or,
// so any exit rule can close the position.
func (b *Builder) ExitWhen(c condition.Condition) *Builder {
	b.exit = append(b.exit, c)
	return b
}

// Build validates and returns the strategy.
func (b *Builder) Build() (*Strategy, error) {
	var entry, exit condition.Condition
	switch len(b.entry) {
	case 0:
	case 1:
		entry = b.entry[0]
	default:
		entry = condition.And(b.entry...)
	}
	switch len(b.exit) {
	case 0:
	case 1:
		exit = b.exit[0]
	default:
		exit = condition.Or(b.exit...)
	}
	return newStrategy(b.name, b.side, entry, exit)
}
