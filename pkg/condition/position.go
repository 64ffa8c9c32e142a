package condition

import "github.com/ridopark/JonBuhBacktest/pkg/indicator"

type positionPredicate int

const (
	predHasPosition positionPredicate = iota
	predNoPosition
	predIsLong
	predIsShort
	predInProfit
	predInLoss
)

type positionCondition struct {
	pred positionPredicate
}

// HasPosition is true while a position is open on either side.
func HasPosition() Condition { return &positionCondition{pred: predHasPosition} }

// NoPosition is true while flat.
func NoPosition() Condition { return &positionCondition{pred: predNoPosition} }

// IsLong is true while a long position is open.
func IsLong() Condition { return &positionCondition{pred: predIsLong} }

// IsShort is true while a short position is open.
func IsShort() Condition { return &positionCondition{pred: predIsShort} }

// InProfit is true while the open position marks to a gain at the
// current bar's close.
func InProfit() Condition { return &positionCondition{pred: predInProfit} }

// InLoss is true while the open position marks to a loss at the current
// bar's close.
func InLoss() Condition { return &positionCondition{pred: predInLoss} }

func (p *positionCondition) Evaluate(ctx *Context) bool {
	pos := ctx.Position
	switch p.pred {
	case predHasPosition:
		return pos.Side != Flat
	case predNoPosition:
		return pos.Side == Flat
	case predIsLong:
		return pos.Side == Long
	case predIsShort:
		return pos.Side == Short
	case predInProfit:
		return unrealized(pos, ctx.Bar.Close) > 0
	case predInLoss:
		return unrealized(pos, ctx.Bar.Close) < 0
	default:
		return false
	}
}

func (p *positionCondition) Refs() []indicator.Ref { return nil }

func (p *positionCondition) Describe() string {
	switch p.pred {
	case predHasPosition:
		return "has position"
	case predNoPosition:
		return "no position"
	case predIsLong:
		return "is long"
	case predIsShort:
		return "is short"
	case predInProfit:
		return "in profit"
	default:
		return "in loss"
	}
}

// unrealized returns the per-unit mark-to-market P&L for the snapshot,
// zero when flat.
func unrealized(pos PositionView, price float64) float64 {
	switch pos.Side {
	case Long:
		return price - pos.EntryPrice
	case Short:
		return pos.EntryPrice - price
	default:
		return 0
	}
}
