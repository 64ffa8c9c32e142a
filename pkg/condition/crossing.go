package condition

import (
	"fmt"

	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
)

type crossCondition struct {
	ref     indicator.Ref
	operand Operand
	upward  bool
}

// CrossesAbove is true only on the bar where ref transitions from at or
// below the operand to strictly above it. Both the current and previous
// values of both sides must be present, otherwise the condition is
// false.
func CrossesAbove(ref indicator.Ref, operand Operand) Condition {
	return &crossCondition{ref: ref, operand: operand, upward: true}
}

// CrossesBelow is true only on the bar where ref transitions from at or
// above the operand to strictly below it.
func CrossesBelow(ref indicator.Ref, operand Operand) Condition {
	return &crossCondition{ref: ref, operand: operand, upward: false}
}

func (c *crossCondition) Evaluate(ctx *Context) bool {
	cur, ok := ctx.Value(c.ref)
	if !ok {
		return false
	}
	prev, ok := ctx.PrevValue(c.ref)
	if !ok {
		return false
	}
	curTarget, ok := c.operand.at(ctx)
	if !ok {
		return false
	}
	prevTarget, ok := c.operand.prev(ctx)
	if !ok {
		return false
	}
	if c.upward {
		return prev <= prevTarget && cur > curTarget
	}
	return prev >= prevTarget && cur < curTarget
}

func (c *crossCondition) Refs() []indicator.Ref {
	return indicator.Dedupe(append([]indicator.Ref{c.ref}, c.operand.refs()...))
}

func (c *crossCondition) Describe() string {
	dir := "crosses above"
	if !c.upward {
		dir = "crosses below"
	}
	return fmt.Sprintf("%s %s %s", c.ref, dir, c.operand.describe())
}
