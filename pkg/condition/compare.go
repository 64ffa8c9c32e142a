package condition

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
)

// Operand is the right-hand side of a comparison: either another
// reference or a literal value.
type Operand struct {
	ref     indicator.Ref
	literal float64
	isRef   bool
}

// RefOperand compares against another reference's value at the same bar.
func RefOperand(ref indicator.Ref) Operand {
	return Operand{ref: ref, isRef: true}
}

// Value compares against a fixed number.
func Value(v float64) Operand {
	return Operand{literal: v}
}

func (o Operand) at(ctx *Context) (float64, bool) {
	if o.isRef {
		return ctx.Value(o.ref)
	}
	return o.literal, true
}

func (o Operand) prev(ctx *Context) (float64, bool) {
	if o.isRef {
		return ctx.PrevValue(o.ref)
	}
	return o.literal, true
}

func (o Operand) refs() []indicator.Ref {
	if o.isRef {
		return []indicator.Ref{o.ref}
	}
	return nil
}

func (o Operand) describe() string {
	if o.isRef {
		return o.ref.String()
	}
	return strconv.FormatFloat(o.literal, 'g', -1, 64)
}

type compareOp int

const (
	opAbove compareOp = iota
	opBelow
	opEquals
)

type compareCondition struct {
	ref     indicator.Ref
	operand Operand
	op      compareOp
}

// Above is true when ref's current value exceeds the operand.
func Above(ref indicator.Ref, operand Operand) Condition {
	return &compareCondition{ref: ref, operand: operand, op: opAbove}
}

// Below is true when ref's current value is under the operand.
func Below(ref indicator.Ref, operand Operand) Condition {
	return &compareCondition{ref: ref, operand: operand, op: opBelow}
}

// Equals is true when ref's current value matches the operand within a
// small relative tolerance.
func Equals(ref indicator.Ref, operand Operand) Condition {
	return &compareCondition{ref: ref, operand: operand, op: opEquals}
}

func (c *compareCondition) Evaluate(ctx *Context) bool {
	v, ok := ctx.Value(c.ref)
	if !ok {
		return false
	}
	target, ok := c.operand.at(ctx)
	if !ok {
		return false
	}
	switch c.op {
	case opAbove:
		return v > target
	case opBelow:
		return v < target
	default:
		return approxEqual(v, target)
	}
}

func (c *compareCondition) Refs() []indicator.Ref {
	return indicator.Dedupe(append([]indicator.Ref{c.ref}, c.operand.refs()...))
}

func (c *compareCondition) Describe() string {
	var verb string
	switch c.op {
	case opAbove:
		verb = "above"
	case opBelow:
		verb = "below"
	default:
		verb = "equals"
	}
	return fmt.Sprintf("%s %s %s", c.ref, verb, c.operand.describe())
}

type betweenCondition struct {
	ref       indicator.Ref
	low, high float64
}

// Between is true when ref's current value lies inside [low, high].
func Between(ref indicator.Ref, low, high float64) Condition {
	if low > high {
		low, high = high, low
	}
	return &betweenCondition{ref: ref, low: low, high: high}
}

func (c *betweenCondition) Evaluate(ctx *Context) bool {
	v, ok := ctx.Value(c.ref)
	if !ok {
		return false
	}
	return v >= c.low && v <= c.high
}

func (c *betweenCondition) Refs() []indicator.Ref {
	return []indicator.Ref{c.ref}
}

func (c *betweenCondition) Describe() string {
	return fmt.Sprintf("%s between %g and %g", c.ref, c.low, c.high)
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= scale*1e-9
}
