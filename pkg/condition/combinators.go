package condition

import (
	"strings"

	"github.com/ridopark/JonBuhBacktest/pkg/indicator"
)

type andCondition struct {
	children []Condition
}

// And returns a condition true when every child is true. Evaluation
// stops at the first false child; children are side-effect-free so the
// skip is unobservable.
func And(children ...Condition) Condition {
	return &andCondition{children: children}
}

func (a *andCondition) Evaluate(ctx *Context) bool {
	for _, c := range a.children {
		if !c.Evaluate(ctx) {
			return false
		}
	}
	return true
}

func (a *andCondition) Refs() []indicator.Ref {
	return childRefs(a.children)
}

func (a *andCondition) Describe() string {
	return describeChildren(a.children, " and ")
}

type orCondition struct {
	children []Condition
}

// Or returns a condition true when any child is true.
func Or(children ...Condition) Condition {
	return &orCondition{children: children}
}

func (o *orCondition) Evaluate(ctx *Context) bool {
	for _, c := range o.children {
		if c.Evaluate(ctx) {
			return true
		}
	}
	return false
}

func (o *orCondition) Refs() []indicator.Ref {
	return childRefs(o.children)
}

func (o *orCondition) Describe() string {
	return describeChildren(o.children, " or ")
}

type notCondition struct {
	child Condition
}

// Not inverts a condition.
func Not(child Condition) Condition {
	return &notCondition{child: child}
}

func (n *notCondition) Evaluate(ctx *Context) bool {
	return !n.child.Evaluate(ctx)
}

func (n *notCondition) Refs() []indicator.Ref {
	return n.child.Refs()
}

func (n *notCondition) Describe() string {
	return "not (" + n.child.Describe() + ")"
}

func childRefs(children []Condition) []indicator.Ref {
	var refs []indicator.Ref
	for _, c := range children {
		refs = append(refs, c.Refs()...)
	}
	return indicator.Dedupe(refs)
}

func describeChildren(children []Condition, sep string) string {
	if len(children) == 0 {
		return "true"
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.Describe()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
