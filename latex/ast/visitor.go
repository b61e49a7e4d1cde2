package ast

import (
	"context"
	"fmt"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// Visitor has one method per node kind. Embed BaseVisitor to only override
// the kinds of interest.
type Visitor interface {
	VisitDocument(*Document)
	VisitText(*Text)
	VisitWhitespace(*Whitespace)
	VisitComment(*Comment)
	VisitSpecialSymbol(*SpecialSymbol)
	VisitInlineMath(*InlineMath)
	VisitDisplayMath(*DisplayMath)
	VisitMath(*Math)
	VisitBlock(*Block)
	VisitCommand(*Command)
	VisitEnvironment(*Environment)
	VisitCurlyParameterBlock(*CurlyParameterBlock)
	VisitSquareParameterBlock(*SquareParameterBlock)
	VisitParameter(*Parameter)
	VisitParameterKey(*ParameterKey)
	VisitParameterValue(*ParameterValue)
	VisitParameterAssignment(*ParameterAssignment)
	VisitParameterList(*ParameterList)
}

type BaseVisitor struct{}

func (BaseVisitor) VisitDocument(*Document)                       {}
func (BaseVisitor) VisitText(*Text)                               {}
func (BaseVisitor) VisitWhitespace(*Whitespace)                   {}
func (BaseVisitor) VisitComment(*Comment)                         {}
func (BaseVisitor) VisitSpecialSymbol(*SpecialSymbol)             {}
func (BaseVisitor) VisitInlineMath(*InlineMath)                   {}
func (BaseVisitor) VisitDisplayMath(*DisplayMath)                 {}
func (BaseVisitor) VisitMath(*Math)                               {}
func (BaseVisitor) VisitBlock(*Block)                             {}
func (BaseVisitor) VisitCommand(*Command)                         {}
func (BaseVisitor) VisitEnvironment(*Environment)                 {}
func (BaseVisitor) VisitCurlyParameterBlock(*CurlyParameterBlock) {}
func (BaseVisitor) VisitSquareParameterBlock(*SquareParameterBlock) {}
func (BaseVisitor) VisitParameter(*Parameter)                     {}
func (BaseVisitor) VisitParameterKey(*ParameterKey)               {}
func (BaseVisitor) VisitParameterValue(*ParameterValue)           {}
func (BaseVisitor) VisitParameterAssignment(*ParameterAssignment) {}
func (BaseVisitor) VisitParameterList(*ParameterList)             {}

// AsyncVisitor is the blocking counterpart of Visitor. A visit may read live
// content or run a grammar rule; returning an error stops the walk.
type AsyncVisitor interface {
	VisitDocument(context.Context, *Document) error
	VisitText(context.Context, *Text) error
	VisitWhitespace(context.Context, *Whitespace) error
	VisitComment(context.Context, *Comment) error
	VisitSpecialSymbol(context.Context, *SpecialSymbol) error
	VisitInlineMath(context.Context, *InlineMath) error
	VisitDisplayMath(context.Context, *DisplayMath) error
	VisitMath(context.Context, *Math) error
	VisitBlock(context.Context, *Block) error
	VisitCommand(context.Context, *Command) error
	VisitEnvironment(context.Context, *Environment) error
	VisitCurlyParameterBlock(context.Context, *CurlyParameterBlock) error
	VisitSquareParameterBlock(context.Context, *SquareParameterBlock) error
	VisitParameter(context.Context, *Parameter) error
	VisitParameterKey(context.Context, *ParameterKey) error
	VisitParameterValue(context.Context, *ParameterValue) error
	VisitParameterAssignment(context.Context, *ParameterAssignment) error
	VisitParameterList(context.Context, *ParameterList) error
}

type BaseAsyncVisitor struct{}

func (BaseAsyncVisitor) VisitDocument(context.Context, *Document) error       { return nil }
func (BaseAsyncVisitor) VisitText(context.Context, *Text) error               { return nil }
func (BaseAsyncVisitor) VisitWhitespace(context.Context, *Whitespace) error   { return nil }
func (BaseAsyncVisitor) VisitComment(context.Context, *Comment) error         { return nil }
func (BaseAsyncVisitor) VisitSpecialSymbol(context.Context, *SpecialSymbol) error {
	return nil
}
func (BaseAsyncVisitor) VisitInlineMath(context.Context, *InlineMath) error   { return nil }
func (BaseAsyncVisitor) VisitDisplayMath(context.Context, *DisplayMath) error { return nil }
func (BaseAsyncVisitor) VisitMath(context.Context, *Math) error               { return nil }
func (BaseAsyncVisitor) VisitBlock(context.Context, *Block) error             { return nil }
func (BaseAsyncVisitor) VisitCommand(context.Context, *Command) error         { return nil }
func (BaseAsyncVisitor) VisitEnvironment(context.Context, *Environment) error { return nil }
func (BaseAsyncVisitor) VisitCurlyParameterBlock(context.Context, *CurlyParameterBlock) error {
	return nil
}
func (BaseAsyncVisitor) VisitSquareParameterBlock(context.Context, *SquareParameterBlock) error {
	return nil
}
func (BaseAsyncVisitor) VisitParameter(context.Context, *Parameter) error           { return nil }
func (BaseAsyncVisitor) VisitParameterKey(context.Context, *ParameterKey) error     { return nil }
func (BaseAsyncVisitor) VisitParameterValue(context.Context, *ParameterValue) error { return nil }
func (BaseAsyncVisitor) VisitParameterAssignment(context.Context, *ParameterAssignment) error {
	return nil
}
func (BaseAsyncVisitor) VisitParameterList(context.Context, *ParameterList) error { return nil }

type walkConfig struct {
	maxDepth int
}

type WalkOption func(*walkConfig)

// WithMaxDepth stops the walk below the given depth. The root is at depth 0.
// A negative depth means no limit.
func WithMaxDepth(depth int) WalkOption {
	return func(c *walkConfig) {
		c.maxDepth = depth
	}
}

func newWalkConfig(opts []WalkOption) walkConfig {
	c := walkConfig{maxDepth: -1}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Walk visits root and its descendants in pre-order.
func Walk(v Visitor, root Node, opts ...WalkOption) {
	c := newWalkConfig(opts)
	Inspect(root, func(n Node, depth int) bool {
		if c.maxDepth >= 0 && depth > c.maxDepth {
			return false
		}
		accept(v, n)
		return true
	})
}

// WalkAsync visits root and its descendants in pre-order, stopping at the
// first error or when ctx is done.
func WalkAsync(ctx context.Context, v AsyncVisitor, root Node, opts ...WalkOption) error {
	c := newWalkConfig(opts)
	return walkAsync(ctx, v, root, 0, c)
}

func walkAsync(ctx context.Context, v AsyncVisitor, n Node, depth int, c walkConfig) error {
	if c.maxDepth >= 0 && depth > c.maxDepth {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := acceptAsync(ctx, v, n); err != nil {
		return fmt.Errorf("visit %s %s: %w", n.Kind(), n.Range(), err)
	}
	for _, child := range n.Children() {
		if err := walkAsync(ctx, v, child, depth+1, c); err != nil {
			return err
		}
	}
	return nil
}

// Inspect calls fn for n and its descendants in pre-order. When fn returns
// false the children of that node are skipped.
func Inspect(n Node, fn func(n Node, depth int) bool) {
	inspect(n, 0, fn)
}

func inspect(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children() {
		inspect(child, depth+1, fn)
	}
}

func accept(v Visitor, n Node) {
	switch n := n.(type) {
	case *Document:
		v.VisitDocument(n)
	case *Text:
		v.VisitText(n)
	case *Whitespace:
		v.VisitWhitespace(n)
	case *Comment:
		v.VisitComment(n)
	case *SpecialSymbol:
		v.VisitSpecialSymbol(n)
	case *InlineMath:
		v.VisitInlineMath(n)
	case *DisplayMath:
		v.VisitDisplayMath(n)
	case *Math:
		v.VisitMath(n)
	case *Block:
		v.VisitBlock(n)
	case *Command:
		v.VisitCommand(n)
	case *Environment:
		v.VisitEnvironment(n)
	case *CurlyParameterBlock:
		v.VisitCurlyParameterBlock(n)
	case *SquareParameterBlock:
		v.VisitSquareParameterBlock(n)
	case *Parameter:
		v.VisitParameter(n)
	case *ParameterKey:
		v.VisitParameterKey(n)
	case *ParameterValue:
		v.VisitParameterValue(n)
	case *ParameterAssignment:
		v.VisitParameterAssignment(n)
	case *ParameterList:
		v.VisitParameterList(n)
	default:
		panic(source.InvariantViolation{Message: fmt.Sprintf("unhandled node type %T", n)})
	}
}

func acceptAsync(ctx context.Context, v AsyncVisitor, n Node) error {
	switch n := n.(type) {
	case *Document:
		return v.VisitDocument(ctx, n)
	case *Text:
		return v.VisitText(ctx, n)
	case *Whitespace:
		return v.VisitWhitespace(ctx, n)
	case *Comment:
		return v.VisitComment(ctx, n)
	case *SpecialSymbol:
		return v.VisitSpecialSymbol(ctx, n)
	case *InlineMath:
		return v.VisitInlineMath(ctx, n)
	case *DisplayMath:
		return v.VisitDisplayMath(ctx, n)
	case *Math:
		return v.VisitMath(ctx, n)
	case *Block:
		return v.VisitBlock(ctx, n)
	case *Command:
		return v.VisitCommand(ctx, n)
	case *Environment:
		return v.VisitEnvironment(ctx, n)
	case *CurlyParameterBlock:
		return v.VisitCurlyParameterBlock(ctx, n)
	case *SquareParameterBlock:
		return v.VisitSquareParameterBlock(ctx, n)
	case *Parameter:
		return v.VisitParameter(ctx, n)
	case *ParameterKey:
		return v.VisitParameterKey(ctx, n)
	case *ParameterValue:
		return v.VisitParameterValue(ctx, n)
	case *ParameterAssignment:
		return v.VisitParameterAssignment(ctx, n)
	case *ParameterList:
		return v.VisitParameterList(ctx, n)
	}
	panic(source.InvariantViolation{Message: fmt.Sprintf("unhandled node type %T", n)})
}
