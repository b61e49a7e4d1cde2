// Package ast defines the syntax tree of the constrained LaTeX dialect and
// keeps it in sync with the edited text.
//
// Nodes are created by the grammar package. Once a tree is built, every edit
// is dispatched through a Tree which shifts node ranges, flags the nodes the
// edit invalidated and reparses them in place, so that node values held by
// callers stay valid across reparses.
package ast

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// ErrDetached is returned when the live content of a node that does not
// belong to a tree is requested.
var ErrDetached = errors.New("node is not attached to a tree")

// Reparser re-runs the grammar rule that produced a node against text
// starting at origin.
type Reparser func(ctx context.Context, text string, origin source.Position) (Node, error)

// Node is implemented by every node kind of this package and only by them.
type Node interface {
	Kind() Kind
	Range() source.Range
	Children() []Node
	Parent() Node
	// IsLeaf reports whether edits inside the node must reparse the node
	// itself rather than one of its children.
	IsLeaf() bool
	// Snapshot returns the text of the node as of its last successful parse.
	// A node whose descendants were reparsed takes its new text once its
	// whole subtree is clean.
	Snapshot() string
	// Content reads the current text spanned by the node.
	Content(ctx context.Context) (string, error)
	IsDirty() bool
	ReparsingEnabled() bool
	ReparsingSuppressed() bool

	base() *nodeBase
	replace(fresh Node) []Node
}

type nodeBase struct {
	self     Node
	rng      source.Range
	parent   Node
	children []Node
	snapshot string
	reparser Reparser
	tree     *Tree

	reparsingEnabled    bool
	reparsingSuppressed bool
	dirty               bool
	pending             bool
	stale               bool
}

func (b *nodeBase) init(self Node, children ...Node) {
	b.self = self
	b.children = children
	for _, c := range children {
		c.base().parent = self
	}
}

func (b *nodeBase) base() *nodeBase { return b }

func (b *nodeBase) Range() source.Range { return b.rng }

func (b *nodeBase) Children() []Node { return b.children }

func (b *nodeBase) Parent() Node { return b.parent }

func (b *nodeBase) Snapshot() string { return b.snapshot }

func (b *nodeBase) IsDirty() bool { return b.dirty }

func (b *nodeBase) ReparsingEnabled() bool { return b.reparsingEnabled }

func (b *nodeBase) ReparsingSuppressed() bool { return b.reparsingSuppressed }

func (b *nodeBase) Content(ctx context.Context) (string, error) {
	if b.tree == nil {
		return "", ErrDetached
	}
	return b.tree.src.Text(ctx, b.rng)
}

// replace copies the parsed state of fresh into b and returns the children b
// owned before.
func (b *nodeBase) replace(fresh Node) []Node {
	f := fresh.base()
	old := b.children
	b.rng = f.rng
	b.children = f.children
	b.snapshot = f.snapshot
	b.reparser = f.reparser
	b.dirty = false
	b.pending = false
	b.stale = false
	for _, c := range b.children {
		c.base().parent = b.self
	}
	return old
}

// Bind records the range, text and reparser of a freshly built node. It is
// called once by the grammar when the rule that built n matched.
func Bind(n Node, rng source.Range, snapshot string, reparser Reparser) {
	b := n.base()
	if b.tree != nil {
		panic(source.InvariantViolation{Message: "cannot bind a node attached to a tree"})
	}
	b.rng = rng
	b.snapshot = snapshot
	b.reparser = reparser
}

type Document struct {
	nodeBase
}

func NewDocument(content []Node) *Document {
	n := &Document{}
	n.init(n, content...)
	return n
}

func (*Document) Kind() Kind   { return KindDocument }
func (*Document) IsLeaf() bool { return false }

type Text struct {
	nodeBase
}

func NewText() *Text {
	n := &Text{}
	n.init(n)
	return n
}

func (*Text) Kind() Kind   { return KindText }
func (*Text) IsLeaf() bool { return true }

type Whitespace struct {
	nodeBase
}

func NewWhitespace() *Whitespace {
	n := &Whitespace{}
	n.init(n)
	return n
}

func (*Whitespace) Kind() Kind   { return KindWhitespace }
func (*Whitespace) IsLeaf() bool { return true }

// Comment is a line comment. Its range excludes the terminating newline.
type Comment struct {
	nodeBase
}

func NewComment() *Comment {
	n := &Comment{}
	n.init(n)
	return n
}

func (*Comment) Kind() Kind   { return KindComment }
func (*Comment) IsLeaf() bool { return true }

// Text returns the comment without its leading percent sign.
func (c *Comment) Text() string {
	if len(c.snapshot) == 0 {
		return ""
	}
	return c.snapshot[1:]
}

// SpecialSymbol is one of the characters with a meaning of their own outside
// commands: &, ~ and #.
type SpecialSymbol struct {
	nodeBase
	Symbol rune
}

func NewSpecialSymbol(symbol rune) *SpecialSymbol {
	n := &SpecialSymbol{Symbol: symbol}
	n.init(n)
	return n
}

func (*SpecialSymbol) Kind() Kind   { return KindSpecialSymbol }
func (*SpecialSymbol) IsLeaf() bool { return true }

func (n *SpecialSymbol) replace(fresh Node) []Node {
	n.Symbol = fresh.(*SpecialSymbol).Symbol
	return n.nodeBase.replace(fresh)
}

// InlineMath is $...$.
type InlineMath struct {
	nodeBase
}

func NewInlineMath(math *Math) *InlineMath {
	n := &InlineMath{}
	n.init(n, math)
	return n
}

func (*InlineMath) Kind() Kind   { return KindInlineMath }
func (*InlineMath) IsLeaf() bool { return false }

func (n *InlineMath) Math() *Math { return n.children[0].(*Math) }

// DisplayMath is $$...$$.
type DisplayMath struct {
	nodeBase
}

func NewDisplayMath(math *Math) *DisplayMath {
	n := &DisplayMath{}
	n.init(n, math)
	return n
}

func (*DisplayMath) Kind() Kind   { return KindDisplayMath }
func (*DisplayMath) IsLeaf() bool { return false }

func (n *DisplayMath) Math() *Math { return n.children[0].(*Math) }

// Math is the raw body of a math span.
type Math struct {
	nodeBase
}

func NewMath() *Math {
	n := &Math{}
	n.init(n)
	return n
}

func (*Math) Kind() Kind   { return KindMath }
func (*Math) IsLeaf() bool { return true }

// Block is a brace group in running text.
type Block struct {
	nodeBase
}

func NewBlock(content []Node) *Block {
	n := &Block{}
	n.init(n, content...)
	return n
}

func (*Block) Kind() Kind   { return KindBlock }
func (*Block) IsLeaf() bool { return false }

// Command is \name followed by its parameters. Specific commands have
// declared parameter slots; generic ones never have arguments.
type Command struct {
	nodeBase
	Name     string
	Args     []Argument
	Specific bool
}

func NewCommand(name string, args []Argument, specific bool) *Command {
	n := &Command{Name: name, Args: args, Specific: specific}
	n.init(n, presentBlocks(args)...)
	return n
}

func (*Command) Kind() Kind   { return KindCommand }
func (*Command) IsLeaf() bool { return false }

func (n *Command) replace(fresh Node) []Node {
	f := fresh.(*Command)
	n.Name, n.Args, n.Specific = f.Name, f.Args, f.Specific
	return n.nodeBase.replace(fresh)
}

// NameRange returns the range of the backslash and the command name.
func (n *Command) NameRange() source.Range {
	length := 1 + utf8.RuneCountInString(n.Name)
	return source.NewRange(
		n.rng.From.WithTranslation(0, 0, 0),
		n.rng.From.WithTranslation(0, length, length),
	)
}

// Arg returns the i-th argument. It panics if the slot does not exist.
func (n *Command) Arg(i int) Argument { return n.Args[i] }

// Environment is \begin{name}...\end{name}.
type Environment struct {
	nodeBase
	Name     string
	Args     []Argument
	Specific bool
	body     []Node
}

func NewEnvironment(name string, args []Argument, body []Node, specific bool) *Environment {
	n := &Environment{Name: name, Args: args, Specific: specific, body: body}
	children := append(presentBlocks(args), body...)
	n.init(n, children...)
	return n
}

func (*Environment) Kind() Kind   { return KindEnvironment }
func (*Environment) IsLeaf() bool { return false }

func (n *Environment) replace(fresh Node) []Node {
	f := fresh.(*Environment)
	n.Name, n.Args, n.Specific, n.body = f.Name, f.Args, f.Specific, f.body
	return n.nodeBase.replace(fresh)
}

// Body returns the content between the parameters and \end.
func (n *Environment) Body() []Node { return n.body }

func (n *Environment) Arg(i int) Argument { return n.Args[i] }

// NameRange returns the range of the name inside \begin{...}.
func (n *Environment) NameRange() source.Range {
	const prefix = len(`\begin{`)
	length := utf8.RuneCountInString(n.Name)
	return source.NewRange(
		n.rng.From.WithTranslation(0, prefix, prefix),
		n.rng.From.WithTranslation(0, prefix+length, prefix+length),
	)
}

type CurlyParameterBlock struct {
	nodeBase
}

func NewCurlyParameterBlock(content []Node) *CurlyParameterBlock {
	n := &CurlyParameterBlock{}
	n.init(n, content...)
	return n
}

func (*CurlyParameterBlock) Kind() Kind   { return KindCurlyParameterBlock }
func (*CurlyParameterBlock) IsLeaf() bool { return false }

// Parameter returns the raw parameter of a block parsed in raw mode.
func (n *CurlyParameterBlock) Parameter() (*Parameter, bool) {
	if len(n.children) != 1 {
		return nil, false
	}
	p, ok := n.children[0].(*Parameter)
	return p, ok
}

type SquareParameterBlock struct {
	nodeBase
}

func NewSquareParameterBlock(list *ParameterList) *SquareParameterBlock {
	n := &SquareParameterBlock{}
	n.init(n, list)
	return n
}

func (*SquareParameterBlock) Kind() Kind   { return KindSquareParameterBlock }
func (*SquareParameterBlock) IsLeaf() bool { return false }

func (n *SquareParameterBlock) List() *ParameterList { return n.children[0].(*ParameterList) }

// Parameter is the raw content of a curly parameter.
type Parameter struct {
	nodeBase
}

func NewParameter() *Parameter {
	n := &Parameter{}
	n.init(n)
	return n
}

func (*Parameter) Kind() Kind   { return KindParameter }
func (*Parameter) IsLeaf() bool { return true }

func (n *Parameter) Value() string { return n.snapshot }

type ParameterKey struct {
	nodeBase
}

func NewParameterKey() *ParameterKey {
	n := &ParameterKey{}
	n.init(n)
	return n
}

func (*ParameterKey) Kind() Kind   { return KindParameterKey }
func (*ParameterKey) IsLeaf() bool { return true }

func (n *ParameterKey) Value() string { return n.snapshot }

type ParameterValue struct {
	nodeBase
}

func NewParameterValue() *ParameterValue {
	n := &ParameterValue{}
	n.init(n)
	return n
}

func (*ParameterValue) Kind() Kind   { return KindParameterValue }
func (*ParameterValue) IsLeaf() bool { return true }

func (n *ParameterValue) Value() string { return n.snapshot }

// ParameterAssignment is key=value in an option list.
type ParameterAssignment struct {
	nodeBase
}

func NewParameterAssignment(key *ParameterKey, value *ParameterValue) *ParameterAssignment {
	n := &ParameterAssignment{}
	n.init(n, key, value)
	return n
}

func (*ParameterAssignment) Kind() Kind   { return KindParameterAssignment }
func (*ParameterAssignment) IsLeaf() bool { return false }

func (n *ParameterAssignment) Key() *ParameterKey { return n.children[0].(*ParameterKey) }

func (n *ParameterAssignment) Value() *ParameterValue { return n.children[1].(*ParameterValue) }

// ParameterList holds the comma separated items of a square parameter. Items
// are ParameterValue or ParameterAssignment nodes.
type ParameterList struct {
	nodeBase
}

func NewParameterList(items []Node) *ParameterList {
	n := &ParameterList{}
	n.init(n, items...)
	return n
}

func (*ParameterList) Kind() Kind   { return KindParameterList }
func (*ParameterList) IsLeaf() bool { return false }

func (n *ParameterList) Items() []Node { return n.children }

// Lookup returns the value assigned to key, if any.
func (n *ParameterList) Lookup(key string) (*ParameterValue, bool) {
	for _, item := range n.children {
		if a, ok := item.(*ParameterAssignment); ok && a.Key().Value() == key {
			return a.Value(), true
		}
	}
	return nil, false
}

func presentBlocks(args []Argument) []Node {
	var blocks []Node
	for _, a := range args {
		if b, ok := a.Block(); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
