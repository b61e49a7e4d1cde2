package ast

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

var (
	ErrReparsingSuppressed = errors.New("reparsing is suppressed")
	ErrNotInTree           = errors.New("node does not belong to this tree")
	ErrStaleRange          = errors.New("node range was invalidated by an overlapping edit")
	errNoReparser          = errors.New("node has no reparser")
)

// Source resolves ranges of the live document.
type Source interface {
	Text(ctx context.Context, r source.Range) (string, error)
}

// ReparseFailure reports a node whose local reparse did not succeed. The
// node keeps its previous structure and stays dirty.
type ReparseFailure struct {
	Node Node
	Err  error
}

func (f *ReparseFailure) Error() string {
	return fmt.Sprintf("reparse %s %s: %v", f.Node.Kind(), f.Node.Range(), f.Err)
}

func (f *ReparseFailure) Unwrap() error { return f.Err }

// Tree owns a syntax tree, the source it was parsed from and the
// subscriptions to its nodes. It is not safe for concurrent use: changes
// must be dispatched one at a time, in the order they were made.
type Tree struct {
	root   Node
	src    Source
	policy func(Node) bool
	subs   map[Node]map[int]Listener
	nextID int
	log    commonlog.Logger
}

type TreeOption func(*Tree)

func WithLogger(log commonlog.Logger) TreeOption {
	return func(t *Tree) {
		t.log = log
	}
}

// WithReparsePolicy enables reparsing on every node for which enable
// returns true, including nodes created by later reparses.
func WithReparsePolicy(enable func(Node) bool) TreeOption {
	return func(t *Tree) {
		t.policy = enable
	}
}

func NewTree(root Node, src Source, opts ...TreeOption) *Tree {
	t := &Tree{
		root: root,
		src:  src,
		subs: make(map[Node]map[int]Listener),
		log:  commonlog.GetLogger("ilatex.ast"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.attach(root)
	return t
}

func (t *Tree) Root() Node {
	return t.root
}

// Source returns the source the tree reads live content from.
func (t *Tree) Source() Source {
	return t.src
}

func (t *Tree) attach(n Node) {
	b := n.base()
	if b.tree != nil && b.tree != t {
		panic(source.InvariantViolation{Message: "node already belongs to another tree"})
	}
	b.tree = t
	if t.policy != nil {
		b.reparsingEnabled = t.policy(n)
	}
	for _, c := range b.children {
		t.attach(c)
	}
}

func (t *Tree) detach(n Node) {
	for _, c := range n.Children() {
		t.detach(c)
	}
	t.notify(Event{Kind: EventDetached, Node: n})
	delete(t.subs, n)
	n.base().tree = nil
}

func (t *Tree) owns(n Node) bool {
	return n != nil && n.base().tree == t
}

// EnableReparsing sets whether n reparses itself when an edit invalidates it
// or one of its descendants.
func (t *Tree) EnableReparsing(n Node, enabled bool) {
	n.base().reparsingEnabled = enabled
}

// EnableReparsingWhere enables reparsing on every node of the tree matching
// pred and disables it elsewhere.
func (t *Tree) EnableReparsingWhere(pred func(Node) bool) {
	Inspect(t.root, func(n Node, _ int) bool {
		n.base().reparsingEnabled = pred(n)
		return true
	})
}

// SuppressReparsing stops n and its descendants from reparsing until
// ResumeReparsing is called. Edits are still tracked meanwhile.
func (t *Tree) SuppressReparsing(n Node) {
	setSuppressed(n, true)
}

// ResumeReparsing lifts a suppression window. When force is set, n is
// reparsed right away.
func (t *Tree) ResumeReparsing(ctx context.Context, n Node, force bool) error {
	setSuppressed(n, false)
	if !force {
		return nil
	}
	return t.Reparse(ctx, n)
}

func setSuppressed(n Node, suppressed bool) {
	n.base().reparsingSuppressed = suppressed
	for _, c := range n.Children() {
		setSuppressed(c, suppressed)
	}
}

// Pending returns the dirty nodes of the tree in pre-order.
func (t *Tree) Pending() []Node {
	var dirty []Node
	Inspect(t.root, func(n Node, _ int) bool {
		if n.IsDirty() {
			dirty = append(dirty, n)
		}
		return true
	})
	return dirty
}

// NodeAt returns the deepest node whose range contains p.
func (t *Tree) NodeAt(p source.Position) (Node, bool) {
	if !t.root.Range().Contains(p) {
		return nil, false
	}
	n := t.root
	for {
		next := Node(nil)
		for _, c := range n.Children() {
			if c.Range().Contains(p) {
				next = c
				break
			}
		}
		if next == nil {
			return n, true
		}
		n = next
	}
}

// Reparse reparses n from its current text regardless of its reparsing
// flag. On failure n keeps its structure, is marked dirty and a
// *ReparseFailure is returned.
func (t *Tree) Reparse(ctx context.Context, n Node) error {
	if !t.owns(n) {
		return ErrNotInTree
	}
	if n.ReparsingSuppressed() {
		return ErrReparsingSuppressed
	}
	if n.base().stale {
		return ErrStaleRange
	}
	var events []Event
	err := t.reparse(ctx, n, &events)
	if err == nil {
		for p := n.Parent(); p != nil; p = p.Parent() {
			p.base().pending = hasDirty(p.Children())
			t.refresh(ctx, p)
		}
	}
	t.deliver(events)
	if err != nil {
		return err
	}
	return nil
}

// refresh takes the current text of n as its snapshot once n and its
// subtree are clean again.
func (t *Tree) refresh(ctx context.Context, n Node) {
	b := n.base()
	if b.dirty || b.pending || b.stale {
		return
	}
	if text, err := t.src.Text(ctx, b.rng); err == nil {
		b.snapshot = text
	}
}

func hasDirty(nodes []Node) bool {
	for _, n := range nodes {
		if n.IsDirty() || n.base().pending {
			return true
		}
	}
	return false
}

// IsStale reports whether an overlapping edit left the range of n out of
// sync with the source. A stale node is only repaired by reparsing an
// ancestor.
func IsStale(n Node) bool {
	return n.base().stale
}

func (t *Tree) reparse(ctx context.Context, n Node, events *[]Event) *ReparseFailure {
	b := n.base()
	fail := func(err error) *ReparseFailure {
		b.dirty = true
		f := &ReparseFailure{Node: n, Err: err}
		t.log.Warningf("%s", f)
		*events = append(*events, Event{Kind: EventReparseFailed, Node: n, Err: f})
		return f
	}

	if b.reparser == nil {
		return fail(errNoReparser)
	}
	text, err := t.src.Text(ctx, b.rng)
	if err != nil {
		return fail(err)
	}
	fresh, err := b.reparser(ctx, text, b.rng.From.WithTranslation(0, 0, 0))
	if err != nil {
		return fail(err)
	}
	if fresh.Kind() != n.Kind() {
		return fail(fmt.Errorf("rule produced a %s", fresh.Kind()))
	}

	old := n.replace(fresh)
	for _, c := range old {
		t.detach(c)
	}
	for _, c := range b.children {
		t.attach(c)
	}
	t.log.Debugf("reparsed %s %s", n.Kind(), b.rng)
	*events = append(*events, Event{Kind: EventContentChanged, Node: n})
	return nil
}
