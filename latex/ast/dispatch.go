package ast

import (
	"context"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// Result summarises the dispatch of one change.
type Result struct {
	// Unresolved is set when dirty nodes remain that no enabled ancestor
	// could reparse.
	Unresolved bool
	Reparsed   []Node
	Failures   []*ReparseFailure
}

type status struct {
	dirty bool
	// held marks dirtiness coming from a subtree whose reparsing is
	// suppressed; ancestors do not reparse because of it.
	held bool
}

type dispatcher struct {
	tree   *Tree
	ctx    context.Context
	change source.Change
	result Result
	events []Event
}

// DispatchChange updates the tree after c was applied to the source. Every
// range is shifted, nodes invalidated by c are flagged dirty, and dirty
// nodes are reparsed by their closest enabled ancestor, if any.
//
// Changes must be dispatched in the order they were made, each one after
// the source reflects it.
func (t *Tree) DispatchChange(ctx context.Context, c source.Change) Result {
	d := &dispatcher{tree: t, ctx: ctx, change: c}
	st := d.dispatch(t.root, true)
	d.result.Unresolved = st.dirty
	t.deliver(d.events)
	return d.result
}

func (d *dispatcher) dispatch(n Node, allowReparse bool) status {
	b := n.base()
	rel := b.rng.ProcessChange(d.change)
	if rel == source.ChangeAfter {
		return status{dirty: b.dirty || b.pending, held: b.reparsingSuppressed}
	}

	invalidated := false
	switch {
	case rel == source.ChangeAcross:
		// The range could not be shifted; only an ancestor can fix it.
		invalidated = true
		b.stale = true
	case rel == source.ChangeWithin && n.IsLeaf():
		invalidated = true
	case rel == source.ChangeWithin:
		// An edit that touches no child lands in the node's own syntax; one
		// touching several children cannot be attributed to either.
		invalidated = d.touched(b.children) != 1
	}
	if invalidated {
		b.dirty = true
	}

	// A node invalidated by this change reparses its whole subtree, so its
	// descendants must not reparse first.
	allowChildren := allowReparse && !invalidated && !b.reparsingSuppressed
	var held, unheld bool
	for _, c := range b.children {
		st := d.dispatch(c, allowChildren)
		switch {
		case st.dirty && st.held:
			held = true
		case st.dirty:
			unheld = true
		}
	}
	b.pending = held || unheld

	needsReparse := b.dirty || unheld
	switch {
	case b.reparsingSuppressed && (needsReparse || held):
		d.moved(n)
		return status{dirty: true, held: true}
	case needsReparse && allowReparse && b.reparsingEnabled && !b.stale:
		if f := d.tree.reparse(d.ctx, n, &d.events); f != nil {
			d.result.Failures = append(d.result.Failures, f)
			return status{dirty: true}
		}
		d.result.Reparsed = append(d.result.Reparsed, n)
		return status{}
	case needsReparse:
		d.moved(n)
		return status{dirty: true}
	case held:
		d.moved(n)
		return status{dirty: true, held: true}
	}
	if rel == source.ChangeWithin {
		d.tree.refresh(d.ctx, n)
	}
	d.moved(n)
	return status{}
}

func (d *dispatcher) touched(children []Node) int {
	count := 0
	for _, c := range children {
		switch c.Range().Relation(d.change) {
		case source.ChangeWithin, source.ChangeAcross:
			count++
		}
	}
	return count
}

func (d *dispatcher) moved(n Node) {
	d.events = append(d.events, Event{Kind: EventRangeChanged, Node: n})
}
