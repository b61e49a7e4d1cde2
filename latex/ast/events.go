package ast

type EventKind int

const (
	// EventRangeChanged: the node moved or grew but its text was not
	// reparsed.
	EventRangeChanged EventKind = iota
	// EventContentChanged: the node was reparsed and its fields replaced.
	EventContentChanged
	// EventReparseFailed: the node could not be reparsed and stays dirty.
	EventReparseFailed
	// EventDetached: the node left the tree because an ancestor was
	// reparsed. Its subscriptions are dropped after this event.
	EventDetached
)

func (k EventKind) String() string {
	switch k {
	case EventRangeChanged:
		return "RangeChanged"
	case EventContentChanged:
		return "ContentChanged"
	case EventReparseFailed:
		return "ReparseFailed"
	case EventDetached:
		return "Detached"
	}
	return "Unknown"
}

type Event struct {
	Kind EventKind
	Node Node
	Err  error
}

type Listener func(Event)

// Subscribe registers l for the events of n and returns a function that
// cancels the subscription.
func (t *Tree) Subscribe(n Node, l Listener) (cancel func()) {
	if !t.owns(n) {
		return func() {}
	}
	id := t.nextID
	t.nextID++
	table, ok := t.subs[n]
	if !ok {
		table = make(map[int]Listener)
		t.subs[n] = table
	}
	table[id] = l
	return func() {
		if table, ok := t.subs[n]; ok {
			delete(table, id)
			if len(table) == 0 {
				delete(t.subs, n)
			}
		}
	}
}

// Subscriptions returns the number of nodes with at least one listener.
func (t *Tree) Subscriptions() int {
	return len(t.subs)
}

func (t *Tree) notify(e Event) {
	for _, l := range t.subs[e.Node] {
		l(e)
	}
}

// deliver sends buffered events, skipping range and content events of nodes
// that were detached in the meantime.
func (t *Tree) deliver(events []Event) {
	for _, e := range events {
		if e.Kind != EventDetached && !t.owns(e.Node) {
			continue
		}
		t.notify(e)
	}
}
