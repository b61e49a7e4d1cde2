package source

import (
	"strings"
	"unicode/utf8"
)

type ChangeKind int

const (
	Insertion ChangeKind = iota
	Deletion
	Replacement
)

func (k ChangeKind) String() string {
	switch k {
	case Insertion:
		return "Insertion"
	case Deletion:
		return "Deletion"
	case Replacement:
		return "Replacement"
	}
	return "Unknown"
}

// Change describes one edit. Start and End delimit the replaced span in the
// coordinates of the document as it was immediately before the edit.
type Change struct {
	Start         Position
	End           Position
	Text          string // inserted text
	RemovedLength int    // number of runes removed
}

// Kind classifies the change. An empty inserted text makes a deletion, an
// empty removed span an insertion.
func (c Change) Kind() ChangeKind {
	switch {
	case c.Text == "":
		return Deletion
	case c.RemovedLength == 0:
		return Insertion
	}
	return Replacement
}

// Shift returns the delta the change applies to positions located after it.
// The column component only applies to positions on the change's end line.
func (c Change) Shift() Shift {
	inserted := strings.Count(c.Text, "\n")
	removed := c.End.Line() - c.Start.Line()

	var columns int
	if inserted == 0 {
		columns = c.Start.Column() + utf8.RuneCountInString(c.Text) - c.End.Column()
	} else {
		last := c.Text[strings.LastIndexByte(c.Text, '\n')+1:]
		columns = utf8.RuneCountInString(last) - c.End.Column()
	}

	return Shift{
		Lines:   inserted - removed,
		Columns: columns,
		Offset:  utf8.RuneCountInString(c.Text) - c.RemovedLength,
	}
}

// Size returns the net number of runes the change adds to the document.
func (c Change) Size() int {
	switch c.Kind() {
	case Insertion:
		return utf8.RuneCountInString(c.Text)
	case Deletion:
		return -c.RemovedLength
	}
	return utf8.RuneCountInString(c.Text) - c.RemovedLength
}

func (c Change) String() string {
	return c.Kind().String() + " " + c.Start.String() + "-" + c.End.String()
}
