// Package source models positions in a LaTeX document and the edits applied
// to it.
//
// A Position is made of an immutable baseline computed when the position was
// created (usually by the parser) and an accumulated Shift that reflects the
// edits dispatched since. Lines and columns are 0-based; columns and offsets
// count runes.
package source

import (
	"errors"
	"fmt"
)

// ErrUnspecifiedOffset is returned when the offset of a position is requested
// but was never computed.
var ErrUnspecifiedOffset = errors.New("position offset is unspecified")

// InvariantViolation is raised with panic when the position model is used in
// a way that cannot happen in correct operation.
type InvariantViolation struct {
	Message string
}

func (e InvariantViolation) Error() string {
	return "invariant violation: " + e.Message
}

func violation(format string, args ...any) {
	panic(InvariantViolation{Message: fmt.Sprintf(format, args...)})
}

// Shift is a delta applied to a position.
type Shift struct {
	Lines   int
	Columns int
	Offset  int
}

func (s Shift) IsZero() bool {
	return s == Shift{}
}

type Position struct {
	line      int
	column    int
	offset    int
	hasOffset bool
	shift     Shift
}

// NewPosition returns a position whose offset is unspecified.
func NewPosition(line, column int) Position {
	return Position{line: line, column: column}
}

// NewPositionWithOffset returns a position with a known absolute offset.
func NewPositionWithOffset(line, column, offset int) Position {
	return Position{line: line, column: column, offset: offset, hasOffset: true}
}

// Line returns the shifted line.
func (p Position) Line() int {
	return p.line + p.shift.Lines
}

// Column returns the shifted column.
func (p Position) Column() int {
	return p.column + p.shift.Columns
}

// Offset returns the shifted offset, or ErrUnspecifiedOffset if the baseline
// offset is unknown.
func (p Position) Offset() (int, error) {
	if !p.hasOffset {
		return 0, ErrUnspecifiedOffset
	}
	return p.offset + p.shift.Offset, nil
}

func (p Position) HasOffset() bool {
	return p.hasOffset
}

// Shift returns the delta accumulated since the position was created.
func (p Position) Shift() Shift {
	return p.shift
}

// Baseline returns the position as it was before any shift was applied.
func (p Position) Baseline() Position {
	p.shift = Shift{}
	return p
}

// WithTranslation returns a new position whose baseline is the current value
// of p moved by the given deltas. The returned position carries no shift.
func (p Position) WithTranslation(lines, columns, offset int) Position {
	q := Position{
		line:      p.Line() + lines,
		column:    p.Column() + columns,
		hasOffset: p.hasOffset,
	}
	if p.hasOffset {
		q.offset = p.offset + p.shift.Offset + offset
	}
	return q
}

func (p *Position) shiftLines(lines, offset int) {
	p.shift.Lines += lines
	p.shift.Offset += offset
}

func (p *Position) shiftColumns(columns int) {
	p.shift.Columns += columns
}

// Compare orders positions by line, then column.
func (p Position) Compare(q Position) int {
	switch {
	case p.Line() < q.Line():
		return -1
	case p.Line() > q.Line():
		return 1
	case p.Column() < q.Column():
		return -1
	case p.Column() > q.Column():
		return 1
	}
	return 0
}

func (p Position) Before(q Position) bool {
	return p.Compare(q) < 0
}

func (p Position) After(q Position) bool {
	return p.Compare(q) > 0
}

// Equal reports whether p and q designate the same line and column.
func (p Position) Equal(q Position) bool {
	return p.Compare(q) == 0
}

func (p Position) String() string {
	if off, err := p.Offset(); err == nil {
		return fmt.Sprintf("%d:%d@%d", p.Line(), p.Column(), off)
	}
	return fmt.Sprintf("%d:%d", p.Line(), p.Column())
}
