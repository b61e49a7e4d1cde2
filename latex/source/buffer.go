package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/btree"
)

var ErrOutOfRange = errors.New("position out of range")

// Buffer holds the authoritative text of a document and turns edits into
// Changes. It is not safe for concurrent use; the owner serialises edits.
type Buffer struct {
	text   []rune
	starts []int                // line -> offset of its first rune
	lines  *btree.Map[int, int] // offset of a line's first rune -> line
}

func NewBuffer(text string) *Buffer {
	b := &Buffer{}
	b.SetText(text)
	return b
}

// SetText replaces the whole content without producing a Change.
func (b *Buffer) SetText(text string) {
	b.text = []rune(text)
	b.reindex()
}

func (b *Buffer) reindex() {
	b.starts = b.starts[:0]
	b.lines = new(btree.Map[int, int])
	b.addLine(0)
	for i, r := range b.text {
		if r == '\n' {
			b.addLine(i + 1)
		}
	}
}

func (b *Buffer) addLine(offset int) {
	b.lines.Set(offset, len(b.starts))
	b.starts = append(b.starts, offset)
}

func (b *Buffer) String() string {
	return string(b.text)
}

// Len returns the length of the text in runes.
func (b *Buffer) Len() int {
	return len(b.text)
}

func (b *Buffer) LineCount() int {
	return len(b.starts)
}

// Line returns the text of line i without its trailing newline.
func (b *Buffer) Line(i int) (string, error) {
	if i < 0 || i >= len(b.starts) {
		return "", fmt.Errorf("line %d: %w", i, ErrOutOfRange)
	}
	return string(b.text[b.starts[i]:b.lineEnd(i)]), nil
}

func (b *Buffer) lineEnd(i int) int {
	if i+1 < len(b.starts) {
		return b.starts[i+1] - 1
	}
	return len(b.text)
}

// PositionAt converts an offset into a position carrying that offset.
func (b *Buffer) PositionAt(offset int) (Position, error) {
	if offset < 0 || offset > len(b.text) {
		return Position{}, fmt.Errorf("offset %d: %w", offset, ErrOutOfRange)
	}
	line, start := 0, 0
	b.lines.Descend(offset, func(key, value int) bool {
		start, line = key, value
		return false
	})
	return NewPositionWithOffset(line, offset-start, offset), nil
}

// OffsetAt converts a line and column into an offset.
func (b *Buffer) OffsetAt(line, column int) (int, error) {
	if line < 0 || line >= len(b.starts) {
		return 0, fmt.Errorf("line %d: %w", line, ErrOutOfRange)
	}
	offset := b.starts[line] + column
	if column < 0 || offset > b.lineEnd(line) {
		return 0, fmt.Errorf("column %d on line %d: %w", column, line, ErrOutOfRange)
	}
	return offset, nil
}

func (b *Buffer) resolve(p Position) (int, error) {
	if off, err := p.Offset(); err == nil {
		if off < 0 || off > len(b.text) {
			return 0, fmt.Errorf("offset %d: %w", off, ErrOutOfRange)
		}
		return off, nil
	}
	return b.OffsetAt(p.Line(), p.Column())
}

// Slice returns the text spanned by r.
func (b *Buffer) Slice(r Range) (string, error) {
	from, err := b.resolve(r.From)
	if err != nil {
		return "", err
	}
	to, err := b.resolve(r.To)
	if err != nil {
		return "", err
	}
	if from > to {
		return "", fmt.Errorf("range %s is inverted: %w", r, ErrOutOfRange)
	}
	return string(b.text[from:to]), nil
}

// Text resolves a range against the current content.
func (b *Buffer) Text(ctx context.Context, r Range) (string, error) {
	return b.Slice(r)
}

// Replace substitutes text for the span between start and end, given as line
// and column, and returns the corresponding Change.
func (b *Buffer) Replace(start, end Position, text string) (Change, error) {
	from, err := b.OffsetAt(start.Line(), start.Column())
	if err != nil {
		return Change{}, fmt.Errorf("edit start: %w", err)
	}
	to, err := b.OffsetAt(end.Line(), end.Column())
	if err != nil {
		return Change{}, fmt.Errorf("edit end: %w", err)
	}
	return b.ReplaceOffsets(from, to, text)
}

// ReplaceOffsets substitutes text for the runes in [from, to).
func (b *Buffer) ReplaceOffsets(from, to int, text string) (Change, error) {
	if from < 0 || to > len(b.text) || from > to {
		return Change{}, fmt.Errorf("edit [%d, %d): %w", from, to, ErrOutOfRange)
	}
	start, _ := b.PositionAt(from)
	end, _ := b.PositionAt(to)
	change := Change{
		Start:         start,
		End:           end,
		Text:          text,
		RemovedLength: to - from,
	}

	inserted := []rune(text)
	next := make([]rune, 0, len(b.text)-(to-from)+len(inserted))
	next = append(next, b.text[:from]...)
	next = append(next, inserted...)
	next = append(next, b.text[to:]...)
	b.text = next
	b.reindex()

	return change, nil
}
