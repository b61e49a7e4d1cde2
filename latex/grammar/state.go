package grammar

import (
	"context"
	"slices"
	"sort"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// State is the cursor shared by the rules of one parse. Positions reported
// by the state are relative to origin, the position of the first rune of the
// input in the enclosing document.
type State struct {
	ctx    context.Context
	input  []rune
	pos    int
	origin source.Position
	lines  []int // index of the first rune of every line but the first

	furthest int
	expected []string
}

func newState(ctx context.Context, text string, origin source.Position) *State {
	s := &State{
		ctx:      ctx,
		input:    []rune(text),
		origin:   origin,
		furthest: -1,
	}
	for i, r := range s.input {
		if r == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

func (s *State) peek() rune {
	return s.peekAt(0)
}

func (s *State) peekAt(offset int) rune {
	if s.pos+offset >= len(s.input) {
		return 0
	}
	return s.input[s.pos+offset]
}

func (s *State) atEnd() bool {
	return s.pos >= len(s.input)
}

func (s *State) advance(n int) {
	s.pos += n
	if s.pos > len(s.input) {
		s.pos = len(s.input)
	}
}

func (s *State) lookingAt(lit string) bool {
	i := s.pos
	for _, r := range lit {
		if i >= len(s.input) || s.input[i] != r {
			return false
		}
		i++
	}
	return true
}

func (s *State) mark() int {
	return s.pos
}

func (s *State) reset(mark int) {
	s.pos = mark
}

// fail records that what was expected at index at. Only the failures
// furthest into the input are kept.
func (s *State) fail(at int, what string) {
	switch {
	case at > s.furthest:
		s.furthest = at
		s.expected = append(s.expected[:0], what)
	case at == s.furthest && !slices.Contains(s.expected, what):
		s.expected = append(s.expected, what)
	}
}

func (s *State) slice(from, to int) string {
	return string(s.input[from:to])
}

// position converts an index into the input to a document position.
func (s *State) position(i int) source.Position {
	k := sort.Search(len(s.lines), func(j int) bool { return s.lines[j] > i })
	line, column := s.origin.Line(), s.origin.Column()+i
	if k > 0 {
		line += k
		column = i - s.lines[k-1]
	}
	if off, err := s.origin.Offset(); err == nil {
		return source.NewPositionWithOffset(line, column, off+i)
	}
	return source.NewPosition(line, column)
}

func (s *State) rangeOf(from, to int) source.Range {
	return source.NewRange(s.position(from), s.position(to))
}

func (s *State) failure() *ParseError {
	at := s.furthest
	if at < 0 {
		at = s.pos
	}
	got := "end of input"
	if at < len(s.input) {
		got = quote(s.input[at])
	}
	expected := slices.Clone(s.expected)
	sort.Strings(expected)
	return &ParseError{
		Position: s.position(at),
		Expected: expected,
		Got:      got,
	}
}
