package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// ParseError is returned when the input does not match the grammar. It
// reports the furthest position the parser reached and what it expected
// there.
type ParseError struct {
	Position source.Position
	Expected []string
	Got      string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d: unexpected %s", e.Position.Line()+1, e.Position.Column()+1, e.Got)
	if len(e.Expected) > 0 {
		b.WriteString(", expected ")
		b.WriteString(strings.Join(e.Expected, " or "))
	}
	return b.String()
}

func quote(r rune) string {
	switch r {
	case '\n':
		return "newline"
	case '\t':
		return "tab"
	}
	return strconv.QuoteRune(r)
}
