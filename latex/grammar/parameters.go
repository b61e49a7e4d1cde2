package grammar

import (
	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
)

// parameters builds the rules of parameter blocks and option lists.
func (g *Grammar) parameters() {
	g.parameter = g.node("parameter", Map(balanced(0, func(rune) bool { return false }), func(string) ast.Node {
		return ast.NewParameter()
	}))
	g.curlyRaw = g.node("curly parameter", g.delimited(openCurly, g.parameter, closeCurly, func(n ast.Node) ast.Node {
		return ast.NewCurlyParameterBlock([]ast.Node{n})
	}))
	g.curlyText = g.node("curly parameter", func(s *State) (ast.Node, bool) {
		content, ok := g.braced(s)
		if !ok {
			return nil, false
		}
		return ast.NewCurlyParameterBlock(content), true
	})

	g.key = g.node("key", Map(RunOf("key", 1, isKey), func(string) ast.Node {
		return ast.NewParameterKey()
	}))
	g.value = g.node("value", Map(trimmed(1), func(string) ast.Node {
		return ast.NewParameterValue()
	}))
	g.assignedValue = g.node("value", Map(trimmed(0), func(string) ast.Node {
		return ast.NewParameterValue()
	}))
	g.assignment = g.node("assignment", func(s *State) (ast.Node, bool) {
		key, ok := g.key(s)
		if !ok {
			return nil, false
		}
		spaces(s)
		if _, ok := equals(s); !ok {
			return nil, false
		}
		spaces(s)
		value, ok := g.assignedValue(s)
		if !ok {
			return nil, false
		}
		return ast.NewParameterAssignment(key.(*ast.ParameterKey), value.(*ast.ParameterValue)), true
	})

	item := Alt(g.assignment, g.value)
	g.list = g.node("parameter list", func(s *State) (ast.Node, bool) {
		var items []ast.Node
		for {
			spaces(s)
			if n, ok := item(s); ok {
				items = append(items, n)
			}
			spaces(s)
			if _, ok := comma(s); !ok {
				break
			}
		}
		return ast.NewParameterList(items), true
	})
	g.square = g.node("square parameter", g.delimited(openSquare, g.list, closeSquare, func(n ast.Node) ast.Node {
		return ast.NewSquareParameterBlock(n.(*ast.ParameterList))
	}))
}

// balanced matches text with balanced curly braces, stopping before an
// unbalanced closing brace or, outside braces, before a rune satisfying
// stop. A backslash escapes the rune that follows it. Input that ends
// inside a brace group or right after a backslash does not match.
func balanced(min int, stop func(rune) bool) Parser[string] {
	return func(s *State) (string, bool) {
		start := s.mark()
		depth := 0
	scan:
		for !s.atEnd() {
			switch r := s.peek(); {
			case r == '\\':
				if !skipEscaped(s) {
					s.reset(start)
					return "", false
				}
				continue
			case r == '{':
				depth++
			case r == '}':
				if depth == 0 {
					break scan
				}
				depth--
			case depth == 0 && stop(r):
				break scan
			}
			s.advance(1)
		}
		if depth > 0 {
			s.fail(s.pos, `"}"`)
			s.reset(start)
			return "", false
		}
		if s.pos-start < min {
			s.fail(s.pos, "parameter text")
			s.reset(start)
			return "", false
		}
		return s.slice(start, s.pos), true
	}
}

// trimmed matches an option value: balanced text up to a comma or closing
// bracket, without surrounding whitespace.
func trimmed(min int) Parser[string] {
	raw := balanced(0, func(r rune) bool { return r == ',' || r == ']' })
	return func(s *State) (string, bool) {
		start := s.mark()
		if !isSpace(s.peek()) {
			raw(s)
			for s.pos > start && isSpace(s.input[s.pos-1]) {
				s.pos--
			}
		}
		if s.pos-start < min {
			s.fail(start, "value")
			s.reset(start)
			return "", false
		}
		return s.slice(start, s.pos), true
	}
}

func isKey(r rune) bool {
	switch r {
	case '=', ',', '[', ']', '{', '}', '\\', '%':
		return false
	}
	return !isSpace(r)
}
