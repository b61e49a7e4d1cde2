// Package grammar parses the constrained LaTeX dialect into syntax trees.
//
// The grammar is a set of backtracking rules built from the combinators of
// this package. Every rule producing a node binds the node to its range, its
// text and a reparser that runs the same rule again, which is what lets the
// ast package reparse any node on its own.
package grammar

import (
	"context"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

type Option func(*config)

type config struct {
	dialect *Dialect
	origin  source.Position
}

// WithDialect parses with d instead of the default dialect.
func WithDialect(d *Dialect) Option {
	return func(c *config) {
		c.dialect = d
	}
}

// WithOrigin sets the position of the first rune of the text. It defaults to
// the start of a document.
func WithOrigin(p source.Position) Option {
	return func(c *config) {
		c.origin = p
	}
}

// Parse parses a whole document. It either returns the root node or a
// *ParseError; there are no partial results.
func Parse(ctx context.Context, text string, opts ...Option) (*ast.Document, error) {
	c := config{
		dialect: defaultDialect,
		origin:  source.NewPositionWithOffset(0, 0, 0),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return New(c.dialect).Parse(ctx, text, c.origin)
}

// Grammar holds the rules for one dialect. Nodes built by a grammar keep
// references to its rules. A Grammar is immutable once built and may be
// shared between goroutines.
type Grammar struct {
	dialect *Dialect

	document    Parser[ast.Node]
	content     Parser[[]ast.Node]
	item        Parser[ast.Node]
	comment     Parser[ast.Node]
	whitespace  Parser[ast.Node]
	special     Parser[ast.Node]
	text        Parser[ast.Node]
	math        Parser[ast.Node]
	inlineMath  Parser[ast.Node]
	displayMath Parser[ast.Node]
	block       Parser[ast.Node]

	genericCommand     Parser[ast.Node]
	genericEnvironment Parser[ast.Node]
	commands           map[string]Parser[ast.Node]
	environments       map[string]Parser[ast.Node]

	curlyRaw      Parser[ast.Node]
	curlyText     Parser[ast.Node]
	square        Parser[ast.Node]
	parameter     Parser[ast.Node]
	list          Parser[ast.Node]
	key           Parser[ast.Node]
	value         Parser[ast.Node]
	assignedValue Parser[ast.Node]
	assignment    Parser[ast.Node]
}

var (
	backslash   = Literal(`\`)
	begin       = Literal(`\begin{`)
	openCurly   = Literal("{")
	closeCurly  = Literal("}")
	openSquare  = Literal("[")
	closeSquare = Literal("]")
	comma       = Literal(",")
	equals      = Literal("=")
	percent     = Literal("%")
	dollar      = Literal("$")
	dollars     = Literal("$$")

	letters    = RunOf("letter", 1, isLetter)
	spaces     = RunOf("whitespace", 0, isSpace)
	restOfLine = RunOf("comment text", 0, func(r rune) bool { return r != '\n' })
	anyRune    = Rune("character", func(rune) bool { return true })
	nameEnd    = Not("end of command name", Rune("letter", isLetter))
)

func New(d *Dialect) *Grammar {
	g := &Grammar{
		dialect:      d,
		commands:     make(map[string]Parser[ast.Node], len(d.Commands)),
		environments: make(map[string]Parser[ast.Node], len(d.Environments)),
	}

	g.comment = g.node("comment", func(s *State) (ast.Node, bool) {
		if _, ok := percent(s); !ok {
			return nil, false
		}
		restOfLine(s)
		return ast.NewComment(), true
	})
	g.whitespace = g.node("whitespace", Map(RunOf("whitespace", 1, isSpace), func(string) ast.Node {
		return ast.NewWhitespace()
	}))
	g.special = g.node("special symbol", Map(Rune("special symbol", isSpecial), func(r rune) ast.Node {
		return ast.NewSpecialSymbol(r)
	}))
	g.text = g.node("text", Map(RunOf("text", 1, isText), func(string) ast.Node {
		return ast.NewText()
	}))

	g.math = g.node("math", Map(escaped(func(r rune) bool { return r == '$' }), func(string) ast.Node {
		return ast.NewMath()
	}))
	g.displayMath = g.node("display math", g.delimited(dollars, g.math, dollars, func(n ast.Node) ast.Node {
		return ast.NewDisplayMath(n.(*ast.Math))
	}))
	g.inlineMath = g.node("inline math", g.delimited(dollar, g.math, dollar, func(n ast.Node) ast.Node {
		return ast.NewInlineMath(n.(*ast.Math))
	}))

	g.content = Many(Lazy(&g.item))
	g.block = g.node("block", func(s *State) (ast.Node, bool) {
		content, ok := g.braced(s)
		if !ok {
			return nil, false
		}
		return ast.NewBlock(content), true
	})

	g.parameters()

	g.genericCommand = g.node("command", func(s *State) (ast.Node, bool) {
		if _, ok := backslash(s); !ok {
			return nil, false
		}
		name, ok := commandName(s)
		if !ok {
			return nil, false
		}
		return ast.NewCommand(name, nil, false), true
	})
	g.genericEnvironment = g.environment("", nil)
	// An empty name can never be looked up.
	for name, slots := range d.Commands {
		if name != "" {
			g.commands[name] = g.specificCommand(name, slots)
		}
	}
	for name, slots := range d.Environments {
		if name != "" {
			g.environments[name] = g.environment(name, slots)
		}
	}

	g.item = Alt(
		g.comment,
		g.whitespace,
		g.special,
		g.displayMath,
		g.inlineMath,
		g.block,
		g.escape,
		g.text,
	)
	g.document = g.node("document", Map(g.content, func(content []ast.Node) ast.Node {
		return ast.NewDocument(content)
	}))
	return g
}

func (g *Grammar) Dialect() *Dialect {
	return g.dialect
}

// Parse parses text as a whole document starting at origin.
func (g *Grammar) Parse(ctx context.Context, text string, origin source.Position) (*ast.Document, error) {
	n, err := run(ctx, g.document, text, origin)
	if err != nil {
		return nil, err
	}
	return n.(*ast.Document), nil
}

// node binds every node built by build to its range and text, and to a
// reparser running the returned rule again.
func (g *Grammar) node(name string, build Parser[ast.Node]) Parser[ast.Node] {
	var rule Parser[ast.Node]
	rule = func(s *State) (ast.Node, bool) {
		start := s.mark()
		n, ok := build(s)
		if !ok {
			s.fail(start, name)
			return nil, false
		}
		ast.Bind(n, s.rangeOf(start, s.pos), s.slice(start, s.pos), reparser(rule))
		return n, true
	}
	return rule
}

func reparser(rule Parser[ast.Node]) ast.Reparser {
	return func(ctx context.Context, text string, origin source.Position) (ast.Node, error) {
		return run(ctx, rule, text, origin)
	}
}

// run applies rule to the whole of text.
func run[T any](ctx context.Context, rule Parser[T], text string, origin source.Position) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s := newState(ctx, text, origin)
	v, ok := rule(s)
	if ok && !s.atEnd() {
		s.fail(s.pos, "end of input")
		ok = false
	}
	if !ok {
		return zero, s.failure()
	}
	return v, nil
}

func (g *Grammar) delimited(opening Parser[string], inner Parser[ast.Node], closing Parser[string], build func(ast.Node) ast.Node) Parser[ast.Node] {
	return func(s *State) (ast.Node, bool) {
		if _, ok := opening(s); !ok {
			return nil, false
		}
		n, ok := inner(s)
		if !ok {
			return nil, false
		}
		if _, ok := closing(s); !ok {
			return nil, false
		}
		return build(n), true
	}
}

// braced matches content between curly braces.
func (g *Grammar) braced(s *State) ([]ast.Node, bool) {
	if _, ok := openCurly(s); !ok {
		return nil, false
	}
	content, _ := g.content(s)
	if _, ok := closeCurly(s); !ok {
		return nil, false
	}
	return content, true
}

// escape dispatches a backslash to the rule in charge of what follows it,
// looking ahead without consuming anything.
func (g *Grammar) escape(s *State) (ast.Node, bool) {
	switch {
	case !s.lookingAt(`\`):
		s.fail(s.pos, "command")
		return nil, false
	case s.lookingAt(`\begin{`):
		if name, ok := Lookahead(beginName)(s); ok {
			if rule, ok := g.environments[name]; ok {
				return rule(s)
			}
		}
		return g.genericEnvironment(s)
	case s.lookingAt(`\end{`):
		// Only the environment that opened it may consume an \end.
		return nil, false
	}
	if name, ok := Lookahead(escapedName)(s); ok {
		if rule, ok := g.commands[name]; ok {
			return rule(s)
		}
	}
	return g.genericCommand(s)
}

func (g *Grammar) specificCommand(name string, slots []ast.ParameterSpec) Parser[ast.Node] {
	head := Literal(`\` + name)
	args := g.arguments(slots)
	checkEnd := isLetter(rune(name[len(name)-1]))
	return g.node(`\`+name, func(s *State) (ast.Node, bool) {
		if _, ok := head(s); !ok {
			return nil, false
		}
		if checkEnd {
			if _, ok := nameEnd(s); !ok {
				return nil, false
			}
		}
		as, ok := args(s)
		if !ok {
			return nil, false
		}
		return ast.NewCommand(name, as, true), true
	})
}

// environment builds the rule for the named environment, or for any
// environment without parameters when name is empty.
func (g *Grammar) environment(name string, slots []ast.ParameterSpec) Parser[ast.Node] {
	label := "environment"
	head := begin
	if name != "" {
		label = `\begin{` + name + `}`
		head = Literal(`\begin{` + name + `}`)
	}
	args := g.arguments(slots)
	return g.node(label, func(s *State) (ast.Node, bool) {
		if _, ok := head(s); !ok {
			return nil, false
		}
		envName := name
		if name == "" {
			var ok bool
			if envName, ok = environmentName(s); !ok {
				return nil, false
			}
			if _, ok := closeCurly(s); !ok {
				return nil, false
			}
		}
		as, ok := args(s)
		if !ok {
			return nil, false
		}
		body, _ := g.content(s)
		if _, ok := Literal(`\end{` + envName + `}`)(s); !ok {
			return nil, false
		}
		return ast.NewEnvironment(envName, as, body, name != ""), true
	})
}

func (g *Grammar) arguments(slots []ast.ParameterSpec) Parser[[]ast.Argument] {
	parsers := make([]Parser[ast.Argument], 0, len(slots))
	for _, spec := range slots {
		p := Map(g.slot(spec), func(block ast.Node) ast.Argument {
			return ast.PresentArgument(spec, block)
		})
		if spec.Optional {
			p = Optional(p, ast.AbsentArgument(spec))
		}
		parsers = append(parsers, p)
	}
	return func(s *State) ([]ast.Argument, bool) {
		args := make([]ast.Argument, 0, len(parsers))
		for _, p := range parsers {
			a, ok := p(s)
			if !ok {
				return nil, false
			}
			args = append(args, a)
		}
		return args, true
	}
}

func (g *Grammar) slot(spec ast.ParameterSpec) Parser[ast.Node] {
	switch {
	case spec.Delimiter == ast.Square:
		return g.square
	case spec.Content == ast.TextContent:
		return g.curlyText
	}
	return g.curlyRaw
}

// commandName matches a run of letters with an optional star, or any single
// other character.
func commandName(s *State) (string, bool) {
	if name, ok := letters(s); ok {
		if s.peek() == '*' {
			s.advance(1)
			name += "*"
		}
		return name, true
	}
	r, ok := anyRune(s)
	if !ok {
		return "", false
	}
	return string(r), true
}

func environmentName(s *State) (string, bool) {
	name, ok := letters(s)
	if !ok {
		return "", false
	}
	if s.peek() == '*' {
		s.advance(1)
		name += "*"
	}
	return name, true
}

func escapedName(s *State) (string, bool) {
	if _, ok := backslash(s); !ok {
		return "", false
	}
	return commandName(s)
}

func beginName(s *State) (string, bool) {
	if _, ok := begin(s); !ok {
		return "", false
	}
	name, ok := environmentName(s)
	if !ok {
		return "", false
	}
	if _, ok := closeCurly(s); !ok {
		return "", false
	}
	return name, true
}

// escaped matches runes up to the first one satisfying stop. A backslash
// escapes the rune that follows it.
func escaped(stop func(rune) bool) Parser[string] {
	return func(s *State) (string, bool) {
		start := s.mark()
		for !s.atEnd() {
			r := s.peek()
			if r == '\\' {
				if !skipEscaped(s) {
					s.reset(start)
					return "", false
				}
				continue
			}
			if stop(r) {
				break
			}
			s.advance(1)
		}
		return s.slice(start, s.pos), true
	}
}

// skipEscaped consumes a backslash and the rune it escapes. It fails when the
// backslash is the last rune of the input.
func skipEscaped(s *State) bool {
	if s.pos+1 >= len(s.input) {
		s.fail(s.pos+1, "escaped character")
		return false
	}
	s.advance(2)
	return true
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func isSpecial(r rune) bool {
	switch r {
	case '&', '~', '#':
		return true
	}
	return false
}

func isText(r rune) bool {
	switch r {
	case '\\', '%', '$', '{', '}':
		return false
	}
	return !isSpecial(r) && !isSpace(r)
}
