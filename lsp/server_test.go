package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/document"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

const uri = "file:///tmp/main.tex"

type client struct {
	t           *testing.T
	ls          *Server
	diagnostics [][]protocol.Diagnostic
}

func newClient(t *testing.T, opts ...document.Option) *client {
	return &client{t: t, ls: NewServer("test", opts...)}
}

func (c *client) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			require.Equal(c.t, protocol.ServerTextDocumentPublishDiagnostics, method)
			c.diagnostics = append(c.diagnostics, params.(protocol.PublishDiagnosticsParams).Diagnostics)
		},
	}
}

func (c *client) open(text string) {
	c.t.Helper()
	require.NoError(c.t, c.ls.textDocumentDidOpen(c.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "latex", Text: text},
	}))
}

func (c *client) change(changes ...any) {
	c.t.Helper()
	require.NoError(c.t, c.ls.textDocumentDidChange(c.context(), &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}},
		ContentChanges: changes,
	}))
}

func (c *client) last() []protocol.Diagnostic {
	c.t.Helper()
	require.NotEmpty(c.t, c.diagnostics)
	return c.diagnostics[len(c.diagnostics)-1]
}

func (c *client) text() string {
	f, ok := c.ls.file(uri)
	require.True(c.t, ok)
	return f.buffer().String()
}

func insert(line, character uint32, text string) protocol.TextDocumentContentChangeEvent {
	at := protocol.Position{Line: line, Character: character}
	return protocol.TextDocumentContentChangeEvent{Range: &protocol.Range{Start: at, End: at}, Text: text}
}

func TestPositionConversion(t *testing.T) {
	buf := source.NewBuffer("aé😀b\nx")

	tests := []struct {
		character uint32
		column    int
	}{
		{0, 0},
		{2, 2},
		{4, 3},
		{5, 4},
		{100, 4},
	}
	for _, tt := range tests {
		p, err := toPosition(buf, protocol.Position{Line: 0, Character: tt.character})
		require.NoError(t, err)
		assert.Equal(t, tt.column, p.Column(), "character %d", tt.character)
	}

	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, fromPosition(buf, source.NewPosition(0, 3)))
	assert.Equal(t, protocol.Position{Line: 1, Character: 1}, fromPosition(buf, source.NewPosition(1, 1)))

	_, err := toPosition(buf, protocol.Position{Line: 2})
	assert.ErrorIs(t, err, source.ErrOutOfRange)
}

func TestOpenReportsParseError(t *testing.T) {
	c := newClient(t)
	c.open(`\begin{foo}x`)

	diags := c.last()
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
	assert.Equal(t, protocol.Position{Line: 0, Character: 12}, diags[0].Range.Start)
	assert.Contains(t, diags[0].Message, `\end{foo}`)
}

func TestIncrementalChange(t *testing.T) {
	c := newClient(t, document.WithReparseKinds(ast.KindText))
	c.open("hello world")
	assert.Empty(t, c.last())

	c.change(insert(0, 1, "X"), insert(0, 12, "!"))
	assert.Equal(t, "hXello world!", c.text())
	assert.Empty(t, c.last())
}

func TestBrokenDocumentRecovers(t *testing.T) {
	c := newClient(t)
	c.open("{a")
	require.Len(t, c.last(), 1)

	c.change(insert(0, 2, "}"))
	assert.Empty(t, c.last())
	f, _ := c.ls.file(uri)
	require.NotNil(t, f.doc)
	assert.Equal(t, "{a}", f.doc.Text())
}

func TestOutOfDateNodes(t *testing.T) {
	c := newClient(t)
	c.open("hello")

	c.change(insert(0, 2, " "))
	diags := c.last()
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Equal(t, "Text is out of date", diags[0].Message)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 6},
	}, diags[0].Range)
}

func TestReparseFailureDiagnostic(t *testing.T) {
	c := newClient(t, document.WithReparseKinds(ast.KindText))
	c.open("hello")

	c.change(insert(0, 2, " "))
	diags := c.last()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Text could not be reparsed")
}

func TestWholeChangeReopens(t *testing.T) {
	c := newClient(t)
	c.open("hello")
	c.change(insert(0, 2, " "))
	require.Len(t, c.last(), 1)

	c.change(protocol.TextDocumentContentChangeEventWhole{Text: "fresh start"})
	assert.Equal(t, "fresh start", c.text())
	assert.Empty(t, c.last())
}

func TestCloseClearsDiagnostics(t *testing.T) {
	c := newClient(t)
	c.open("{")
	require.NoError(t, c.ls.textDocumentDidClose(c.context(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, c.last())
	_, ok := c.ls.file(uri)
	assert.False(t, ok)
}

const outline = `\section{Intro}
\begin{figure}
  \caption{A 😀 figure}
\end{figure}
$$
x
$$`

func TestDocumentSymbols(t *testing.T) {
	c := newClient(t)
	c.open(outline)

	result, err := c.ls.textDocumentDocumentSymbol(c.context(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	syms := result.([]protocol.DocumentSymbol)
	require.Len(t, syms, 2)

	assert.Equal(t, `\section`, syms[0].Name)
	assert.Equal(t, protocol.SymbolKindFunction, syms[0].Kind)
	require.NotNil(t, syms[0].Detail)
	assert.Equal(t, "Intro", *syms[0].Detail)
	assert.Equal(t, protocol.Position{Line: 0, Character: 8}, syms[0].SelectionRange.End)

	figure := syms[1]
	assert.Equal(t, "figure", figure.Name)
	assert.Equal(t, protocol.SymbolKindNamespace, figure.Kind)
	assert.Equal(t, protocol.UInteger(1), figure.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(3), figure.Range.End.Line)
	require.Len(t, figure.Children, 1)
	assert.Equal(t, `\caption`, figure.Children[0].Name)
	assert.Equal(t, "A 😀 figure", *figure.Children[0].Detail)
	assert.Equal(t, protocol.Position{Line: 2, Character: 23}, figure.Children[0].Range.End)
}

func TestSymbolDetailFollowsReparse(t *testing.T) {
	c := newClient(t, document.WithReparseKinds(ast.KindText))
	c.open(outline)
	c.change(insert(0, 11, "x"))

	result, err := c.ls.textDocumentDocumentSymbol(c.context(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	syms := result.([]protocol.DocumentSymbol)
	require.NotEmpty(t, syms)
	require.NotNil(t, syms[0].Detail)
	assert.Equal(t, "Inxtro", *syms[0].Detail)
}

func TestFoldingRanges(t *testing.T) {
	c := newClient(t)
	c.open(outline)

	ranges, err := c.ls.textDocumentFoldingRange(c.context(), &protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, protocol.UInteger(1), ranges[0].StartLine)
	assert.Equal(t, protocol.UInteger(3), ranges[0].EndLine)
	assert.Equal(t, protocol.UInteger(4), ranges[1].StartLine)
	assert.Equal(t, protocol.UInteger(6), ranges[1].EndLine)
}

func TestUnknownDocument(t *testing.T) {
	c := newClient(t)
	result, err := c.ls.textDocumentDocumentSymbol(c.context(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///other.tex"},
	})
	require.NoError(t, err)
	assert.Empty(t, result)
}
