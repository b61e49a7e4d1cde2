package lsp

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/document"
	"github.com/exsitu-projects/ilatex-sub001/latex/grammar"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// file is the state of one open document. Text that does not parse is kept
// in a plain buffer and parsed again after every change until it succeeds.
type file struct {
	doc      *document.Document
	broken   *source.Buffer
	parseErr error
	failures map[ast.Node]error

	opts []document.Option
	log  commonlog.Logger
}

func openFile(ctx context.Context, text string, opts []document.Option, log commonlog.Logger) *file {
	f := &file{opts: opts, log: log, broken: source.NewBuffer(text)}
	f.retry(ctx)
	return f
}

// retry parses the buffered text of a broken file.
func (f *file) retry(ctx context.Context) {
	if f.doc != nil {
		return
	}
	doc, err := document.Open(ctx, f.broken.String(), f.opts...)
	if err != nil {
		f.parseErr = err
		return
	}
	f.doc, f.broken, f.parseErr = doc, nil, nil
	f.failures = nil
}

func (f *file) buffer() *source.Buffer {
	if f.doc != nil {
		return f.doc.Buffer()
	}
	return f.broken
}

// apply replaces the text in r, given in LSP coordinates.
func (f *file) apply(ctx context.Context, r protocol.Range, text string) error {
	buf := f.buffer()
	start, err := toPosition(buf, r.Start)
	if err != nil {
		return err
	}
	end, err := toPosition(buf, r.End)
	if err != nil {
		return err
	}

	if f.doc == nil {
		_, err := buf.Replace(start, end, text)
		return err
	}
	out, err := f.doc.Apply(ctx, document.Edit{Start: start, End: end, Text: text})
	if err != nil {
		return err
	}
	if out.FullReparse {
		f.failures = nil
	}
	for _, failure := range out.Failures {
		if f.failures == nil {
			f.failures = make(map[ast.Node]error)
		}
		f.failures[failure.Node] = failure.Err
	}
	return nil
}

func (f *file) diagnostics() []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	buf := f.buffer()
	if f.doc == nil {
		var perr *grammar.ParseError
		if errors.As(f.parseErr, &perr) {
			at := fromPosition(buf, perr.Position)
			diagnostics = append(diagnostics, diagnostic(
				protocol.Range{Start: at, End: at},
				protocol.DiagnosticSeverityError,
				perr.Error(),
			))
		}
		return diagnostics
	}

	failures := make(map[ast.Node]error)
	for _, n := range f.doc.Pending() {
		msg := fmt.Sprintf("%s is out of date", describe(n))
		if err, ok := f.failures[n]; ok {
			msg = fmt.Sprintf("%s could not be reparsed: %s", describe(n), err)
			failures[n] = err
		}
		diagnostics = append(diagnostics, diagnostic(fromRange(buf, n.Range()), protocol.DiagnosticSeverityWarning, msg))
	}
	f.failures = failures
	return diagnostics
}

func describe(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Command:
		return `\` + n.Name
	case *ast.Environment:
		return n.Name + " environment"
	}
	return n.Kind().String()
}

func diagnostic(r protocol.Range, severity protocol.DiagnosticSeverity, msg string) protocol.Diagnostic {
	src := lsName
	return protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &src,
		Message:  msg,
	}
}

// toPosition converts an LSP position, whose character counts UTF-16 code
// units, to a line and rune column.
func toPosition(buf *source.Buffer, p protocol.Position) (source.Position, error) {
	line, err := buf.Line(int(p.Line))
	if err != nil {
		return source.Position{}, err
	}
	units := int(p.Character)
	column := 0
	for _, r := range line {
		if units <= 0 {
			break
		}
		units -= utf16Len(r)
		column++
	}
	return source.NewPosition(int(p.Line), column), nil
}

func fromPosition(buf *source.Buffer, p source.Position) protocol.Position {
	line, err := buf.Line(p.Line())
	if err != nil {
		return protocol.Position{Line: protocol.UInteger(p.Line())}
	}
	units := 0
	column := 0
	for _, r := range line {
		if column == p.Column() {
			break
		}
		units += utf16Len(r)
		column++
	}
	return protocol.Position{Line: protocol.UInteger(p.Line()), Character: protocol.UInteger(units)}
}

func fromRange(buf *source.Buffer, r source.Range) protocol.Range {
	return protocol.Range{Start: fromPosition(buf, r.From), End: fromPosition(buf, r.To)}
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}
