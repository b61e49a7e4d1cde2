package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

func (ls *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	f, ok := ls.file(params.TextDocument.URI)
	if !ok || f.doc == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return symbols(f.doc.Buffer(), f.doc.Root().Children()), nil
}

// symbols lists environments as namespaces and specific commands as
// functions. Other nodes are looked through.
func symbols(buf *source.Buffer, nodes []ast.Node) []protocol.DocumentSymbol {
	result := []protocol.DocumentSymbol{}
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.Environment:
			result = append(result, protocol.DocumentSymbol{
				Name:           n.Name,
				Detail:         argumentDetail(n.Args),
				Kind:           protocol.SymbolKindNamespace,
				Range:          fromRange(buf, n.Range()),
				SelectionRange: fromRange(buf, n.NameRange()),
				Children:       symbols(buf, n.Body()),
			})
		case *ast.Command:
			if !n.Specific {
				result = append(result, symbols(buf, n.Children())...)
				continue
			}
			result = append(result, protocol.DocumentSymbol{
				Name:           `\` + n.Name,
				Detail:         argumentDetail(n.Args),
				Kind:           protocol.SymbolKindFunction,
				Range:          fromRange(buf, n.Range()),
				SelectionRange: fromRange(buf, n.NameRange()),
				Children:       symbols(buf, n.Children()),
			})
		default:
			result = append(result, symbols(buf, n.Children())...)
		}
	}
	return result
}

// argumentDetail returns the text of the first curly argument.
func argumentDetail(args []ast.Argument) *string {
	for _, a := range args {
		block, ok := a.Block()
		if !ok || a.Spec().Delimiter != ast.Curly {
			continue
		}
		detail := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(block.Snapshot(), "{"), "}"))
		if detail == "" {
			return nil
		}
		return &detail
	}
	return nil
}

type folder struct {
	ast.BaseVisitor
	ranges []protocol.FoldingRange
}

func (v *folder) VisitEnvironment(n *ast.Environment) {
	v.fold(n.Range(), protocol.FoldingRangeKindRegion)
}

func (v *folder) VisitDisplayMath(n *ast.DisplayMath) {
	v.fold(n.Range(), protocol.FoldingRangeKindRegion)
}

func (v *folder) fold(r source.Range, kind protocol.FoldingRangeKind) {
	if r.To.Line() <= r.From.Line() {
		return
	}
	k := string(kind)
	v.ranges = append(v.ranges, protocol.FoldingRange{
		StartLine: protocol.UInteger(r.From.Line()),
		EndLine:   protocol.UInteger(r.To.Line()),
		Kind:      &k,
	})
}

func (ls *Server) textDocumentFoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	f, ok := ls.file(params.TextDocument.URI)
	if !ok || f.doc == nil {
		return []protocol.FoldingRange{}, nil
	}
	v := &folder{ranges: []protocol.FoldingRange{}}
	ast.Walk(v, f.doc.Root())
	return v.ranges, nil
}
