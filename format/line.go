package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
)

const defaultPreviewWidth = 40

// TreePrinter writes one line per node, indented by depth: the kind, the
// name of commands and environments, the range, flags and a preview of the
// node's text. Absent arguments get a line of their own so that slots keep
// their order.
type TreePrinter struct {
	w     io.Writer
	width int
}

type PrinterOption func(*TreePrinter)

// WithPreviewWidth truncates previews to width terminal cells. Zero
// disables previews.
func WithPreviewWidth(width int) PrinterOption {
	return func(p *TreePrinter) {
		p.width = width
	}
}

func NewTreePrinter(w io.Writer, opts ...PrinterOption) *TreePrinter {
	p := &TreePrinter{w: w, width: defaultPreviewWidth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TreePrinter) Encode(root ast.Node) error {
	text, err := p.MarshalNode(root)
	if err != nil {
		return err
	}
	_, err = p.w.Write(text)
	return err
}

func (p *TreePrinter) MarshalNode(n ast.Node) ([]byte, error) {
	var sb strings.Builder
	p.print(&sb, n, 0)
	return []byte(sb.String()), nil
}

func (p *TreePrinter) print(sb *strings.Builder, n ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(n.Kind().String())

	var args []ast.Argument
	children := n.Children()
	switch n := n.(type) {
	case *ast.Command:
		fmt.Fprintf(sb, " \\%s", n.Name)
		args, children = n.Args, nil
	case *ast.Environment:
		fmt.Fprintf(sb, " %s", n.Name)
		args, children = n.Args, n.Body()
	}

	fmt.Fprintf(sb, " %s", n.Range())
	if n.IsDirty() {
		sb.WriteString(" dirty")
	}
	if ast.IsStale(n) {
		sb.WriteString(" stale")
	}
	if n.IsLeaf() && p.width > 0 {
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(Truncate(n.Snapshot(), p.width)))
	}
	sb.WriteString("\n")

	for _, a := range args {
		if block, ok := a.Block(); ok {
			p.print(sb, block, depth+1)
			continue
		}
		fmt.Fprintf(sb, "%s  <absent %s>\n", indent, a.Spec().Delimiter)
	}
	for _, c := range children {
		p.print(sb, c, depth+1)
	}
}

// Truncate shortens s to at most width terminal cells, cutting between
// grapheme clusters and marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "…"
	limit := width - uniseg.StringWidth(ellipsis)
	var sb strings.Builder
	used := 0
	for gs := uniseg.NewGraphemes(s); gs.Next(); {
		w := gs.Width()
		if used+w > limit {
			break
		}
		sb.WriteString(gs.Str())
		used += w
	}
	sb.WriteString(ellipsis)
	return sb.String()
}
