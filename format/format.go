// Package format renders syntax trees for people and for tools.
package format

import (
	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
)

type Encoder interface {
	Encode(root ast.Node) error
	MarshalNode(n ast.Node) ([]byte, error)
}

var (
	_ Encoder = (*JSONEncoder)(nil)
	_ Encoder = (*TreePrinter)(nil)
)
