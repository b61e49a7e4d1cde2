package format

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/grammar"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(root ast.Node) error {
	text, err := e.MarshalNode(root)
	if err != nil {
		return err
	}
	return e.write(text)
}

// EncodeFile writes the outcome of parsing one file: its tree, or the error
// that stopped the parse.
func (e *JSONEncoder) EncodeFile(path string, root ast.Node, parseErr error) error {
	file := jsonFile{Path: path}
	if root != nil {
		file.Tree = nodeToJSON(root)
	}
	if parseErr != nil {
		file.Error = errorToJSON(parseErr)
	}
	text, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return e.write(text)
}

func (e *JSONEncoder) MarshalNode(n ast.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(n), "", "  ")
}

func (e *JSONEncoder) write(text []byte) error {
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

type jsonFile struct {
	Path  string     `json:"path"`
	Tree  *jsonNode  `json:"tree,omitempty"`
	Error *jsonError `json:"error,omitempty"`
}

type jsonNode struct {
	Kind     string         `json:"kind"`
	Range    jsonRange      `json:"range"`
	Name     string         `json:"name,omitempty"`
	Specific bool           `json:"specific,omitempty"`
	Text     *string        `json:"text,omitempty"`
	Dirty    bool           `json:"dirty,omitempty"`
	Args     []jsonArgument `json:"args,omitempty"`
	Children []*jsonNode    `json:"children,omitempty"`
}

type jsonArgument struct {
	Delimiter string    `json:"delimiter"`
	Optional  bool      `json:"optional,omitempty"`
	Absent    bool      `json:"absent,omitempty"`
	Block     *jsonNode `json:"block,omitempty"`
}

type jsonRange struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int  `json:"line"`
	Column int  `json:"column"`
	Offset *int `json:"offset,omitempty"`
}

type jsonError struct {
	Message  string        `json:"message"`
	Position *jsonPosition `json:"position,omitempty"`
	Expected []string      `json:"expected,omitempty"`
	Got      string        `json:"got,omitempty"`
}

func nodeToJSON(n ast.Node) *jsonNode {
	jn := &jsonNode{
		Kind:  n.Kind().String(),
		Range: rangeToJSON(n.Range()),
		Dirty: n.IsDirty(),
	}
	if n.IsLeaf() {
		text := n.Snapshot()
		jn.Text = &text
	}

	children := n.Children()
	switch n := n.(type) {
	case *ast.Command:
		jn.Name = n.Name
		jn.Specific = n.Specific
		jn.Args = argumentsToJSON(n.Args)
		children = nil
	case *ast.Environment:
		jn.Name = n.Name
		jn.Specific = n.Specific
		jn.Args = argumentsToJSON(n.Args)
		children = n.Body()
	}

	if len(children) > 0 {
		jn.Children = make([]*jsonNode, len(children))
		for i, child := range children {
			jn.Children[i] = nodeToJSON(child)
		}
	}
	return jn
}

func argumentsToJSON(args []ast.Argument) []jsonArgument {
	result := make([]jsonArgument, len(args))
	for i, a := range args {
		spec := a.Spec()
		result[i] = jsonArgument{
			Delimiter: spec.Delimiter.String(),
			Optional:  spec.Optional,
		}
		if block, ok := a.Block(); ok {
			result[i].Block = nodeToJSON(block)
		} else {
			result[i].Absent = true
		}
	}
	return result
}

func rangeToJSON(r source.Range) jsonRange {
	return jsonRange{Start: positionToJSON(r.From), End: positionToJSON(r.To)}
}

func positionToJSON(p source.Position) jsonPosition {
	jp := jsonPosition{Line: p.Line(), Column: p.Column()}
	if off, err := p.Offset(); err == nil {
		jp.Offset = &off
	}
	return jp
}

func errorToJSON(err error) *jsonError {
	je := &jsonError{Message: err.Error()}
	var perr *grammar.ParseError
	if errors.As(err, &perr) {
		pos := positionToJSON(perr.Position)
		je.Position = &pos
		je.Expected = perr.Expected
		je.Got = perr.Got
	}
	return je
}
