package format

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/document"
	"github.com/exsitu-projects/ilatex-sub001/latex/grammar"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

func parse(t *testing.T, text string) *ast.Document {
	t.Helper()
	doc, err := grammar.Parse(context.Background(), text)
	require.NoError(t, err)
	return doc
}

func requireGolden(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	require.NoError(t, err)
	t.Fatalf("output mismatch:\n%s", diff)
}

func TestTreePrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreePrinter(&buf).Encode(parse(t, `\iincludegraphics{x.png} %c`)))

	requireGolden(t, `Document [0:0@0 0:27@27]
  Command \iincludegraphics [0:0@0 0:24@24]
    <absent square>
    CurlyParameterBlock [0:17@17 0:24@24]
      Parameter [0:18@18 0:23@23] "x.png"
  Whitespace [0:24@24 0:25@25] " "
  Comment [0:25@25 0:27@27] "%c"
`, buf.String())
}

func TestTreePrinterEnvironment(t *testing.T) {
	var buf bytes.Buffer
	p := NewTreePrinter(&buf, WithPreviewWidth(0))
	require.NoError(t, p.Encode(parse(t, "\\begin{itabular}{c}\n$x$\\end{itabular}")))

	requireGolden(t, `Document [0:0@0 1:17@37]
  Environment itabular [0:0@0 1:17@37]
    CurlyParameterBlock [0:16@16 0:19@19]
      Parameter [0:17@17 0:18@18]
    Whitespace [0:19@19 1:0@20]
    InlineMath [1:0@20 1:3@23]
      Math [1:1@21 1:2@22]
`, buf.String())
}

func TestTreePrinterDirtyNodes(t *testing.T) {
	d, err := document.Open(context.Background(), "hello")
	require.NoError(t, err)
	at := source.NewPosition(0, 2)
	_, err = d.Apply(context.Background(), document.Edit{Start: at, End: at, Text: " "})
	require.NoError(t, err)

	text, err := NewTreePrinter(nil).MarshalNode(d.Root())
	require.NoError(t, err)
	requireGolden(t, `Document [0:0@0 0:6@6]
  Text [0:0@0 0:6@6] dirty "hello"
`, string(text))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 8, "hello"},
		{"hello world", 8, "hello w…"},
		{"日本語テキスト", 7, "日本語…"},
		{"👍🏽👍🏽", 3, "👍🏽…"},
		{"a\u0301bc", 2, "a\u0301…"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestJSONEncoder(t *testing.T) {
	text, err := NewJSONEncoder(nil).MarshalNode(parse(t, `\iincludegraphics{x.png}`))
	require.NoError(t, err)

	assert.JSONEq(t, `{
  "kind": "Document",
  "range": {"start": {"line": 0, "column": 0, "offset": 0}, "end": {"line": 0, "column": 24, "offset": 24}},
  "children": [{
    "kind": "Command",
    "range": {"start": {"line": 0, "column": 0, "offset": 0}, "end": {"line": 0, "column": 24, "offset": 24}},
    "name": "iincludegraphics",
    "specific": true,
    "args": [
      {"delimiter": "square", "optional": true, "absent": true},
      {"delimiter": "curly", "block": {
        "kind": "CurlyParameterBlock",
        "range": {"start": {"line": 0, "column": 17, "offset": 17}, "end": {"line": 0, "column": 24, "offset": 24}},
        "children": [{
          "kind": "Parameter",
          "range": {"start": {"line": 0, "column": 18, "offset": 18}, "end": {"line": 0, "column": 23, "offset": 23}},
          "text": "x.png"
        }]
      }}
    ]
  }]
}`, string(text))
}

func TestJSONEncoderEmptyLeaf(t *testing.T) {
	text, err := NewJSONEncoder(nil).MarshalNode(parse(t, `\label{}`))
	require.NoError(t, err)
	assert.Contains(t, string(text), `"text": ""`)
}

func TestEncodeFile(t *testing.T) {
	_, parseErr := grammar.Parse(context.Background(), "a\n{b")
	require.Error(t, parseErr)

	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).EncodeFile("broken.tex", nil, parseErr))
	require.True(t, strings.HasSuffix(buf.String(), "}\n"))

	var perr *grammar.ParseError
	require.ErrorAs(t, parseErr, &perr)

	var got jsonFile
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	offset := 4
	want := jsonFile{
		Path: "broken.tex",
		Error: &jsonError{
			Message:  parseErr.Error(),
			Position: &jsonPosition{Line: 1, Column: 2, Offset: &offset},
			Expected: perr.Expected,
			Got:      "end of input",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EncodeFile mismatch (-want +got):\n%s", diff)
	}
}
