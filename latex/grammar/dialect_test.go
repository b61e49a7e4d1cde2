package grammar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
)

func TestDefaultDialect(t *testing.T) {
	d := DefaultDialect()

	slots, ok := d.Command("iincludegraphics")
	require.True(t, ok)
	assert.Equal(t, []ast.ParameterSpec{
		{Delimiter: ast.Square, Optional: true},
		{Delimiter: ast.Curly},
	}, slots)

	slots, ok = d.Environment("itabular")
	require.True(t, ok)
	assert.Equal(t, []ast.ParameterSpec{{Delimiter: ast.Curly}}, slots)

	slots, ok = d.Command("textbf")
	require.True(t, ok)
	assert.Equal(t, ast.TextContent, slots[0].Content)

	d.Commands["textbf"] = nil
	again, _ := DefaultDialect().Command("textbf")
	assert.Len(t, again, 1, "DefaultDialect must return a copy")
}

func TestLoadDialectErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown delimiter", "commands:\n  foo:\n    - {delimiter: round}\n", `unknown delimiter "round"`},
		{"unknown content", "commands:\n  foo:\n    - {delimiter: curly, content: math}\n", `unknown content "math"`},
		{"text in square", "environments:\n  foo:\n    - {delimiter: square, content: text}\n", "cannot hold text"},
		{"unknown key", "commands:\n  foo:\n    - {delim: curly}\n", "delim"},
		{"unknown section", "macros: {}\n", "macros"},
		{"empty command name", "commands:\n  \"\": []\n", "command with an empty name"},
		{"empty environment name", "environments:\n  \"\": []\n", "environment with an empty name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDialect(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadEmptyDialect(t *testing.T) {
	d, err := LoadDialect(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, d.Commands)
	assert.Empty(t, d.Environments)
}

func TestMergeDialect(t *testing.T) {
	extra, err := LoadDialect(strings.NewReader(`
commands:
  foo:
    - {delimiter: curly, content: text}
  textbf: []
`))
	require.NoError(t, err)

	merged := DefaultDialect().Merge(extra)
	slots, _ := merged.Command("textbf")
	assert.Empty(t, slots)
	_, ok := merged.Environment("itabular")
	assert.True(t, ok)

	doc := parse(t, `\foo{a b}`, WithDialect(merged))
	cmd := only(t, doc).(*ast.Command)
	assert.True(t, cmd.Specific)
	assert.Equal(t, ast.TextContent, cmd.Arg(0).Spec().Content)

	_, ok = DefaultDialect().Command("foo")
	assert.False(t, ok, "Merge must not modify its receiver")
}

func TestDialectYAML(t *testing.T) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	require.NoError(t, enc.Encode(DefaultDialect()))
	require.NoError(t, enc.Close())

	assert.Contains(t, buf.String(), "iincludegraphics:")

	loaded, err := LoadDialect(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultDialect(), loaded)
}

func TestDialectNames(t *testing.T) {
	d, err := LoadDialect(strings.NewReader("commands:\n  b: []\n  a: []\nenvironments:\n  z: []\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.CommandNames())
	assert.Equal(t, []string{"z"}, d.EnvironmentNames())
}

func TestEmptyNamesAreIgnored(t *testing.T) {
	d := &Dialect{
		Commands:     map[string][]ast.ParameterSpec{"": {{Delimiter: ast.Curly}}},
		Environments: map[string][]ast.ParameterSpec{"": nil},
	}
	doc := parse(t, `\x{y}`, WithDialect(d))
	cmd := doc.Children()[0].(*ast.Command)
	assert.Equal(t, "x", cmd.Name)
	assert.False(t, cmd.Specific)
}
