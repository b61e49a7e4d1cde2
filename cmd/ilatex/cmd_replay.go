package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/exsitu-projects/ilatex-sub001/format"
	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/document"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// defaultReparseKinds are the kinds the language server reparses locally.
var defaultReparseKinds = []string{
	"Command", "Environment", "Block", "InlineMath", "DisplayMath",
	"CurlyParameterBlock", "SquareParameterBlock",
	"Text", "Whitespace", "Comment", "Math", "Parameter",
}

// script is a replay file: the edits to apply, in order, and the reparse
// policy to apply them with.
type script struct {
	Enable   []string     `yaml:"enable"`
	Fallback bool         `yaml:"fallback"`
	Edits    []scriptEdit `yaml:"edits"`
}

type scriptEdit struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Text string `yaml:"text"`
}

func (e scriptEdit) edit() (document.Edit, error) {
	from, err := parsePosition(e.From)
	if err != nil {
		return document.Edit{}, err
	}
	to := from
	if e.To != "" {
		if to, err = parsePosition(e.To); err != nil {
			return document.Edit{}, err
		}
	}
	return document.Edit{Start: from, End: to, Text: e.Text}, nil
}

// parsePosition reads a 0-based "line:column" pair.
func parsePosition(s string) (source.Position, error) {
	var line, column int
	if _, err := fmt.Sscanf(s, "%d:%d", &line, &column); err != nil {
		return source.Position{}, fmt.Errorf("position %q: expected line:column", s)
	}
	return source.NewPosition(line, column), nil
}

func parseKinds(names []string) ([]ast.Kind, error) {
	kinds := make([]ast.Kind, 0, len(names))
	for _, name := range names {
		k, ok := ast.ParseKind(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown node kind: %s", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func loadScript(path string) (*script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	var s script
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode script %s: %w", path, err)
	}
	return &s, nil
}

func newReplayCmd() *cobra.Command {
	var outputFormat string
	var dialectPath string
	var enable []string
	var fallback bool

	cmd := &cobra.Command{
		Use:   "replay <file> <script.yaml>",
		Short: "Apply scripted edits to a file and report how the tree followed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDialect(dialectPath)
			if err != nil {
				return err
			}
			s, err := loadScript(args[1])
			if err != nil {
				return err
			}
			kinds, err := parseKinds(append(s.Enable, enable...))
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}

			opts := []document.Option{document.WithDialect(d), document.WithReparseKinds(kinds...)}
			if fallback || s.Fallback {
				opts = append(opts, document.WithFullReparseFallback())
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			doc, err := document.Open(ctx, string(data), opts...)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if err := replay(ctx, out, doc, s.Edits); err != nil {
				return err
			}

			switch outputFormat {
			case "tree":
				return format.NewTreePrinter(out).Encode(doc.Root())
			case "json":
				return format.NewJSONEncoder(out).Encode(doc.Root())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format of the final tree (tree, json)")
	cmd.Flags().StringVar(&dialectPath, "dialect", "", "YAML file extending the default dialect")
	cmd.Flags().StringSliceVar(&enable, "enable", nil, "node kinds that reparse themselves, in addition to the script's")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "reparse the whole document when an edit is left unresolved")

	return cmd
}

func replay(ctx context.Context, w io.Writer, doc *document.Document, edits []scriptEdit) error {
	for i, se := range edits {
		e, err := se.edit()
		if err != nil {
			return fmt.Errorf("edit %d: %w", i+1, err)
		}
		out, err := doc.Apply(ctx, e)
		if err != nil {
			return fmt.Errorf("edit %d: %w", i+1, err)
		}

		fmt.Fprintf(w, "edit %d: %s\n", i+1, out.Change)
		for _, n := range out.Reparsed {
			fmt.Fprintf(w, "  reparsed %s %s\n", n.Kind(), n.Range())
		}
		for _, f := range out.Failures {
			fmt.Fprintf(w, "  failed %s %s: %s\n", f.Node.Kind(), f.Node.Range(), f.Err)
		}
		switch {
		case out.FullReparse:
			fmt.Fprintln(w, "  full reparse")
		case out.Unresolved:
			fmt.Fprintf(w, "  unresolved: %d dirty nodes\n", len(doc.Pending()))
		}
	}
	return nil
}
