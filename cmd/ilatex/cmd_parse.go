package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/exsitu-projects/ilatex-sub001/format"
	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/grammar"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

var log = commonlog.GetLogger("ilatex.cmd")

func newParseCmd() *cobra.Command {
	var outputFormat string
	var dialectPath string
	var jobs int
	var width int

	cmd := &cobra.Command{
		Use:   "parse <file|glob>...",
		Short: "Parse files and dump their syntax trees",
		Long: "Parse files and dump their syntax trees.\n\n" +
			"Arguments may be glob patterns such as 'chapters/**/*.tex'. Files are\n" +
			"parsed in parallel and printed in argument order.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDialect(dialectPath)
			if err != nil {
				return err
			}
			files, err := expandArgs(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var emit func(path string, root ast.Node, err error) error
			switch outputFormat {
			case "tree":
				printer := format.NewTreePrinter(out, format.WithPreviewWidth(width))
				emit = func(path string, root ast.Node, err error) error {
					fmt.Fprintf(out, "%s:\n", path)
					if err != nil {
						_, werr := fmt.Fprintf(out, "  error: %s\n", err)
						return werr
					}
					return printer.Encode(root)
				}
			case "json":
				enc := format.NewJSONEncoder(out)
				emit = func(path string, root ast.Node, err error) error {
					return enc.EncodeFile(path, root, err)
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			results := parseFiles(cmd.Context(), grammar.New(d), files, jobs)
			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
				}
				if err := emit(r.path, r.root, r.err); err != nil {
					return fmt.Errorf("encode %s: %w", r.path, err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to parse", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json)")
	cmd.Flags().StringVar(&dialectPath, "dialect", "", "YAML file extending the default dialect")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files parsed in parallel")
	cmd.Flags().IntVar(&width, "width", 40, "preview width of the tree format, 0 to disable")

	return cmd
}

// expandArgs resolves glob patterns. Plain paths are kept as given so that
// missing files are reported by the parser.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !hasMeta(arg) {
			files = append(files, arg)
			continue
		}
		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid glob: %s", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}
		if len(matches) == 0 {
			log.Warningf("no files match %s", arg)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}

func hasMeta(path string) bool {
	for _, r := range path {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

type parseResult struct {
	path string
	root ast.Node
	err  error
}

// parseFiles parses every file with at most jobs parses in flight. Results
// keep the order of files.
func parseFiles(ctx context.Context, g *grammar.Grammar, files []string, jobs int) []parseResult {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]parseResult, len(files))
	grp, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		grp.SetLimit(jobs)
	}
	for i, path := range files {
		grp.Go(func() error {
			results[i] = parseResult{path: path}
			root, err := parseFile(ctx, g, path)
			if err != nil {
				log.Errorf("%s: %s", path, err)
				results[i].err = err
				return nil
			}
			results[i].root = root
			return nil
		})
	}
	_ = grp.Wait()
	return results
}

func parseFile(ctx context.Context, g *grammar.Grammar, path string) (*ast.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return g.Parse(ctx, string(data), source.NewPositionWithOffset(0, 0, 0))
}
