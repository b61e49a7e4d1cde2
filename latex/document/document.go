// Package document keeps a text buffer and its syntax tree together and
// routes every edit of the text to the tree.
package document

import (
	"context"
	"fmt"
	"slices"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/semaphore"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
	"github.com/exsitu-projects/ilatex-sub001/latex/grammar"
	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

// Edit replaces the text between Start and End, both given as line and
// column in the text before the edit.
type Edit struct {
	Start source.Position
	End   source.Position
	Text  string
}

// Outcome reports what an edit did to the tree.
type Outcome struct {
	Change source.Change
	ast.Result
	// FullReparse is set when the whole document was reparsed because
	// dispatch left it unresolved.
	FullReparse bool
}

type Option func(*config)

type config struct {
	dialect  *grammar.Dialect
	kinds    []ast.Kind
	fallback bool
	log      commonlog.Logger
}

// WithDialect parses with d instead of the default dialect.
func WithDialect(d *grammar.Dialect) Option {
	return func(c *config) {
		c.dialect = d
	}
}

// WithReparseKinds enables reparsing on the nodes of the given kinds,
// including nodes created by later reparses.
func WithReparseKinds(kinds ...ast.Kind) Option {
	return func(c *config) {
		c.kinds = append(c.kinds, kinds...)
	}
}

// WithFullReparseFallback reparses the whole document when an edit leaves
// dirty nodes no ancestor could reparse. If that fails too, the previous
// tree is kept.
func WithFullReparseFallback() Option {
	return func(c *config) {
		c.fallback = true
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Document owns the text of one file and the tree parsed from it. Edits are
// admitted one at a time.
type Document struct {
	buf      *source.Buffer
	tree     *ast.Tree
	fallback bool
	log      commonlog.Logger
	sem      *semaphore.Weighted
}

// Open parses text. A parse failure is returned as is and no document is
// created.
func Open(ctx context.Context, text string, opts ...Option) (*Document, error) {
	c := config{
		dialect: grammar.DefaultDialect(),
		log:     commonlog.GetLogger("ilatex.document"),
	}
	for _, opt := range opts {
		opt(&c)
	}

	root, err := grammar.New(c.dialect).Parse(ctx, text, source.NewPositionWithOffset(0, 0, 0))
	if err != nil {
		c.log.Errorf("initial parse: %s", err)
		return nil, err
	}

	buf := source.NewBuffer(text)
	treeOpts := []ast.TreeOption{ast.WithLogger(c.log)}
	if len(c.kinds) > 0 {
		kinds := slices.Clone(c.kinds)
		treeOpts = append(treeOpts, ast.WithReparsePolicy(func(n ast.Node) bool {
			return slices.Contains(kinds, n.Kind())
		}))
	}

	return &Document{
		buf:      buf,
		tree:     ast.NewTree(root, buf, treeOpts...),
		fallback: c.fallback,
		log:      c.log,
		sem:      semaphore.NewWeighted(1),
	}, nil
}

// Apply applies e to the text and dispatches the resulting change to the
// tree. An edit outside the text is rejected before anything changes.
func (d *Document) Apply(ctx context.Context, e Edit) (Outcome, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return Outcome{}, err
	}
	defer d.sem.Release(1)

	change, err := d.buf.Replace(e.Start, e.End, e.Text)
	if err != nil {
		return Outcome{}, fmt.Errorf("apply edit: %w", err)
	}
	out := Outcome{Change: change, Result: d.tree.DispatchChange(ctx, change)}
	d.log.Debugf("%s: %d reparsed, %d failed", change, len(out.Reparsed), len(out.Failures))

	if out.Unresolved && d.fallback {
		if err := d.tree.Reparse(ctx, d.tree.Root()); err != nil {
			d.log.Warningf("full reparse: %s", err)
		} else {
			out.Unresolved = false
			out.FullReparse = true
		}
	}
	return out, nil
}

// Reparse reparses the whole document from its current text.
func (d *Document) Reparse(ctx context.Context) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.sem.Release(1)
	return d.tree.Reparse(ctx, d.tree.Root())
}

func (d *Document) lock() func() {
	// Acquire only fails on a done context.
	_ = d.sem.Acquire(context.Background(), 1)
	return func() { d.sem.Release(1) }
}

// Text returns the current text.
func (d *Document) Text() string {
	defer d.lock()()
	return d.buf.String()
}

func (d *Document) Root() *ast.Document {
	defer d.lock()()
	return d.tree.Root().(*ast.Document)
}

// Tree returns the tree of the document. Callers using it directly must not
// do so while an edit is being applied.
func (d *Document) Tree() *ast.Tree {
	return d.tree
}

// Buffer returns the text buffer, under the same terms as Tree.
func (d *Document) Buffer() *source.Buffer {
	return d.buf
}

// Pending returns the dirty nodes in pre-order.
func (d *Document) Pending() []ast.Node {
	defer d.lock()()
	return d.tree.Pending()
}
