// Package check verifies that the files a generated table points at exist.
//
// Every PathName_<x>/FileName_<x> pair of every row is joined and looked up.
// Paths that only exist on the host side of a path translation are found
// through the reverse mapping.
package check

import (
	"context"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/aretw0/stagegen/internal/logging"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel stat calls.
const DefaultConcurrency = 16

// Result summarizes one table.
type Result struct {
	Stage   string
	Total   int
	Found   int
	Missing []string
}

// OK reports whether every referenced file exists.
func (r *Result) OK() bool { return len(r.Missing) == 0 }

// Checker looks up referenced files.
type Checker struct {
	translate   *spec.PathTranslation
	concurrency int
	logger      *slog.Logger
	exists      func(string) bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithTranslation enables the container → host fallback.
func WithTranslation(t *spec.PathTranslation) Option {
	return func(c *Checker) {
		c.translate = t
	}
}

// WithConcurrency bounds parallel lookups.
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger; missing files are logged at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		concurrency: DefaultConcurrency,
		logger:      logging.NewNop(),
		exists:      fileExists,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Refs lists the joined file references of t in row order.
// Pairs with an empty path or file cell are skipped.
func Refs(t *domain.Table) []string {
	type pair struct{ path, file int }
	var pairs []pair
	for i, col := range t.Columns {
		suffix, ok := strings.CutPrefix(col, domain.PrefixPathName)
		if !ok {
			continue
		}
		if j := slices.Index(t.Columns, domain.PrefixFileName+suffix); j >= 0 {
			pairs = append(pairs, pair{i, j})
		}
	}

	var refs []string
	for _, row := range t.Rows {
		for _, p := range pairs {
			dir, file := row[p.path], row[p.file]
			if dir == "" || file == "" {
				continue
			}
			refs = append(refs, path.Join(dir, file))
		}
	}
	return refs
}

// Check looks up every reference of t. Missing paths keep table order.
func (c *Checker) Check(ctx context.Context, t *domain.Table) (*Result, error) {
	refs := Refs(t)
	found := make([]bool, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found[i] = c.lookup(ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Stage: t.Stage, Total: len(refs)}
	for i, ok := range found {
		if ok {
			res.Found++
			continue
		}
		res.Missing = append(res.Missing, refs[i])
		c.logger.Debug("missing file", "stage", t.Stage, "path", refs[i])
	}
	return res, nil
}

// lookup tries the container path, then the host path.
func (c *Checker) lookup(ref string) bool {
	if c.exists(ref) {
		return true
	}
	host := c.translate.Reverse(ref)
	return host != ref && c.exists(host)
}
