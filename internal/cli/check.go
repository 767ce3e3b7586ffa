package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stagegen"
	"github.com/aretw0/stagegen/pkg/adapters/csv"
	"github.com/aretw0/stagegen/pkg/check"
	"github.com/aretw0/stagegen/pkg/domain"
)

// MissingFiles is returned by Check when a referenced file does not exist.
type MissingFiles struct {
	Count int
}

func (e *MissingFiles) Error() string {
	return fmt.Sprintf("%d referenced file(s) missing", e.Count)
}

// Check verifies that the files referenced by generated tables exist,
// falling back to host paths through the rule document's path translation.
func Check(ctx context.Context, specPath string, tables []string, stdout io.Writer, logger *slog.Logger) error {
	engine, err := stagegen.New(ctx, specPath, stagegen.WithLogger(logger))
	if err != nil {
		return err
	}
	checker := check.New(
		check.WithTranslation(engine.Document().PathTranslation),
		check.WithLogger(logger),
	)

	missing := 0
	for _, path := range tables {
		t, err := readTable(path)
		if err != nil {
			return err
		}
		res, err := checker.Check(ctx, t)
		if err != nil {
			return err
		}
		for _, m := range res.Missing {
			fmt.Fprintf(stdout, "Missing: %s\n", m)
		}
		fmt.Fprintf(stdout, "%s: Total: %d, Found: %d, Missing: %d\n", path, res.Total, res.Found, len(res.Missing))
		missing += len(res.Missing)
	}

	if missing > 0 {
		return &MissingFiles{Count: missing}
	}
	return nil
}

func readTable(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.ReadTable(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), f)
}
