package csv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
)

// Dir stores stage tables as files in one directory. Pattern names each
// file; "{stage}" is replaced by the stage id.
//
// Dir implements both ports.TableSink and ports.ReferenceSource.
type Dir struct {
	Root    string
	Pattern string
}

// NewDir creates a directory store.
func NewDir(root, pattern string) *Dir {
	return &Dir{Root: root, Pattern: pattern}
}

// PathFor returns the file path of stage.
func (d *Dir) PathFor(stage string) string {
	return filepath.Join(d.Root, strings.ReplaceAll(d.Pattern, "{stage}", stage))
}

// Write creates (or truncates) the file of t.Stage.
func (d *Dir) Write(_ context.Context, t *domain.Table) (err error) {
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return err
	}
	f, err := os.Create(d.PathFor(t.Stage))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := WriteTable(f, t); err != nil {
		return fmt.Errorf("failed to write stage %s: %w", t.Stage, err)
	}
	return nil
}

// Reference reads the file of stage. A missing file yields an error wrapping
// fs.ErrNotExist.
func (d *Dir) Reference(_ context.Context, stage string) (*domain.Table, error) {
	f, err := os.Open(d.PathFor(stage))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTable(stage, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return t, nil
}
