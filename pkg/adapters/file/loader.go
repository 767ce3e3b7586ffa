// Package file loads a rule document from a single YAML or JSON file.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/stagegen/pkg/spec"
)

// Loader reads a rule document from Path. The format follows the extension.
type Loader struct {
	Path string
}

// New creates a file loader.
func New(path string) *Loader {
	return &Loader{Path: path}
}

// Source implements ports.SpecLoader.
func (l *Loader) Source() string { return l.Path }

// Load implements ports.SpecLoader. Read failures keep their *fs.PathError.
func (l *Loader) Load(ctx context.Context) (*spec.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read rule document: %w", err)
	}
	return spec.Parse(data, spec.FormatFromPath(l.Path))
}
