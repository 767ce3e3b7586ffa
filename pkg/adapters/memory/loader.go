package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/stagegen/pkg/spec"
)

// Loader implements ports.SpecLoader over raw document bytes held in memory.
type Loader struct {
	data   []byte
	format spec.Format
	name   string
}

// NewLoader creates a loader for a YAML or JSON document.
func NewLoader(data []byte, format spec.Format) *Loader {
	return &Loader{data: data, format: format, name: "memory"}
}

// NewFromDocument creates a loader from a document value.
// The document is serialized, so later changes to doc do not leak into loads.
func NewFromDocument(doc *spec.Document) (*Loader, error) {
	data, err := spec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return NewLoader(data, spec.FormatYAML), nil
}

// Named sets the source description.
func (l *Loader) Named(name string) *Loader {
	l.name = name
	return l
}

// Load decodes a fresh copy of the document.
func (l *Loader) Load(_ context.Context) (*spec.Document, error) {
	return spec.Parse(l.data, l.format)
}

// Source describes the loader.
func (l *Loader) Source() string { return l.name }
