package ports

import (
	"context"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

// SpecLoader retrieves a rule document.
type SpecLoader interface {
	// Load returns a decoded, not yet validated, document.
	Load(ctx context.Context) (*spec.Document, error)

	// Source describes where the document came from, for logs and reports.
	Source() string
}

// RecordSource yields the sample records of one run.
// Records are loaded once and never modified.
type RecordSource interface {
	Records(ctx context.Context) ([]domain.SampleRecord, error)
}

// TableSink receives generated stage tables.
type TableSink interface {
	// Write stores t under its stage id. Writing a stage twice replaces it.
	Write(ctx context.Context, t *domain.Table) error
}

// ReferenceSource provides the reference table of a stage.
type ReferenceSource interface {
	// Reference returns the reference table of stage.
	// A missing reference is an error wrapping fs.ErrNotExist.
	Reference(ctx context.Context, stage string) (*domain.Table, error)
}
