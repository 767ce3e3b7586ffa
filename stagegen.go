package stagegen

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"

	"github.com/aretw0/stagegen/internal/defaults"
	"github.com/aretw0/stagegen/internal/logging"
	"github.com/aretw0/stagegen/internal/runtime"
	"github.com/aretw0/stagegen/internal/selection"
	"github.com/aretw0/stagegen/internal/validator"
	"github.com/aretw0/stagegen/pkg/adapters/file"
	loamAdapter "github.com/aretw0/stagegen/pkg/adapters/loam"
	"github.com/aretw0/stagegen/pkg/adapters/memory"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/ports"
	"github.com/aretw0/stagegen/pkg/spec"
)

// Report is the validation outcome of one stage.
type Report = validator.Report

// Status is the validation status of one stage.
type Status = validator.Status

// Validation statuses.
const (
	StatusPass    = validator.StatusPass
	StatusFail    = validator.StatusFail
	StatusMissing = validator.StatusMissing
	StatusSkipped = validator.StatusSkipped
	StatusError   = validator.StatusError
)

// BasePathVar is the document variable overridden by WithBasePath.
const BasePathVar = "base_path"

// Engine is the high-level entry point of the library.
// It wraps the compiled rule document and the concurrent stage runner.
type Engine struct {
	runtime     *runtime.Engine
	loader      ports.SpecLoader
	doc         *spec.Document
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	concurrency int
	basePath    string
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom SpecLoader, bypassing path-based selection.
func WithLoader(l ports.SpecLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConcurrency bounds how many stages are generated at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithBasePath overrides the document's base_path variable.
func WithBasePath(path string) Option {
	return func(e *Engine) {
		e.basePath = path
	}
}

// NewLoader picks a loader for specPath: the embedded pcpip document when
// empty, a per-stage Loam directory, or a single YAML/JSON file.
func NewLoader(specPath string) (ports.SpecLoader, error) {
	if specPath == "" {
		return memory.NewLoader(defaults.Bytes(), spec.FormatYAML).Named(defaults.Name), nil
	}
	info, err := os.Stat(specPath)
	if err != nil {
		return nil, fmt.Errorf("rule document: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.Open(specPath)
	}
	return file.New(specPath), nil
}

// New loads the rule document at specPath (see NewLoader) and compiles it.
func New(ctx context.Context, specPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		loader, err := NewLoader(specPath)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}

	doc, err := eng.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return eng.init(doc)
}

// NewFromDocument compiles an already loaded document.
func NewFromDocument(doc *spec.Document, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	return eng.init(doc)
}

func (e *Engine) init(doc *spec.Document) (*Engine, error) {
	// 1. Apply overrides on a copy, the caller keeps its document
	if e.basePath != "" {
		overridden := *doc
		overridden.Vars = maps.Clone(doc.Vars)
		if overridden.Vars == nil {
			overridden.Vars = make(map[string]string)
		}
		overridden.Vars[BasePathVar] = e.basePath
		doc = &overridden
	}
	e.doc = doc

	// 2. Ensure logger is initialized
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.loader != nil {
		e.Name = filepath.Base(e.loader.Source())
		e.logger = e.logger.With("rules", e.Name)
	}

	// 3. Compile
	rt, err := runtime.NewEngine(doc,
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithConcurrency(e.concurrency),
	)
	if err != nil {
		return nil, err
	}
	e.runtime = rt
	return e, nil
}

// Document returns the compiled rule document.
func (e *Engine) Document() *spec.Document { return e.doc }

// Source describes where the rule document came from.
func (e *Engine) Source() string {
	if e.loader == nil {
		return ""
	}
	return e.loader.Source()
}

// Stages lists the stage ids in natural order.
func (e *Engine) Stages() []string { return e.runtime.Stages() }

// Generate produces one table per requested stage (all stages when none).
// Stage-scoped failures are reported in StageResult.Err; the returned error
// is reserved for unknown stages and cancellation.
func (e *Engine) Generate(ctx context.Context, records []domain.SampleRecord, stages ...string) ([]domain.StageResult, error) {
	return e.runtime.Generate(ctx, records, stages...)
}

// ValidateOptions tunes reference validation.
type ValidateOptions struct {
	// MaxMismatches bounds the mismatching cells kept per stage (default 10).
	MaxMismatches int
	// Wells restricts reference rows to matching wells ("A*,B1").
	Wells string
}

// Validate compares generated tables with the reference tables of refs.
func (e *Engine) Validate(ctx context.Context, results []domain.StageResult, refs ports.ReferenceSource, opts ValidateOptions) ([]Report, error) {
	wells, err := selection.ParseWells(opts.Wells)
	if err != nil {
		return nil, err
	}
	vopts := []validator.Option{
		validator.WithWells(wells),
		validator.WithLifecycleHooks(e.hooks),
		validator.WithLogger(e.logger),
	}
	if opts.MaxMismatches > 0 {
		vopts = append(vopts, validator.WithMaxMismatches(opts.MaxMismatches))
	}
	v := validator.New(refs, vopts...)
	return v.Validate(ctx, results), nil
}

// Summary counts reports by status.
func Summary(reports []Report) map[Status]int {
	return validator.Summary(reports)
}

// FilterWells keeps the records whose well matches expr ("" keeps all).
func FilterWells(records []domain.SampleRecord, expr string) ([]domain.SampleRecord, error) {
	wells, err := selection.ParseWells(expr)
	if err != nil {
		return nil, err
	}
	return wells.Records(records), nil
}
