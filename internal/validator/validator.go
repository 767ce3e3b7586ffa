// Package validator compares generated stage tables against reference tables.
//
// Validation never fails a run: a mismatch is a reported result. Only a
// reference that cannot be read is surfaced as an error, and even then it is
// recorded in the stage report rather than returned.
package validator

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/aretw0/stagegen/internal/logging"
	"github.com/aretw0/stagegen/internal/selection"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxMismatches bounds the mismatches listed per stage.
const DefaultMaxMismatches = 10

// WellColumn is the reference column filtered by a well selection.
const WellColumn = domain.PrefixMetadata + "Well"

// Status is the outcome of validating one stage.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusMissing Status = "missing" // no reference table
	StatusSkipped Status = "skipped" // the stage itself failed to generate
	StatusError   Status = "error"   // the reference could not be read
)

// Report is the validation result of one stage.
type Report struct {
	Stage  string            `json:"stage"`
	Status Status            `json:"status"`
	Diff   *domain.TableDiff `json:"diff,omitempty"`
	Err    error             `json:"-"`
	Error  string            `json:"error,omitempty"`
}

// Passed reports whether the stage matched its reference.
func (r Report) Passed() bool { return r.Status == StatusPass }

// Validator diffs generated tables against a reference source.
type Validator struct {
	refs          ports.ReferenceSource
	maxMismatches int
	wells         selection.Wells
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithMaxMismatches sets how many mismatching cells are listed per stage.
func WithMaxMismatches(n int) Option {
	return func(v *Validator) { v.maxMismatches = n }
}

// WithWells restricts reference rows to the selected wells, matching a run
// whose input was restricted the same way.
func WithWells(w selection.Wells) Option {
	return func(v *Validator) { v.wells = w }
}

// WithLifecycleHooks registers the OnValidated hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(v *Validator) { v.hooks = hooks }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a validator reading references from refs.
func New(refs ports.ReferenceSource, opts ...Option) *Validator {
	v := &Validator{
		refs:          refs,
		maxMismatches: DefaultMaxMismatches,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every stage result, concurrently, and returns one report
// per result in the same order.
func (v *Validator) Validate(ctx context.Context, results []domain.StageResult) []Report {
	reports := make([]Report, len(results))
	var g errgroup.Group
	for i, res := range results {
		g.Go(func() error {
			reports[i] = v.validateStage(ctx, res)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func (v *Validator) validateStage(ctx context.Context, res domain.StageResult) Report {
	rep := Report{Stage: res.Stage}
	if !res.OK() {
		rep.Status = StatusSkipped
		return rep
	}

	ref, err := v.refs.Reference(ctx, res.Stage)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		rep.Status = StatusMissing
		rep.setErr(err)
		v.logger.Warn("reference table not found", "stage", res.Stage)
	case err != nil:
		rep.Status = StatusError
		rep.setErr(err)
		v.logger.Warn("reference table unreadable", "stage", res.Stage, "error", err)
	default:
		ref = v.wells.Table(ref, WellColumn)
		rep.Diff = Compare(res.Table, ref, v.maxMismatches)
		rep.Status = StatusFail
		if rep.Diff.IsEmpty() {
			rep.Status = StatusPass
		}
		v.logger.Debug("stage validated", "stage", res.Stage, "status", rep.Status, "mismatches", rep.Diff.TotalMismatches)
	}

	if v.hooks.OnValidated != nil {
		ev := &domain.ValidationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidated},
			Stage:     res.Stage,
			Passed:    rep.Passed(),
		}
		if rep.Diff != nil {
			ev.Mismatches = rep.Diff.TotalMismatches
		}
		v.hooks.OnValidated(ctx, ev)
	}
	return rep
}

func (r *Report) setErr(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Compare normalizes both tables and diffs them.
func Compare(generated, reference *domain.Table, maxMismatches int) *domain.TableDiff {
	return domain.DiffTables(Normalize(generated), Normalize(reference), maxMismatches)
}

// Summary counts reports per status.
func Summary(reports []Report) map[Status]int {
	out := make(map[Status]int)
	for _, r := range reports {
		out[r.Status]++
	}
	return out
}
