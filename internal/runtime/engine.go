package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stagegen/internal/logging"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
	"golang.org/x/sync/errgroup"
)

// Engine generates stage tables from sample records.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	plan        *Plan
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	concurrency int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConcurrency bounds how many stages run at once. n <= 0 means one goroutine per stage.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// NewEngine validates and compiles doc.
// A malformed document fails here with a *domain.SpecError; no stage is ever
// generated from it.
func NewEngine(doc *spec.Document, opts ...EngineOption) (*Engine, error) {
	plan, err := Compile(doc)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		plan:   plan,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Plan returns the compiled document.
func (e *Engine) Plan() *Plan { return e.plan }

// Stages lists the stage ids in execution order.
func (e *Engine) Stages() []string { return e.plan.Stages() }

// Generate produces the tables of the requested stages (all stages when none
// are named), in the order requested.
//
// Template and grouping failures are stage-scoped: they are reported in the
// failing StageResult and the other stages still complete. An unknown stage
// id or a cancelled context fails the whole call.
func (e *Engine) Generate(ctx context.Context, records []domain.SampleRecord, stages ...string) ([]domain.StageResult, error) {
	if len(stages) == 0 {
		stages = e.plan.Stages()
	}
	for _, id := range stages {
		if _, ok := e.plan.stages[id]; !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrStageNotFound, id)
		}
	}

	results := make([]domain.StageResult, len(stages))
	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, id := range stages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.runStage(ctx, e.plan.stages[id], records)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) runStage(ctx context.Context, sp *StagePlan, records []domain.SampleRecord) domain.StageResult {
	start := time.Now()
	if e.hooks.OnStageStart != nil {
		e.hooks.OnStageStart(ctx, &domain.StageEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventStageStart},
			Stage:     sp.ID,
		})
	}

	table, err := e.plan.GenerateStage(sp, records)
	res := domain.StageResult{Stage: sp.ID, Name: sp.Name, Duration: time.Since(start)}
	ev := &domain.StageEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStageDone},
		Stage:     sp.ID,
		Duration:  res.Duration,
	}
	if err != nil {
		res.Err = err
		ev.Err = err
		e.logger.Warn("stage failed", "stage", sp.ID, "error", err)
	} else {
		res.Table = table
		ev.Rows = table.Len()
		ev.Columns = len(table.Columns)
		if table.Len() == 0 {
			e.logger.Warn("stage produced no rows", "stage", sp.ID, "filter", sp.filter.String())
		}
		e.logger.Debug("stage generated", "stage", sp.ID, "rows", ev.Rows, "columns", ev.Columns, "duration", res.Duration)
	}

	if e.hooks.OnStageDone != nil {
		e.hooks.OnStageDone(ctx, ev)
	}
	return res
}

// GenerateStage runs one stage: filter, group, expand, assemble.
// It is a pure function of (records, plan).
func (p *Plan) GenerateStage(sp *StagePlan, records []domain.SampleRecord) (*domain.Table, error) {
	var groups []*group
	var err error
	if sp.synthetic != nil {
		groups, err = p.syntheticGroups(sp, records)
	} else {
		var filtered []domain.SampleRecord
		filtered, err = sp.filterRecords(records)
		if err == nil {
			groups, err = partition(sp.ID, sp.Grouping, filtered)
		}
	}
	if err != nil {
		return nil, err
	}

	table := domain.NewTable(sp.ID, nil)
	if len(groups) == 0 {
		if columns, ok := sp.header(); ok {
			table.Columns = columns
		}
	}
	for i, g := range groups {
		row, err := sp.assemble(g)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			table.Columns = append([]string(nil), row.Columns()...)
		}
		if err := table.AppendRow(row); err != nil {
			return nil, &domain.GroupingError{Stage: sp.ID, Key: describeGroup(sp.Grouping, g.values), Reason: err.Error()}
		}
	}
	applyLayout(table, sp.Layout)
	return table, nil
}
