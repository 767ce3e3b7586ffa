package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/stagegen"
	"github.com/aretw0/stagegen/pkg/adapters/csv"
	"github.com/aretw0/stagegen/pkg/domain"
)

// Generate runs the generate command: read records, produce every requested
// stage, write the tables, optionally validate them, then print the report.
// Validation mismatches never make it fail; failed stages do (exit 3).
func Generate(ctx context.Context, cfg Config, stdout io.Writer, logger *slog.Logger) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	hooks, metrics := createHooks(cfg, logger)

	// 1. Engine
	engine, err := createEngine(ctx, cfg, logger, hooks)
	if err != nil {
		return err
	}

	// 2. Records
	records, err := csv.RecordFile{Path: cfg.Input}.Records(ctx)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.Input, err)
	}
	records, err = stagegen.FilterWells(records, cfg.Wells)
	if err != nil {
		return &UsageError{Problems: []string{err.Error()}}
	}
	logger.Info("records loaded", "path", cfg.Input, "records", len(records))

	// 3. Generate
	results, err := engine.Generate(ctx, records, cfg.Stages...)
	if errors.Is(err, domain.ErrStageNotFound) {
		return &UsageError{Problems: []string{fmt.Sprintf("--stage: %v (defined: %s)", err, strings.Join(engine.Stages(), ", "))}}
	}
	if err != nil {
		return err
	}

	// 4. Write
	doc := engine.Document()
	out := csv.NewDir(cfg.OutputDir, doc.Output.Filename)
	report := &RunReport{Source: engine.Source(), Records: len(records), Wells: cfg.Wells}
	var failures []error
	for _, res := range results {
		if !res.OK() {
			failures = append(failures, res.Err)
			report.Stages = append(report.Stages, summarize(res, ""))
			continue
		}
		if err := out.Write(ctx, res.Table); err != nil {
			return fmt.Errorf("writing stage %s: %w", res.Stage, err)
		}
		report.Stages = append(report.Stages, summarize(res, out.PathFor(res.Stage)))
	}

	// 5. Validate
	if cfg.Validate {
		refs := csv.NewDir(cfg.ReferenceDir, doc.Output.Reference)
		reports, err := engine.Validate(ctx, results, refs, stagegen.ValidateOptions{
			MaxMismatches: cfg.MaxMismatches,
			Wells:         cfg.Wells,
		})
		if err != nil {
			return err
		}
		report.Validation = reports
		report.Summary = stagegen.Summary(reports)
	}

	// 6. Metrics
	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("metrics not written", "path", cfg.MetricsFile, "error", err)
		}
	}

	if err := Render(stdout, report, cfg.Format); err != nil {
		return err
	}
	if len(failures) > 0 {
		return &StageFailure{Errs: failures}
	}
	return nil
}
