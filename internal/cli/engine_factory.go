package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stagegen"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/observability"
)

// createEngine initializes a stagegen engine with standard CLI conventions.
func createEngine(ctx context.Context, cfg Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*stagegen.Engine, error) {
	engineOpts := []stagegen.Option{
		stagegen.WithLogger(logger),
		stagegen.WithLifecycleHooks(hooks),
		stagegen.WithConcurrency(cfg.Concurrency),
	}

	// 1. Host-specific mount root
	if cfg.BasePath != "" {
		engineOpts = append(engineOpts, stagegen.WithBasePath(cfg.BasePath))
	}

	// 2. Initialize (embedded document, rule file or rule directory)
	engine, err := stagegen.New(ctx, cfg.SpecPath, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	logger.Debug("rules loaded", "source", engine.Source(), "stages", engine.Stages())
	return engine, nil
}

// createHooks chains debug logging and, when a metrics file is requested,
// Prometheus collectors.
func createHooks(cfg Config, logger *slog.Logger) (domain.LifecycleHooks, *observability.Metrics) {
	sets := []domain.LifecycleHooks{observability.LoggingHooks(logger)}

	var metrics *observability.Metrics
	if cfg.MetricsFile != "" {
		metrics = observability.NewMetrics()
		sets = append(sets, metrics.Hooks())
	}
	return observability.CombineHooks(sets...), metrics
}
