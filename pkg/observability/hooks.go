package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stagegen/pkg/domain"
)

// LoggingHooks logs every lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageStart: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "stage_start", "stage", e.Stage)
		},
		OnStageDone: func(ctx context.Context, e *domain.StageEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "stage_done", "stage", e.Stage, "duration", e.Duration, "error", e.Err)
				return
			}
			logger.InfoContext(ctx, "stage_done",
				"stage", e.Stage,
				"rows", e.Rows,
				"columns", e.Columns,
				"duration", e.Duration,
			)
		},
		OnValidated: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.InfoContext(ctx, "stage_validated", "stage", e.Stage, "passed", e.Passed, "mismatches", e.Mismatches)
		},
	}
}

// CombineHooks calls every hook set in order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var starts, dones []func(context.Context, *domain.StageEvent)
	var validated []func(context.Context, *domain.ValidationEvent)
	for _, h := range sets {
		if h.OnStageStart != nil {
			starts = append(starts, h.OnStageStart)
		}
		if h.OnStageDone != nil {
			dones = append(dones, h.OnStageDone)
		}
		if h.OnValidated != nil {
			validated = append(validated, h.OnValidated)
		}
	}

	var out domain.LifecycleHooks
	if len(starts) > 0 {
		out.OnStageStart = func(ctx context.Context, e *domain.StageEvent) {
			for _, fn := range starts {
				fn(ctx, e)
			}
		}
	}
	if len(dones) > 0 {
		out.OnStageDone = func(ctx context.Context, e *domain.StageEvent) {
			for _, fn := range dones {
				fn(ctx, e)
			}
		}
	}
	if len(validated) > 0 {
		out.OnValidated = func(ctx context.Context, e *domain.ValidationEvent) {
			for _, fn := range validated {
				fn(ctx, e)
			}
		}
	}
	return out
}
