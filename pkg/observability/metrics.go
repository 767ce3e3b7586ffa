package observability

import (
	"context"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-stage generation and validation metrics.
type Metrics struct {
	registry      *prometheus.Registry
	stageRuns     *prometheus.CounterVec
	stageRows     *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
	validations   *prometheus.CounterVec
	mismatches    *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagegen_stage_runs_total",
				Help: "Stage generations by outcome (ok, stage, spec, io, unknown).",
			},
			[]string{"stage", "outcome"},
		),
		stageRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stagegen_stage_rows",
				Help: "Rows in the last generated table of a stage.",
			},
			[]string{"stage"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stagegen_stage_duration_seconds",
				Help:    "Time spent generating a stage table.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"stage"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagegen_validations_total",
				Help: "Reference validations by result (pass, fail).",
			},
			[]string{"stage", "result"},
		),
		mismatches: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stagegen_validation_mismatches",
				Help: "Mismatching cells found by the last validation of a stage.",
			},
			[]string{"stage"},
		),
	}
	m.registry.MustRegister(m.stageRuns, m.stageRows, m.stageDuration, m.validations, m.mismatches)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageDone: func(_ context.Context, e *domain.StageEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = string(domain.Classify(e.Err))
			} else {
				m.stageRows.WithLabelValues(e.Stage).Set(float64(e.Rows))
			}
			m.stageRuns.WithLabelValues(e.Stage, outcome).Inc()
			m.stageDuration.WithLabelValues(e.Stage).Observe(e.Duration.Seconds())
		},
		OnValidated: func(_ context.Context, e *domain.ValidationEvent) {
			result := "fail"
			if e.Passed {
				result = "pass"
			}
			m.validations.WithLabelValues(e.Stage, result).Inc()
			m.mismatches.WithLabelValues(e.Stage).Set(float64(e.Mismatches))
		},
	}
}

// WriteTextfile writes every metric in the Prometheus text format, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
