package observability

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnStageDone(ctx, &domain.StageEvent{Stage: "1", Rows: 12, Duration: time.Millisecond})
	hooks.OnStageDone(ctx, &domain.StageEvent{Stage: "2", Err: &domain.TemplateError{Stage: "2"}})
	hooks.OnValidated(ctx, &domain.ValidationEvent{Stage: "1", Passed: true})
	hooks.OnValidated(ctx, &domain.ValidationEvent{Stage: "2", Mismatches: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues("1", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageRuns.WithLabelValues("2", "stage")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.stageRows.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("1", "pass")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.mismatches.WithLabelValues("2")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.stageDuration))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Hooks().OnStageDone(context.Background(), &domain.StageEvent{Stage: "9", Rows: 4})

	path := filepath.Join(t.TempDir(), "stagegen.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `stagegen_stage_rows{stage="9"} 4`)
}

func TestCombineHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnStageDone: func(context.Context, *domain.StageEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnStageDone: func(context.Context, *domain.StageEvent) { calls = append(calls, "b") },
		OnValidated: func(context.Context, *domain.ValidationEvent) { calls = append(calls, "b-validated") },
	}

	h := CombineHooks(a, domain.LifecycleHooks{}, b)
	assert.Nil(t, h.OnStageStart)
	h.OnStageDone(context.Background(), &domain.StageEvent{})
	h.OnValidated(context.Background(), &domain.ValidationEvent{})
	assert.Equal(t, []string{"a", "b", "b-validated"}, calls)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := LoggingHooks(logger)

	h.OnStageDone(context.Background(), &domain.StageEvent{Stage: "3", Rows: 6})
	h.OnStageDone(context.Background(), &domain.StageEvent{Stage: "4", Err: &domain.GroupingError{Stage: "4", Key: "site"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "stage=3")
	assert.Contains(t, lines[0], "rows=6")
	assert.Contains(t, lines[1], "level=ERROR")
}
