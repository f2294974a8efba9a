package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "toggle_checklist",
		Duration: 3 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"id": "c1"},
	})
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "use_case=toggle_checklist")
	assert.Contains(t, out, "id=c1")

	buf.Reset()
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "delete_node", Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, ObserverOrNoop())
	assert.IsType(t, NoopUseCaseObserver{}, ObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.MutationsTotal.WithLabelValues("add_root", "ok").Inc()
	m.MutationsTotal.WithLabelValues("add_root", "ok").Inc()
	m.RollbacksTotal.WithLabelValues("delete_node").Inc()

	assert.Equal(t, 2.0, promtest.ToFloat64(m.MutationsTotal.WithLabelValues("add_root", "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RollbacksTotal.WithLabelValues("delete_node")))

	// A second set on a fresh registry must not collide.
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.ErrBusy, "busy"},
		{fmt.Errorf("x: %w", domain.ErrNotFound), "not_found"},
		{fmt.Errorf("x: %w", domain.ErrConflict), "conflict"},
		{fmt.Errorf("x: %w", domain.ErrUnauthorized), "unauthorized"},
		{fmt.Errorf("x: %w", domain.ErrInvariantViolation), "invalid"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResultLabel(tt.err))
	}
}

func TestEndSpan_RecordsStatus(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())
	tracer := Tracer(tp)

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil)
	_, bad := tracer.Start(context.Background(), "bad")
	EndSpan(bad, errors.New("persist failed"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "persist failed", spans[1].Status().Description)
}

func TestSetupTracing(t *testing.T) {
	shutdown, err := SetupTracing("none", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = SetupTracing("zipkin", nil)
	assert.Error(t, err)
}
