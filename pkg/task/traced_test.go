package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func spanAttrs(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestTracedRecordsSpans(t *testing.T) {
	ctx := context.Background()
	exporter, tp := newTestTracer(t)
	s := NewTraced(newTestSQLiteStore(t), tp.Tracer("test"))

	created, err := s.Create(ctx, map[string]any{"name": "Test"})
	require.NoError(t, err)
	_, err = s.Get(ctx, created.ID)
	require.NoError(t, err)
	_, err = s.Get(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	assert.Equal(t, "task.Store/Create", spans[0].Name)
	assert.Equal(t, created.ID, spanAttrs(spans[0].Attributes)["task.id"])

	assert.Equal(t, "task.Store/Get", spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)

	attrs := spanAttrs(spans[2].Attributes)
	assert.Equal(t, "missing", attrs["task.id"])
	assert.Equal(t, true, attrs["task.not_found"])
	assert.Equal(t, codes.Unset, spans[2].Status.Code)
}

func TestTracedMarksFailures(t *testing.T) {
	exporter, tp := newTestTracer(t)
	s := NewTraced(&failingStore{err: errors.New("boom")}, tp.Tracer("test"))

	_, err := s.List(context.Background())
	require.EqualError(t, err, "boom")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}
