package task

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Traced records one span per store call.
type Traced struct {
	Store
	tracer trace.Tracer
}

// NewTraced wraps base with spans from tracer.
func NewTraced(base Store, tracer trace.Tracer) *Traced {
	return &Traced{Store: base, tracer: tracer}
}

func (t *Traced) List(ctx context.Context) ([]Task, error) {
	ctx, span := t.tracer.Start(ctx, "task.Store/List")
	defer span.End()
	tasks, err := t.Store.List(ctx)
	finish(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("task.count", len(tasks)))
	}
	return tasks, err
}

func (t *Traced) Get(ctx context.Context, id string) (*Task, error) {
	ctx, span := t.start(ctx, "task.Store/Get", id)
	defer span.End()
	got, err := t.Store.Get(ctx, id)
	finish(span, err)
	return got, err
}

func (t *Traced) Create(ctx context.Context, data map[string]any) (*Task, error) {
	ctx, span := t.tracer.Start(ctx, "task.Store/Create")
	defer span.End()
	created, err := t.Store.Create(ctx, data)
	finish(span, err)
	if err == nil {
		span.SetAttributes(attribute.String("task.id", created.ID))
	}
	return created, err
}

func (t *Traced) Update(ctx context.Context, id string, data map[string]any) (*Task, error) {
	ctx, span := t.start(ctx, "task.Store/Update", id)
	defer span.End()
	updated, err := t.Store.Update(ctx, id, data)
	finish(span, err)
	return updated, err
}

func (t *Traced) Delete(ctx context.Context, id string) (*Task, error) {
	ctx, span := t.start(ctx, "task.Store/Delete", id)
	defer span.End()
	deleted, err := t.Store.Delete(ctx, id)
	finish(span, err)
	return deleted, err
}

func (t *Traced) start(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("task.id", id)))
}

func finish(span trace.Span, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		span.SetAttributes(attribute.Bool("task.not_found", true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
