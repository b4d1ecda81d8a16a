package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// TracingSink wraps a shared.EventSink with OpenTelemetry tracing.
type TracingSink struct {
	next   shared.EventSink
	tracer trace.Tracer
}

var _ shared.EventSink = (*TracingSink)(nil)

func NewTracingSink(next shared.EventSink) *TracingSink {
	return &TracingSink{next: next, tracer: otel.Tracer(tracerName)}
}

func (s *TracingSink) Dispatch(ctx context.Context, event shared.DomainEvent) error {
	ctx, span := s.tracer.Start(ctx, "EventSink.Dispatch",
		trace.WithAttributes(
			attribute.String("event.name", event.EventName()),
			attribute.String("event.id", event.EventID()),
			attribute.String("aggregate.id", event.AggregateID()),
			attribute.String("tenant.id", event.TenantID()),
		),
	)
	defer span.End()

	err := s.next.Dispatch(ctx, event)
	record(span, err)
	return err
}

// TracingStore wraps a uow.Store so every transaction gets a span that ends
// on commit or rollback. Statement spans from otelsql nest under it.
type TracingStore struct {
	next   uow.Store
	tracer trace.Tracer
}

var _ uow.Store = (*TracingStore)(nil)

func NewTracingStore(next uow.Store) *TracingStore {
	return &TracingStore{next: next, tracer: otel.Tracer(tracerName)}
}

func (s *TracingStore) Begin(ctx context.Context) (context.Context, uow.Tx, error) {
	ctx, span := s.tracer.Start(ctx, "Store.Transaction")
	txCtx, tx, err := s.next.Begin(ctx)
	if err != nil {
		record(span, err)
		span.End()
		return nil, nil, err
	}
	return txCtx, &tracingTx{next: tx, span: span}, nil
}

type tracingTx struct {
	next uow.Tx
	span trace.Span
}

func (t *tracingTx) Commit() error {
	defer t.span.End()
	err := t.next.Commit()
	t.span.SetAttributes(attribute.String("tx.outcome", "commit"))
	record(t.span, err)
	return err
}

func (t *tracingTx) Rollback() error {
	defer t.span.End()
	err := t.next.Rollback()
	t.span.SetAttributes(attribute.String("tx.outcome", "rollback"))
	record(t.span, err)
	return err
}
