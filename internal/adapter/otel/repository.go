package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

const tracerName = "github.com/neomorfeo/nexcart/internal/adapter/otel"

// TracingRepository wraps a shared.Repository with OpenTelemetry tracing.
// Spans are named "<Entity>Repository.<Method>" and carry the tenant of the
// calling context.
type TracingRepository[A any, K interface{ String() string }] struct {
	next   shared.Repository[A, K]
	entity string
	tracer trace.Tracer
}

var _ shared.Repository[*tenant.Tenant, tenant.TenantID] = (*TracingRepository[*tenant.Tenant, tenant.TenantID])(nil)

// NewTracingRepository creates a tracing decorator around next. entity names
// the spans, e.g. "Product".
func NewTracingRepository[A any, K interface{ String() string }](entity string, next shared.Repository[A, K]) *TracingRepository[A, K] {
	return &TracingRepository[A, K]{next: next, entity: entity, tracer: otel.Tracer(tracerName)}
}

func (r *TracingRepository[A, K]) GetByID(ctx context.Context, id K) (A, error) {
	ctx, span := r.start(ctx, "GetByID", attribute.String("entity.id", id.String()))
	defer span.End()

	a, err := r.next.GetByID(ctx, id)
	record(span, err)
	return a, err
}

func (r *TracingRepository[A, K]) Find(ctx context.Context, q shared.Query) ([]A, error) {
	ctx, span := r.start(ctx, "Find", queryAttributes(q)...)
	defer span.End()

	out, err := r.next.Find(ctx, q)
	record(span, err)
	span.SetAttributes(attribute.Int("query.results", len(out)))
	return out, err
}

func (r *TracingRepository[A, K]) Count(ctx context.Context, q shared.Query) (int, error) {
	ctx, span := r.start(ctx, "Count", queryAttributes(q)...)
	defer span.End()

	n, err := r.next.Count(ctx, q)
	record(span, err)
	return n, err
}

func (r *TracingRepository[A, K]) Any(ctx context.Context, q shared.Query) (bool, error) {
	ctx, span := r.start(ctx, "Any", queryAttributes(q)...)
	defer span.End()

	ok, err := r.next.Any(ctx, q)
	record(span, err)
	return ok, err
}

func (r *TracingRepository[A, K]) Add(ctx context.Context, a A) error {
	ctx, span := r.start(ctx, "Add")
	defer span.End()

	err := r.next.Add(ctx, a)
	record(span, err)
	return err
}

func (r *TracingRepository[A, K]) Update(ctx context.Context, a A) error {
	ctx, span := r.start(ctx, "Update")
	defer span.End()

	err := r.next.Update(ctx, a)
	record(span, err)
	return err
}

func (r *TracingRepository[A, K]) Remove(ctx context.Context, a A) error {
	ctx, span := r.start(ctx, "Remove")
	defer span.End()

	err := r.next.Remove(ctx, a)
	record(span, err)
	return err
}

func (r *TracingRepository[A, K]) start(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if id, ok := shared.TenantFrom(ctx); ok {
		attrs = append(attrs, attribute.String("tenant.id", id.String()))
	}
	return r.tracer.Start(ctx, r.entity+"Repository."+method, trace.WithAttributes(attrs...))
}

// TracingTenantRepository adds the slug lookup to the generic decorator.
type TracingTenantRepository struct {
	*TracingRepository[*tenant.Tenant, tenant.TenantID]
	next tenant.Repository
}

var _ tenant.Repository = (*TracingTenantRepository)(nil)

func NewTracingTenantRepository(next tenant.Repository) *TracingTenantRepository {
	return &TracingTenantRepository{
		TracingRepository: NewTracingRepository[*tenant.Tenant, tenant.TenantID]("Tenant", next),
		next:              next,
	}
}

func (r *TracingTenantRepository) GetBySlug(ctx context.Context, slug shared.Slug) (*tenant.Tenant, error) {
	ctx, span := r.start(ctx, "GetBySlug", attribute.String("tenant.slug", slug.String()))
	defer span.End()

	t, err := r.next.GetBySlug(ctx, slug)
	record(span, err)
	return t, err
}

func queryAttributes(q shared.Query) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Int("query.conditions", len(q.Where))}
	if q.IncludeDeleted {
		attrs = append(attrs, attribute.Bool("query.include_deleted", true))
	}
	if q.Limit > 0 {
		attrs = append(attrs, attribute.Int("query.limit", q.Limit), attribute.Int("query.offset", q.Offset))
	}
	return attrs
}

func record(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.kind", shared.KindOf(err).String()))
}
