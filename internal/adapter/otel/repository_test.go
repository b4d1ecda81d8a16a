package otel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/nexcart/internal/adapter/otel"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/domain/tenant"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// memoryTenants is a map-backed tenant.Repository.
type memoryTenants struct {
	byID map[tenant.TenantID]*tenant.Tenant
}

func newMemoryTenants() *memoryTenants {
	return &memoryTenants{byID: map[tenant.TenantID]*tenant.Tenant{}}
}

func (m *memoryTenants) GetByID(_ context.Context, id tenant.TenantID) (*tenant.Tenant, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, &shared.NotFoundError{Entity: "tenant", ID: id.String()}
	}
	return t, nil
}

func (m *memoryTenants) GetBySlug(_ context.Context, slug shared.Slug) (*tenant.Tenant, error) {
	for _, t := range m.byID {
		if t.Slug() == slug {
			return t, nil
		}
	}
	return nil, &shared.NotFoundError{Entity: "tenant", ID: slug.String()}
}

func (m *memoryTenants) Find(context.Context, shared.Query) ([]*tenant.Tenant, error) {
	out := make([]*tenant.Tenant, 0, len(m.byID))
	for _, t := range m.byID {
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryTenants) Count(_ context.Context, _ shared.Query) (int, error) { return len(m.byID), nil }

func (m *memoryTenants) Any(_ context.Context, _ shared.Query) (bool, error) { return len(m.byID) > 0, nil }

func (m *memoryTenants) Add(_ context.Context, t *tenant.Tenant) error {
	m.byID[t.ID()] = t
	return nil
}

func (m *memoryTenants) Update(_ context.Context, t *tenant.Tenant) error {
	if _, ok := m.byID[t.ID()]; !ok {
		return &shared.ConcurrencyError{Entity: "tenant", ID: t.ID().String(), Version: t.Version()}
	}
	m.byID[t.ID()] = t
	return nil
}

func (m *memoryTenants) Remove(_ context.Context, t *tenant.Tenant) error {
	delete(m.byID, t.ID())
	return nil
}

func newTenant(t *testing.T) *tenant.Tenant {
	t.Helper()
	clock := shared.FixedClock{At: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
	tn, err := tenant.NewTenant(clock, "Acme", "acme", "owner@acme.test", "Owner", tenant.VerticalRetail)
	require.NoError(t, err)
	return tn
}

func TestTracingRepository_AddAndGet(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingTenantRepository(newMemoryTenants())
	tn := newTenant(t)
	ctx := shared.WithTenant(context.Background(), tn.ID())

	require.NoError(t, repo.Add(ctx, tn))
	got, err := repo.GetByID(ctx, tn.ID())
	require.NoError(t, err)
	assert.Same(t, tn, got)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "TenantRepository.Add", spans[0].Name)
	assert.Equal(t, "TenantRepository.GetByID", spans[1].Name)
	assertAttribute(t, spans[1], "entity.id", tn.ID().String())
	assertAttribute(t, spans[1], "tenant.id", tn.ID().String())
	assert.Equal(t, codes.Unset, spans[1].Status.Code)
}

func TestTracingRepository_GetBySlug(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingTenantRepository(newMemoryTenants())
	tn := newTenant(t)
	require.NoError(t, repo.Add(context.Background(), tn))

	got, err := repo.GetBySlug(context.Background(), tn.Slug())
	require.NoError(t, err)
	assert.Equal(t, tn.ID(), got.ID())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "TenantRepository.GetBySlug", spans[1].Name)
	assertAttribute(t, spans[1], "tenant.slug", "acme")
}

func TestTracingRepository_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingTenantRepository(newMemoryTenants())

	_, err := repo.GetByID(context.Background(), shared.NewID[shared.TenantRef]())
	require.ErrorIs(t, err, shared.ErrNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assertAttribute(t, spans[0], "error.kind", "not_found")
	assert.NotEmpty(t, spans[0].Events, "expected the error to be recorded as a span event")
}

func TestTracingRepository_FindAttributes(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingTenantRepository(newMemoryTenants())
	require.NoError(t, repo.Add(context.Background(), newTenant(t)))

	q := shared.Where(shared.Condition{Field: "status", Op: shared.OpEq, Value: "active"}).Page(10, 20)
	out, err := repo.Find(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	span := exporter.GetSpans()[1]
	assert.Equal(t, "TenantRepository.Find", span.Name)
	assertAttribute(t, span, "query.conditions", "1")
	assertAttribute(t, span, "query.limit", "10")
	assertAttribute(t, span, "query.offset", "20")
	assertAttribute(t, span, "query.results", "1")
}

func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assert.Equal(t, want, attr.Value.Emit(), "attribute %q", key)
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
