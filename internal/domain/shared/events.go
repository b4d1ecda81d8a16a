package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is an immutable record of something that happened inside an
// aggregate.
type DomainEvent interface {
	EventID() string
	EventName() string
	AggregateID() string
	TenantID() string
	OccurredAt() time.Time
}

// EventMeta carries the fields shared by every domain event. Concrete events
// embed it and add EventName plus their own payload.
type EventMeta struct {
	ID        string    `json:"event_id"`
	Aggregate string    `json:"aggregate_id"`
	Tenant    string    `json:"tenant_id,omitempty"`
	At        time.Time `json:"occurred_at"`
}

// NewEventMeta stamps a new event identity at the given time.
func NewEventMeta(at time.Time, aggregateID, tenantID string) EventMeta {
	return EventMeta{
		ID:        uuid.NewString(),
		Aggregate: aggregateID,
		Tenant:    tenantID,
		At:        at.UTC(),
	}
}

func (m EventMeta) EventID() string { return m.ID }
func (m EventMeta) AggregateID() string { return m.Aggregate }
func (m EventMeta) TenantID() string { return m.Tenant }
func (m EventMeta) OccurredAt() time.Time { return m.At }

// EventSink receives drained events one at a time for downstream handling.
type EventSink interface {
	Dispatch(ctx context.Context, event DomainEvent) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, event DomainEvent) error

func (f EventSinkFunc) Dispatch(ctx context.Context, event DomainEvent) error {
	return f(ctx, event)
}
