package river

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/nexcart/internal/adapter/sqlite"
	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// EventJobArgs carries a dispatched domain event. River serializes this as
// JSON into its job queue table. The payload is the event itself, so the
// worker never needs to query the database.
type EventJobArgs struct {
	EventID     string          `json:"event_id"`
	Event       string          `json:"event"`
	AggregateID string          `json:"aggregate_id"`
	TenantID    string          `json:"tenant_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "domain_event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Sink implements shared.EventSink by enqueuing River jobs. Inside a unit of
// work the job is inserted in the same transaction as the changes that
// raised the event, so it is only ever run for committed changes.
type Sink struct {
	client *Client
}

var _ shared.EventSink = (*Sink)(nil)

func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

func (s *Sink) Dispatch(ctx context.Context, event shared.DomainEvent) error {
	args, err := jobArgs(event)
	if err != nil {
		return err
	}
	if tx, ok := sqlite.TxFrom(ctx); ok {
		_, err = s.client.InsertTx(ctx, tx, args, nil)
	} else {
		_, err = s.client.Insert(ctx, args, nil)
	}
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}

func jobArgs(event shared.DomainEvent) (EventJobArgs, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return EventJobArgs{}, fmt.Errorf("encoding %s: %w", event.EventName(), err)
	}
	return EventJobArgs{
		EventID:     event.EventID(),
		Event:       event.EventName(),
		AggregateID: event.AggregateID(),
		TenantID:    event.TenantID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     payload,
	}, nil
}
