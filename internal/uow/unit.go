// Package uow implements the unit of work and the transaction pipeline every
// command runs through.
package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// Tx is a storage transaction.
type Tx interface {
	Commit() error
	Rollback() error
}

// Store opens transactions. The returned context carries the transaction for
// repositories of the same storage.
type Store interface {
	Begin(ctx context.Context) (context.Context, Tx, error)
}

var (
	ErrTransactionActive = errors.New("transaction already active")
	ErrNoTransaction     = errors.New("no active transaction")
)

// UnitOfWork tracks the changes of one operation and writes them in a single
// transaction. It is not safe for concurrent use.
type UnitOfWork struct {
	store   Store
	sink    shared.EventSink
	clock   shared.Clock
	tracker Tracker
	tx      Tx
}

func New(store Store, sink shared.EventSink, clock shared.Clock) *UnitOfWork {
	return &UnitOfWork{store: store, sink: sink, clock: shared.ClockOrSystem(clock)}
}

// Begin opens a transaction and returns a context carrying it and the unit.
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if u.tx != nil {
		return ctx, ErrTransactionActive
	}
	txCtx, tx, err := u.store.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("beginning transaction: %w", err)
	}
	u.tx = tx
	return withUnit(txCtx, u), nil
}

// Register records a pending change. It fails outside a transaction.
func (u *UnitOfWork) Register(entity any, state State, persist Persister) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.tracker.Track(entity, state, persist)
	return nil
}

// Pending returns the tracked entries.
func (u *UnitOfWork) Pending() []Entry { return u.tracker.Entries() }

// SaveChanges stamps audit fields, rewrites deletes of soft-deletable
// entities, drains their events, persists every entry in order and then
// dispatches the drained events one at a time.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	now := u.clock.UtcNow()
	by := actorID(ctx)

	for _, e := range u.tracker.entries {
		a, ok := e.Entity.(shared.Auditable)
		if !ok {
			continue
		}
		switch e.State {
		case Added:
			a.MarkCreated(now, by)
		case Modified:
			a.MarkUpdated(now, by)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, e := range u.tracker.entries {
		if e.State != Deleted {
			continue
		}
		if sd, ok := e.Entity.(shared.SoftDeletable); ok {
			sd.MarkDeleted(now, by)
			e.State = Modified
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var events []shared.DomainEvent
	for _, e := range u.tracker.entries {
		if src, ok := e.Entity.(shared.EventSource); ok {
			events = append(events, src.DrainEvents()...)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, e := range u.tracker.entries {
		if err := e.persist(ctx, e.State); err != nil {
			return err
		}
	}
	u.tracker.Reset()
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, event := range events {
		if err := u.sink.Dispatch(ctx, event); err != nil {
			return fmt.Errorf("dispatching %s: %w", event.EventName(), err)
		}
	}
	return nil
}

// Commit commits the transaction. A cancelled ctx rolls back instead.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	if err := ctx.Err(); err != nil {
		if rbErr := u.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	tx := u.tx
	u.tx = nil
	u.tracker.Reset()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction and all tracked changes. It is a no-op
// when no transaction is active.
func (u *UnitOfWork) Rollback() error {
	u.tracker.Reset()
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

func actorID(ctx context.Context) string {
	if id := shared.ActorFrom(ctx).UserID(); id != "" {
		return id
	}
	return shared.SystemUserID
}
