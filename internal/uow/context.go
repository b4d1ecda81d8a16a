package uow

import (
	"context"
	"errors"
)

// ErrNoUnitOfWork is returned when a write is attempted outside a unit of work.
var ErrNoUnitOfWork = errors.New("no active unit of work")

type unitKey struct{}

func withUnit(ctx context.Context, u *UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, u)
}

// From returns the unit of work bound to ctx.
func From(ctx context.Context) (*UnitOfWork, bool) {
	u, ok := ctx.Value(unitKey{}).(*UnitOfWork)
	return u, ok && u != nil
}

// Register records a change with the unit of work in ctx.
func Register(ctx context.Context, entity any, state State, persist Persister) error {
	u, ok := From(ctx)
	if !ok {
		return ErrNoUnitOfWork
	}
	return u.Register(entity, state, persist)
}
