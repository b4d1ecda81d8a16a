package uow_test

import (
	"context"
	"fmt"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

// journal records storage and sink calls in the order they happen.
type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

type fakeTx struct {
	j         *journal
	commitErr error
}

func (t *fakeTx) Commit() error {
	t.j.add("commit")
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.j.add("rollback")
	return nil
}

type fakeStore struct {
	j        *journal
	begins   int
	beginErr error
}

var _ uow.Store = (*fakeStore)(nil)

func (s *fakeStore) Begin(ctx context.Context) (context.Context, uow.Tx, error) {
	if s.beginErr != nil {
		return ctx, nil, s.beginErr
	}
	s.begins++
	s.j.add("begin")
	return ctx, &fakeTx{j: s.j}, nil
}

func (s *fakeStore) persister(name string, fail error) uow.Persister {
	return func(_ context.Context, state uow.State) error {
		if fail != nil {
			return fail
		}
		s.j.add("persist %s %s", name, state)
		return nil
	}
}

func recordingSink(j *journal) shared.EventSink {
	return shared.EventSinkFunc(func(_ context.Context, e shared.DomainEvent) error {
		j.add("dispatch %s", e.EventName())
		return nil
	})
}

type widget struct {
	shared.Entity[widget]
	shared.EventBuffer
	shared.Audit
	shared.SoftDelete
	shared.Versioned

	name string
}

type widgetRenamed struct {
	shared.EventMeta
	Name string
}

func (widgetRenamed) EventName() string { return "test.widget_renamed" }

func newWidget(name string) *widget {
	return &widget{Entity: shared.NewEntity[widget](), name: name}
}

func (w *widget) rename(name string) {
	w.name = name
	w.AddEvent(widgetRenamed{EventMeta: shared.NewEventMeta(clock.UtcNow(), w.ID().String(), ""), Name: name})
}

// gadget has no audit, soft-delete or event capabilities.
type gadget struct {
	shared.Entity[gadget]
}
