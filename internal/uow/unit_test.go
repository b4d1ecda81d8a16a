package uow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

var clock = shared.FixedClock{At: time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)}

func begin(t *testing.T, ctx context.Context) (*uow.UnitOfWork, context.Context, *fakeStore, *journal) {
	t.Helper()
	j := &journal{}
	store := &fakeStore{j: j}
	unit := uow.New(store, recordingSink(j), clock)
	txCtx, err := unit.Begin(ctx)
	require.NoError(t, err)
	return unit, txCtx, store, j
}

func TestUnitOfWork_RegisterRequiresTransaction(t *testing.T) {
	unit := uow.New(&fakeStore{j: &journal{}}, recordingSink(&journal{}), clock)
	assert.ErrorIs(t, unit.Register(newWidget("w"), uow.Added, nil), uow.ErrNoTransaction)

	err := uow.Register(context.Background(), newWidget("w"), uow.Added, nil)
	assert.ErrorIs(t, err, uow.ErrNoUnitOfWork)
}

func TestUnitOfWork_BeginBindsUnitToContext(t *testing.T) {
	unit, ctx, _, _ := begin(t, context.Background())
	got, ok := uow.From(ctx)
	require.True(t, ok)
	assert.Same(t, unit, got)

	_, err := unit.Begin(ctx)
	assert.ErrorIs(t, err, uow.ErrTransactionActive)
}

func TestSaveChanges_StampsAudit(t *testing.T) {
	unit, ctx, store, _ := begin(t, shared.WithActor(context.Background(), shared.User{ID: "u-7"}))

	created := newWidget("new")
	existing := newWidget("old")
	require.NoError(t, uow.Register(ctx, created, uow.Added, store.persister("new", nil)))
	require.NoError(t, uow.Register(ctx, existing, uow.Modified, store.persister("old", nil)))
	require.NoError(t, unit.SaveChanges(ctx))

	assert.Equal(t, clock.At, created.CreatedAt())
	assert.Equal(t, "u-7", created.CreatedBy())
	_, updated := created.UpdatedAt()
	assert.False(t, updated)

	at, ok := existing.UpdatedAt()
	require.True(t, ok)
	assert.Equal(t, clock.At, at)
	assert.Equal(t, "u-7", existing.UpdatedBy())
}

func TestSaveChanges_DefaultsToSystemActor(t *testing.T) {
	unit, ctx, store, _ := begin(t, context.Background())
	w := newWidget("w")
	require.NoError(t, uow.Register(ctx, w, uow.Added, store.persister("w", nil)))
	require.NoError(t, unit.SaveChanges(ctx))
	assert.Equal(t, shared.SystemUserID, w.CreatedBy())
}

func TestSaveChanges_RewritesSoftDeletes(t *testing.T) {
	unit, ctx, store, j := begin(t, context.Background())

	soft := newWidget("soft")
	hard := &gadget{Entity: shared.NewEntity[gadget]()}
	require.NoError(t, uow.Register(ctx, soft, uow.Deleted, store.persister("soft", nil)))
	require.NoError(t, uow.Register(ctx, hard, uow.Deleted, store.persister("hard", nil)))
	require.NoError(t, unit.SaveChanges(ctx))

	assert.True(t, soft.IsDeleted())
	at, ok := soft.DeletedAt()
	require.True(t, ok)
	assert.Equal(t, clock.At, at)
	assert.Equal(t, []string{
		"begin",
		"persist soft modified",
		"persist hard deleted",
	}, j.calls)
}

func TestSaveChanges_DrainsThenPersistsThenDispatches(t *testing.T) {
	unit, ctx, store, j := begin(t, context.Background())

	a, b := newWidget("a"), newWidget("b")
	a.rename("a1")
	b.rename("b1")
	a.rename("a2")
	require.NoError(t, uow.Register(ctx, a, uow.Modified, store.persister("a", nil)))
	require.NoError(t, uow.Register(ctx, b, uow.Modified, store.persister("b", nil)))
	require.NoError(t, unit.SaveChanges(ctx))

	assert.Empty(t, a.PendingEvents())
	assert.Empty(t, b.PendingEvents())
	assert.Equal(t, []string{
		"begin",
		"persist a modified",
		"persist b modified",
		"dispatch test.widget_renamed",
		"dispatch test.widget_renamed",
		"dispatch test.widget_renamed",
	}, j.calls)
	assert.Empty(t, unit.Pending())
}

func TestSaveChanges_PersistFailureDispatchesNothing(t *testing.T) {
	unit, ctx, store, j := begin(t, context.Background())
	boom := errors.New("disk full")

	w := newWidget("w")
	w.rename("w1")
	require.NoError(t, uow.Register(ctx, w, uow.Modified, store.persister("w", boom)))

	err := unit.SaveChanges(ctx)
	assert.Equal(t, boom, err)
	assert.Equal(t, []string{"begin"}, j.calls)

	require.NoError(t, unit.Rollback())
	assert.Equal(t, []string{"begin", "rollback"}, j.calls)
}

func TestSaveChanges_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unit, txCtx, store, j := begin(t, ctx)
	require.NoError(t, uow.Register(txCtx, newWidget("w"), uow.Added, store.persister("w", nil)))

	cancel()
	assert.ErrorIs(t, unit.SaveChanges(txCtx), context.Canceled)
	assert.Equal(t, []string{"begin"}, j.calls)
}

func TestCommit_RefusesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unit, txCtx, _, j := begin(t, ctx)
	cancel()

	assert.ErrorIs(t, unit.Commit(txCtx), context.Canceled)
	assert.Equal(t, []string{"begin", "rollback"}, j.calls)
	assert.ErrorIs(t, unit.Commit(context.Background()), uow.ErrNoTransaction)
}

func TestRollback_WithoutTransactionIsNoOp(t *testing.T) {
	unit := uow.New(&fakeStore{j: &journal{}}, recordingSink(&journal{}), clock)
	assert.NoError(t, unit.Rollback())
}
