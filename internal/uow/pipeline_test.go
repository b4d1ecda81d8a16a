package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
	"github.com/neomorfeo/nexcart/internal/uow"
)

type renameWidgetCommand struct{ Name string }

type widgetQuery struct{}

type harness struct {
	j        *journal
	store    *fakeStore
	metrics  *uow.Metrics
	logs     *observer.ObservedLogs
	pipeline *uow.Pipeline
}

func newHarness() *harness {
	j := &journal{}
	store := &fakeStore{j: j}
	core, logs := observer.New(zap.InfoLevel)
	metrics := uow.NewMetrics(prometheus.NewRegistry())
	return &harness{
		j:        j,
		store:    store,
		metrics:  metrics,
		logs:     logs,
		pipeline: uow.NewPipeline(store, recordingSink(j), clock, zap.New(core), metrics),
	}
}

func (h *harness) rename(w *widget, fail error) func(context.Context, renameWidgetCommand) (string, error) {
	return func(ctx context.Context, cmd renameWidgetCommand) (string, error) {
		w.rename(cmd.Name)
		if err := uow.Register(ctx, w, uow.Modified, h.store.persister("w", fail)); err != nil {
			return "", err
		}
		return w.name, nil
	}
}

func TestRun_CommandCommits(t *testing.T) {
	h := newHarness()
	w := newWidget("w")

	got, err := uow.Run(context.Background(), h.pipeline, renameWidgetCommand{Name: "w2"}, h.rename(w, nil))
	require.NoError(t, err)
	assert.Equal(t, "w2", got)
	assert.Equal(t, []string{
		"begin",
		"persist w modified",
		"dispatch test.widget_renamed",
		"commit",
	}, h.j.calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Commits))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EventsDispatched.WithLabelValues("test.widget_renamed")))
	assert.Equal(t, 1, h.logs.FilterMessage("request handled").Len())
}

func TestRun_QuerySkipsTransaction(t *testing.T) {
	h := newHarness()

	n, err := uow.Run(context.Background(), h.pipeline, widgetQuery{}, func(ctx context.Context, _ widgetQuery) (int, error) {
		_, inUnit := uow.From(ctx)
		assert.False(t, inUnit)
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, h.store.begins)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.Commits))
}

func TestRun_HandlerErrorRollsBack(t *testing.T) {
	h := newHarness()
	invalid := &shared.ValidationError{Field: "name", Reason: "is required"}

	_, err := uow.Run(context.Background(), h.pipeline, renameWidgetCommand{}, func(context.Context, renameWidgetCommand) (string, error) {
		return "", invalid
	})
	assert.Same(t, invalid, err)
	assert.Equal(t, []string{"begin", "rollback"}, h.j.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Rollbacks.WithLabelValues("validation")))
	assert.Equal(t, 1, h.logs.FilterMessage("request failed").Len())
}

func TestRun_PersistFailureRollsBackWithoutDispatch(t *testing.T) {
	h := newHarness()
	boom := errors.New("constraint failed")

	_, err := uow.Run(context.Background(), h.pipeline, renameWidgetCommand{Name: "x"}, h.rename(newWidget("w"), boom))
	assert.Equal(t, boom, err)
	assert.Equal(t, []string{"begin", "rollback"}, h.j.calls)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.EventsDispatched.WithLabelValues("test.widget_renamed")))
}

func TestRun_StaleWriteIsRetryable(t *testing.T) {
	h := newHarness()
	stale := &shared.ConcurrencyError{Entity: "widget", ID: "w", Version: 3}

	_, err := uow.Run(context.Background(), h.pipeline, renameWidgetCommand{Name: "x"}, h.rename(newWidget("w"), stale))
	require.Error(t, err)
	assert.True(t, shared.IsRetryable(err))
	assert.Equal(t, shared.KindConcurrency, shared.KindOf(err))
}

func TestRun_CancelledBeforeCommit(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := uow.Run(ctx, h.pipeline, renameWidgetCommand{Name: "x"}, func(ctx context.Context, cmd renameWidgetCommand) (string, error) {
		cancel()
		return cmd.Name, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"begin", "rollback"}, h.j.calls)
}

func TestRun_NestedCommandJoinsUnit(t *testing.T) {
	h := newHarness()
	w := newWidget("w")

	_, err := uow.Run(context.Background(), h.pipeline, renameWidgetCommand{Name: "outer"}, func(ctx context.Context, cmd renameWidgetCommand) (string, error) {
		return uow.Run(ctx, h.pipeline, renameWidgetCommand{Name: "inner"}, h.rename(w, nil))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.store.begins)
	assert.Equal(t, "inner", w.name)
}

func TestRun_BeginFailure(t *testing.T) {
	h := newHarness()
	h.store.beginErr = errors.New("database is locked")

	_, err := uow.Run(context.Background(), h.pipeline, renameWidgetCommand{}, h.rename(newWidget("w"), nil))
	assert.ErrorIs(t, err, h.store.beginErr)
}

func TestIsQuery(t *testing.T) {
	assert.True(t, uow.IsQuery("GetProductQuery"))
	assert.False(t, uow.IsQuery("CreateProductCommand"))
	assert.False(t, uow.IsQuery("QueryProducts"))
}
