package uow

import (
	"context"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

// Pipeline runs application requests. Commands run inside a unit of work;
// requests whose type name ends in "Query" run without one.
type Pipeline struct {
	store   Store
	sink    shared.EventSink
	clock   shared.Clock
	logger  *zap.Logger
	metrics *Metrics
}

func NewPipeline(store Store, sink shared.EventSink, clock shared.Clock, logger *zap.Logger, metrics *Metrics) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Pipeline{
		store:   store,
		sink:    sink,
		clock:   shared.ClockOrSystem(clock),
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes fn for req. For commands it begins a unit of work, runs fn,
// saves the tracked changes and commits. Any failure rolls back and returns
// the original error. A command started inside an existing unit joins it.
func Run[Req, Res any](ctx context.Context, p *Pipeline, req Req, fn func(ctx context.Context, req Req) (Res, error)) (Res, error) {
	var res Res
	err := p.execute(ctx, operationName(req), func(ctx context.Context) error {
		var err error
		res, err = fn(ctx, req)
		return err
	})
	if err != nil {
		var zero Res
		return zero, err
	}
	return res, nil
}

func (p *Pipeline) execute(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	log := p.logger.With(zap.String("operation", op))
	log.Info("handling request")
	defer func() {
		p.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var err error
	_, inUnit := From(ctx)
	if IsQuery(op) || inUnit {
		err = fn(ctx)
	} else {
		err = p.transact(ctx, log, fn)
	}

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Error("request failed", zap.Int64("elapsed_ms", elapsed), zap.Error(err))
		return err
	}
	log.Info("request handled", zap.Int64("elapsed_ms", elapsed))
	return nil
}

func (p *Pipeline) transact(ctx context.Context, log *zap.Logger, fn func(context.Context) error) error {
	var dispatched []string
	sink := shared.EventSinkFunc(func(ctx context.Context, e shared.DomainEvent) error {
		if err := p.sink.Dispatch(ctx, e); err != nil {
			return err
		}
		dispatched = append(dispatched, e.EventName())
		return nil
	})

	unit := New(p.store, sink, p.clock)
	txCtx, err := unit.Begin(ctx)
	if err != nil {
		p.metrics.Rollbacks.WithLabelValues(shared.KindOf(err).String()).Inc()
		return err
	}

	if err := fn(txCtx); err != nil {
		return p.rollback(log, unit, err)
	}
	if err := unit.SaveChanges(txCtx); err != nil {
		return p.rollback(log, unit, err)
	}
	if err := unit.Commit(txCtx); err != nil {
		p.metrics.Rollbacks.WithLabelValues(shared.KindOf(err).String()).Inc()
		return err
	}

	p.metrics.Commits.Inc()
	for _, name := range dispatched {
		p.metrics.EventsDispatched.WithLabelValues(name).Inc()
	}
	return nil
}

func (p *Pipeline) rollback(log *zap.Logger, unit *UnitOfWork, cause error) error {
	p.metrics.Rollbacks.WithLabelValues(shared.KindOf(cause).String()).Inc()
	if err := unit.Rollback(); err != nil {
		log.Warn("rollback failed", zap.Error(err))
	}
	return cause
}

// IsQuery reports whether op names a read-only request.
func IsQuery(op string) bool {
	return strings.HasSuffix(op, "Query")
}

func operationName(req any) string {
	t := reflect.TypeOf(req)
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
