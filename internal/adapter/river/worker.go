package river

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// Deduper remembers which events were already delivered. River runs a job at
// least once; the deduper turns that into at most one forward per event.
type Deduper interface {
	// FirstDelivery marks id as delivered and reports whether it was new.
	FirstDelivery(ctx context.Context, id string) (bool, error)
	// Forget clears the mark so a failed delivery can be retried.
	Forget(ctx context.Context, id string) error
}

// Forwarder publishes events outside the process.
type Forwarder interface {
	Forward(ctx context.Context, key string, value []byte) error
}

// EventWorker processes domain event jobs from the River queue. Both the
// deduper and the forwarder are optional; without them the event is only
// logged.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]

	Logger    *zap.Logger
	Deduper   Deduper
	Forwarder Forwarder
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	log := w.logger().With(
		zap.String("event", job.Args.Event),
		zap.String("event_id", job.Args.EventID),
		zap.String("aggregate_id", job.Args.AggregateID),
		zap.String("tenant_id", job.Args.TenantID),
		zap.Int64("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
	)

	if w.Deduper != nil {
		first, err := w.Deduper.FirstDelivery(ctx, job.Args.EventID)
		if err != nil {
			return fmt.Errorf("checking delivery: %w", err)
		}
		if !first {
			log.Info("skipping duplicate event")
			return nil
		}
	}

	if w.Forwarder != nil {
		value, err := json.Marshal(job.Args)
		if err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
		if err := w.Forwarder.Forward(ctx, job.Args.AggregateID, value); err != nil {
			if w.Deduper != nil {
				if ferr := w.Deduper.Forget(ctx, job.Args.EventID); ferr != nil {
					log.Warn("clearing delivery mark failed", zap.Error(ferr))
				}
			}
			return fmt.Errorf("forwarding event: %w", err)
		}
	}

	log.Info("processed event")
	return nil
}

func (w *EventWorker) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

// CartSweepArgs triggers expiry of abandoned carts.
type CartSweepArgs struct{}

func (CartSweepArgs) Kind() string { return "cart.sweep" }

// CartSweeper expires stale carts across all tenants.
type CartSweeper interface {
	SweepExpiredCarts(ctx context.Context, now time.Time) (int, error)
}

// CartSweeperFunc adapts a function to CartSweeper.
type CartSweeperFunc func(ctx context.Context, now time.Time) (int, error)

func (f CartSweeperFunc) SweepExpiredCarts(ctx context.Context, now time.Time) (int, error) {
	return f(ctx, now)
}

// CartSweepWorker runs the periodic cart sweep.
type CartSweepWorker struct {
	river.WorkerDefaults[CartSweepArgs]

	Logger  *zap.Logger
	Sweeper CartSweeper
	Now     func() time.Time
}

func (w *CartSweepWorker) Work(ctx context.Context, job *river.Job[CartSweepArgs]) error {
	now := time.Now().UTC()
	if w.Now != nil {
		now = w.Now()
	}
	n, err := w.Sweeper.SweepExpiredCarts(ctx, now)
	if err != nil {
		return fmt.Errorf("sweeping carts: %w", err)
	}
	if w.Logger != nil {
		w.Logger.Info("swept expired carts", zap.Int("expired", n), zap.Int64("job_id", job.ID))
	}
	return nil
}
