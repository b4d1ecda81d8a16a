package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"
)

// Deps are the collaborators of the registered workers. Sweeper may be nil,
// in which case no cart sweep is scheduled.
type Deps struct {
	Logger        *zap.Logger
	Deduper       Deduper
	Forwarder     Forwarder
	Sweeper       CartSweeper
	SweepInterval time.Duration
	MaxWorkers    int
}

// Setup creates a River client with the workers registered and runs River's
// internal migrations. The caller must call client.Start() to begin
// processing jobs and client.Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, deps Deps) (*Client, error) {
	driver := riversqlite.New(db)

	// Run River's own migrations (creates river_job, river_leader, etc.).
	// These are separate from the app's goose migrations.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &EventWorker{Logger: deps.Logger, Deduper: deps.Deduper, Forwarder: deps.Forwarder})

	var periodic []*river.PeriodicJob
	if deps.Sweeper != nil {
		river.AddWorker(workers, &CartSweepWorker{Logger: deps.Logger, Sweeper: deps.Sweeper})
		interval := deps.SweepInterval
		if interval <= 0 {
			interval = time.Hour
		}
		periodic = append(periodic, river.NewPeriodicJob(
			river.PeriodicInterval(interval),
			func() (river.JobArgs, *river.InsertOpts) { return CartSweepArgs{}, nil },
			&river.PeriodicJobOpts{RunOnStart: true},
		))
	}

	maxWorkers := deps.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
