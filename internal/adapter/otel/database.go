package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/neomorfeo/nexcart/internal/adapter/sqlite"
)

// OpenDB opens the store's SQLite database with a span per statement and
// connection-pool metrics, both labelled with the service identity from cfg.
// The connection settings are the ones sqlite.Open applies.
func OpenDB(dataSourceName string, cfg Config) (*sql.DB, error) {
	attrs := dbAttributes(cfg)
	db, err := otelsql.Open("sqlite", dataSourceName,
		otelsql.WithAttributes(attrs...),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			OmitConnResetSession: true,
			OmitRows:             true,
			DisableQuery:         !cfg.RecordQueries,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("opening instrumented database: %w", err)
	}

	if err := sqlite.Configure(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(attrs...)); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering db stats metrics: %w", err)
	}
	return db, nil
}

func dbAttributes(cfg Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.DBSystemSqlite,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
}
