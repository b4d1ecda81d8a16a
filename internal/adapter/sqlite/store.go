package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/nexcart/internal/uow"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the database handle and opens the transactions units of work
// write through.
type Store struct {
	db *sql.DB
}

var _ uow.Store = (*Store)(nil)

// Open opens a SQLite database and returns a migrated store.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := Configure(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db)
}

// connectionPragmas are applied to every database the store runs on.
var connectionPragmas = []string{
	"journal_mode=WAL",
	"foreign_keys=ON",
	"busy_timeout=5000",
}

// Configure pins db to a single connection and applies the connection
// pragmas. The store and the River queue share that connection; an
// in-memory database is private to the connection that created it.
func Configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	for _, pragma := range connectionPragmas {
		if _, err := db.Exec("PRAGMA " + pragma); err != nil {
			return fmt.Errorf("setting pragma %s: %w", pragma, err)
		}
	}
	return nil
}

// NewStore runs migrations on a database already passed through Configure.
func NewStore(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB { return s.db }

type txKey struct{}

// Begin starts a transaction and returns a context carrying it. Repositories
// given that context read and write through the transaction.
func (s *Store) Begin(ctx context.Context) (context.Context, uow.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ctx, nil, err
	}
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

// TxFrom returns the transaction bound to ctx by Begin.
func TxFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return s.db
}
