// Package database centralises sqlx connection helpers for the SQL content
// store.  Two drivers are registered:
//
//   - "mysql"  – go-sql-driver/mysql, also MariaDB and anything speaking
//     the MySQL wire protocol.  Production.
//   - "sqlite" – modernc.org/sqlite, pure Go.  Local preview and tests.
//
// Public entry points:
//
//	Open(driver, dsn)                          – conservative pool sizes.
//	OpenWithOptions(ctx, driver, dsn, opts)    – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Options tunes one pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retries         int
	RetryBackoff    time.Duration
}

// DefaultOptions returns 15 max open, 5 idle, and a 30-minute lifetime.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    15,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         2,
		RetryBackoff:    500 * time.Millisecond,
	}
}

// Open returns a *sqlx.DB with DefaultOptions.
func Open(driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(context.Background(), driver, dsn, DefaultOptions())
}

// OpenWithOptions opens and pings the pool, retrying the ping opts.Retries
// times.  SQLite is limited to one open connection; the driver serialises
// writers anyway and “database is locked” errors disappear.
func OpenWithOptions(ctx context.Context, driver, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		opts.MaxOpenConns, opts.MaxIdleConns = 1, 1
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	for attempt := 0; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= opts.Retries {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryBackoff):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("ping %s: %w", driver, err)
}

// Migrate executes each statement in order.  Statements must be idempotent
// (CREATE TABLE IF NOT EXISTS …).
func Migrate(ctx context.Context, db *sqlx.DB, stmts []string) error {
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
