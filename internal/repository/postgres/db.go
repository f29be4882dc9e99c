package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB creates a new database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database url is not configured")
	}

	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(4),
	}, nil
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS summary_runs (
	id            UUID PRIMARY KEY,
	kind          TEXT NOT NULL,
	status        TEXT NOT NULL,
	total         INTEGER NOT NULL DEFAULT 0,
	restored      INTEGER NOT NULL DEFAULT 0,
	skipped       INTEGER NOT NULL DEFAULT 0,
	failed        INTEGER NOT NULL DEFAULT 0,
	dry_run       BOOLEAN NOT NULL DEFAULT FALSE,
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_summary_runs_started_at ON summary_runs (started_at DESC);

CREATE TABLE IF NOT EXISTS summary_run_items (
	run_id     UUID NOT NULL REFERENCES summary_runs (id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	object_key TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	version_id TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);
`

// EnsureSchema creates the run ledger tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create ledger schema: %w", err)
		}
		return nil
	})
}
