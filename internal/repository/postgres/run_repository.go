package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *runRepository {
	return &runRepository{db: db}
}

func (r *runRepository) CreateRun(ctx context.Context, run *domain.Run) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO summary_runs (
				id, kind, status, total, restored, skipped, failed,
				dry_run, error_message, started_at, completed_at
			) VALUES (
				:id, :kind, :status, :total, :restored, :skipped, :failed,
				:dry_run, :error_message, :started_at, :completed_at
			)
		`
		if _, err := tx.NamedExecContext(ctx, query, run); err != nil {
			return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
		}
		return nil
	})
}

func (r *runRepository) FinishRun(ctx context.Context, run *domain.Run) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE summary_runs SET
				status = :status,
				total = :total,
				restored = :restored,
				skipped = :skipped,
				failed = :failed,
				error_message = :error_message,
				completed_at = :completed_at
			WHERE id = :id
		`
		res, err := tx.NamedExecContext(ctx, query, run)
		if err != nil {
			return fmt.Errorf("failed to update run %s: %w", run.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("run %s not found", run.ID)
		}
		return nil
	})
}

func (r *runRepository) SaveRunItems(ctx context.Context, runID uuid.UUID, items []domain.RunItem) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO summary_run_items (
				run_id, position, object_key, outcome, reason, version_id, error
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (run_id, position) DO NOTHING
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			if _, err := stmt.ExecContext(
				ctx,
				runID,
				item.Position,
				item.ObjectKey,
				item.Outcome,
				item.Reason,
				item.VersionID,
				item.Error,
			); err != nil {
				return fmt.Errorf("failed to insert item %d of run %s: %w", item.Position, runID, err)
			}
		}
		return nil
	})
}

func (r *runRepository) ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, kind, status, total, restored, skipped, failed,
			dry_run, error_message, started_at, completed_at
		FROM summary_runs
		WHERE ($1::text = '' OR kind = $1::text)
		ORDER BY started_at DESC
		LIMIT $2
	`

	var runs []domain.Run
	if err := r.db.SelectContext(ctx, &runs, query, string(kind), limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (r *runRepository) ListRunItems(ctx context.Context, runID uuid.UUID) ([]domain.RunItem, error) {
	query := `
		SELECT run_id, position, object_key, outcome, reason, version_id, error
		FROM summary_run_items
		WHERE run_id = $1
		ORDER BY position
	`

	var items []domain.RunItem
	if err := r.db.SelectContext(ctx, &items, query, runID); err != nil {
		return nil, fmt.Errorf("failed to list items of run %s: %w", runID, err)
	}
	return items, nil
}
