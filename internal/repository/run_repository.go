package repository

import (
	"context"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/google/uuid"
)

// RunRepository persists the ledger of index and restore runs.
type RunRepository interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	FinishRun(ctx context.Context, run *domain.Run) error
	SaveRunItems(ctx context.Context, runID uuid.UUID, items []domain.RunItem) error
	// ListRuns returns the most recent runs first; an empty kind matches all.
	ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.Run, error)
	ListRunItems(ctx context.Context, runID uuid.UUID) ([]domain.RunItem, error)
}

type noopRunRepository struct{}

// NewNoopRunRepository returns a ledger that records nothing.
func NewNoopRunRepository() RunRepository {
	return noopRunRepository{}
}

func (noopRunRepository) CreateRun(ctx context.Context, run *domain.Run) error { return nil }
func (noopRunRepository) FinishRun(ctx context.Context, run *domain.Run) error { return nil }
func (noopRunRepository) SaveRunItems(ctx context.Context, runID uuid.UUID, items []domain.RunItem) error {
	return nil
}
func (noopRunRepository) ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.Run, error) {
	return nil, nil
}
func (noopRunRepository) ListRunItems(ctx context.Context, runID uuid.UUID) ([]domain.RunItem, error) {
	return nil, nil
}
