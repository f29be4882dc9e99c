package service

import (
	"context"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/repository"
	"github.com/andresuchdata/stream-summaries/internal/restorer"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunService records index and restore runs in the ledger. Ledger failures
// are logged and never surface to the caller, except when listing.
type RunService struct {
	repo repository.RunRepository
	now  func() time.Time
}

func NewRunService(repo repository.RunRepository) *RunService {
	if repo == nil {
		repo = repository.NewNoopRunRepository()
	}
	return &RunService{repo: repo, now: time.Now}
}

// StartRun registers a new running run of the given kind.
func (s *RunService) StartRun(ctx context.Context, kind domain.RunKind, dryRun bool) *domain.Run {
	run := &domain.Run{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    domain.RunStatusRunning,
		DryRun:    dryRun,
		StartedAt: s.now().UTC(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("ledger: create run failed")
	}
	return run
}

// FinishIndexRun closes an index run with the size of the built catalog.
func (s *RunService) FinishIndexRun(ctx context.Context, run *domain.Run, catalog *domain.Catalog, runErr error) {
	if catalog != nil {
		run.Total = catalog.TotalCount
	}
	s.finish(ctx, run, runErr)
}

// FinishRestoreRun stores every item outcome and closes the run with the tally.
func (s *RunService) FinishRestoreRun(ctx context.Context, run *domain.Run, report *restorer.Report, runErr error) {
	if report != nil {
		run.Total = report.Total()
		run.Restored = report.Restored
		run.Skipped = report.Skipped
		run.Failed = report.Failed

		items := make([]domain.RunItem, 0, len(report.Items))
		for _, item := range report.Items {
			ri := domain.RunItem{
				RunID:     run.ID,
				Position:  item.Position,
				ObjectKey: item.Key,
				Outcome:   string(item.Outcome),
				Reason:    item.Reason,
				VersionID: item.VersionID,
			}
			if item.Err != nil {
				ri.Error = item.Err.Error()
			}
			items = append(items, ri)
		}
		if err := s.repo.SaveRunItems(ctx, run.ID, items); err != nil {
			log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("ledger: save run items failed")
		}
	}

	if runErr == nil && report != nil && report.Failed > 0 {
		run.ErrorMessage = "one or more entries failed"
		run.Status = domain.RunStatusFailed
	}
	s.finish(ctx, run, runErr)
}

func (s *RunService) finish(ctx context.Context, run *domain.Run, runErr error) {
	completed := s.now().UTC()
	run.CompletedAt = &completed
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else if run.Status == domain.RunStatusRunning {
		run.Status = domain.RunStatusCompleted
	}

	if err := s.repo.FinishRun(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID.String()).Msg("ledger: finish run failed")
	}
}

func (s *RunService) ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx, kind, limit)
}

func (s *RunService) ListRunItems(ctx context.Context, runID uuid.UUID) ([]domain.RunItem, error) {
	return s.repo.ListRunItems(ctx, runID)
}
