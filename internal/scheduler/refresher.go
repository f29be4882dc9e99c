package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type CatalogBuilder interface {
	Build(ctx context.Context) (*domain.Catalog, error)
}

type CatalogPublisher interface {
	PublishCatalog(ctx context.Context, catalog *domain.Catalog) error
}

type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context, locale string) error
}

// Refresher periodically rebuilds and publishes the catalog of one locale.
type Refresher struct {
	builder     CatalogBuilder
	publisher   CatalogPublisher
	invalidator CatalogInvalidator
	runs        *service.RunService
	locale      string
	log         zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewRefresher(
	builder CatalogBuilder,
	publisher CatalogPublisher,
	invalidator CatalogInvalidator,
	runs *service.RunService,
	locale string,
	log zerolog.Logger,
) *Refresher {
	if runs == nil {
		runs = service.NewRunService(nil)
	}
	return &Refresher{
		builder:     builder,
		publisher:   publisher,
		invalidator: invalidator,
		runs:        runs,
		locale:      locale,
		log:         log.With().Str("component", "scheduler").Logger(),
	}
}

// RunOnce builds the catalog, publishes it and drops the cached copy.
func (r *Refresher) RunOnce(ctx context.Context) error {
	run := r.runs.StartRun(ctx, domain.RunKindIndex, false)

	catalog, err := r.builder.Build(ctx)
	if err == nil {
		err = r.publisher.PublishCatalog(ctx, catalog)
	}
	r.runs.FinishIndexRun(ctx, run, catalog, err)
	if err != nil {
		return err
	}

	if r.invalidator != nil {
		if err := r.invalidator.InvalidateCatalog(ctx, r.locale); err != nil {
			r.log.Warn().Err(err).Str("locale", r.locale).Msg("could not invalidate catalog cache")
		}
	}

	r.log.Info().Int("total", catalog.TotalCount).Str("locale", r.locale).Msg("catalog refreshed")
	return nil
}

// Start schedules RunOnce on a standard five-field cron expression. A run
// still in progress when the next tick fires causes that tick to be skipped.
func (r *Refresher) Start(ctx context.Context, expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid index cron %q: %w", expr, err)
	}

	logger := cronLogger{log: r.log}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	if _, err := c.AddFunc(expr, func() {
		if err := r.RunOnce(ctx); err != nil {
			r.log.Error().Err(err).Msg("scheduled catalog refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule catalog refresh: %w", err)
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	c.Start()
	r.log.Info().Str("cron", expr).Msg("catalog refresh scheduled")
	return nil
}

// Stop stops the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
