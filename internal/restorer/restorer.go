package restorer

import (
	"context"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/storage"
	"github.com/rs/zerolog"
)

// Options selects the keys entries map to and whether copies are issued.
type Options struct {
	Prefix string
	Locale string
	DryRun bool
}

// Restorer promotes historical object versions back to current for every
// entry of a prior catalog.
type Restorer struct {
	store storage.VersionManager
	opts  Options
	log   zerolog.Logger
}

func New(store storage.VersionManager, opts Options, log zerolog.Logger) *Restorer {
	if opts.Prefix == "" {
		opts.Prefix = domain.DefaultPrefix
	}
	if opts.Locale == "" {
		opts.Locale = domain.DefaultLocale
	}
	return &Restorer{
		store: store,
		opts:  opts,
		log:   log.With().Str("component", "restorer").Logger(),
	}
}

// Run processes the catalog entries in order, one at a time. A cancelled
// context stops the run between entries and returns the partial report
// together with the context error.
func (r *Restorer) Run(ctx context.Context, catalog *domain.Catalog) (*Report, error) {
	report := &Report{DryRun: r.opts.DryRun}
	if catalog == nil {
		return report, nil
	}

	total := len(catalog.Entries)
	r.log.Info().Int("total", total).Bool("dry_run", r.opts.DryRun).Msg("starting restore")

	for i, entry := range catalog.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		item := r.restoreEntry(ctx, entry)
		item.Position = i + 1
		report.add(item)
		r.trace(item, total)
	}

	r.log.Info().
		Int("restored", report.Restored).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("total", report.Total()).
		Msg("restore finished")

	return report, nil
}

func (r *Restorer) restoreEntry(ctx context.Context, entry domain.Entry) ItemResult {
	item := ItemResult{
		VideoID:    entry.VideoID,
		Streamer:   entry.Streamer,
		StreamDate: entry.StreamDate,
	}
	if !entry.HasIdentity() {
		item.Outcome = OutcomeSkipped
		item.Reason = ReasonMissingMetadata
		return item
	}

	item.Key = entry.Key(r.opts.Prefix, r.opts.Locale).String()

	history, err := r.store.ListObjectVersions(ctx, item.Key)
	if err != nil {
		r.log.Warn().Err(err).Str("key", item.Key).Msg("could not list versions")
		item.Outcome = OutcomeSkipped
		item.Reason = ReasonNoVersions
		item.Err = err
		return item
	}

	decision := Decide(history)
	item.VersionID = decision.VersionID
	item.Reason = decision.Reason
	item.HasDeleteMarker = decision.HasDeleteMarker
	item.VersionDate = decision.VersionDate

	switch decision.Action {
	case ActionSkip:
		item.Outcome = OutcomeSkipped
	case ActionKeep:
		item.Outcome = OutcomeRestored
	case ActionPromote:
		if r.opts.DryRun {
			item.Outcome = OutcomeRestored
			item.Reason = ReasonWouldPromote
			return item
		}
		if err := r.store.CopyObjectVersion(ctx, item.Key, decision.VersionID); err != nil {
			item.Outcome = OutcomeFailed
			item.Reason = ReasonCopyFailed
			item.Err = err
			return item
		}
		item.Outcome = OutcomeRestored
	}
	return item
}

func (r *Restorer) trace(item ItemResult, total int) {
	event := r.log.Info()
	switch item.Outcome {
	case OutcomeFailed:
		event = r.log.Error().Err(item.Err)
	case OutcomeSkipped:
		event = r.log.Warn()
	}
	event = event.
		Int("index", item.Position).
		Int("total", total).
		Str("video_id", item.VideoID).
		Str("key", item.Key).
		Str("outcome", string(item.Outcome)).
		Str("reason", item.Reason).
		Str("version_id", item.VersionID).
		Bool("has_delete_marker", item.HasDeleteMarker)
	if !item.VersionDate.IsZero() {
		event = event.Time("version_date", item.VersionDate)
	}
	event.Msg("entry processed")
}
