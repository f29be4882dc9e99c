package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/storage"
	"github.com/rs/zerolog"
)

var ErrNoSummaries = errors.New("no summaries found")

// Options controls which objects the Indexer considers and how it reads them.
type Options struct {
	Prefix string
	Locale string
	Fields FieldOptions
}

// SummaryObject is a listed object whose key parsed as a summary key.
type SummaryObject struct {
	Key          domain.SummaryKey
	LastModified time.Time
}

// Indexer rebuilds the catalog from the summary objects under a prefix.
type Indexer struct {
	store storage.ObjectReader
	opts  Options
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a new Indexer.
func New(store storage.ObjectReader, opts Options, log zerolog.Logger) *Indexer {
	if opts.Prefix == "" {
		opts.Prefix = domain.DefaultPrefix
	}
	if opts.Locale == "" {
		opts.Locale = domain.DefaultLocale
	}
	if len(opts.Fields.TitleFields) == 0 && len(opts.Fields.DurationFields) == 0 {
		opts.Fields = DefaultFieldOptions()
	}
	return &Indexer{
		store: store,
		opts:  opts,
		log:   log.With().Str("component", "indexer").Logger(),
		now:   time.Now,
	}
}

// Scan lists every object under the prefix and keeps those that parse as
// summary keys, newest stream first.
func (ix *Indexer) Scan(ctx context.Context) ([]SummaryObject, error) {
	listPrefix := ix.opts.Prefix + "/"
	ix.log.Info().Str("prefix", listPrefix).Msg("scanning store for summary files")

	objects, err := ix.store.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
	}

	summaries := make([]SummaryObject, 0, len(objects))
	for _, obj := range objects {
		key, err := domain.ParseSummaryKey(obj.Key, ix.opts.Locale)
		if err != nil {
			ix.log.Debug().Str("key", obj.Key).Err(err).Msg("skipping object")
			continue
		}
		summaries = append(summaries, SummaryObject{Key: key, LastModified: obj.LastModified})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Key.StreamDate > summaries[j].Key.StreamDate
	})

	ix.log.Info().Int("count", len(summaries)).Msg("found summary files")
	return summaries, nil
}

// Build produces a fresh catalog covering every summary under the prefix.
// It fails with ErrNoSummaries when nothing survives filtering.
func (ix *Indexer) Build(ctx context.Context) (*domain.Catalog, error) {
	summaries, err := ix.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w under %s/", ErrNoSummaries, ix.opts.Prefix)
	}

	entries := make([]domain.Entry, 0, len(summaries))
	for i, summary := range summaries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ix.log.Info().
			Int("index", i+1).
			Int("total", len(summaries)).
			Str("video_id", summary.Key.VideoID).
			Msg("processing summary")

		meta := ix.fetchMetadata(ctx, summary.Key.String())
		entries = append(entries, domain.Entry{
			VideoID:      summary.Key.VideoID,
			Streamer:     summary.Key.Streamer,
			Title:        meta.Title,
			StreamDate:   summary.Key.StreamDate,
			Duration:     meta.Duration,
			ThumbnailURL: meta.ThumbnailURL,
		})
	}

	return domain.NewCatalog(entries, ix.now()), nil
}

// fetchMetadata never fails: an unreadable summary degrades to placeholders.
func (ix *Indexer) fetchMetadata(ctx context.Context, key string) Metadata {
	body, err := ix.store.GetObject(ctx, key)
	if err != nil {
		ix.log.Warn().Err(err).Str("key", key).Msg("could not fetch metadata")
		return ix.opts.Fields.PlaceholderMetadata()
	}

	meta, err := ParseMetadata(body, ix.opts.Fields)
	if err != nil {
		ix.log.Warn().Err(err).Str("key", key).Msg("could not parse metadata")
		return ix.opts.Fields.PlaceholderMetadata()
	}
	return meta
}

// WriteFile persists the catalog as pretty-printed JSON at path.
func WriteFile(path string, catalog *domain.Catalog) error {
	data, err := domain.MarshalCatalog(catalog)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed creating directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a catalog written by WriteFile, or a legacy catalog file.
func ReadFile(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed reading %s: %w", path, err)
	}
	catalog, err := domain.DecodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed parsing %s: %w", path, err)
	}
	return catalog, nil
}
