package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/storage"
	"github.com/rs/zerolog"
)

const ContentType = "application/json"

// Publisher uploads catalogs to the well-known index key of one locale.
type Publisher struct {
	store storage.ObjectWriter
	key   string
	log   zerolog.Logger
}

func New(store storage.ObjectWriter, prefix, locale string, log zerolog.Logger) *Publisher {
	return &Publisher{
		store: store,
		key:   domain.IndexKey(prefix, locale),
		log:   log.With().Str("component", "publisher").Logger(),
	}
}

// Key is the object key catalogs are published to.
func (p *Publisher) Key() string {
	return p.key
}

// Publish uploads the catalog file at path. The file must decode as a catalog
// so a truncated or foreign file is never published.
func (p *Publisher) Publish(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed reading %s: %w", path, err)
	}
	if _, err := domain.DecodeCatalog(data); err != nil {
		return fmt.Errorf("refusing to publish %s: %w", path, err)
	}
	return p.put(ctx, data)
}

// PublishCatalog encodes and uploads an in-memory catalog.
func (p *Publisher) PublishCatalog(ctx context.Context, catalog *domain.Catalog) error {
	data, err := domain.MarshalCatalog(catalog)
	if err != nil {
		return err
	}
	return p.put(ctx, data)
}

func (p *Publisher) put(ctx context.Context, data []byte) error {
	if err := p.store.PutObject(ctx, p.key, data, ContentType); err != nil {
		return fmt.Errorf("failed uploading catalog to %s: %w", p.key, err)
	}
	p.log.Info().Str("key", p.key).Int("bytes", len(data)).Msg("catalog published")
	return nil
}
