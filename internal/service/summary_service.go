package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andresuchdata/stream-summaries/internal/cache"
	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/storage"
	"github.com/rs/zerolog/log"
)

var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrSummaryNotFound = errors.New("summary not found")
)

// SummaryAccess is a catalog entry resolved for a reader. Document is only
// loaded for the latest entry; older summaries are paid content.
type SummaryAccess struct {
	Entry    domain.Entry
	IsLatest bool
	Document json.RawMessage
}

// SummaryService reads published catalogs and summary documents.
type SummaryService struct {
	store  storage.ObjectReader
	cache  cache.CatalogCache
	prefix string
}

func NewSummaryService(store storage.ObjectReader, cacheImpl cache.CatalogCache, prefix string) *SummaryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCatalogCache()
	}
	if prefix == "" {
		prefix = domain.DefaultPrefix
	}
	return &SummaryService{store: store, cache: cacheImpl, prefix: prefix}
}

// GetCatalog returns the published catalog for locale, served from cache
// when possible.
func (s *SummaryService) GetCatalog(ctx context.Context, locale string) (*domain.Catalog, error) {
	if catalog, ok, err := s.cache.GetCatalog(ctx, locale); err == nil && ok {
		return catalog, nil
	} else if err != nil {
		log.Warn().Err(err).Str("locale", locale).Msg("summaries: cache get catalog failed")
	}

	key := domain.IndexKey(s.prefix, locale)
	data, err := s.store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, key)
		}
		return nil, err
	}

	catalog, err := domain.DecodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("published catalog %s is invalid: %w", key, err)
	}

	if err := s.cache.SetCatalog(ctx, locale, catalog); err != nil {
		log.Warn().Err(err).Str("locale", locale).Msg("summaries: cache set catalog failed")
	}

	return catalog, nil
}

// GetLatest resolves the newest summary, which is always readable.
func (s *SummaryService) GetLatest(ctx context.Context, locale string) (*SummaryAccess, error) {
	catalog, err := s.GetCatalog(ctx, locale)
	if err != nil {
		return nil, err
	}

	latest, ok := catalog.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: catalog is empty", ErrSummaryNotFound)
	}

	doc, err := s.loadDocument(ctx, latest, locale)
	if err != nil {
		return nil, err
	}
	return &SummaryAccess{Entry: latest, IsLatest: true, Document: doc}, nil
}

// GetSummary resolves videoID against the catalog.
func (s *SummaryService) GetSummary(ctx context.Context, locale, videoID string) (*SummaryAccess, error) {
	catalog, err := s.GetCatalog(ctx, locale)
	if err != nil {
		return nil, err
	}

	entry, ok := catalog.Find(videoID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSummaryNotFound, videoID)
	}

	latest, _ := catalog.Latest()
	if latest.VideoID != entry.VideoID {
		return &SummaryAccess{Entry: entry}, nil
	}

	doc, err := s.loadDocument(ctx, entry, locale)
	if err != nil {
		return nil, err
	}
	return &SummaryAccess{Entry: entry, IsLatest: true, Document: doc}, nil
}

// InvalidateCatalog drops the cached catalog of locale.
func (s *SummaryService) InvalidateCatalog(ctx context.Context, locale string) error {
	return s.cache.Invalidate(ctx, locale)
}

func (s *SummaryService) loadDocument(ctx context.Context, entry domain.Entry, locale string) (json.RawMessage, error) {
	key := entry.Key(s.prefix, locale).String()
	data, err := s.store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSummaryNotFound, key)
		}
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("summary %s is not valid json", key)
	}
	return json.RawMessage(data), nil
}
