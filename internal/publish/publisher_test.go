package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Entry{
		{VideoID: "abc", Streamer: "foo", Title: "Hola", StreamDate: "2024-01-01", Duration: "1h"},
	}, time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC))
}

func TestPublish_UploadsFileToIndexKey(t *testing.T) {
	store := testutil.NewMemoryStore()
	p := New(store, "stream-summaries", "es", zerolog.Nop())
	assert.Equal(t, "stream-summaries/index_es.json", p.Key())

	data, err := domain.MarshalCatalog(sampleCatalog())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "index_es_new.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, p.Publish(context.Background(), path))

	require.Len(t, store.Puts, 1)
	assert.Equal(t, "stream-summaries/index_es.json", store.Puts[0].Key)
	assert.Equal(t, "application/json", store.Puts[0].ContentType)
	assert.Equal(t, data, store.Puts[0].Data)
}

func TestPublish_RejectsInvalidFile(t *testing.T) {
	store := testutil.NewMemoryStore()
	p := New(store, "stream-summaries", "es", zerolog.Nop())

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries": [`), 0o644))

	assert.Error(t, p.Publish(context.Background(), path))
	assert.Error(t, p.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.json")))
	assert.Empty(t, store.Puts)
}

func TestPublishCatalog(t *testing.T) {
	store := testutil.NewMemoryStore()
	p := New(store, "stream-summaries", "en", zerolog.Nop())

	require.NoError(t, p.PublishCatalog(context.Background(), sampleCatalog()))

	body, ok := store.Body("stream-summaries/index_en.json")
	require.True(t, ok)
	decoded, err := domain.DecodeCatalog(body)
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog(), decoded)
}

func TestPublish_PutFailure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.PutErr = errors.New("access denied")
	p := New(store, "stream-summaries", "es", zerolog.Nop())

	err := p.PublishCatalog(context.Background(), sampleCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream-summaries/index_es.json")
	assert.Contains(t, err.Error(), "access denied")
}
