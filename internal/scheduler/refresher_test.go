package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/indexer"
	"github.com/andresuchdata/stream-summaries/internal/publish"
	"github.com/andresuchdata/stream-summaries/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	locales []string
}

func (r *recordingInvalidator) InvalidateCatalog(ctx context.Context, locale string) error {
	r.locales = append(r.locales, locale)
	return nil
}

type failingBuilder struct{}

func (failingBuilder) Build(ctx context.Context) (*domain.Catalog, error) {
	return nil, indexer.ErrNoSummaries
}

func TestRunOnce_BuildsPublishesAndInvalidates(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/foo/2024-01-01/abc.es.json", "", []byte(`{"titulo": "Hola"}`))

	ix := indexer.New(store, indexer.Options{Prefix: "stream-summaries", Locale: "es"}, zerolog.Nop())
	pub := publish.New(store, "stream-summaries", "es", zerolog.Nop())
	inv := &recordingInvalidator{}

	r := NewRefresher(ix, pub, inv, nil, "es", zerolog.Nop())
	require.NoError(t, r.RunOnce(context.Background()))

	require.Len(t, store.Puts, 1)
	assert.Equal(t, "stream-summaries/index_es.json", store.Puts[0].Key)
	assert.Equal(t, []string{"es"}, inv.locales)

	body, ok := store.Body("stream-summaries/index_es.json")
	require.True(t, ok)
	catalog, err := domain.DecodeCatalog(body)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.TotalCount)
	assert.Equal(t, "Hola", catalog.Entries[0].Title)
}

func TestRunOnce_BuildFailureSkipsPublish(t *testing.T) {
	store := testutil.NewMemoryStore()
	inv := &recordingInvalidator{}
	r := NewRefresher(failingBuilder{}, publish.New(store, "stream-summaries", "es", zerolog.Nop()), inv, nil, "es", zerolog.Nop())

	err := r.RunOnce(context.Background())
	assert.True(t, errors.Is(err, indexer.ErrNoSummaries))
	assert.Empty(t, store.Puts)
	assert.Empty(t, inv.locales)
}

func TestRunOnce_PublishFailureSkipsInvalidate(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/foo/2024-01-01/abc.es.json", "", []byte(`{}`))
	store.PutErr = errors.New("read only")

	ix := indexer.New(store, indexer.Options{}, zerolog.Nop())
	inv := &recordingInvalidator{}
	r := NewRefresher(ix, publish.New(store, "stream-summaries", "es", zerolog.Nop()), inv, nil, "es", zerolog.Nop())

	assert.Error(t, r.RunOnce(context.Background()))
	assert.Empty(t, inv.locales)
}

func TestStart_RejectsInvalidExpression(t *testing.T) {
	r := NewRefresher(failingBuilder{}, nil, nil, nil, "es", zerolog.Nop())
	assert.Error(t, r.Start(context.Background(), "every minute"))
	r.Stop()
}

func TestStartStop(t *testing.T) {
	r := NewRefresher(failingBuilder{}, nil, nil, nil, "es", zerolog.Nop())
	require.NoError(t, r.Start(context.Background(), "0 3 * * *"))
	r.Stop()
	r.Stop()
}
