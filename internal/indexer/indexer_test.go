package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndexer(store *testutil.MemoryStore) *Indexer {
	ix := New(store, Options{Prefix: "stream-summaries", Locale: "es"}, zerolog.Nop())
	ix.now = func() time.Time { return time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC) }
	return ix
}

func TestBuild_FiltersParsesAndSorts(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/foo/2024-01-01/abc.es.json", "", []byte(`{"titulo_stream": "Primero", "duracion": "1h", "thumbnail_url": "https://img/abc.jpg"}`))
	store.AddVersion("stream-summaries/bar/2024-03-15/def.es.json", "", []byte(`{"titulo": "Segundo", "duracion_minutos": 90}`))
	store.AddVersion("stream-summaries/foo/2023-12-31/ghi.es.json", "", []byte(`{}`))
	// ignored: index files, other locales, wrong segment counts
	store.AddVersion("stream-summaries/index_es.json", "", []byte(`{}`))
	store.AddVersion("stream-summaries/foo/2024-01-01/abc.en.json", "", []byte(`{}`))
	store.AddVersion("stream-summaries/foo/loose.es.json", "", []byte(`{}`))
	store.AddVersion("stream-summaries/foo/2024-01-01/extra/x.es.json", "", []byte(`{}`))
	store.AddVersion("other-prefix/foo/2024-01-01/zzz.es.json", "", []byte(`{}`))

	catalog, err := newTestIndexer(store).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-11-04", catalog.LastUpdated)
	assert.Equal(t, 3, catalog.TotalCount)
	require.Len(t, catalog.Entries, 3)

	assert.Equal(t, domain.Entry{
		VideoID: "def", Streamer: "bar", Title: "Segundo", StreamDate: "2024-03-15",
		Duration: float64(90), ThumbnailURL: "",
	}, catalog.Entries[0])
	assert.Equal(t, domain.Entry{
		VideoID: "abc", Streamer: "foo", Title: "Primero", StreamDate: "2024-01-01",
		Duration: "1h", ThumbnailURL: "https://img/abc.jpg",
	}, catalog.Entries[1])
	assert.Equal(t, domain.Entry{
		VideoID: "ghi", Streamer: "foo", Title: "Sin título", StreamDate: "2023-12-31",
		Duration: "N/A", ThumbnailURL: "",
	}, catalog.Entries[2])

	// one read per surviving summary, none for filtered objects
	assert.Len(t, store.Gets, 3)
}

func TestBuild_PerObjectFailuresDegrade(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/foo/2024-01-01/broken.es.json", "", []byte(`{not json`))
	store.AddVersion("stream-summaries/foo/2024-01-02/denied.es.json", "", []byte(`{"titulo": "x"}`))
	store.AddVersion("stream-summaries/foo/2024-01-03/ok.es.json", "", []byte(`{"titulo": "Bien"}`))
	store.GetErrors["stream-summaries/foo/2024-01-02/denied.es.json"] = errors.New("access denied")

	catalog, err := newTestIndexer(store).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Entries, 3)

	byID := map[string]domain.Entry{}
	for _, e := range catalog.Entries {
		byID[e.VideoID] = e
	}
	assert.Equal(t, "Bien", byID["ok"].Title)
	for _, id := range []string{"broken", "denied"} {
		assert.Equal(t, "Sin título", byID[id].Title, id)
		assert.Equal(t, "N/A", byID[id].Duration, id)
		assert.Equal(t, "", byID[id].ThumbnailURL, id)
	}
}

func TestBuild_NoSummaries(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/index_es.json", "", []byte(`{}`))

	_, err := newTestIndexer(store).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSummaries))
}

func TestBuild_ListFailure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.ListErr = errors.New("connection refused")

	_, err := newTestIndexer(store).Build(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoSummaries))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBuild_CancelledContext(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/foo/2024-01-01/abc.es.json", "", []byte(`{}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestIndexer(store).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_DeletedObjectsAreNotListed(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion("stream-summaries/foo/2024-01-01/abc.es.json", "", []byte(`{}`))
	store.AddDeleteMarker("stream-summaries/foo/2024-01-01/abc.es.json", "")
	store.AddVersion("stream-summaries/foo/2024-01-02/def.es.json", "", []byte(`{}`))

	summaries, err := newTestIndexer(store).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "def", summaries[0].Key.VideoID)
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "index_es_new.json")
	catalog := domain.NewCatalog([]domain.Entry{
		{VideoID: "abc", Streamer: "foo", Title: "Sin título", StreamDate: "2024-01-01", Duration: "N/A"},
	}, time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC))

	require.NoError(t, WriteFile(path, catalog))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, catalog, loaded)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
