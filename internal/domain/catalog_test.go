package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_SortsAndCounts(t *testing.T) {
	entries := []Entry{
		{VideoID: "a", StreamDate: "2024-01-01"},
		{VideoID: "b", StreamDate: "2024-03-01"},
		{VideoID: "c", StreamDate: "2024-01-01"},
		{VideoID: "d", StreamDate: "2023-12-31"},
	}

	catalog := NewCatalog(entries, time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, "2025-11-04", catalog.LastUpdated)
	assert.Equal(t, len(catalog.Entries), catalog.TotalCount)

	var ids []string
	for i, e := range catalog.Entries {
		ids = append(ids, e.VideoID)
		if i > 0 {
			assert.GreaterOrEqual(t, catalog.Entries[i-1].StreamDate, e.StreamDate)
		}
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)

	// input slice is left untouched
	assert.Equal(t, "a", entries[0].VideoID)
}

func TestNewCatalog_Empty(t *testing.T) {
	catalog := NewCatalog(nil, time.Now())
	assert.Equal(t, 0, catalog.TotalCount)
	assert.NotNil(t, catalog.Entries)

	_, ok := catalog.Latest()
	assert.False(t, ok)
}

func TestCatalog_LatestAndFind(t *testing.T) {
	catalog := &Catalog{Entries: []Entry{
		{VideoID: "old", StreamDate: "2024-01-01"},
		{VideoID: "new", StreamDate: "2024-06-01"},
		{VideoID: "also-new", StreamDate: "2024-06-01"},
	}}

	latest, ok := catalog.Latest()
	require.True(t, ok)
	assert.Equal(t, "new", latest.VideoID)

	found, ok := catalog.Find("old")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", found.StreamDate)

	_, ok = catalog.Find("missing")
	assert.False(t, ok)
}

func TestEntry_HasIdentity(t *testing.T) {
	assert.True(t, Entry{VideoID: "abc", Streamer: "foo", StreamDate: "2024-01-01"}.HasIdentity())
	assert.False(t, Entry{VideoID: "abc", Streamer: "foo"}.HasIdentity())
	assert.False(t, Entry{VideoID: " ", Streamer: "foo", StreamDate: "2024-01-01"}.HasIdentity())
	assert.False(t, Entry{Streamer: "foo", StreamDate: "2024-01-01"}.HasIdentity())
}

func TestMarshalCatalog_LiteralUnicode(t *testing.T) {
	catalog := NewCatalog([]Entry{{
		VideoID:    "abc",
		Streamer:   "foo",
		Title:      "Sin título & <más>",
		StreamDate: "2024-01-01",
		Duration:   "N/A",
	}}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	data, err := MarshalCatalog(catalog)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"title": "Sin título & <más>"`)
	assert.NotContains(t, out, `\u00ed`)
	assert.NotContains(t, out, `\u003c`)
	assert.True(t, strings.HasPrefix(out, "{\n  \"last_updated\": \"2024-01-02\",\n  \"total_count\": 1,"))
}

func TestDecodeCatalog_CurrentSchema(t *testing.T) {
	data := []byte(`{
  "last_updated": "2025-11-01",
  "total_count": 99,
  "entries": [
    {"video_id": "abc", "streamer": "foo", "title": "Hola", "stream_date": "2024-01-01", "duration": 95, "thumbnail_url": "https://img/abc.jpg"}
  ]
}`)

	catalog, err := DecodeCatalog(data)
	require.NoError(t, err)

	assert.Equal(t, "2025-11-01", catalog.LastUpdated)
	assert.Equal(t, 1, catalog.TotalCount)
	require.Len(t, catalog.Entries, 1)
	assert.Equal(t, Entry{
		VideoID: "abc", Streamer: "foo", Title: "Hola", StreamDate: "2024-01-01",
		Duration: float64(95), ThumbnailURL: "https://img/abc.jpg",
	}, catalog.Entries[0])
}

func TestDecodeCatalog_LegacySchema(t *testing.T) {
	data := []byte(`{
  "ultima_actualizacion": "2025-10-20",
  "total_streams": 2,
  "streams": [
    {"video_id": "abc", "streamer": "foo", "titulo": "Stream uno", "fecha_stream": "2024-01-01", "duracion": "2h", "thumbnail_url": ""},
    {"video_id": "def", "streamer": "bar", "fecha_stream": "2024-02-01"}
  ]
}`)

	catalog, err := DecodeCatalog(data)
	require.NoError(t, err)

	assert.Equal(t, "2025-10-20", catalog.LastUpdated)
	assert.Equal(t, 2, catalog.TotalCount)
	assert.Equal(t, "Stream uno", catalog.Entries[0].Title)
	assert.Equal(t, "2024-01-01", catalog.Entries[0].StreamDate)
	assert.Equal(t, "2h", catalog.Entries[0].Duration)
	assert.Equal(t, "def", catalog.Entries[1].VideoID)
	assert.Nil(t, catalog.Entries[1].Duration)
}

func TestDecodeCatalog_Invalid(t *testing.T) {
	_, err := DecodeCatalog([]byte(`{"entries": [`))
	assert.Error(t, err)
}

func TestDecodeCatalog_RoundTrip(t *testing.T) {
	original := NewCatalog([]Entry{
		{VideoID: "abc", Streamer: "foo", Title: "Sin título", StreamDate: "2024-01-01", Duration: "N/A"},
	}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	data, err := MarshalCatalog(original)
	require.NoError(t, err)

	decoded, err := DecodeCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
