package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of stream_date and last_updated.
	DateLayout = "2006-01-02"

	PlaceholderTitle    = "Sin título"
	PlaceholderDuration = "N/A"
)

// Entry is one catalog record describing a single stream summary.
type Entry struct {
	VideoID    string `json:"video_id"`
	Streamer   string `json:"streamer"`
	Title      string `json:"title"`
	StreamDate string `json:"stream_date"`
	// Duration is whatever the summary document carried: a string or a number.
	Duration     interface{} `json:"duration"`
	ThumbnailURL string      `json:"thumbnail_url"`
}

// HasIdentity reports whether the entry carries every field its storage key needs.
func (e Entry) HasIdentity() bool {
	return strings.TrimSpace(e.VideoID) != "" &&
		strings.TrimSpace(e.Streamer) != "" &&
		strings.TrimSpace(e.StreamDate) != ""
}

// Key derives the storage key of the summary this entry describes.
func (e Entry) Key(prefix, locale string) SummaryKey {
	return SummaryKey{
		Prefix:     prefix,
		Streamer:   e.Streamer,
		StreamDate: e.StreamDate,
		VideoID:    e.VideoID,
		Locale:     locale,
	}
}

// Catalog is the flat index of every known summary.
type Catalog struct {
	LastUpdated string  `json:"last_updated"`
	TotalCount  int     `json:"total_count"`
	Entries     []Entry `json:"entries"`
}

// NewCatalog sorts entries newest stream first and stamps the catalog with now.
func NewCatalog(entries []Entry, now time.Time) *Catalog {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)

	return &Catalog{
		LastUpdated: now.Format(DateLayout),
		TotalCount:  len(sorted),
		Entries:     sorted,
	}
}

// SortEntries orders entries by stream_date descending. Entries sharing a
// date keep their relative order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StreamDate > entries[j].StreamDate
	})
}

// Latest returns the entry with the greatest stream_date; the first one wins ties.
func (c *Catalog) Latest() (Entry, bool) {
	if c == nil || len(c.Entries) == 0 {
		return Entry{}, false
	}
	latest := c.Entries[0]
	for _, e := range c.Entries[1:] {
		if e.StreamDate > latest.StreamDate {
			latest = e
		}
	}
	return latest, true
}

// Find returns the first entry with the given video id.
func (c *Catalog) Find(videoID string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	for _, e := range c.Entries {
		if e.VideoID == videoID {
			return e, true
		}
	}
	return Entry{}, false
}

// MarshalCatalog renders the catalog as two-space indented JSON with
// non-ASCII and HTML characters written literally.
func MarshalCatalog(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

type entryDocument struct {
	VideoID          string      `json:"video_id"`
	Streamer         string      `json:"streamer"`
	Title            string      `json:"title"`
	LegacyTitle      string      `json:"titulo"`
	StreamDate       string      `json:"stream_date"`
	LegacyStreamDate string      `json:"fecha_stream"`
	Duration         interface{} `json:"duration"`
	LegacyDuration   interface{} `json:"duracion"`
	ThumbnailURL     string      `json:"thumbnail_url"`
}

type catalogDocument struct {
	LastUpdated       string          `json:"last_updated"`
	LegacyLastUpdated string          `json:"ultima_actualizacion"`
	Entries           []entryDocument `json:"entries"`
	LegacyEntries     []entryDocument `json:"streams"`
}

// DecodeCatalog parses a catalog in either the current schema or the legacy
// one (ultima_actualizacion / streams / titulo / fecha_stream / duracion).
// TotalCount is always recomputed from the decoded entries.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	raw := doc.Entries
	if raw == nil {
		raw = doc.LegacyEntries
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entry := Entry{
			VideoID:      e.VideoID,
			Streamer:     e.Streamer,
			Title:        e.Title,
			StreamDate:   e.StreamDate,
			Duration:     e.Duration,
			ThumbnailURL: e.ThumbnailURL,
		}
		if entry.Title == "" {
			entry.Title = e.LegacyTitle
		}
		if entry.StreamDate == "" {
			entry.StreamDate = e.LegacyStreamDate
		}
		if entry.Duration == nil {
			entry.Duration = e.LegacyDuration
		}
		entries = append(entries, entry)
	}

	lastUpdated := doc.LastUpdated
	if lastUpdated == "" {
		lastUpdated = doc.LegacyLastUpdated
	}

	return &Catalog{
		LastUpdated: lastUpdated,
		TotalCount:  len(entries),
		Entries:     entries,
	}, nil
}
