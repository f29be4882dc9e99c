package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultPrefix = "stream-summaries"
	DefaultLocale = "es"

	// indexMarker identifies catalog objects stored alongside the summaries.
	indexMarker = "index_"
)

var ErrInvalidKey = errors.New("invalid summary key")

// SummaryKey is the identity of one summary object:
// {Prefix}/{Streamer}/{StreamDate}/{VideoID}.{Locale}.json
type SummaryKey struct {
	Prefix     string
	Streamer   string
	StreamDate string
	VideoID    string
	Locale     string
}

func (k SummaryKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s%s", k.Prefix, k.Streamer, k.StreamDate, k.VideoID, LocaleSuffix(k.Locale))
}

// LocaleSuffix returns the filename suffix for a locale, e.g. ".es.json".
func LocaleSuffix(locale string) string {
	return "." + locale + ".json"
}

// IndexKey returns the well-known key of the published catalog for a locale.
func IndexKey(prefix, locale string) string {
	return fmt.Sprintf("%s/%s%s.json", prefix, indexMarker, locale)
}

// IsIndexKey reports whether key names a catalog object rather than a summary.
func IsIndexKey(key string) bool {
	return strings.Contains(key, indexMarker)
}

// ParseSummaryKey splits a listed object key into its identity fields.
// Index objects, keys for other locales and keys without exactly four
// segments are rejected with ErrInvalidKey.
func ParseSummaryKey(key, locale string) (SummaryKey, error) {
	suffix := LocaleSuffix(locale)
	if IsIndexKey(key) {
		return SummaryKey{}, fmt.Errorf("%w: %s is an index object", ErrInvalidKey, key)
	}
	if !strings.HasSuffix(key, suffix) {
		return SummaryKey{}, fmt.Errorf("%w: %s does not end in %s", ErrInvalidKey, key, suffix)
	}

	parts := strings.Split(key, "/")
	if len(parts) != 4 {
		return SummaryKey{}, fmt.Errorf("%w: %s has %d segments, want 4", ErrInvalidKey, key, len(parts))
	}

	return SummaryKey{
		Prefix:     parts[0],
		Streamer:   parts[1],
		StreamDate: parts[2],
		VideoID:    strings.TrimSuffix(parts[3], suffix),
		Locale:     locale,
	}, nil
}
