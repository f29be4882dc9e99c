package indexer

import (
	"encoding/json"
	"fmt"

	"github.com/andresuchdata/stream-summaries/internal/domain"
)

// FieldOptions names the summary document fields read for each display value.
// Candidates are tried in order; the placeholder is used when none is set.
type FieldOptions struct {
	TitleFields         []string
	DurationFields      []string
	ThumbnailField      string
	TitlePlaceholder    string
	DurationPlaceholder string
}

// DefaultFieldOptions matches the field names the summary generator writes.
func DefaultFieldOptions() FieldOptions {
	return FieldOptions{
		TitleFields:         []string{"titulo_stream", "titulo"},
		DurationFields:      []string{"duracion", "duracion_minutos"},
		ThumbnailField:      "thumbnail_url",
		TitlePlaceholder:    domain.PlaceholderTitle,
		DurationPlaceholder: domain.PlaceholderDuration,
	}
}

// Metadata holds the display values extracted from one summary document.
type Metadata struct {
	Title        string
	Duration     interface{}
	ThumbnailURL string
}

// PlaceholderMetadata is used when a summary document cannot be read at all.
func (o FieldOptions) PlaceholderMetadata() Metadata {
	return Metadata{
		Title:    o.TitlePlaceholder,
		Duration: o.DurationPlaceholder,
	}
}

// ParseMetadata decodes a summary document body and extracts its display values.
func ParseMetadata(body []byte, opts FieldOptions) (Metadata, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return Metadata{}, fmt.Errorf("decode summary: %w", err)
	}
	if doc == nil {
		return Metadata{}, fmt.Errorf("decode summary: document is not an object")
	}
	return ExtractMetadata(doc, opts), nil
}

// ExtractMetadata reads title, duration and thumbnail from a decoded document.
func ExtractMetadata(doc map[string]interface{}, opts FieldOptions) Metadata {
	title := firstNonEmpty(append(lookup(doc, opts.TitleFields), opts.TitlePlaceholder)...)
	duration := firstNonEmpty(append(lookup(doc, opts.DurationFields), opts.DurationPlaceholder)...)

	thumbnail, _ := doc[opts.ThumbnailField].(string)

	return Metadata{
		Title:        displayString(title),
		Duration:     duration,
		ThumbnailURL: thumbnail,
	}
}

func lookup(doc map[string]interface{}, fields []string) []interface{} {
	values := make([]interface{}, 0, len(fields)+1)
	for _, field := range fields {
		values = append(values, doc[field])
	}
	return values
}

// firstNonEmpty returns the first candidate that is not empty, or nil.
func firstNonEmpty(candidates ...interface{}) interface{} {
	for _, c := range candidates {
		if !isEmpty(c) {
			return c
		}
	}
	return nil
}

// isEmpty treats missing, null, "", zero, false and empty collections as
// unset. A whitespace-only string is a value.
func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case bool:
		return !val
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

func displayString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}
