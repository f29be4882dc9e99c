package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ParseLocale validates a summaries locale (the "es" in "index_es.json") as a
// BCP 47 tag. The locale is spelled into object keys, so it is returned as
// given, trimmed, and never canonicalized.
func ParseLocale(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("locale must be provided")
	}
	if strings.ContainsAny(raw, "/.") {
		return "", fmt.Errorf("invalid locale %q", raw)
	}
	if _, err := language.Parse(raw); err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", raw, err)
	}
	return raw, nil
}
