package ingest

import (
	"strings"
	"time"
)

// Day-first layouts, tried in order. The source files are European exports,
// so "03/04/2025" is the 3rd of April; plain ISO is accepted as a fallback.
var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
}

// ParseDate parses a day-first date string. Returns nil when no layout
// matches; an unparsable date is data to exclude, not an error.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
