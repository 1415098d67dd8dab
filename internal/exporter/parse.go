package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the date formats observed across the provider feeds.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"20060102",
}

// ParseDate parses a CSV date cell, truncated to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// ParseFloat parses a numeric CSV cell. Empty cells report ok=false rather
// than an error: the feeds use blanks for missing values.
func ParseFloat(value string) (f float64, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	f, err = strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("unparseable number %q: %w", value, err)
	}
	return f, true, nil
}
