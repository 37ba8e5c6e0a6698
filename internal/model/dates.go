package model

import (
	"strings"
	"time"
)

const (
	DateLong  = "02 January 2006"
	DateShort = "02 Jan 2006"
)

var backendDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a backend date with layout. Input that does not parse is
// returned unchanged.
func FormatDate(raw, layout string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	for _, l := range backendDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(layout)
		}
	}
	return raw
}
