package models

import (
	"time"

	"github.com/araddon/dateparse"
)

// ParseProviderTime leniently parses a provider-issued date string.
// Providers emit wildly inconsistent formats; a zero time is returned when
// nothing parseable is found.
func ParseProviderTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
