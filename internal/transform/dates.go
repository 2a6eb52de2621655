package transform

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/spotlake/internal/models"
)

// ReleaseDate normalizes an album release date.
//
// A bare four character year becomes January 1 of that year. Anything that is not then a yyyy-MM-dd date yields nil.
func ReleaseDate(raw string) *models.Date {
	if utf8.RuneCountInString(raw) == 4 {
		raw += "-01-01"
	}
	return parseDate(raw, time.DateOnly)
}

func releaseDate(raw *string) *models.Date {
	if raw == nil {
		return nil
	}
	return ReleaseDate(*raw)
}

// AddedDate truncates an added_at timestamp to its calendar date.
//
// Accepted forms are yyyy, yyyy-MM and yyyy-MM-dd, the last optionally followed by a time after a "T" or a
// space. A year or month alone resolves to the first day of the period. No time zone conversion is applied.
func AddedDate(raw string) *models.Date {
	if i := strings.IndexAny(raw, "T "); i >= 0 {
		if i != len(time.DateOnly) {
			return nil
		}
		raw = raw[:i]
	}

	switch len(raw) {
	case len("2006"):
		return parseDate(raw, "2006")
	case len("2006-01"):
		return parseDate(raw, "2006-01")
	default:
		return parseDate(raw, time.DateOnly)
	}
}

func parseDate(s, layout string) *models.Date {
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	d := models.NewDate(t)
	return &d
}
