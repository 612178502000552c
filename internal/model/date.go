package model

import (
	"errors"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1-2-06",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ErrInvalidDate is returned by ParseDate for unrecognised input
var ErrInvalidDate = errors.New("unrecognised date")

// ParseDate accepts the date formats found in roster forms and
// spreadsheets and returns midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
