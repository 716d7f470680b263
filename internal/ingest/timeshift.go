package ingest

import (
	"fmt"
	"time"
)

// DateShiftDays is the fixed forward shift applied to every ingested instant
// so the static synthetic dataset reads as contemporary. Seven years,
// deliberately expressed as 7x365 days to match the dataset's existing
// projections exactly.
const DateShiftDays = 7 * 365

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeInstant parses an ISO-8601 date or datetime string, strips the
// timezone while keeping the local wall-clock fields, and applies the fixed
// date shift. The result is a timezone-naive instant represented in UTC.
func NormalizeInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// Rebuild in UTC from the wall-clock fields: the zone is dropped,
		// not converted. 3am local stays 3am.
		naive := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		return naive.AddDate(0, 0, DateShiftDays), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// NormalizeOptionalInstant is NormalizeInstant for fields the caller treats
// as optional: an absent value maps to nil instead of an error.
func NormalizeOptionalInstant(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := NormalizeInstant(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
