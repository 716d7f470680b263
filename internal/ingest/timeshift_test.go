package ingest

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeInstantShiftsBy2555Days(t *testing.T) {
	got, err := NormalizeInstant("2017-01-01T10:30:00Z")
	if err != nil {
		t.Fatalf("NormalizeInstant: %v", err)
	}
	want := time.Date(2017, 1, 1, 10, 30, 0, 0, time.UTC).AddDate(0, 0, 2555)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeInstantDropsZone(t *testing.T) {
	// The zone is stripped, not converted: wall-clock time is preserved.
	got, err := NormalizeInstant("2017-06-15T03:00:00+05:00")
	if err != nil {
		t.Fatalf("NormalizeInstant: %v", err)
	}
	want := time.Date(2017, 6, 15, 3, 0, 0, 0, time.UTC).AddDate(0, 0, DateShiftDays)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeInstantPlainDate(t *testing.T) {
	got, err := NormalizeInstant("1990-03-01")
	if err != nil {
		t.Fatalf("NormalizeInstant: %v", err)
	}
	want := time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, DateShiftDays)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeInstantMalformed(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "2017-13-45"} {
		if _, err := NormalizeInstant(s); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("NormalizeInstant(%q) error = %v, want ErrMalformedTimestamp", s, err)
		}
	}
}

func TestNormalizeOptionalInstant(t *testing.T) {
	if got, err := NormalizeOptionalInstant(nil); err != nil || got != nil {
		t.Errorf("nil input: got %v, %v", got, err)
	}
	s := "2017-01-01T00:00:00Z"
	got, err := NormalizeOptionalInstant(&s)
	if err != nil || got == nil {
		t.Fatalf("optional input: got %v, %v", got, err)
	}
	want := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, DateShiftDays)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", *got, want)
	}
}
