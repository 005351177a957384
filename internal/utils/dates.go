package utils // helpers for calendar-day handling shared by repositories and services

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the wire and storage format for booking dates.  All
// dates are calendar days at UTC midnight; anything finer-grained is
// rejected at the boundary.
const DateLayout = "2006-01-02"

var (
	ErrNoDates        = errors.New("no dates provided")
	ErrDuplicateDates = errors.New("duplicate dates provided")
)

// ParseDates converts a list of YYYY-MM-DD strings into sorted UTC
// midnight timestamps.  Empty input and duplicates are rejected so a
// malformed request can never inflate a booking's total.
func ParseDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, ErrNoDates
	}
	out := make([]time.Time, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		t, err := time.ParseInLocation(DateLayout, s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
		}
		key := t.Format(DateLayout)
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateDates
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// FormatDates renders dates back to YYYY-MM-DD strings, preserving order.
func FormatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	return out
}

// DateBounds returns the earliest and latest entry of a non-empty,
// sorted date slice.
func DateBounds(dates []time.Time) (start, end time.Time) {
	return dates[0], dates[len(dates)-1]
}

// MissingDates returns the entries of want that are absent from have,
// in want's order.  Used to report exactly which requested days could
// not be booked.
func MissingDates(want, have []time.Time) []time.Time {
	got := make(map[string]struct{}, len(have))
	for _, d := range have {
		got[d.Format(DateLayout)] = struct{}{}
	}
	var missing []time.Time
	for _, d := range want {
		if _, ok := got[d.Format(DateLayout)]; !ok {
			missing = append(missing, d)
		}
	}
	return missing
}
