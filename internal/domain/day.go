package domain

import "time"

// DayLayout is the wire and storage format of a calendar date.
const DayLayout = "2006-01-02"

// DayOf strips the time of day from t, keeping its calendar date in t's
// location, and returns that date at UTC midnight. Two instants on the same
// calendar date always map to equal values.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, Invalidf("date %q must be formatted as YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDay renders a calendar date as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return DayOf(t).Format(DayLayout)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// DaySpan returns the number of calendar dates in [start, end], both inclusive.
// It returns 0 when end is before start.
func DaySpan(start, end time.Time) int {
	s, e := DayOf(start), DayOf(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// ParseWindowBound parses an RFC 3339 timestamp or a bare YYYY-MM-DD date.
// A bare date used as an end bound covers the whole day.
func ParseWindowBound(s string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := ParseDay(s)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		return d.Add(24*time.Hour - time.Nanosecond), nil
	}
	return d, nil
}
