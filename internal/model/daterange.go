package model

import (
	"errors"
	"time"
)

// Date ranges are half-open: [Start, End). The checkout day is not
// occupied, so a stay ending on a given date and another starting on
// that same date never conflict.

// ErrEmptyRange is returned when start and end are equal or either is
// missing. Handlers should translate this into an HTTP 400 response.
var ErrEmptyRange = errors.New("empty date range")

// ErrReversedRange is returned when start is after end. The caller most
// likely swapped the two dates, so the message is kept distinct from
// ErrEmptyRange to let clients correct the input.
var ErrReversedRange = errors.New("reversed date range")

// ErrBadDate is returned when a date string cannot be parsed.
var ErrBadDate = errors.New("malformed date")

// dateLayout is the wire format for all reservation dates.
const dateLayout = "2006-01-02"

// DateRange is a half-open interval of calendar days in UTC.
type DateRange struct {
	Start time.Time // first occupied day
	End   time.Time // first free day (not occupied)
}

// NewDateRange validates start/end ordering and returns the range.
// Both times are truncated to midnight UTC.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	switch {
	case start.IsZero() || end.IsZero() || start.Equal(end):
		return DateRange{}, ErrEmptyRange
	case start.After(end):
		return DateRange{}, ErrReversedRange
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses two YYYY-MM-DD strings and validates them the
// same way NewDateRange does.
func ParseDateRange(start, end string) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, ErrEmptyRange
	}
	s, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return DateRange{}, ErrBadDate
	}
	e, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return DateRange{}, ErrBadDate
	}
	return NewDateRange(s, e)
}

// Overlaps reports whether two half-open ranges intersect. The test is
// strict on both sides: [a,b) and [c,d) overlap iff a < d && c < b, so
// a reservation ending exactly on the other's start does not block.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Nights returns the number of occupied days in the range.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start) / (24 * time.Hour))
}

// StartString and EndString render the bounds in the wire format.
func (r DateRange) StartString() string { return r.Start.Format(dateLayout) }

func (r DateRange) EndString() string { return r.End.Format(dateLayout) }

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
