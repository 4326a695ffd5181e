package ledger

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted and emitted by the ledger.
const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar days in a location.
type DateRange struct {
	Start time.Time // first instant of the start day
	End   time.Time // last instant of the end day
}

// ParseDateRange parses YYYY-MM-DD start and end dates in loc.
// If loc is nil, UTC is used.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, inputError("Please select a start and end date", nil)
	}

	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, inputError(fmt.Sprintf("Invalid start date %q, expected YYYY-MM-DD", start), err)
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, inputError(fmt.Sprintf("Invalid end date %q, expected YYYY-MM-DD", end), err)
	}
	if s.After(e) {
		return DateRange{}, inputError("Start date must be on or before end date", nil)
	}

	return DateRange{
		Start: s,
		End:   e.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartDate returns the start day as YYYY-MM-DD.
func (r DateRange) StartDate() string {
	return r.Start.Format(DateLayout)
}

// EndDate returns the end day as YYYY-MM-DD.
func (r DateRange) EndDate() string {
	return r.End.Format(DateLayout)
}

// dayOf truncates t to midnight of its calendar day in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}
