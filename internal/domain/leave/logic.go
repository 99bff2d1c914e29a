package leave

import (
	"errors"
	"time"
)

// DateOnly drops the clock part, keeping the calendar date in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDate is the calendar day of t as seen in t's own location, expressed
// as midnight UTC. Wire dates parse as UTC midnight, so the clock's "today" is
// compared on the same footing whatever the server timezone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (int, error) {
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days, nil
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !DateOnly(aEnd).Before(DateOnly(bStart)) && !DateOnly(bEnd).Before(DateOnly(aStart))
}

// Blocking statuses are the ones that still hold the dates.
func blocking(s Status) bool {
	return s == StatusPending || s == StatusApproved
}

func CountByStatus(requests []Request) (pending, approved int) {
	for _, r := range requests {
		switch r.Status {
		case StatusPending:
			pending++
		case StatusApproved:
			approved++
		}
	}
	return pending, approved
}

// InRange reports whether a request intersects the optional filter window.
func InRange(r Request, from, to *time.Time) bool {
	if from != nil && DateOnly(r.EndDate).Before(DateOnly(*from)) {
		return false
	}
	if to != nil && DateOnly(r.StartDate).After(DateOnly(*to)) {
		return false
	}
	return true
}

// Matches applies every Filter criterion except paging.
func (f Filter) Matches(r Request) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	return InRange(r, f.From, f.To)
}
