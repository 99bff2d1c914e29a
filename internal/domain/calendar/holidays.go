// Package calendar serves the company holiday list and the month views built on it.
package calendar

import (
	"sort"
	"time"
)

type Holiday struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Kind string `json:"type"`
}

// Day parses Date; the list below only contains valid dates.
func (h Holiday) Day() time.Time {
	t, _ := time.Parse(time.DateOnly, h.Date)
	return t
}

var holidays = []Holiday{
	{Name: "Independence Day", Date: "2025-08-15", Kind: "National Holiday"},
	{Name: "Ganesh Chaturthi", Date: "2025-08-29", Kind: "Festival"},
	{Name: "Labor Day", Date: "2025-09-01", Kind: "Public Holiday"},
	{Name: "Gandhi Jayanti", Date: "2025-10-02", Kind: "National Holiday"},
	{Name: "Diwali", Date: "2025-10-31", Kind: "Festival"},
	{Name: "Christmas", Date: "2025-12-25", Kind: "National Holiday"},
	{Name: "New Year's Day", Date: "2026-01-01", Kind: "National Holiday"},
	{Name: "Republic Day", Date: "2026-01-26", Kind: "National Holiday"},
	{Name: "Holi", Date: "2026-03-13", Kind: "Festival"},
	{Name: "Good Friday", Date: "2026-04-03", Kind: "National Holiday"},
}

func All() []Holiday {
	return append([]Holiday(nil), holidays...)
}

func key(t time.Time) string {
	return t.Format(time.DateOnly)
}

// HolidayOn looks up t by its calendar date in t's own location.
func HolidayOn(t time.Time) (Holiday, bool) {
	k := key(t)
	for _, h := range holidays {
		if h.Date == k {
			return h, true
		}
	}
	return Holiday{}, false
}

func IsHoliday(t time.Time) bool {
	_, ok := HolidayOn(t)
	return ok
}

func IsSunday(t time.Time) bool {
	return t.Weekday() == time.Sunday
}

// Upcoming returns up to n holidays falling on or after now's date, earliest first.
func Upcoming(now time.Time, n int) []Holiday {
	today := key(now)
	var out []Holiday
	for _, h := range holidays {
		if h.Date >= today {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
