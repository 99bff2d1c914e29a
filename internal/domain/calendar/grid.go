package calendar

import (
	"fmt"
	"time"
)

type Month struct {
	Year    int
	Month   time.Month
	Label   string
	Value   string
	Current bool
}

// Months lists two months back through three months ahead of now.
func Months(now time.Time) []Month {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]Month, 0, 6)
	for offset := -2; offset <= 3; offset++ {
		m := first.AddDate(0, offset, 0)
		out = append(out, Month{
			Year:    m.Year(),
			Month:   m.Month(),
			Label:   m.Format("January 2006"),
			Value:   m.Format("2006-01"),
			Current: offset == 0,
		})
	}
	return out
}

// ParseMonth reads a YYYY-MM selector value, falling back to now's month.
func ParseMonth(value string, now time.Time) (int, time.Month) {
	if t, err := time.Parse("2006-01", value); err == nil {
		return t.Year(), t.Month()
	}
	return now.Year(), now.Month()
}

type Cell struct {
	Date     time.Time
	Day      int
	InMonth  bool
	Holiday  *Holiday
	Sunday   bool
	Today    bool
	Selected bool
}

func (c Cell) Value() string {
	return c.Date.Format(time.DateOnly)
}

func (c Cell) Title() string {
	if c.Holiday != nil {
		return fmt.Sprintf("%s (%s)", c.Holiday.Name, c.Holiday.Kind)
	}
	return ""
}

type Grid struct {
	Year  int
	Month time.Month
	Label string
	Weeks [][]Cell
}

// BuildGrid lays out the month as Sunday-first week rows, padded with the
// neighbouring months' days. selected may be zero.
func BuildGrid(year int, month time.Month, selected, now time.Time) Grid {
	loc := now.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	last := first.AddDate(0, 1, -1)
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	g := Grid{Year: year, Month: month, Label: first.Format("January 2006")}
	today := key(now)
	sel := ""
	if !selected.IsZero() {
		sel = key(selected)
	}

	var week []Cell
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		c := Cell{
			Date:     d,
			Day:      d.Day(),
			InMonth:  d.Month() == month,
			Sunday:   IsSunday(d),
			Today:    key(d) == today,
			Selected: sel != "" && key(d) == sel,
		}
		if h, ok := HolidayOn(d); ok {
			c.Holiday = &h
		}
		week = append(week, c)
		if len(week) == 7 {
			g.Weeks = append(g.Weeks, week)
			week = nil
		}
	}
	return g
}
