package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsHoliday(t *testing.T) {
	assert.True(t, IsHoliday(date(2025, time.August, 15)))
	assert.True(t, IsHoliday(time.Date(2025, time.December, 25, 23, 59, 0, 0, time.UTC)))
	assert.False(t, IsHoliday(date(2025, time.August, 16)))

	h, ok := HolidayOn(date(2026, time.March, 13))
	require.True(t, ok)
	assert.Equal(t, "Holi", h.Name)
	assert.Equal(t, "Festival", h.Kind)
}

func TestIsSunday(t *testing.T) {
	assert.True(t, IsSunday(date(2025, time.August, 17)))
	assert.False(t, IsSunday(date(2025, time.August, 18)))
}

func TestUpcoming(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		n     int
		first string
		count int
	}{
		{"before list", date(2025, time.January, 1), 6, "Independence Day", 6},
		{"on a holiday keeps it", time.Date(2025, time.October, 2, 18, 0, 0, 0, time.UTC), 6, "Gandhi Jayanti", 6},
		{"near end", date(2026, time.March, 1), 6, "Holi", 2},
		{"after list", date(2026, time.May, 1), 6, "", 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Upcoming(tc.now, tc.n)
			require.Len(t, got, tc.count)
			if tc.count > 0 {
				assert.Equal(t, tc.first, got[0].Name)
			}
			for i := 1; i < len(got); i++ {
				assert.Less(t, got[i-1].Date, got[i].Date)
			}
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0].Name = "changed"
	assert.Equal(t, "Independence Day", All()[0].Name)
	assert.Len(t, All(), 10)
}

func TestMonths(t *testing.T) {
	got := Months(time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC))
	require.Len(t, got, 6)
	assert.Equal(t, "November 2024", got[0].Label)
	assert.Equal(t, "January 2025", got[2].Label)
	assert.True(t, got[2].Current)
	assert.Equal(t, "April 2025", got[5].Label)
	assert.Equal(t, "2025-04", got[5].Value)
}

func TestParseMonth(t *testing.T) {
	now := date(2025, time.August, 16)
	y, m := ParseMonth("2025-10", now)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.October, m)

	y, m = ParseMonth("bogus", now)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.August, m)
}

func TestBuildGrid(t *testing.T) {
	now := date(2025, time.August, 16)
	g := BuildGrid(2025, time.August, date(2025, time.August, 20), now)

	assert.Equal(t, "August 2025", g.Label)
	require.NotEmpty(t, g.Weeks)
	for _, w := range g.Weeks {
		require.Len(t, w, 7)
		assert.True(t, w[0].Sunday)
	}
	// August 2025 starts on a Friday.
	assert.Equal(t, 27, g.Weeks[0][0].Day)
	assert.False(t, g.Weeks[0][0].InMonth)
	assert.Equal(t, 1, g.Weeks[0][5].Day)

	var holiday, today, selected int
	for _, w := range g.Weeks {
		for _, c := range w {
			if c.Holiday != nil && c.InMonth {
				holiday++
			}
			if c.Today {
				today++
				assert.Equal(t, "2025-08-16", c.Value())
			}
			if c.Selected {
				selected++
			}
		}
	}
	assert.Equal(t, 2, holiday)
	assert.Equal(t, 1, today)
	assert.Equal(t, 1, selected)
}

func TestWriteICS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, All(), date(2025, time.August, 1)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Equal(t, 10, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20251031\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20251101\r\n")
	assert.Contains(t, out, "UID:20260101-new-years-day@leavedesk")
}
