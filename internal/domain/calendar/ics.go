package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteICS renders holidays as an iCalendar feed of all-day events.
func WriteICS(w io.Writer, list []Holiday, now time.Time) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(fmt.Sprintf(format, args...))
		b.WriteString("\r\n")
	}
	stamp := now.UTC().Format("20060102T150405Z")

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//leavedesk//holidays//EN")
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:Company Holidays")
	for _, h := range list {
		day := h.Day()
		line("BEGIN:VEVENT")
		line("UID:%s-%s@leavedesk", day.Format("20060102"), slug(h.Name))
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", day.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", day.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", escapeText(h.Name))
		line("CATEGORIES:%s", escapeText(h.Kind))
		line("TRANSP:TRANSPARENT")
		line("END:VEVENT")
	}
	line("END:VCALENDAR")

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	return b.String()
}
