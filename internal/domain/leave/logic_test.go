package leave

import (
	"testing"
	"time"
)

func TestCalculateDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %v", days)
	}

	end = time.Date(2025, 1, 12, 18, 30, 0, 0, time.UTC)
	days, err = CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	_, err := CalculateDays(start, end)
	if err == nil {
		t.Fatal("expected error for invalid range")
	}
}

func TestOverlaps(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{name: "disjoint", aStart: d(1), aEnd: d(2), bStart: d(3), bEnd: d(4), want: false},
		{name: "touching end day", aStart: d(1), aEnd: d(3), bStart: d(3), bEnd: d(4), want: true},
		{name: "contained", aStart: d(1), aEnd: d(10), bStart: d(4), bEnd: d(5), want: true},
		{name: "reverse order", aStart: d(6), aEnd: d(7), bStart: d(1), bEnd: d(5), want: false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCountByStatus(t *testing.T) {
	pending, approved := CountByStatus([]Request{
		{Status: StatusApproved},
		{Status: StatusApproved},
		{Status: StatusPending},
		{Status: StatusRejected},
	})
	if pending != 1 || approved != 2 {
		t.Fatalf("got pending=%d approved=%d", pending, approved)
	}
}

func TestFilterMatches(t *testing.T) {
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	req := Request{
		UserID:    "u1",
		Type:      TypeSick,
		Status:    StatusPending,
		StartDate: time.Date(2025, 7, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, want: true},
		{name: "straddles window start", filter: Filter{From: &from, To: &to}, want: true},
		{name: "window after request", filter: Filter{From: &to}, want: false},
		{name: "window before request", filter: Filter{To: &[]time.Time{from.AddDate(0, 0, -5)}[0]}, want: false},
		{name: "status mismatch", filter: Filter{Status: StatusApproved}, want: false},
		{name: "type mismatch", filter: Filter{Type: TypeMedical}, want: false},
		{name: "other user", filter: Filter{UserID: "u2"}, want: false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(req); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBalanceRemaining(t *testing.T) {
	if got := (Balance{Total: 12, Used: 5}).Remaining(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := (Balance{Total: 2, Used: 5}).Remaining(); got != 0 {
		t.Fatalf("expected 0 when overdrawn, got %d", got)
	}
}

func TestParseHelpers(t *testing.T) {
	if typ, ok := ParseType(" Medical "); !ok || typ != TypeMedical {
		t.Fatalf("ParseType medical = %q %v", typ, ok)
	}
	if _, ok := ParseType("casual"); ok {
		t.Fatal("casual is not a self-service leave type")
	}
	if st, ok := ParseStatus("approved"); !ok || st != StatusApproved {
		t.Fatalf("ParseStatus = %q %v", st, ok)
	}
	if (Request{RefNo: 2001}).Reference() != "REQ-2001" {
		t.Fatal("unexpected reference format")
	}
	if TypeSick.Label() != "Sick Leave" {
		t.Fatal("unexpected label")
	}
}

func TestCalendarDateKeepsLocalDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	got := CalendarDate(time.Date(2025, 8, 15, 1, 0, 0, 0, tokyo))
	want := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
