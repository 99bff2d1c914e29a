package analytics

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

const All = "All"

var (
	Departments = []string{All, "Engineering", "Design", "Marketing", "HR", "Sales", "Data Science", "Product"}
	LeaveTypes  = []string{All, "Casual", "Sick", "Earned", "WFH", "Maternity", "Paternity", "Bereavement"}
	Priorities  = []string{All, "Low", "Medium", "High", "Critical"}
	Statuses    = []string{All, "Pending", "Approved", "Rejected", "Cancelled"}
)

type Filters struct {
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	Department     string `json:"department"`
	LeaveType      string `json:"leaveType"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	ShowTrends     bool   `json:"showTrends"`
	ShowViolations bool   `json:"showViolations"`
	ShowEngagement bool   `json:"showEngagement"`
}

func DefaultFilters() Filters {
	return Filters{
		Department:     All,
		LeaveType:      All,
		Priority:       All,
		Status:         All,
		ShowTrends:     true,
		ShowViolations: true,
		ShowEngagement: true,
	}
}

// ActiveCount is the number of fields that differ from their defaults.
func (f Filters) ActiveCount() int {
	n := 0
	for _, v := range []string{f.StartDate, f.EndDate} {
		if v != "" {
			n++
		}
	}
	for _, v := range []string{f.Department, f.LeaveType, f.Priority, f.Status} {
		if v != "" && v != All {
			n++
		}
	}
	for _, v := range []bool{f.ShowTrends, f.ShowViolations, f.ShowEngagement} {
		if !v {
			n++
		}
	}
	return n
}

// FieldError names the filter field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (f Filters) Validate() error {
	from, to, err := f.DateRange()
	if err != nil {
		return err
	}
	if from != nil && to != nil && from.After(*to) {
		return &FieldError{Field: "endDate", Reason: "end date must be on or after start date"}
	}
	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"department", f.Department, Departments},
		{"leaveType", f.LeaveType, LeaveTypes},
		{"priority", f.Priority, Priorities},
		{"status", f.Status, Statuses},
	}
	for _, c := range checks {
		if c.value != "" && !slices.Contains(c.allowed, c.value) {
			return &FieldError{Field: c.field, Reason: "must be one of " + strings.Join(c.allowed, ", ")}
		}
	}
	return nil
}

// DateRange parses the optional YYYY-MM-DD bounds.
func (f Filters) DateRange() (from, to *time.Time, err error) {
	parse := func(field, value string) (*time.Time, error) {
		if strings.TrimSpace(value) == "" {
			return nil, nil
		}
		t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
		if err != nil {
			return nil, &FieldError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
		}
		return &t, nil
	}
	if from, err = parse("startDate", f.StartDate); err != nil {
		return nil, nil, err
	}
	if to, err = parse("endDate", f.EndDate); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// ParseFilters reads filters from a query string. Show flags are checkboxes, so
// they default to on unless the filter form itself was submitted (applied=1).
func ParseFilters(values url.Values) Filters {
	f := DefaultFilters()
	f.StartDate = strings.TrimSpace(values.Get("startDate"))
	f.EndDate = strings.TrimSpace(values.Get("endDate"))
	pick := func(key, fallback string) string {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
		return fallback
	}
	f.Department = pick("department", All)
	f.LeaveType = pick("leaveType", All)
	f.Priority = pick("priority", All)
	f.Status = pick("status", All)
	if values.Get("applied") != "" {
		f.ShowTrends = flag(values, "showTrends")
		f.ShowViolations = flag(values, "showViolations")
		f.ShowEngagement = flag(values, "showEngagement")
	}
	return f
}

func flag(values url.Values, key string) bool {
	switch strings.ToLower(values.Get(key)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

// Query renders the filters back into a query string, omitting defaults.
func (f Filters) Query() url.Values {
	q := url.Values{}
	q.Set("applied", "1")
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	for key, v := range map[string]string{"department": f.Department, "leaveType": f.LeaveType, "priority": f.Priority, "status": f.Status} {
		if v != "" && v != All {
			q.Set(key, v)
		}
	}
	for key, v := range map[string]bool{"showTrends": f.ShowTrends, "showViolations": f.ShowViolations, "showEngagement": f.ShowEngagement} {
		if v {
			q.Set(key, "1")
		}
	}
	return q
}
