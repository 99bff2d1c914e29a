package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Report is the downloadable analytics bundle. It always carries the unfiltered series.
type Report struct {
	Timestamp          time.Time          `json:"timestamp"`
	DepartmentMetrics  []DepartmentMetric `json:"departmentMetrics"`
	MonthlyTrends      []MonthlyTrend     `json:"monthlyTrends"`
	LeavePatterns      []LeavePattern     `json:"leavePatterns"`
	EmployeeEngagement []EngagementMetric `json:"employeeEngagement"`
	TeamAvailability   []Availability     `json:"teamAvailability"`
	LeaveTypeDist      []LeaveShare       `json:"leaveTypeDist"`
}

func BuildReport(now time.Time) Report {
	d := Static()
	return Report{
		Timestamp:          now.UTC(),
		DepartmentMetrics:  d.DepartmentMetrics,
		MonthlyTrends:      d.MonthlyTrends,
		LeavePatterns:      d.LeavePatterns,
		EmployeeEngagement: d.EmployeeEngagement,
		TeamAvailability:   d.TeamAvailability,
		LeaveTypeDist:      d.LeaveTypeDist,
	}
}

// ReportFilename is analytics-report-<date>.<ext>.
func ReportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("analytics-report-%s.%s", now.UTC().Format(time.DateOnly), ext)
}

func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
