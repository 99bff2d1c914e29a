package analytics

import (
	"fmt"
	"math"
	"strings"
)

// Apply narrows departmentMetrics and leaveTypeDist by exact match; every other
// series is returned unchanged.
func Apply(base Dataset, f Filters) Dataset {
	out := base.Clone()
	if f.Department != "" && f.Department != All {
		out.DepartmentMetrics = out.DepartmentMetrics[:0:0]
		for _, m := range base.DepartmentMetrics {
			if m.Department == f.Department {
				out.DepartmentMetrics = append(out.DepartmentMetrics, m)
			}
		}
	}
	if f.LeaveType != "" && f.LeaveType != All {
		out.LeaveTypeDist = out.LeaveTypeDist[:0:0]
		for _, s := range base.LeaveTypeDist {
			if s.Name == f.LeaveType {
				out.LeaveTypeDist = append(out.LeaveTypeDist, s)
			}
		}
	}
	return out
}

// Reset returns default filters and an untouched copy of the built-in data.
func Reset() (Filters, Dataset) {
	return DefaultFilters(), Static()
}

type Summary struct {
	TotalRequests       int     `json:"totalRequests"`
	TotalApprovals      int     `json:"totalApprovals"`
	ApprovalRate        int     `json:"approvalRate"`
	AvgProcessTime      float64 `json:"avgProcessTime"`
	TotalEmployees      int     `json:"totalEmployees"`
	AverageAvailability int     `json:"averageAvailability"`
	CurrentApprovalRate int     `json:"currentApprovalRate"`
	PendingCount        int     `json:"pendingCount"`
	OnLeaveCount        int     `json:"onLeaveCount"`
	ViolationCount      int     `json:"violationCount"`
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func Summarize(d Dataset) Summary {
	s := Summary{
		PendingCount:   len(d.PendingRequests),
		OnLeaveCount:   len(d.OnLeaveToday),
		ViolationCount: len(d.Violations),
	}

	var processTotal float64
	for _, m := range d.MonthlyTrends {
		s.TotalRequests += m.Requests
		s.TotalApprovals += m.Approvals
		processTotal += m.AvgProcessTime
	}
	if s.TotalRequests > 0 {
		s.ApprovalRate = int(math.Round(float64(s.TotalApprovals) / float64(s.TotalRequests) * 100))
	}
	if n := len(d.MonthlyTrends); n > 0 {
		s.AvgProcessTime = Round1(processTotal / float64(n))
	}

	for _, m := range d.DepartmentMetrics {
		s.TotalEmployees += m.Employees
	}

	if n := len(d.TeamAvailability); n > 0 {
		total := 0
		for _, a := range d.TeamAvailability {
			total += a.Available
		}
		s.AverageAvailability = int(math.Round(float64(total) / float64(n)))
	}

	if n := len(d.ApprovalTrend); n > 0 {
		s.CurrentApprovalRate = d.ApprovalTrend[n-1].Rate
	}
	return s
}

type Insight struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Insights derives the "key insights" panel from the series.
func Insights(d Dataset) []Insight {
	var out []Insight
	if n := len(d.MonthlyTrends); n >= 2 {
		last, prev := d.MonthlyTrends[n-1].AvgProcessTime, d.MonthlyTrends[n-2].AvgProcessTime
		delta := Round1(math.Abs(prev - last))
		direction := "decreased"
		if last > prev {
			direction = "increased"
		}
		out = append(out, Insight{
			Kind:  "info",
			Title: "Processing Time Improvement",
			Text:  fmt.Sprintf("Average processing time %s by %.1f days this month. Consider standardizing approval workflows.", direction, delta),
		})
	}
	if n := len(d.ApprovalTrend); n > 0 {
		out = append(out, Insight{
			Kind:  "success",
			Title: "High Approval Rate",
			Text:  fmt.Sprintf("%d%% approval rate indicates good policy alignment. Review rejected requests for improvement opportunities.", d.ApprovalTrend[n-1].Rate),
		})
	}
	if len(d.DepartmentMetrics) > 0 {
		lowest := d.DepartmentMetrics[0]
		for _, m := range d.DepartmentMetrics[1:] {
			if m.Satisfaction < lowest.Satisfaction {
				lowest = m
			}
		}
		out = append(out, Insight{
			Kind:  "warning",
			Title: "Department Performance",
			Text:  fmt.Sprintf("%s department shows lower satisfaction (%.1f/5). Consider targeted engagement initiatives.", lowest.Department, lowest.Satisfaction),
		})
	}
	return out
}

// Recommendations derives the suggested actions panel from the series.
func Recommendations(d Dataset) []Insight {
	out := []Insight{{
		Kind:  "high",
		Title: "Optimize Approval Workflow",
		Text:  "Implement automated routing for common leave types to reduce processing time.",
	}}

	for _, e := range d.EmployeeEngagement {
		if e.Metric == "Self-Service Usage" && e.Current < e.Target {
			out = append(out, Insight{
				Kind:  "medium",
				Title: "Enhance Self-Service",
				Text:  fmt.Sprintf("Current usage at %g%%. Consider UI improvements and training to reach %g%% target.", e.Current, e.Target),
			})
		}
	}

	if n := len(d.Violations); n > 0 {
		out = append(out, Insight{
			Kind:  "high",
			Title: "Address Policy Violations",
			Text:  fmt.Sprintf("%d active violations need immediate attention. Review policies for clarity.", n),
		})
	}

	for _, p := range d.LeavePatterns {
		if p.Impact == "High" {
			out = append(out, Insight{
				Kind:  "low",
				Title: "Seasonal Planning",
				Text:  fmt.Sprintf("High leave frequency %s (%d%%) suggests need for better weekend planning.", patternPhrase(p.Pattern), p.Frequency),
			})
			break
		}
	}
	return out
}

func patternPhrase(pattern string) string {
	switch pattern {
	case "Monday Blues":
		return "on Mondays"
	case "Friday Extensions":
		return "on Fridays"
	case "Post-Holiday":
		return "after holidays"
	default:
		return "during " + strings.ToLower(pattern)
	}
}
