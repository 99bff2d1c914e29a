package analytics

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the report as a simple tabular A4 document.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Analytics Report", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Analytics Report")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", r.Timestamp.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	table(pdf, "Department Metrics",
		[]string{"Department", "Employees", "Avg Leave", "Satisfaction", "Productivity"},
		len(r.DepartmentMetrics), func(i int) []string {
			m := r.DepartmentMetrics[i]
			return []string{m.Department, fmt.Sprint(m.Employees), fmt.Sprintf("%.1f", m.AvgLeave), fmt.Sprintf("%.1f/5", m.Satisfaction), fmt.Sprintf("%d%%", m.Productivity)}
		})

	table(pdf, "Monthly Trends",
		[]string{"Month", "Requests", "Approvals", "Rejections", "Avg Days"},
		len(r.MonthlyTrends), func(i int) []string {
			m := r.MonthlyTrends[i]
			return []string{m.Month, fmt.Sprint(m.Requests), fmt.Sprint(m.Approvals), fmt.Sprint(m.Rejections), fmt.Sprintf("%.1f", m.AvgProcessTime)}
		})

	table(pdf, "Leave Patterns",
		[]string{"Pattern", "Frequency", "Impact"},
		len(r.LeavePatterns), func(i int) []string {
			p := r.LeavePatterns[i]
			return []string{p.Pattern, fmt.Sprintf("%d%%", p.Frequency), p.Impact}
		})

	table(pdf, "Employee Engagement",
		[]string{"Metric", "Current", "Target", "Trend"},
		len(r.EmployeeEngagement), func(i int) []string {
			e := r.EmployeeEngagement[i]
			return []string{e.Metric, fmt.Sprintf("%g", e.Current), fmt.Sprintf("%g", e.Target), e.Trend}
		})

	table(pdf, "Team Availability",
		[]string{"Day", "Available", "Productivity"},
		len(r.TeamAvailability), func(i int) []string {
			a := r.TeamAvailability[i]
			return []string{a.Day, fmt.Sprintf("%d%%", a.Available), fmt.Sprintf("%d%%", a.Productivity)}
		})

	table(pdf, "Leave Type Distribution",
		[]string{"Type", "Share"},
		len(r.LeaveTypeDist), func(i int) []string {
			s := r.LeaveTypeDist[i]
			return []string{s.Name, fmt.Sprintf("%d%%", s.Value)}
		})

	return pdf.Output(w)
}

func table(pdf *gofpdf.Fpdf, title string, header []string, rows int, row func(int) []string) {
	const width = 190.0
	col := width / float64(len(header))

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, h := range header {
		pdf.CellFormat(col, 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i := 0; i < rows; i++ {
		for _, v := range row(i) {
			pdf.CellFormat(col, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
