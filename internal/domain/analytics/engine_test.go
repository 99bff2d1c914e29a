package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFiltersOnlyTwoSeries(t *testing.T) {
	base := Static()
	f := DefaultFilters()
	f.Department = "Sales"
	f.LeaveType = "Sick"

	got := Apply(base, f)

	require.Len(t, got.DepartmentMetrics, 1)
	assert.Equal(t, "Sales", got.DepartmentMetrics[0].Department)
	require.Len(t, got.LeaveTypeDist, 1)
	assert.Equal(t, "Sick", got.LeaveTypeDist[0].Name)

	assert.Equal(t, base.MonthlyTrends, got.MonthlyTrends)
	assert.Equal(t, base.TeamAvailability, got.TeamAvailability)
	assert.Equal(t, base.LeavePatterns, got.LeavePatterns)
	assert.Equal(t, base.PendingRequests, got.PendingRequests)
	assert.Len(t, base.DepartmentMetrics, 5, "base must not be mutated")
}

func TestApplyUnknownValueYieldsEmpty(t *testing.T) {
	f := DefaultFilters()
	f.Department = "Product"
	f.LeaveType = "Maternity"

	got := Apply(Static(), f)

	assert.Empty(t, got.DepartmentMetrics)
	assert.Empty(t, got.LeaveTypeDist)
	assert.Len(t, got.MonthlyTrends, 8)
}

func TestApplyAllKeepsEverything(t *testing.T) {
	got := Apply(Static(), DefaultFilters())
	assert.Equal(t, Static(), got)
}

func TestStaticReturnsIndependentCopies(t *testing.T) {
	a := Static()
	a.DepartmentMetrics[0].Department = "changed"
	a.MonthlyTrends = nil

	b := Static()
	assert.Equal(t, "Engineering", b.DepartmentMetrics[0].Department)
	assert.Len(t, b.MonthlyTrends, 8)
}

func TestReset(t *testing.T) {
	f, d := Reset()
	assert.Equal(t, DefaultFilters(), f)
	assert.Equal(t, 0, f.ActiveCount())
	assert.Equal(t, Static(), d)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Static())

	assert.Equal(t, 472, s.TotalRequests)
	assert.Equal(t, 422, s.TotalApprovals)
	assert.Equal(t, 89, s.ApprovalRate)
	assert.InDelta(t, 1.9, s.AvgProcessTime, 0.0001)
	assert.Equal(t, 105, s.TotalEmployees)
	assert.Equal(t, 89, s.AverageAvailability)
	assert.Equal(t, 92, s.CurrentApprovalRate)
	assert.Equal(t, 3, s.PendingCount)
	assert.Equal(t, 2, s.OnLeaveCount)
	assert.Equal(t, 2, s.ViolationCount)
}

func TestSummarizeEmptyDataset(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(Dataset{}))
}

func TestSummarizeFollowsFilteredDepartments(t *testing.T) {
	f := DefaultFilters()
	f.Department = "HR"
	assert.Equal(t, 8, Summarize(Apply(Static(), f)).TotalEmployees)
}

func TestInsights(t *testing.T) {
	got := Insights(Static())
	require.Len(t, got, 3)

	assert.Equal(t, "Processing Time Improvement", got[0].Title)
	assert.Contains(t, got[0].Text, "decreased by 0.1 days")
	assert.Equal(t, "High Approval Rate", got[1].Title)
	assert.Contains(t, got[1].Text, "92% approval rate")
	assert.Equal(t, "Department Performance", got[2].Title)
	assert.Contains(t, got[2].Text, "Sales department shows lower satisfaction (3.9/5)")
}

func TestRecommendations(t *testing.T) {
	got := Recommendations(Static())
	require.Len(t, got, 4)

	titles := make([]string, 0, len(got))
	for _, r := range got {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Optimize Approval Workflow", "Enhance Self-Service", "Address Policy Violations", "Seasonal Planning"}, titles)
	assert.Contains(t, got[1].Text, "Current usage at 78%")
	assert.Contains(t, got[1].Text, "80% target")
	assert.Contains(t, got[2].Text, "2 active violations")
	assert.Contains(t, got[3].Text, "on Mondays (28%)")
}

func TestActiveCount(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Filters)
		want   int
	}{
		{"defaults", func(*Filters) {}, 0},
		{"department", func(f *Filters) { f.Department = "HR" }, 1},
		{"dates", func(f *Filters) { f.StartDate, f.EndDate = "2025-01-01", "2025-02-01" }, 2},
		{"flag off", func(f *Filters) { f.ShowTrends = false }, 1},
		{"mixed", func(f *Filters) {
			f.Status = "Pending"
			f.Priority = "High"
			f.ShowEngagement = false
		}, 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := DefaultFilters()
			tc.mutate(&f)
			assert.Equal(t, tc.want, f.ActiveCount())
		})
	}
}

func TestValidate(t *testing.T) {
	f := DefaultFilters()
	assert.NoError(t, f.Validate())

	f.StartDate, f.EndDate = "2025-03-10", "2025-03-01"
	var fe *FieldError
	require.ErrorAs(t, f.Validate(), &fe)
	assert.Equal(t, "endDate", fe.Field)

	f = DefaultFilters()
	f.StartDate = "10/03/2025"
	require.ErrorAs(t, f.Validate(), &fe)
	assert.Equal(t, "startDate", fe.Field)

	f = DefaultFilters()
	f.Department = "Finance"
	require.ErrorAs(t, f.Validate(), &fe)
	assert.Equal(t, "department", fe.Field)
}

func TestParseFiltersRoundTripsQuery(t *testing.T) {
	f := DefaultFilters()
	f.StartDate = "2025-08-01"
	f.Department = "Design"
	f.ShowViolations = false

	got := ParseFilters(f.Query())
	assert.Equal(t, f, got)
}

func TestParseFiltersWithoutAppliedKeepsFlagsOn(t *testing.T) {
	got := ParseFilters(url.Values{"department": {"HR"}})
	assert.True(t, got.ShowTrends)
	assert.True(t, got.ShowViolations)
	assert.True(t, got.ShowEngagement)
	assert.Equal(t, "HR", got.Department)
	assert.Equal(t, All, got.LeaveType)
}

func TestReportIgnoresFilters(t *testing.T) {
	now := time.Date(2025, 8, 16, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, BuildReport(now)))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"timestamp", "departmentMetrics", "monthlyTrends", "leavePatterns", "employeeEngagement", "teamAvailability", "leaveTypeDist"} {
		assert.Contains(t, doc, key)
	}

	var depts []DepartmentMetric
	require.NoError(t, json.Unmarshal(doc["departmentMetrics"], &depts))
	assert.Len(t, depts, 5)
	assert.Equal(t, "analytics-report-2025-08-16.json", ReportFilename(now, "json"))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, BuildReport(time.Now())))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRefresherCoalescesConcurrentCalls(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	r := NewRefresher(50 * time.Millisecond)
	r.Observe = func(string, time.Duration) {
		mu.Lock()
		runs++
		mu.Unlock()
	}
	before := r.Status().LastUpdated

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := r.Refresh(context.Background(), "manual")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
	st := r.Status()
	assert.False(t, st.Refreshing)
	assert.False(t, st.LastUpdated.Before(before))
}

func TestRefresherReportsRefreshingWhileInFlight(t *testing.T) {
	r := NewRefresher(100 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = r.Refresh(context.Background(), "scheduled")
	}()

	assert.Eventually(t, func() bool { return r.Status().Refreshing }, time.Second, 5*time.Millisecond)
	<-done
	assert.False(t, r.Status().Refreshing)
}

func TestRefresherHonoursCallerContext(t *testing.T) {
	r := NewRefresher(200 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := r.Refresh(ctx, "manual")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestVariants(t *testing.T) {
	assert.Equal(t, "destructive", SeverityVariant("High"))
	assert.Equal(t, "secondary", SeverityVariant("Medium"))
	assert.Equal(t, "default", SeverityVariant("Low"))
	assert.Equal(t, "destructive", PriorityVariant("Critical"))
	assert.Equal(t, "default", PriorityVariant("High"))
	assert.Equal(t, "secondary", PriorityVariant("Medium"))
}
