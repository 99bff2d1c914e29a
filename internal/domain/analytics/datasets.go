package analytics

type PendingRequest struct {
	ID       string `json:"id"`
	Employee string `json:"employee"`
	Type     string `json:"type"`
	Days     int    `json:"days"`
	From     string `json:"from"`
	Priority string `json:"priority"`
}

type OnLeave struct {
	Name string `json:"name"`
	Team string `json:"team"`
	Type string `json:"type"`
}

type TrendPoint struct {
	Month string `json:"month"`
	Rate  int    `json:"rate"`
}

type WeeklyRequests struct {
	Week     string `json:"week"`
	Pending  int    `json:"pending"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}

type LeaveShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type Availability struct {
	Day          string `json:"day"`
	Available    int    `json:"available"`
	Productivity int    `json:"productivity"`
}

type DepartmentMetric struct {
	Department   string  `json:"department"`
	Employees    int     `json:"employees"`
	AvgLeave     float64 `json:"avgLeave"`
	Satisfaction float64 `json:"satisfaction"`
	Productivity int     `json:"productivity"`
}

type MonthlyTrend struct {
	Month          string  `json:"month"`
	Requests       int     `json:"requests"`
	Approvals      int     `json:"approvals"`
	Rejections     int     `json:"rejections"`
	AvgProcessTime float64 `json:"avgProcessTime"`
}

type LeavePattern struct {
	Pattern   string `json:"pattern"`
	Frequency int    `json:"frequency"`
	Impact    string `json:"impact"`
}

type EngagementMetric struct {
	Metric  string  `json:"metric"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Trend   string  `json:"trend"`
}

type Violation struct {
	ID       string `json:"id"`
	Employee string `json:"employee"`
	Rule     string `json:"rule"`
	Date     string `json:"date"`
	Severity string `json:"severity"`
}

type QueueItem struct {
	ID       string `json:"id"`
	Employee string `json:"employee"`
	Reason   string `json:"reason"`
	AgeHrs   int    `json:"ageHrs"`
	Priority string `json:"priority"`
}

type UpcomingLeave struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Team string `json:"team"`
}

// Dataset is every series the admin dashboard displays.
type Dataset struct {
	PendingRequests    []PendingRequest   `json:"pendingRequests"`
	OnLeaveToday       []OnLeave          `json:"onLeaveToday"`
	ApprovalTrend      []TrendPoint       `json:"approvalTrend"`
	RequestsOverTime   []WeeklyRequests   `json:"requestsOverTime"`
	LeaveTypeDist      []LeaveShare       `json:"leaveTypeDist"`
	TeamAvailability   []Availability     `json:"teamAvailability"`
	DepartmentMetrics  []DepartmentMetric `json:"departmentMetrics"`
	MonthlyTrends      []MonthlyTrend     `json:"monthlyTrends"`
	LeavePatterns      []LeavePattern     `json:"leavePatterns"`
	EmployeeEngagement []EngagementMetric `json:"employeeEngagement"`
	Violations         []Violation        `json:"violations"`
	PriorityQueue      []QueueItem        `json:"priorityQueue"`
	UpcomingLeaves     []UpcomingLeave    `json:"upcomingLeaves"`
}

var static = Dataset{
	PendingRequests: []PendingRequest{
		{ID: "REQ-1024", Employee: "Aarav Shah", Type: "Casual Leave", Days: 2, From: "2025-08-16", Priority: "High"},
		{ID: "REQ-1025", Employee: "Neha Verma", Type: "Sick Leave", Days: 1, From: "2025-08-17", Priority: "Medium"},
		{ID: "REQ-1026", Employee: "Rahul Kumar", Type: "Work From Home", Days: 1, From: "2025-08-18", Priority: "Low"},
	},
	OnLeaveToday: []OnLeave{
		{Name: "Priya Singh", Team: "Design", Type: "CL"},
		{Name: "Vikram Patel", Team: "Backend", Type: "SL"},
	},
	ApprovalTrend: []TrendPoint{
		{Month: "Jan", Rate: 78}, {Month: "Feb", Rate: 82}, {Month: "Mar", Rate: 80}, {Month: "Apr", Rate: 86},
		{Month: "May", Rate: 88}, {Month: "Jun", Rate: 90}, {Month: "Jul", Rate: 89}, {Month: "Aug", Rate: 92},
	},
	RequestsOverTime: []WeeklyRequests{
		{Week: "W1", Pending: 8, Approved: 22, Rejected: 3},
		{Week: "W2", Pending: 6, Approved: 25, Rejected: 2},
		{Week: "W3", Pending: 10, Approved: 19, Rejected: 4},
		{Week: "W4", Pending: 5, Approved: 27, Rejected: 1},
	},
	LeaveTypeDist: []LeaveShare{
		{Name: "Casual", Value: 35, Color: "hsl(var(--primary))"},
		{Name: "Sick", Value: 22, Color: "#F97316"},
		{Name: "Earned", Value: 18, Color: "#10B981"},
		{Name: "WFH", Value: 25, Color: "#6366F1"},
	},
	TeamAvailability: []Availability{
		{Day: "Mon", Available: 92, Productivity: 88},
		{Day: "Tue", Available: 90, Productivity: 92},
		{Day: "Wed", Available: 88, Productivity: 85},
		{Day: "Thu", Available: 91, Productivity: 89},
		{Day: "Fri", Available: 87, Productivity: 83},
		{Day: "Sat", Available: 85, Productivity: 80},
	},
	DepartmentMetrics: []DepartmentMetric{
		{Department: "Engineering", Employees: 45, AvgLeave: 8.2, Satisfaction: 4.3, Productivity: 92},
		{Department: "Design", Employees: 12, AvgLeave: 6.8, Satisfaction: 4.5, Productivity: 88},
		{Department: "Marketing", Employees: 18, AvgLeave: 7.5, Satisfaction: 4.1, Productivity: 85},
		{Department: "HR", Employees: 8, AvgLeave: 5.2, Satisfaction: 4.4, Productivity: 90},
		{Department: "Sales", Employees: 22, AvgLeave: 9.1, Satisfaction: 3.9, Productivity: 87},
	},
	MonthlyTrends: []MonthlyTrend{
		{Month: "Jan", Requests: 45, Approvals: 38, Rejections: 7, AvgProcessTime: 2.1},
		{Month: "Feb", Requests: 52, Approvals: 44, Rejections: 8, AvgProcessTime: 1.8},
		{Month: "Mar", Requests: 48, Approvals: 41, Rejections: 7, AvgProcessTime: 2.3},
		{Month: "Apr", Requests: 61, Approvals: 55, Rejections: 6, AvgProcessTime: 1.9},
		{Month: "May", Requests: 58, Approvals: 52, Rejections: 6, AvgProcessTime: 2.0},
		{Month: "Jun", Requests: 67, Approvals: 62, Rejections: 5, AvgProcessTime: 1.7},
		{Month: "Jul", Requests: 72, Approvals: 66, Rejections: 6, AvgProcessTime: 1.6},
		{Month: "Aug", Requests: 69, Approvals: 64, Rejections: 5, AvgProcessTime: 1.5},
	},
	LeavePatterns: []LeavePattern{
		{Pattern: "Monday Blues", Frequency: 28, Impact: "High"},
		{Pattern: "Friday Extensions", Frequency: 35, Impact: "Medium"},
		{Pattern: "Post-Holiday", Frequency: 15, Impact: "Low"},
		{Pattern: "Seasonal Peaks", Frequency: 42, Impact: "High"},
	},
	EmployeeEngagement: []EngagementMetric{
		{Metric: "Response Time", Current: 1.2, Target: 1.5, Trend: "improving"},
		{Metric: "Satisfaction Score", Current: 4.2, Target: 4.0, Trend: "stable"},
		{Metric: "Policy Compliance", Current: 94, Target: 95, Trend: "improving"},
		{Metric: "Self-Service Usage", Current: 78, Target: 80, Trend: "declining"},
	},
	Violations: []Violation{
		{ID: "PV-210", Employee: "Jaya Rao", Rule: "Unplanned Leave > 3", Date: "2025-08-12", Severity: "Medium"},
		{ID: "PV-212", Employee: "Karan Gill", Rule: "Overlapping Leaves", Date: "2025-08-15", Severity: "High"},
	},
	PriorityQueue: []QueueItem{
		{ID: "REQ-1027", Employee: "Ananya Gupta", Reason: "Medical", AgeHrs: 5, Priority: "Critical"},
		{ID: "REQ-1024", Employee: "Aarav Shah", Reason: "Travel", AgeHrs: 22, Priority: "High"},
		{ID: "REQ-1025", Employee: "Neha Verma", Reason: "Fever", AgeHrs: 15, Priority: "Medium"},
	},
	UpcomingLeaves: []UpcomingLeave{
		{Name: "Rohan Mehta", Date: "2025-08-20", Team: "Frontend"},
		{Name: "Sneha Iyer", Date: "2025-08-21", Team: "HR"},
		{Name: "Pooja Das", Date: "2025-08-23", Team: "Data"},
	},
}

// Static returns a fresh copy of the built-in datasets; callers may modify it freely.
func Static() Dataset {
	return static.Clone()
}

func (d Dataset) Clone() Dataset {
	return Dataset{
		PendingRequests:    append([]PendingRequest(nil), d.PendingRequests...),
		OnLeaveToday:       append([]OnLeave(nil), d.OnLeaveToday...),
		ApprovalTrend:      append([]TrendPoint(nil), d.ApprovalTrend...),
		RequestsOverTime:   append([]WeeklyRequests(nil), d.RequestsOverTime...),
		LeaveTypeDist:      append([]LeaveShare(nil), d.LeaveTypeDist...),
		TeamAvailability:   append([]Availability(nil), d.TeamAvailability...),
		DepartmentMetrics:  append([]DepartmentMetric(nil), d.DepartmentMetrics...),
		MonthlyTrends:      append([]MonthlyTrend(nil), d.MonthlyTrends...),
		LeavePatterns:      append([]LeavePattern(nil), d.LeavePatterns...),
		EmployeeEngagement: append([]EngagementMetric(nil), d.EmployeeEngagement...),
		Violations:         append([]Violation(nil), d.Violations...),
		PriorityQueue:      append([]QueueItem(nil), d.PriorityQueue...),
		UpcomingLeaves:     append([]UpcomingLeave(nil), d.UpcomingLeaves...),
	}
}

// SeverityVariant maps a violation severity to a badge variant.
func SeverityVariant(severity string) string {
	switch severity {
	case "High":
		return "destructive"
	case "Medium":
		return "secondary"
	default:
		return "default"
	}
}

// PriorityVariant maps a request priority to a badge variant.
func PriorityVariant(priority string) string {
	switch priority {
	case "Critical":
		return "destructive"
	case "High":
		return "default"
	default:
		return "secondary"
	}
}
