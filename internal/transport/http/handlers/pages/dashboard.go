package pageshandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/analytics"
	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/calendar"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/gateway"
	analyticshandler "leavedesk/internal/transport/http/handlers/analytics"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/web/render"
)

type Tab struct {
	Name   string
	Label  string
	Href   string
	Active bool
}

var dashboardTabs = []struct{ name, label string }{
	{"overview", "Overview"},
	{"analytics", "Analytics"},
	{"requests", "Requests"},
	{"calendar", "Calendar"},
}

type FilterOptions struct {
	Departments []string
	LeaveTypes  []string
	Priorities  []string
	Statuses    []string
}

type DashboardView struct {
	analyticshandler.View
	Heading     string
	Tab         string
	Tabs        []Tab
	Options     FilterOptions
	FilterError string
	ResetHref   string
	Requests    []leave.Request
	// RequestsTotal counts every stored request matching the filters.
	RequestsTotal int
	Calendar      CalendarView
	Holidays      []calendar.Holiday
	ExportJSON    string
	ExportPDF     string
}

// DayCell is a calendar cell with the link that selects it.
type DayCell struct {
	calendar.Cell
	Href string
}

type CalendarView struct {
	Months     []calendar.Month
	MonthValue string
	Label      string
	Weeks      [][]DayCell
	Selected   string
	Action     string
	Hidden     map[string]string
}

const requestsPageSize = 50

// DashboardHeading is "<Role> <FirstName>'s Dashboard" with the role capitalized.
func DashboardHeading(role auth.Role, firstName string) string {
	if firstName == "" {
		firstName = "User"
	}
	return fmt.Sprintf("%s %s's Dashboard", cases.Title(language.English).String(string(role)), firstName)
}

func parseTab(value string) string {
	for _, t := range dashboardTabs {
		if t.name == value {
			return value
		}
	}
	return "overview"
}

func dashboardURL(tab string, f analytics.Filters) string {
	q := f.Query()
	q.Set("tab", tab)
	return "/dashboard?" + q.Encode()
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	q := r.URL.Query()
	tab := parseTab(q.Get("tab"))
	status := http.StatusOK

	f := analytics.ParseFilters(q)
	filterErr := ""
	if err := f.Validate(); err != nil {
		var fe *analytics.FieldError
		if errors.As(err, &fe) {
			filterErr = fe.Reason
		} else {
			filterErr = err.Error()
		}
		f = analytics.DefaultFilters()
		status = http.StatusUnprocessableEntity
	}

	view := DashboardView{
		View:        analyticshandler.BuildView(f, h.Refresher.Status()),
		Heading:     DashboardHeading(user.Role, user.FirstName),
		Tab:         tab,
		FilterError: filterErr,
		ResetHref:   "/dashboard?tab=" + tab,
		Options: FilterOptions{
			Departments: analytics.Departments,
			LeaveTypes:  analytics.LeaveTypes,
			Priorities:  analytics.Priorities,
			Statuses:    analytics.Statuses,
		},
		ExportJSON: "/dashboard/export?format=json",
		ExportPDF:  "/dashboard/export?format=pdf",
	}
	for _, t := range dashboardTabs {
		view.Tabs = append(view.Tabs, Tab{Name: t.name, Label: t.label, Href: dashboardURL(t.name, f), Active: t.name == tab})
	}

	switch tab {
	case "requests":
		result, err := h.Leave.List(r.Context(), RequestFilter(f, requestsPageSize))
		if err != nil {
			slog.Error("list leave requests failed", "err", err, "request_id", middleware.GetRequestID(r.Context()))
			view.FilterError = "Leave requests could not be loaded."
			status = http.StatusInternalServerError
			break
		}
		view.Requests = result.Items
		view.RequestsTotal = result.Total
	case "calendar":
		hidden := map[string]string{"tab": "calendar"}
		for key, values := range f.Query() {
			hidden[key] = values[0]
		}
		view.Calendar = BuildCalendar(q, h.now(), "/dashboard", hidden)
		view.Holidays = calendar.Upcoming(h.now(), 6)
	}

	h.page(w, r, status, "dashboard", render.TemplateData{Title: "Admin Dashboard", Data: view})
}

// RequestFilter maps the dashboard filters onto stored requests. Only the Sick
// category exists in the store, so any other leave type matches nothing.
func RequestFilter(f analytics.Filters, limit int) leave.Filter {
	from, to, _ := f.DateRange()
	lf := leave.Filter{From: from, To: to, Limit: limit}
	if f.Status != "" && f.Status != analytics.All {
		if st, ok := leave.ParseStatus(f.Status); ok {
			lf.Status = st
		}
	}
	if f.LeaveType != "" && f.LeaveType != analytics.All {
		if t, ok := leave.ParseType(f.LeaveType); ok {
			lf.Type = t
		} else {
			lf.Type = leave.Type("none:" + strings.ToLower(f.LeaveType))
		}
	}
	return lf
}

// BuildCalendar reads month=YYYY-MM and date=YYYY-MM-DD from q and links every
// cell back to path with the same hidden parameters.
func BuildCalendar(q url.Values, now time.Time, path string, hidden map[string]string) CalendarView {
	year, month := calendar.ParseMonth(q.Get("month"), now)
	var selected time.Time
	if t, err := time.ParseInLocation(time.DateOnly, q.Get("date"), now.Location()); err == nil {
		selected = t
	}
	grid := calendar.BuildGrid(year, month, selected, now)
	monthValue := fmt.Sprintf("%04d-%02d", year, int(month))

	cv := CalendarView{
		Months:     calendar.Months(now),
		MonthValue: monthValue,
		Label:      grid.Label,
		Action:     path,
		Hidden:     hidden,
	}
	if !selected.IsZero() {
		cv.Selected = selected.Format(time.DateOnly)
	}
	for _, week := range grid.Weeks {
		row := make([]DayCell, 0, len(week))
		for _, c := range week {
			link := url.Values{}
			for k, v := range hidden {
				link.Set(k, v)
			}
			link.Set("month", monthValue)
			link.Set("date", c.Value())
			row = append(row, DayCell{Cell: c, Href: path + "?" + link.Encode()})
		}
		cv.Weeks = append(cv.Weeks, row)
	}
	return cv
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tab := "overview"
	if err := r.ParseForm(); err == nil {
		tab = parseTab(r.PostForm.Get("tab"))
	}
	if _, _, err := h.Refresher.Refresh(r.Context(), "manual"); err != nil {
		slog.Warn("dashboard refresh failed", "err", err, "request_id", middleware.GetRequestID(r.Context()))
		h.Sessions.Flash(r.Context(), "error", "Refresh did not complete. Please try again.")
	} else {
		h.Sessions.Flash(r.Context(), "success", "Dashboard data refreshed.")
	}
	h.redirect(w, r, "/dashboard?tab="+tab)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}
	if err := analyticshandler.ServeReport(w, format, h.now()); err != nil {
		if !errors.Is(err, analyticshandler.ErrUnknownFormat) {
			slog.Error("analytics export failed", "err", err, "request_id", middleware.GetRequestID(r.Context()))
		}
		h.Sessions.Flash(r.Context(), "error", "Report could not be exported.")
		h.redirect(w, r, "/dashboard")
		return
	}
	user, _ := middleware.GetUser(r.Context())
	h.record(r, audit.Entry{ActorID: user.UserID, Action: audit.ActionReportExported, EntityType: "analytics_report", After: map[string]string{"format": format}})
}

func (h *Handler) handleDecision(status leave.Status) http.HandlerFunc {
	action := audit.ActionLeaveApproved
	verb := "approved"
	if status == leave.StatusRejected {
		action = audit.ActionLeaveRejected
		verb = "rejected"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		id := chi.URLParam(r, "requestID")

		var (
			req leave.Request
			err error
		)
		if status == leave.StatusApproved {
			req, err = h.Leave.Approve(r.Context(), id, user)
		} else {
			req, err = h.Leave.Reject(r.Context(), id, user)
		}
		if err != nil {
			h.flashFailure(r, "leave decision failed", err)
			h.redirect(w, r, "/dashboard?tab=requests")
			return
		}
		if h.Leaves != nil {
			h.Leaves.LeaveDecided(string(req.Status))
		}
		h.record(r, audit.Entry{ActorID: user.UserID, Action: action, EntityType: "leave_request", EntityID: req.ID, After: map[string]string{"status": string(req.Status)}})
		h.Sessions.Flash(r.Context(), "success", fmt.Sprintf("Request %s %s.", req.Reference(), verb))
		h.redirect(w, r, "/dashboard?tab=requests")
	}
}

// flashFailure stores the user-facing reason for a failed action, logging
// anything unexpected.
func (h *Handler) flashFailure(r *http.Request, msg string, err error) {
	if e, ok := gateway.Describe(err); ok {
		h.Sessions.Flash(r.Context(), "error", e.Message)
		return
	}
	slog.Error(msg, "err", err, "request_id", middleware.GetRequestID(r.Context()))
	h.Sessions.Flash(r.Context(), "error", "Something went wrong. Please try again.")
}
