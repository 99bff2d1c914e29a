package analyticshandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/analytics"
	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/calendar"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

type Handler struct {
	Refresher *analytics.Refresher
	Audit     audit.Recorder
	Now       func() time.Time
}

func NewHandler(refresher *analytics.Refresher, auditSvc audit.Recorder) *Handler {
	return &Handler{Refresher: refresher, Audit: auditSvc, Now: time.Now}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/", h.handleAnalytics)
		r.Get("/export", h.handleExport)
		r.Get("/status", h.handleStatus)
		r.Post("/refresh", h.handleRefresh)
	})
	r.Get("/holidays", h.handleHolidays)
	r.Get("/holidays.ics", h.handleHolidaysICS)
}

// View is the dashboard state for one set of filters.
type View struct {
	Filters         analytics.Filters   `json:"filters"`
	ActiveCount     int                 `json:"activeCount"`
	Data            analytics.Dataset   `json:"data"`
	Summary         analytics.Summary   `json:"summary"`
	Insights        []analytics.Insight `json:"insights"`
	Recommendations []analytics.Insight `json:"recommendations"`
	Status          analytics.Status    `json:"status"`
}

// BuildView applies filters to a fresh copy of the static series.
func BuildView(f analytics.Filters, status analytics.Status) View {
	data := analytics.Apply(analytics.Static(), f)
	return View{
		Filters:         f,
		ActiveCount:     f.ActiveCount(),
		Data:            data,
		Summary:         analytics.Summarize(data),
		Insights:        analytics.Insights(data),
		Recommendations: analytics.Recommendations(data),
		Status:          status,
	}
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	f := analytics.ParseFilters(r.URL.Query())
	if err := f.Validate(); err != nil {
		var fe *analytics.FieldError
		if errors.As(err, &fe) {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: fe.Field, Reason: fe.Reason}})
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_filters", err.Error(), reqID)
		return
	}
	api.Success(w, BuildView(f, h.Refresher.Status()), reqID)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Refresher.Status(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	status, joined, err := h.Refresher.Refresh(r.Context(), "manual")
	if err != nil {
		api.Fail(w, http.StatusServiceUnavailable, "refresh_failed", "refresh did not complete", reqID)
		return
	}
	api.Success(w, map[string]any{"status": status, "joined": joined}, reqID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if err := ServeReport(w, format, h.now()); err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "format", Reason: "must be json or pdf"}})
			return
		}
		slog.Error("analytics export failed", "err", err, "request_id", reqID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build report", reqID)
		return
	}
	if h.Audit != nil {
		user, _ := middleware.GetUser(r.Context())
		entry := audit.Entry{ActorID: user.UserID, Action: audit.ActionReportExported, EntityType: "analytics_report", RequestID: reqID, IP: shared.ClientIP(r), After: map[string]string{"format": formatOrDefault(format)}}
		if err := h.Audit.Record(r.Context(), entry); err != nil {
			slog.Warn("audit record failed", "action", entry.Action, "err", err)
		}
	}
}

var ErrUnknownFormat = errors.New("unknown report format")

func formatOrDefault(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

// ServeReport renders the analytics report as an attachment. The body is
// built in memory first so a rendering error can still become a JSON error.
func ServeReport(w http.ResponseWriter, format string, now time.Time) error {
	report := analytics.BuildReport(now)
	var (
		buf         bytes.Buffer
		contentType string
		err         error
	)
	format = formatOrDefault(format)
	switch format {
	case "json":
		contentType = "application/json"
		err = analytics.WriteJSON(&buf, report)
	case "pdf":
		contentType = "application/pdf"
		err = analytics.WritePDF(&buf, report)
	default:
		return ErrUnknownFormat
	}
	if err != nil {
		return fmt.Errorf("render %s report: %w", format, err)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", analytics.ReportFilename(now, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, err = buf.WriteTo(w)
	return err
}

func (h *Handler) handleHolidays(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	list := calendar.All()
	if raw := r.URL.Query().Get("upcoming"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "upcoming", Reason: "must be a positive number"}})
			return
		}
		list = calendar.Upcoming(h.now(), n)
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleHolidaysICS(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, calendar.All(), h.now()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "ics_failed", "failed to build calendar", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="holidays.ics"`)
	_, _ = buf.WriteTo(w)
}
