package leavehandler

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

// Observer counts submissions and decisions.
type Observer interface {
	LeaveSubmitted(leaveType string)
	LeaveDecided(status string)
}

type Handler struct {
	Service   *leave.Service
	Validator *forms.Validator
	Audit     audit.Recorder
	Observer  Observer
}

func NewHandler(service *leave.Service, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Validator: forms.NewValidator(), Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sick-leave", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleEmployee))
		r.Get("/", h.handleOverview)
		r.Post("/", h.handleSubmit)
		r.Post("/{requestID}/cancel", h.handleCancel)
	})
	r.Route("/leave-requests", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/", h.handleList)
		r.Get("/export.csv", h.handleExport)
		r.Post("/{requestID}/approve", h.handleApprove)
		r.Post("/{requestID}/reject", h.handleReject)
	})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Service.Overview(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_overview_failed", "failed to load leave history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload gateway.SickLeaveRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	input := forms.SickLeaveInput{
		StartDate: strings.TrimSpace(payload.StartDate),
		EndDate:   strings.TrimSpace(payload.EndDate),
		Reason:    strings.TrimSpace(payload.Reason),
		Type:      strings.ToLower(strings.TrimSpace(payload.Type)),
	}
	if errs := h.Validator.Check(input); errs != nil {
		shared.FailForm(w, reqID, errs)
		return
	}
	payload.StartDate, payload.EndDate, payload.Reason, payload.Type = input.StartDate, input.EndDate, input.Reason, input.Type

	in, err := gateway.ParseSickLeave(payload)
	if err != nil {
		h.fail(w, reqID, "leave_submit_failed", err)
		return
	}
	created, err := h.Service.Submit(r.Context(), user, in)
	if err != nil {
		h.fail(w, reqID, "leave_submit_failed", err)
		return
	}
	if h.Observer != nil {
		h.Observer.LeaveSubmitted(string(created.Type))
	}
	h.record(r, audit.Entry{ActorID: user.UserID, Action: audit.ActionLeaveSubmitted, EntityType: "leave_request", EntityID: created.ID, After: created})
	api.Created(w, created, reqID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	updated, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "requestID"), user)
	if err != nil {
		h.fail(w, reqID, "leave_cancel_failed", err)
		return
	}
	h.record(r, audit.Entry{ActorID: user.UserID, Action: audit.ActionLeaveCancelled, EntityType: "leave_request", EntityID: updated.ID})
	api.Success(w, updated, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	filter := ParseFilter(v, r.URL.Query())
	if v.Reject(w, reqID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(out.Total))
	api.Success(w, out, reqID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	filter := ParseFilter(v, r.URL.Query())
	if v.Reject(w, reqID) {
		return
	}
	out, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_export_failed", "failed to export leave requests", reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=leave-requests.csv")
	if err := WriteCSV(w, out.Items); err != nil {
		slog.Warn("leave export failed", "err", err)
	}
}

// WriteCSV writes one row per request under a header row. Free-text cells are
// passed through shared.CSVCell.
func WriteCSV(w io.Writer, items []leave.Request) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"reference", "employee", "type", "start_date", "end_date", "days", "status", "submitted_date", "reason"}); err != nil {
		return err
	}
	for _, item := range items {
		row := []string{
			item.Reference(),
			shared.CSVCell(item.EmployeeName),
			item.Type.Label(),
			item.StartDate.Format(time.DateOnly),
			item.EndDate.Format(time.DateOnly),
			strconv.Itoa(item.Days),
			string(item.Status),
			item.SubmittedDate.Format(time.DateOnly),
			shared.CSVCell(item.Reason),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status leave.Status) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "requestID")

	var (
		updated leave.Request
		err     error
		action  = audit.ActionLeaveApproved
	)
	if status == leave.StatusApproved {
		updated, err = h.Service.Approve(r.Context(), id, user)
	} else {
		action = audit.ActionLeaveRejected
		updated, err = h.Service.Reject(r.Context(), id, user)
	}
	if err != nil {
		h.fail(w, reqID, "leave_decision_failed", err)
		return
	}
	if h.Observer != nil {
		h.Observer.LeaveDecided(string(updated.Status))
	}
	h.record(r, audit.Entry{ActorID: user.UserID, Action: action, EntityType: "leave_request", EntityID: updated.ID, After: map[string]string{"status": string(updated.Status)}})
	api.Success(w, updated, reqID)
}

var (
	statusNames = []string{string(leave.StatusPending), string(leave.StatusApproved), string(leave.StatusRejected), string(leave.StatusCancelled)}
	typeNames   = []string{string(leave.TypeSick), string(leave.TypeMedical)}
)

// ParseFilter reads from, to, status and type from a query string, reporting
// bad values to v. Status and type accept "All" as no filter.
func ParseFilter(v *shared.Validator, q url.Values) leave.Filter {
	var f leave.Filter
	f.From = shared.OptionalDate(v, "from", strings.TrimSpace(q.Get("from")))
	f.To = shared.OptionalDate(v, "to", strings.TrimSpace(q.Get("to")))
	if f.From != nil && f.To != nil {
		v.DateOrder("from", *f.From, "to", *f.To)
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "All" {
		if s, ok := v.Enum("status", raw, statusNames, "must be one of "+strings.Join(statusNames, ", ")); ok {
			f.Status = leave.Status(s)
		}
	}
	if raw := strings.TrimSpace(q.Get("type")); raw != "All" {
		if t, ok := v.Enum("type", raw, typeNames, "must be one of "+strings.Join(typeNames, ", ")); ok {
			f.Type = leave.Type(t)
		}
	}
	return f
}

func (h *Handler) fail(w http.ResponseWriter, reqID, code string, err error) {
	if e, ok := gateway.Describe(err); ok {
		shared.FailGateway(w, reqID, e)
		return
	}
	slog.Error("leave request failed", "code", code, "err", err, "request_id", reqID)
	api.Fail(w, http.StatusInternalServerError, code, "request failed", reqID)
}

func (h *Handler) record(r *http.Request, e audit.Entry) {
	if h.Audit == nil {
		return
	}
	e.RequestID = middleware.GetRequestID(r.Context())
	e.IP = shared.ClientIP(r)
	if err := h.Audit.Record(r.Context(), e); err != nil {
		slog.Warn("audit record failed", "action", e.Action, "err", err)
	}
}
