package pageshandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/calendar"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/web/render"
)

type EmployeeView struct {
	FirstName  string
	Overview   leave.Overview
	Sick       leave.Balance
	Medical    leave.Balance
	Form       forms.SickLeaveInput
	Submission *forms.Submission
	LeaveTypes []forms.Option
	Today      string
	Calendar   CalendarView
	Holidays   []calendar.Holiday
	LoadError  string
}

func (h *Handler) employeeView(r *http.Request) (EmployeeView, error) {
	id, _ := h.Sessions.Identity(r.Context())
	now := h.now()
	view := EmployeeView{
		FirstName:  id.FirstName,
		Submission: forms.NewSubmission(forms.SickLeaveFailed),
		LeaveTypes: forms.LeaveTypes,
		Today:      now.Format(time.DateOnly),
		Calendar:   BuildCalendar(r.URL.Query(), now, employeeHome, map[string]string{}),
		Holidays:   calendar.Upcoming(now, 6),
	}
	if view.FirstName == "" {
		view.FirstName = "User"
	}
	ov, err := h.Leave.Overview(r.Context(), id.UserID)
	if err != nil {
		view.LoadError = "Your leave history could not be loaded."
		return view, err
	}
	view.Overview = ov
	view.Sick = ov.Balance(leave.TypeSick)
	view.Medical = ov.Balance(leave.TypeMedical)
	return view, nil
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	view, err := h.employeeView(r)
	if err != nil {
		slog.Error("load leave overview failed", "err", err, "request_id", middleware.GetRequestID(r.Context()))
		status = http.StatusInternalServerError
	}
	h.page(w, r, status, "employee_dashboard", render.TemplateData{Title: "Employee Dashboard", Data: view})
}

func (h *Handler) handleSickLeave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := forms.SickLeaveInput{
		StartDate: strings.TrimSpace(r.PostForm.Get("startDate")),
		EndDate:   strings.TrimSpace(r.PostForm.Get("endDate")),
		Reason:    strings.TrimSpace(r.PostForm.Get("reason")),
		Type:      strings.ToLower(strings.TrimSpace(r.PostForm.Get("type"))),
	}
	id, _ := h.Sessions.Identity(r.Context())

	rerender := func(status int, view EmployeeView) {
		view.Form = in
		h.page(w, r, status, "employee_dashboard", render.TemplateData{Title: "Employee Dashboard", Data: view})
	}
	view, err := h.employeeView(r)
	if err != nil {
		slog.Error("load leave overview failed", "err", err, "request_id", middleware.GetRequestID(r.Context()))
	}

	if errs := h.Validator.Check(in); errs != nil {
		view.Submission.Invalid(errs)
		rerender(http.StatusUnprocessableEntity, view)
		return
	}
	_ = view.Submission.Begin()

	req := gateway.SickLeaveRequest{
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Reason:        in.Reason,
		Type:          in.Type,
		EmployeeName:  id.FirstName,
		SubmittedDate: h.now().Format(time.DateOnly),
	}
	if req.EmployeeName == "" {
		req.EmployeeName = "Employee"
	}
	caller := gateway.Session{UserID: id.UserID, Email: id.Email, Role: id.Role, FirstName: id.FirstName, Token: id.Token}
	key := h.Sessions.Key(r.Context(), "sick_leave", req.StartDate, req.EndDate, req.Type, req.Reason)
	receipt, _, err := forms.Do(r.Context(), h.Dedupe, key, func(ctx context.Context) (gateway.SickLeaveReceipt, error) {
		return h.Backend.SubmitSickLeave(ctx, caller, req)
	})
	if err != nil {
		h.formFailed(r, "sick_leave", err)
		_ = view.Submission.Fail(failureMessage(err))
		view.Submission.Errors = fieldErrors(err)
		rerender(failureStatus(err), view)
		return
	}

	_ = view.Submission.Succeed(forms.SickLeaveSucceeded)
	if h.Leaves != nil {
		h.Leaves.LeaveSubmitted(in.Type)
	}
	h.record(r, audit.Entry{ActorID: id.UserID, Action: audit.ActionLeaveSubmitted, EntityType: "leave_request", EntityID: receipt.ID, After: map[string]any{"type": in.Type, "days": receipt.Days}})
	h.Sessions.Flash(r.Context(), "success", view.Submission.Message)
	h.redirect(w, r, employeeHome)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	req, err := h.Leave.Cancel(r.Context(), chi.URLParam(r, "requestID"), user)
	if err != nil {
		h.flashFailure(r, "leave cancel failed", err)
		h.redirect(w, r, employeeHome)
		return
	}
	h.record(r, audit.Entry{ActorID: user.UserID, Action: audit.ActionLeaveCancelled, EntityType: "leave_request", EntityID: req.ID})
	h.Sessions.Flash(r.Context(), "success", fmt.Sprintf("Request %s cancelled.", req.Reference()))
	h.redirect(w, r, employeeHome)
}
