// Package pageshandler serves the server-rendered pages: the landing page,
// the credential forms and both dashboards.
package pageshandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/analytics"
	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/platform/session"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
	"leavedesk/internal/web/render"
)

// AttemptObserver counts credential form outcomes.
type AttemptObserver interface {
	AuthAttempt(form, outcome string)
}

type LeaveObserver interface {
	LeaveSubmitted(leaveType string)
	LeaveDecided(status string)
}

type Handler struct {
	Render    *render.Renderer
	Sessions  *session.Manager
	Backend   gateway.Gateway
	Leave     *leave.Service
	Refresher *analytics.Refresher
	Validator *forms.Validator
	Dedupe    *forms.Deduper
	Audit     audit.Recorder
	Attempts  AttemptObserver
	Leaves    LeaveObserver

	LoginRedirect  time.Duration
	SignupRedirect time.Duration
	Now            func() time.Time
}

func NewHandler(renderer *render.Renderer, sessions *session.Manager, backend gateway.Gateway, leaveSvc *leave.Service, refresher *analytics.Refresher) *Handler {
	return &Handler{
		Render:         renderer,
		Sessions:       sessions,
		Backend:        backend,
		Leave:          leaveSvc,
		Refresher:      refresher,
		Validator:      forms.NewValidator(),
		Dedupe:         &forms.Deduper{},
		LoginRedirect:  1500 * time.Millisecond,
		SignupRedirect: time.Second,
		Now:            time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

const (
	adminHome    = "/dashboard"
	employeeHome = "/employee-dashboard"
	loginPath    = "/login"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleLanding)
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/signup", h.handleSignupPage)
	r.Post("/signup", h.handleSignup)
	r.Get("/forgot-password", h.handleForgotPage)
	r.Post("/forgot-password", h.handleForgot)
	r.Get("/reset-password", h.handleResetPage)
	r.Post("/reset-password", h.handleReset)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RoleGuard(h.Sessions, middleware.RoleGuardOptions{
			Allowed:   []auth.Role{auth.RoleAdmin},
			Fallback:  employeeHome,
			LoginPath: loginPath,
		}))
		r.Get("/dashboard", h.handleDashboard)
		r.Post("/dashboard/refresh", h.handleRefresh)
		r.Get("/dashboard/export", h.handleExport)
		r.Post("/dashboard/requests/{requestID}/approve", h.handleDecision(leave.StatusApproved))
		r.Post("/dashboard/requests/{requestID}/reject", h.handleDecision(leave.StatusRejected))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RoleGuard(h.Sessions, middleware.RoleGuardOptions{
			Allowed:   []auth.Role{auth.RoleEmployee},
			Fallback:  adminHome,
			LoginPath: loginPath,
		}))
		r.Get("/employee-dashboard", h.handleEmployeeDashboard)
		r.Post("/employee-dashboard", h.handleSickLeave)
		r.Post("/employee-dashboard/requests/{requestID}/cancel", h.handleCancel)
	})
}

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "landing", render.TemplateData{Title: "Smart Leave Management"})
}

// NotFound renders the catch-all page for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusNotFound, "not_found", render.TemplateData{Title: "Page Not Found", Data: r.URL.Path})
}

// page attaches the signed-in user, if any, and renders name.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if data.User == nil {
		if id, ok := h.Sessions.Identity(r.Context()); ok {
			u := id.User()
			data.User = &u
		}
	}
	if err := h.Render.Render(w, r, status, name, data); err != nil {
		slog.Error("render page failed", "template", name, "err", err, "request_id", middleware.GetRequestID(r.Context()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// failureStatus is the response code for a form the backend turned down.
func failureStatus(err error) int {
	if e, ok := gateway.Describe(err); ok {
		return e.Status
	}
	if gateway.IsUnavailable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// failureMessage is the backend's own explanation for a known rejection.
func failureMessage(err error) string {
	if e, ok := gateway.Describe(err); ok {
		return e.Message
	}
	return ""
}

func (h *Handler) observe(form, outcome string) {
	if h.Attempts != nil {
		h.Attempts.AuthAttempt(form, outcome)
	}
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

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
