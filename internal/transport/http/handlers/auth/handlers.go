package authhandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/domain/audit"
	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

// AttemptObserver counts credential form outcomes.
type AttemptObserver interface {
	AuthAttempt(form, outcome string)
}

type SessionEnder interface {
	Logout(ctx context.Context) error
}

type Handler struct {
	Backend   gateway.Gateway
	Validator *forms.Validator
	Sessions  SessionEnder
	Audit     audit.Recorder
	Attempts  AttemptObserver
}

func NewHandler(backend gateway.Gateway, sessions SessionEnder, auditSvc audit.Recorder) *Handler {
	return &Handler{Backend: backend, Validator: forms.NewValidator(), Sessions: sessions, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/signup", h.handleSignup)
	r.Post("/logout", h.handleLogout)
	r.Post("/password-reset", h.handleRequestReset)
	r.Post("/password-reset/confirm", h.handleConfirmReset)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload forms.LoginInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if errs := h.Validator.Check(payload); errs != nil {
		h.observe("login", "invalid")
		shared.FailForm(w, reqID, errs)
		return
	}

	sess, err := h.Backend.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.observe("login", "rejected")
		h.record(r, audit.Entry{Action: audit.ActionLoginFailed, EntityType: "user", After: map[string]string{"email": strings.ToLower(payload.Email)}})
		h.fail(w, reqID, "login_failed", err)
		return
	}
	h.observe("login", "success")
	h.record(r, audit.Entry{ActorID: sess.UserID, Action: audit.ActionLogin, EntityType: "user", EntityID: sess.UserID})
	api.Success(w, sess, reqID)
}

type signupPayload struct {
	gateway.SignupRequest
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload signupPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	req := normalizeSignup(payload.SignupRequest)
	confirm := payload.ConfirmPassword
	if confirm == "" {
		confirm = req.Password
	}
	input := forms.SignupInput{
		FirstName:       req.FirstName,
		MiddleName:      req.MiddleName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: confirm,
		Role:            req.Role,
		Department:      req.Department,
	}
	if errs := h.Validator.Check(input); errs != nil {
		h.observe("signup", "invalid")
		shared.FailForm(w, reqID, errs)
		return
	}

	sess, err := h.Backend.Signup(r.Context(), req)
	if err != nil {
		h.observe("signup", "rejected")
		h.fail(w, reqID, "signup_failed", err)
		return
	}
	h.observe("signup", "success")
	h.record(r, audit.Entry{ActorID: sess.UserID, Action: audit.ActionSignup, EntityType: "user", EntityID: sess.UserID, After: map[string]string{"role": string(sess.Role), "department": req.Department}})
	api.Created(w, sess, reqID)
}

// normalizeSignup fills the split name parts from the combined name when a
// client only sends "name", and the combined name from the parts otherwise.
func normalizeSignup(req gateway.SignupRequest) gateway.SignupRequest {
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.Department = strings.TrimSpace(req.Department)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.MiddleName = strings.TrimSpace(req.MiddleName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Role == "" {
		req.Role = "employee"
	}
	if req.FirstName == "" && req.LastName == "" {
		parts := strings.Fields(req.Name)
		switch {
		case len(parts) >= 3:
			req.FirstName, req.LastName = parts[0], parts[len(parts)-1]
			req.MiddleName = strings.Join(parts[1:len(parts)-1], " ")
		case len(parts) == 2:
			req.FirstName, req.LastName = parts[0], parts[1]
		case len(parts) == 1:
			req.FirstName = parts[0]
		}
	}
	req.Name = strings.Join(strings.Fields(req.FirstName+" "+req.MiddleName+" "+req.LastName), " ")
	return req
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, signedIn := middleware.GetUser(r.Context())
	if h.Sessions != nil {
		if err := h.Sessions.Logout(r.Context()); err != nil {
			api.Fail(w, http.StatusInternalServerError, "logout_failed", "failed to end session", reqID)
			return
		}
	}
	if signedIn {
		h.record(r, audit.Entry{ActorID: user.UserID, Action: audit.ActionLogout, EntityType: "user", EntityID: user.UserID})
	}
	api.Success(w, map[string]string{"status": "signed_out"}, reqID)
}

func (h *Handler) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload forms.ForgotPasswordInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	if errs := h.Validator.Check(payload); errs != nil {
		h.observe("forgot_password", "invalid")
		shared.FailForm(w, reqID, errs)
		return
	}
	if err := h.Backend.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		h.observe("forgot_password", "rejected")
		h.fail(w, reqID, "reset_request_failed", err)
		return
	}
	h.observe("forgot_password", "success")
	h.record(r, audit.Entry{Action: audit.ActionResetRequested, EntityType: "user"})
	api.Success(w, map[string]string{"message": forms.ForgotPasswordSucceeded}, reqID)
}

func (h *Handler) handleConfirmReset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload forms.ResetPasswordInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.ConfirmPassword == "" {
		payload.ConfirmPassword = payload.Password
	}
	if errs := h.Validator.Check(payload); errs != nil {
		h.observe("reset_password", "invalid")
		shared.FailForm(w, reqID, errs)
		return
	}
	if err := h.Backend.ResetPassword(r.Context(), payload.Token, payload.Password); err != nil {
		h.observe("reset_password", "rejected")
		h.fail(w, reqID, "reset_failed", err)
		return
	}
	h.observe("reset_password", "success")
	h.record(r, audit.Entry{Action: audit.ActionResetCompleted, EntityType: "user"})
	api.Success(w, map[string]string{"message": forms.ResetPasswordSucceeded}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, reqID, code string, err error) {
	if e, ok := gateway.Describe(err); ok {
		shared.FailGateway(w, reqID, e)
		return
	}
	if gateway.IsUnavailable(err) {
		api.Fail(w, http.StatusBadGateway, "backend_unavailable", "service temporarily unavailable", reqID)
		return
	}
	slog.Error("auth request failed", "code", code, "err", err, "request_id", reqID)
	api.Fail(w, http.StatusInternalServerError, code, "request failed", reqID)
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
