package pageshandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"leavedesk/internal/domain/audit"
	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/platform/session"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/web/render"
)

type LoginView struct {
	Form       forms.LoginInput
	Submission *forms.Submission
}

type SignupView struct {
	Form        forms.SignupInput
	Submission  *forms.Submission
	Strength    forms.Strength
	Departments []forms.Option
	Roles       []forms.Option
}

type ForgotView struct {
	Form       forms.ForgotPasswordInput
	Submission *forms.Submission
}

type ResetView struct {
	Form       forms.ResetPasswordInput
	Submission *forms.Submission
	Strength   forms.Strength
}

const (
	loginTitle  = "Sign In"
	signupTitle = "Create Account"
	forgotTitle = "Forgot Password"
	resetTitle  = "Reset Password"
)

func newSignupView() SignupView {
	return SignupView{
		Form:        forms.SignupInput{Role: "employee"},
		Submission:  forms.NewSubmission(forms.SignupFailed),
		Departments: forms.Departments,
		Roles:       forms.Roles,
	}
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	view := LoginView{Submission: forms.NewSubmission(forms.LoginFailed)}
	h.page(w, r, http.StatusOK, "login", render.TemplateData{Title: loginTitle, Data: view})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := forms.LoginInput{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	view := LoginView{Form: forms.LoginInput{Email: in.Email}, Submission: forms.NewSubmission(forms.LoginFailed)}

	if errs := h.Validator.Check(in); errs != nil {
		h.observe("login", "invalid")
		view.Submission.Invalid(errs)
		h.page(w, r, http.StatusUnprocessableEntity, "login", render.TemplateData{Title: loginTitle, Data: view})
		return
	}
	_ = view.Submission.Begin()

	key := h.Sessions.Key(r.Context(), "login", in.Email, in.Password)
	sess, _, err := forms.Do(r.Context(), h.Dedupe, key, func(ctx context.Context) (gateway.Session, error) {
		return h.Backend.Login(ctx, in.Email, in.Password)
	})
	if err != nil {
		h.observe("login", "rejected")
		h.record(r, audit.Entry{Action: audit.ActionLoginFailed, EntityType: "user", After: map[string]string{"email": strings.ToLower(in.Email)}})
		h.formFailed(r, "login", err)
		_ = view.Submission.Fail(failureMessage(err))
		h.page(w, r, failureStatus(err), "login", render.TemplateData{Title: loginTitle, Data: view})
		return
	}
	if err := h.signIn(r.Context(), sess); err != nil {
		h.sessionFailed(w, r, err)
		return
	}
	h.observe("login", "success")
	h.record(r, audit.Entry{ActorID: sess.UserID, Action: audit.ActionLogin, EntityType: "user", EntityID: sess.UserID})
	_ = view.Submission.Succeed(forms.LoginSucceeded)
	h.page(w, r, http.StatusOK, "login", render.TemplateData{
		Title:         loginTitle,
		Data:          view,
		Redirect:      sess.Role.HomePath(),
		RedirectAfter: h.LoginRedirect,
	})
}

func (h *Handler) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "signup", render.TemplateData{Title: signupTitle, Data: newSignupView()})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := forms.SignupInput{
		FirstName:       strings.TrimSpace(r.PostForm.Get("firstName")),
		MiddleName:      strings.TrimSpace(r.PostForm.Get("middleName")),
		LastName:        strings.TrimSpace(r.PostForm.Get("lastName")),
		Email:           strings.TrimSpace(r.PostForm.Get("email")),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
		Role:            strings.ToLower(strings.TrimSpace(r.PostForm.Get("role"))),
		Department:      strings.TrimSpace(r.PostForm.Get("department")),
	}
	if in.Role == "" {
		in.Role = "employee"
	}
	view := newSignupView()
	view.Form = in
	view.Form.Password, view.Form.ConfirmPassword = "", ""
	view.Strength = forms.PasswordStrength(in.Password)

	if errs := h.Validator.Check(in); errs != nil {
		h.observe("signup", "invalid")
		view.Submission.Invalid(errs)
		h.page(w, r, http.StatusUnprocessableEntity, "signup", render.TemplateData{Title: signupTitle, Data: view})
		return
	}
	_ = view.Submission.Begin()

	req := gateway.SignupRequest{
		Name:       in.FullName(),
		FirstName:  in.FirstName,
		MiddleName: in.MiddleName,
		LastName:   in.LastName,
		Email:      in.Email,
		Password:   in.Password,
		Role:       in.Role,
		Department: in.Department,
	}
	key := h.Sessions.Key(r.Context(), "signup", req.Email, req.Password, req.Name, req.Role, req.Department)
	sess, _, err := forms.Do(r.Context(), h.Dedupe, key, func(ctx context.Context) (gateway.Session, error) {
		return h.Backend.Signup(ctx, req)
	})
	if err != nil {
		h.observe("signup", "rejected")
		h.formFailed(r, "signup", err)
		_ = view.Submission.Fail(failureMessage(err))
		view.Submission.Errors = fieldErrors(err)
		h.page(w, r, failureStatus(err), "signup", render.TemplateData{Title: signupTitle, Data: view})
		return
	}
	if err := h.signIn(r.Context(), sess); err != nil {
		h.sessionFailed(w, r, err)
		return
	}
	h.observe("signup", "success")
	h.record(r, audit.Entry{ActorID: sess.UserID, Action: audit.ActionSignup, EntityType: "user", EntityID: sess.UserID, After: map[string]string{"role": string(sess.Role), "department": in.Department}})
	_ = view.Submission.Succeed(forms.SignupSucceeded)
	h.page(w, r, http.StatusOK, "signup", render.TemplateData{
		Title:         signupTitle,
		Data:          view,
		Redirect:      sess.Role.HomePath(),
		RedirectAfter: h.SignupRedirect,
	})
}

func (h *Handler) handleForgotPage(w http.ResponseWriter, r *http.Request) {
	view := ForgotView{Submission: forms.NewSubmission(forms.ForgotPasswordFailed)}
	h.page(w, r, http.StatusOK, "forgot_password", render.TemplateData{Title: forgotTitle, Data: view})
}

func (h *Handler) handleForgot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := forms.ForgotPasswordInput{Email: strings.TrimSpace(r.PostForm.Get("email"))}
	view := ForgotView{Form: in, Submission: forms.NewSubmission(forms.ForgotPasswordFailed)}

	if errs := h.Validator.Check(in); errs != nil {
		h.observe("forgot_password", "invalid")
		view.Submission.Invalid(errs)
		h.page(w, r, http.StatusUnprocessableEntity, "forgot_password", render.TemplateData{Title: forgotTitle, Data: view})
		return
	}
	_ = view.Submission.Begin()

	key := h.Sessions.Key(r.Context(), "forgot_password", in.Email)
	_, _, err := forms.Do(r.Context(), h.Dedupe, key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.Backend.RequestPasswordReset(ctx, in.Email)
	})
	if err != nil {
		h.observe("forgot_password", "rejected")
		h.formFailed(r, "forgot_password", err)
		_ = view.Submission.Fail(failureMessage(err))
		h.page(w, r, failureStatus(err), "forgot_password", render.TemplateData{Title: forgotTitle, Data: view})
		return
	}
	h.observe("forgot_password", "success")
	h.record(r, audit.Entry{Action: audit.ActionResetRequested, EntityType: "user"})
	view.Form = forms.ForgotPasswordInput{}
	_ = view.Submission.Succeed(forms.ForgotPasswordSucceeded)
	h.page(w, r, http.StatusOK, "forgot_password", render.TemplateData{Title: forgotTitle, Data: view})
}

func (h *Handler) handleResetPage(w http.ResponseWriter, r *http.Request) {
	view := ResetView{
		Form:       forms.ResetPasswordInput{Token: strings.TrimSpace(r.URL.Query().Get("token"))},
		Submission: forms.NewSubmission(forms.ResetPasswordFailed),
	}
	h.page(w, r, http.StatusOK, "reset_password", render.TemplateData{Title: resetTitle, Data: view})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := forms.ResetPasswordInput{
		Token:           strings.TrimSpace(r.PostForm.Get("token")),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
	}
	view := ResetView{
		Form:       forms.ResetPasswordInput{Token: in.Token},
		Submission: forms.NewSubmission(forms.ResetPasswordFailed),
		Strength:   forms.PasswordStrength(in.Password),
	}

	if errs := h.Validator.Check(in); errs != nil {
		h.observe("reset_password", "invalid")
		view.Submission.Invalid(errs)
		h.page(w, r, http.StatusUnprocessableEntity, "reset_password", render.TemplateData{Title: resetTitle, Data: view})
		return
	}
	_ = view.Submission.Begin()

	key := h.Sessions.Key(r.Context(), "reset_password", in.Token, in.Password)
	_, _, err := forms.Do(r.Context(), h.Dedupe, key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.Backend.ResetPassword(ctx, in.Token, in.Password)
	})
	if err != nil {
		h.observe("reset_password", "rejected")
		h.formFailed(r, "reset_password", err)
		_ = view.Submission.Fail(failureMessage(err))
		h.page(w, r, failureStatus(err), "reset_password", render.TemplateData{Title: resetTitle, Data: view})
		return
	}
	h.observe("reset_password", "success")
	h.record(r, audit.Entry{Action: audit.ActionResetCompleted, EntityType: "user"})
	view.Form.Token = ""
	view.Strength = forms.Strength{}
	_ = view.Submission.Succeed(forms.ResetPasswordSucceeded)
	h.page(w, r, http.StatusOK, "reset_password", render.TemplateData{Title: resetTitle, Data: view})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, signedIn := h.Sessions.Identity(r.Context())
	if err := h.Sessions.Logout(r.Context()); err != nil {
		h.sessionFailed(w, r, err)
		return
	}
	if signedIn {
		h.record(r, audit.Entry{ActorID: id.UserID, Action: audit.ActionLogout, EntityType: "user", EntityID: id.UserID})
	}
	h.Sessions.Flash(r.Context(), "info", "You have been signed out.")
	h.redirect(w, r, "/")
}

// signIn is the only place the page layer writes an identity.
func (h *Handler) signIn(ctx context.Context, s gateway.Session) error {
	return h.Sessions.Login(ctx, session.Identity{
		UserID:    s.UserID,
		Email:     s.Email,
		Role:      s.Role,
		FirstName: s.FirstName,
		Token:     s.Token,
	})
}

func (h *Handler) sessionFailed(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("session update failed", "err", err, "request_id", middleware.GetRequestID(r.Context()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// formFailed logs failures the user cannot fix by editing the form.
func (h *Handler) formFailed(r *http.Request, form string, err error) {
	if _, ok := gateway.Describe(err); ok {
		return
	}
	slog.Error("form submission failed", "form", form, "err", err, "request_id", middleware.GetRequestID(r.Context()))
}

// fieldErrors lifts per-field reasons out of a backend rejection.
func fieldErrors(err error) forms.FieldErrors {
	e, ok := gateway.Describe(err)
	if !ok || len(e.Fields) == 0 {
		return nil
	}
	out := make(forms.FieldErrors, len(e.Fields))
	for _, f := range e.Fields {
		if _, seen := out[f.Field]; !seen {
			out[f.Field] = f.Reason
		}
	}
	return out
}
