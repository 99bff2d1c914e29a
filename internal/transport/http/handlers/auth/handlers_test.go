package authhandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/forms"
	"leavedesk/internal/gateway"
	"leavedesk/internal/testutil"
	authhandler "leavedesk/internal/transport/http/handlers/auth"
)

// countingGateway records how many times the backend is reached.
type countingGateway struct {
	gateway.Gateway
	calls atomic.Int32
}

func (g *countingGateway) Login(ctx context.Context, email, password string) (gateway.Session, error) {
	g.calls.Add(1)
	return g.Gateway.Login(ctx, email, password)
}

func (g *countingGateway) Signup(ctx context.Context, req gateway.SignupRequest) (gateway.Session, error) {
	g.calls.Add(1)
	return g.Gateway.Signup(ctx, req)
}

func (g *countingGateway) RequestPasswordReset(ctx context.Context, email string) error {
	g.calls.Add(1)
	return g.Gateway.RequestPasswordReset(ctx, email)
}

func (g *countingGateway) ResetPassword(ctx context.Context, token, password string) error {
	g.calls.Add(1)
	return g.Gateway.ResetPassword(ctx, token, password)
}

// linkCatcher keeps the last reset link instead of mailing it.
type linkCatcher struct {
	link string
}

func (c *linkCatcher) PasswordResetRequested(_ context.Context, _ accounts.User, link string) error {
	c.link = link
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func (e envelope) code() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

type fixture struct {
	router  http.Handler
	backend *countingGateway
	links   *linkCatcher
}

func newFixture() *fixture {
	leaveSvc := leave.NewService(testutil.NewLeaveStore(), 12, 10)
	links := &linkCatcher{}
	acctSvc := accounts.NewService(testutil.NewAccountStore(), "http://localhost:8080", time.Hour)
	acctSvc.Provisioner = leaveSvc
	acctSvc.Notifier = links

	backend := &countingGateway{Gateway: &gateway.Local{
		Accounts: acctSvc,
		Leave:    leaveSvc,
		Tokens:   auth.TokenIssuer{Secret: "0123456789abcdef0123456789abcdef", TTL: time.Hour},
	}}
	r := chi.NewRouter()
	authhandler.NewHandler(backend, nil, nil).RegisterRoutes(r)
	return &fixture{router: r, backend: backend, links: links}
}

func (f *fixture) post(t *testing.T, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, env
}

const signupBody = `{"firstName":"Asha","middleName":"Kumari","lastName":"Rao","email":"asha@example.com","password":"Str0ng!pass","confirmPassword":"Str0ng!pass","role":"employee","department":"Engineering"}`

func TestInvalidLoginNeverReachesBackend(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "malformed email", body: `{"email":"not-an-email","password":"Str0ng!pass"}`, field: "email"},
		{name: "missing email", body: `{"password":"Str0ng!pass"}`, field: "email"},
		{name: "short password", body: `{"email":"asha@example.com","password":"short"}`, field: "password"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			status, env := f.post(t, "/login", tc.body)
			if status != http.StatusBadRequest || env.code() != "validation_error" {
				t.Fatalf("expected 400 validation_error, got %d %q", status, env.code())
			}
			if len(env.Error.Details.Fields) == 0 || env.Error.Details.Fields[0].Field != tc.field {
				t.Fatalf("expected %s field error, got %+v", tc.field, env.Error.Details.Fields)
			}
			if n := f.backend.calls.Load(); n != 0 {
				t.Fatalf("expected no backend call, got %d", n)
			}
		})
	}
}

func TestSignupMismatchNeverReachesBackend(t *testing.T) {
	f := newFixture()
	body := strings.Replace(signupBody, `"confirmPassword":"Str0ng!pass"`, `"confirmPassword":"Different!1"`, 1)
	status, env := f.post(t, "/signup", body)
	if status != http.StatusBadRequest || env.code() != "validation_error" {
		t.Fatalf("expected 400, got %d %q", status, env.code())
	}
	if n := f.backend.calls.Load(); n != 0 {
		t.Fatalf("expected no backend call, got %d", n)
	}
}

func TestSignupThenLogin(t *testing.T) {
	f := newFixture()

	status, env := f.post(t, "/signup", signupBody)
	if status != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", status)
	}
	var sess gateway.Session
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Role != auth.RoleEmployee || sess.FirstName != "Asha" || sess.Token == "" {
		t.Fatalf("unexpected session %+v", sess)
	}

	if status, env = f.post(t, "/signup", signupBody); status != http.StatusConflict || env.code() != "email_taken" {
		t.Fatalf("duplicate signup: expected 409 email_taken, got %d %q", status, env.code())
	}
	if status, env = f.post(t, "/login", `{"email":"asha@example.com","password":"Wrong!pass1"}`); status != http.StatusUnauthorized || env.Error.Message != "Invalid email or password" {
		t.Fatalf("wrong password: expected 401, got %d %+v", status, env.Error)
	}
	if status, _ = f.post(t, "/login", `{"email":"ASHA@example.com","password":"Str0ng!pass"}`); status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", status)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture()
	if status, _ := f.post(t, "/signup", signupBody); status != http.StatusCreated {
		t.Fatalf("signup: %d", status)
	}

	status, env := f.post(t, "/password-reset", `{"email":"nobody@example.com"}`)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("unknown email: expected 200, got %d", status)
	}
	var msg map[string]string
	if err := json.Unmarshal(env.Data, &msg); err != nil || msg["message"] != forms.ForgotPasswordSucceeded {
		t.Fatalf("expected neutral message, got %s (%v)", env.Data, err)
	}
	if f.links.link != "" {
		t.Fatal("expected no reset link for an unknown account")
	}

	if status, _ = f.post(t, "/password-reset", `{"email":"asha@example.com"}`); status != http.StatusOK {
		t.Fatalf("known email: expected 200, got %d", status)
	}
	link, err := url.Parse(f.links.link)
	if err != nil || link.Query().Get("token") == "" {
		t.Fatalf("expected a reset link with token, got %q", f.links.link)
	}
	confirm := `{"token":"` + link.Query().Get("token") + `","password":"N3w!passw0rd","confirmPassword":"N3w!passw0rd"}`

	if status, _ = f.post(t, "/password-reset/confirm", confirm); status != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", status)
	}
	if status, env = f.post(t, "/password-reset/confirm", confirm); status != http.StatusBadRequest || env.code() != "invalid_token" {
		t.Fatalf("reused token: expected 400 invalid_token, got %d %q", status, env.code())
	}
	if status, _ = f.post(t, "/login", `{"email":"asha@example.com","password":"N3w!passw0rd"}`); status != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", status)
	}
}

func TestMalformedPayload(t *testing.T) {
	f := newFixture()
	for _, path := range []string{"/login", "/signup", "/password-reset", "/password-reset/confirm"} {
		if status, env := f.post(t, path, `{"email":`); status != http.StatusBadRequest || env.code() != "invalid_payload" {
			t.Fatalf("%s: expected 400 invalid_payload, got %d %q", path, status, env.code())
		}
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	f := newFixture()
	if status, env := f.post(t, "/logout", `{}`); status != http.StatusOK || !env.Success {
		t.Fatalf("expected 200, got %d", status)
	}
}
