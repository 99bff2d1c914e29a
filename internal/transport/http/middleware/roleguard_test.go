package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"leavedesk/internal/auth"
	"leavedesk/internal/platform/session"
)

func TestRoleGuard(t *testing.T) {
	adminOnly := RoleGuardOptions{Allowed: []auth.Role{auth.RoleAdmin}, Fallback: "/employee-dashboard", LoginPath: "/login"}

	cases := []struct {
		name     string
		source   fixedIdentity
		opts     RoleGuardOptions
		status   int
		location string
	}{
		{
			name:     "anonymous goes to login",
			source:   fixedIdentity{},
			opts:     adminOnly,
			status:   http.StatusSeeOther,
			location: "/login",
		},
		{
			name:     "anonymous without login path uses fallback",
			source:   fixedIdentity{},
			opts:     RoleGuardOptions{Allowed: []auth.Role{auth.RoleAdmin}, Fallback: "/employee-dashboard"},
			status:   http.StatusSeeOther,
			location: "/employee-dashboard",
		},
		{
			name:     "employee on admin page goes to fallback",
			source:   fixedIdentity{id: session.Identity{UserID: "u1", Role: auth.RoleEmployee}, ok: true},
			opts:     adminOnly,
			status:   http.StatusSeeOther,
			location: "/employee-dashboard",
		},
		{
			name:   "admin passes",
			source: fixedIdentity{id: session.Identity{UserID: "u1", Role: auth.RoleAdmin}, ok: true},
			opts:   adminOnly,
			status: http.StatusNoContent,
		},
		{
			name:     "admin on employee page goes to dashboard",
			source:   fixedIdentity{id: session.Identity{UserID: "u1", Role: auth.RoleAdmin}, ok: true},
			opts:     RoleGuardOptions{Allowed: []auth.Role{auth.RoleEmployee}, Fallback: "/dashboard", LoginPath: "/login"},
			status:   http.StatusSeeOther,
			location: "/dashboard",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := RoleGuard(tc.source, tc.opts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if _, ok := GetUser(r.Context()); !ok {
					t.Fatal("expected guarded handler to see the user")
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tc.location {
				t.Fatalf("expected location %q, got %q", tc.location, got)
			}
			if called != (tc.location == "") {
				t.Fatalf("handler called = %v", called)
			}
		})
	}
}

func TestRoleGuardWithMemorySession(t *testing.T) {
	sessions := session.NewMemory()
	guard := RoleGuard(sessions, RoleGuardOptions{Allowed: []auth.Role{auth.RoleEmployee}, Fallback: "/dashboard", LoginPath: "/login"})
	page := sessions.LoadAndSave(guard(http.HandlerFunc(noContent)))

	login := sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Login(r.Context(), session.Identity{UserID: "u1", Role: auth.RoleEmployee, FirstName: "Ravi"}); err != nil {
			t.Fatalf("login: %v", err)
		}
	}))
	loginRec := httptest.NewRecorder()
	login.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/employee-dashboard", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected signed-in employee to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employee-dashboard", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected anonymous redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
