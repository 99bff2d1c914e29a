package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leavedesk/internal/auth"
	"leavedesk/internal/platform/config"
)

// withSession runs fn inside a loaded session context.
func withSession(t *testing.T, m *Manager, fn func(ctx context.Context)) {
	t.Helper()
	h := m.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLoginStoresIdentity(t *testing.T) {
	m := NewMemory()
	withSession(t, m, func(ctx context.Context) {
		if _, ok := m.Identity(ctx); ok {
			t.Fatal("expected no identity before login")
		}
		if got := m.FirstName(ctx); got != "User" {
			t.Fatalf("expected default first name, got %q", got)
		}

		id := Identity{UserID: "u1", Email: "a@example.com", Role: auth.RoleAdmin, FirstName: "Asha", Token: "jwt"}
		if err := m.Login(ctx, id); err != nil {
			t.Fatalf("Login: %v", err)
		}
		got, ok := m.Identity(ctx)
		if !ok || got != id {
			t.Fatalf("Identity = %+v, %v", got, ok)
		}
		if m.Role(ctx) != auth.RoleAdmin || m.FirstName(ctx) != "Asha" {
			t.Fatal("typed accessors disagree with identity")
		}
		if got.User().Role != auth.RoleAdmin {
			t.Fatal("user context lost the role")
		}

		if err := m.Logout(ctx); err != nil {
			t.Fatalf("Logout: %v", err)
		}
		if _, ok := m.Identity(ctx); ok {
			t.Fatal("expected identity cleared after logout")
		}
	})
}

func TestIdentityRejectsUnknownRole(t *testing.T) {
	m := NewMemory()
	withSession(t, m, func(ctx context.Context) {
		m.Put(ctx, keyUserID, "u1")
		m.Put(ctx, keyRole, "superuser")
		if _, ok := m.Identity(ctx); ok {
			t.Fatal("unknown role must not yield an identity")
		}
		if m.Role(ctx) != "superuser" {
			t.Fatal("raw role should still be readable")
		}
	})
}

func TestFlashPopsOnce(t *testing.T) {
	m := NewMemory()
	withSession(t, m, func(ctx context.Context) {
		m.Flash(ctx, "success", "Saved")
		kind, msg := m.PopFlash(ctx)
		if kind != "success" || msg != "Saved" {
			t.Fatalf("PopFlash = %q %q", kind, msg)
		}
		if _, msg := m.PopFlash(ctx); msg != "" {
			t.Fatalf("flash should be consumed, got %q", msg)
		}
	})
}

func TestKeyDependsOnValues(t *testing.T) {
	m := NewMemory()
	withSession(t, m, func(ctx context.Context) {
		a := m.Key(ctx, "login", "a@example.com", "secret")
		b := m.Key(ctx, "login", "a@example.com", "secret")
		c := m.Key(ctx, "login", "b@example.com", "secret")
		if a != b {
			t.Fatal("identical submissions must share a key")
		}
		if a == c {
			t.Fatal("different submissions must not share a key")
		}
	})
}

func TestNewFallsBackToMemory(t *testing.T) {
	cfg := config.Config{Environment: "production", SessionLifetime: 2 * time.Hour, SessionCookieName: "ld_session"}
	m, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.Cookie.Secure || !m.Cookie.HttpOnly || m.Cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie settings %+v", m.Cookie)
	}
	if m.Lifetime != 2*time.Hour || m.Cookie.Name != "ld_session" {
		t.Fatalf("config not applied")
	}
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	if _, err := New(config.Config{RedisURL: "://nope"}, nil); err == nil {
		t.Fatal("expected redis URL parse error")
	}
}

func TestSealedTokenRoundTrip(t *testing.T) {
	m, err := New(config.Config{
		Environment:          "development",
		SessionLifetime:      time.Hour,
		SessionCookieName:    "sid",
		SessionEncryptionKey: "0123456789abcdef0123456789abcdef",
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	withSession(t, m, func(ctx context.Context) {
		id := Identity{UserID: "u1", Role: auth.RoleEmployee, FirstName: "Ravi", Token: "jwt-value"}
		if err := m.Login(ctx, id); err != nil {
			t.Fatalf("Login: %v", err)
		}
		if raw := m.GetString(ctx, keyToken); raw == "" || raw == "jwt-value" {
			t.Fatalf("expected sealed token in store, got %q", raw)
		}
		got, ok := m.Identity(ctx)
		if !ok || got.Token != "jwt-value" {
			t.Fatalf("Identity = %+v, %v", got, ok)
		}
	})
}
