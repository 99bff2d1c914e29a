package middleware

import (
	"net/http"
	"slices"

	"leavedesk/internal/auth"
)

type RoleGuardOptions struct {
	Allowed   []auth.Role
	Fallback  string
	LoginPath string
}

// RoleGuard protects page routes. Anonymous visitors and unknown roles go to
// the login page; signed-in users without an allowed role go to Fallback.
func RoleGuard(source IdentitySource, opts RoleGuardOptions) func(http.Handler) http.Handler {
	login := opts.LoginPath
	if login == "" {
		login = opts.Fallback
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := source.Identity(r.Context())
			if !ok {
				http.Redirect(w, r, login, http.StatusSeeOther)
				return
			}
			if !slices.Contains(opts.Allowed, id.Role) {
				http.Redirect(w, r, opts.Fallback, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), id.User())))
		})
	}
}
