package middleware

import (
	"context"
	"net/http"
	"strings"

	"leavedesk/internal/auth"
	"leavedesk/internal/platform/session"
)

// IdentitySource is the server-side session as seen by the guards.
type IdentitySource interface {
	Identity(ctx context.Context) (session.Identity, bool)
}

// Authenticate attaches the caller from a bearer token, or from the session
// when no Authorization header is sent. An invalid bearer token leaves the
// request anonymous rather than falling back to the cookie.
func Authenticate(tokens auth.TokenIssuer, sessions IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				parts := strings.Fields(header)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
					next.ServeHTTP(w, r)
					return
				}
				claims, err := tokens.Parse(parts[1])
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.User())))
				return
			}
			if sessions != nil {
				if id, ok := sessions.Identity(r.Context()); ok {
					next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), id.User())))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
