package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"filippo.io/csrf/gorilla"
)

// CSRF protects state-changing page routes using Fetch metadata and Origin
// checks. trusted entries may be full URLs or host:port values.
func CSRF(authKey []byte, trusted []string, onFailure http.Handler) func(http.Handler) http.Handler {
	opts := []csrf.Option{}
	if onFailure == nil {
		onFailure = http.HandlerFunc(csrfFailed)
	}
	opts = append(opts, csrf.ErrorHandler(onFailure))
	if hosts := trustedHosts(trusted); len(hosts) > 0 {
		opts = append(opts, csrf.TrustedOrigins(hosts))
	}
	return csrf.Protect(authKey, opts...)
}

func trustedHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		out = append(out, o)
	}
	return out
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("csrf check failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
		"request_id", GetRequestID(r.Context()),
	)
	http.Error(w, "Forbidden - request origin not allowed", http.StatusForbidden)
}
