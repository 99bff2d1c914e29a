package server

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/analytics"
	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/gateway"
	"leavedesk/internal/platform/config"
	"leavedesk/internal/platform/metrics"
	"leavedesk/internal/platform/session"
	analyticshandler "leavedesk/internal/transport/http/handlers/analytics"
	audithandler "leavedesk/internal/transport/http/handlers/audit"
	authhandler "leavedesk/internal/transport/http/handlers/auth"
	leavehandler "leavedesk/internal/transport/http/handlers/leave"
	notificationshandler "leavedesk/internal/transport/http/handlers/notifications"
	pageshandler "leavedesk/internal/transport/http/handlers/pages"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/web/render"
)

// AuditTrail both records and lists audit events.
type AuditTrail interface {
	audit.Recorder
	audithandler.Trail
}

// Deps is everything the router needs; Run builds it from Postgres, tests
// from in-memory stores.
type Deps struct {
	Tokens    auth.TokenIssuer
	Sessions  *session.Manager
	Backend   gateway.Gateway
	Leave     *leave.Service
	Inbox     notificationshandler.Inbox
	Audit     AuditTrail
	Refresher *analytics.Refresher
	Metrics   *metrics.Collector
	Renderer  *render.Renderer
	Static    fs.FS
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(!cfg.IsDevelopment()))
	if d.Metrics != nil {
		router.Use(middleware.Metrics(d.Metrics))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.AuthRateLimit(cfg.AuthRateLimitPerMinute, time.Minute))
	router.Use(d.Sessions.LoadAndSave)
	router.Use(middleware.Authenticate(d.Tokens, d.Sessions))
	router.Use(middleware.Logger)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler())
	}
	if d.Static != nil {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.NoStore)

		authHandler := authhandler.NewHandler(d.Backend, d.Sessions, d.Audit)
		if d.Metrics != nil {
			authHandler.Attempts = d.Metrics
		}
		authHandler.RegisterRoutes(r)

		leaveHandler := leavehandler.NewHandler(d.Leave, d.Audit)
		if d.Metrics != nil {
			leaveHandler.Observer = d.Metrics
		}
		leaveHandler.RegisterRoutes(r)

		analyticsHandler := analyticshandler.NewHandler(d.Refresher, d.Audit)
		analyticsHandler.RegisterRoutes(r)

		notificationshandler.NewHandler(d.Inbox).RegisterRoutes(r)
		audithandler.NewHandler(d.Audit).RegisterRoutes(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.Fail(w, http.StatusNotFound, "not_found", "resource not found", middleware.GetRequestID(r.Context()))
		})
	})

	pages := pageshandler.NewHandler(d.Renderer, d.Sessions, d.Backend, d.Leave, d.Refresher)
	pages.Audit = d.Audit
	pages.LoginRedirect = cfg.LoginRedirectDelay
	pages.SignupRedirect = cfg.SignupRedirectDelay
	if d.Now != nil {
		pages.Now = d.Now
	}
	if d.Metrics != nil {
		pages.Attempts = d.Metrics
		pages.Leaves = d.Metrics
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(cfg.CSRFAuthKey(), cfg.CSRFTrustedOrigins, nil))
		pages.RegisterRoutes(r)
	})
	router.NotFound(pages.NotFound)

	return router
}
