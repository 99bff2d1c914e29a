package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/domain/analytics"
	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/domain/notifications"
	"leavedesk/internal/gateway"
	"leavedesk/internal/platform/config"
	"leavedesk/internal/platform/db"
	"leavedesk/internal/platform/email"
	"leavedesk/internal/platform/jobs"
	"leavedesk/internal/platform/metrics"
	"leavedesk/internal/platform/session"
	"leavedesk/internal/web/render"
	"leavedesk/web"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
}

// New connects to Postgres, prepares the schema and wires every service.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	collector := metrics.New()
	runner := jobs.New(pool)
	runner.Observer = collector

	inbox := notifications.New(notifications.NewStore(pool), email.New(cfg))
	inbox.Queue = runner
	inbox.HRAddress = cfg.HRNotifyEmail
	inbox.DefaultFrom = cfg.EmailFrom

	leaveSvc := leave.NewService(leave.NewStore(pool), cfg.SickLeaveAllowance, cfg.MedicalLeaveAllowance)
	leaveSvc.Notifier = inbox
	leaveSvc.Decisions = inbox

	accountSvc := accounts.NewService(accounts.NewStore(pool), cfg.BaseURL, cfg.PasswordResetTTL)
	accountSvc.Provisioner = leaveSvc
	accountSvc.Notifier = inbox

	tokens := auth.TokenIssuer{
		Secret:   cfg.SigningSecret(),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}

	var backend gateway.Gateway = &gateway.Local{Accounts: accountSvc, Leave: leaveSvc, Tokens: tokens}
	if cfg.BackendURL != "" {
		backend = gateway.NewRemote(cfg.BackendURL, cfg.BackendTimeout)
		slog.Info("using remote backend", "url", cfg.BackendURL)
	}

	sessions, err := session.New(cfg, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("session store: %w", err)
	}

	refresher := analytics.NewRefresher(cfg.RefreshDelay)
	refresher.Observe = collector.AnalyticsRefreshed

	renderer, err := newRenderer(sessions)
	if err != nil {
		pool.Close()
		return nil, err
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		pool.Close()
		return nil, err
	}

	if err := runner.Schedule(cfg.RefreshSchedule, jobs.JobAnalyticsRefresh, func(ctx context.Context) (any, error) {
		status, _, err := refresher.Refresh(ctx, "scheduled")
		return status, err
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schedule analytics refresh: %w", err)
	}
	if err := runner.Schedule("@every 1h", jobs.JobResetCleanup, func(ctx context.Context) (any, error) {
		removed, err := accountSvc.PurgeExpiredResets(ctx)
		return map[string]int64{"removed": removed}, err
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schedule reset cleanup: %w", err)
	}

	router := NewRouter(cfg, Deps{
		Tokens:    tokens,
		Sessions:  sessions,
		Backend:   backend,
		Leave:     leaveSvc,
		Inbox:     inbox,
		Audit:     audit.New(pool),
		Refresher: refresher,
		Metrics:   collector,
		Renderer:  renderer,
		Static:    static,
		Ready:     pool.Ping,
	})

	return &App{Config: cfg, DB: pool, Router: router, Jobs: runner}, nil
}

func newRenderer(flashes render.FlashSource) (*render.Renderer, error) {
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, Flashes: flashes})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return renderer, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests and jobs.
func Run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.DB.Close()

	jobCtx, stopJobs := context.WithCancel(context.Background())
	app.Jobs.Start(jobCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("leavedesk listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopJobs()
		app.Jobs.Stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	stopJobs()
	app.Jobs.Stop()
	return err
}
