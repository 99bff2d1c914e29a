package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

const (
	JobMail             = "mail"
	JobAnalyticsRefresh = "analytics_refresh"
	JobResetCleanup     = "password_reset_cleanup"
)

type RunFunc func(context.Context) (any, error)

// Observer is told how every job ended.
type Observer interface {
	JobFinished(jobType, status string)
}

type Service struct {
	// DB is optional; when set every run is recorded in job_runs.
	DB       *pgxpool.Pool
	Observer Observer

	queue chan job
	cron  *cron.Cron
	wg    sync.WaitGroup
}

type job struct {
	Type string
	Run  RunFunc
}

func New(db *pgxpool.Pool) *Service {
	return &Service{
		DB:    db,
		queue: make(chan job, 128),
		cron:  cron.New(),
	}
}

// Schedule enqueues run on a cron expression ("@every 5m", "0 * * * *").
func (s *Service) Schedule(expr, jobType string, run RunFunc) error {
	_, err := s.cron.AddFunc(expr, func() {
		s.Enqueue(jobType, run)
	})
	return err
}

func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	s.cron.Start()
}

// Stop halts the scheduler and waits for the worker, which exits once the
// context passed to Start is done.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, j.Type, "running").Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	if s.Observer != nil {
		s.Observer.JobFinished(j.Type, status)
	}

	if runID != "" {
		detailsJSON, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			slog.Warn("job details marshal failed", "err", marshalErr)
			detailsJSON = []byte("{}")
		}
		errText := ""
		if err != nil {
			errText = err.Error()
		}
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, error = NULLIF($3, ''), completed_at = now()
      WHERE id = $4
    `, status, detailsJSON, errText, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}
