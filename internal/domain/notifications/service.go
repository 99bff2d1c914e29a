package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/platform/jobs"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Enqueuer runs mail delivery off the request path.
type Enqueuer interface {
	Enqueue(jobType string, run jobs.RunFunc) bool
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	Queue       Enqueuer
	DefaultFrom string
	// HRAddress receives a copy of every submitted request when set.
	HRAddress string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Create stores an in-app notification and mails the user a copy.
func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, userID, ntype, title, body); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	s.send(ctx, email, title, body)
	return nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) PasswordResetRequested(ctx context.Context, user accounts.User, link string) error {
	if s.Mailer == nil {
		return errors.New("no mailer configured")
	}
	body := fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password. It can be used once.\n\n%s\n\nIf you did not ask for this, you can ignore this email.\n", user.FirstName, link)
	s.send(ctx, user.Email, "Reset your password", body)
	return nil
}

func (s *Service) LeaveSubmitted(ctx context.Context, req leave.Request) error {
	title := fmt.Sprintf("%s submitted", req.Reference())
	body := fmt.Sprintf("%s for %s to %s (%d day(s)) is awaiting approval.",
		req.Type.Label(), req.StartDate.Format(time.DateOnly), req.EndDate.Format(time.DateOnly), req.Days)
	if err := s.store.CreateNotification(ctx, req.UserID, TypeLeaveSubmitted, title, body); err != nil {
		return err
	}
	if s.HRAddress != "" && s.Mailer != nil {
		s.send(ctx, s.HRAddress, fmt.Sprintf("New leave request from %s", req.EmployeeName),
			fmt.Sprintf("%s\n\nReason: %s\n", body, req.Reason))
	}
	return nil
}

func (s *Service) LeaveDecided(ctx context.Context, req leave.Request) error {
	ntype := TypeLeaveApproved
	if req.Status == leave.StatusRejected {
		ntype = TypeLeaveRejected
	}
	title := fmt.Sprintf("%s %s", req.Reference(), req.Status)
	body := fmt.Sprintf("Your %s from %s to %s was %s.",
		req.Type.Label(), req.StartDate.Format(time.DateOnly), req.EndDate.Format(time.DateOnly), lower(req.Status))
	return s.Create(ctx, req.UserID, ntype, title, body)
}

func lower(st leave.Status) string {
	switch st {
	case leave.StatusApproved:
		return "approved"
	case leave.StatusRejected:
		return "rejected"
	default:
		return string(st)
	}
}

func (s *Service) send(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	from := s.DefaultFrom
	deliver := func(ctx context.Context) (any, error) {
		return map[string]any{"subject": subject}, s.Mailer.Send(ctx, from, to, subject, body)
	}
	if s.Queue != nil && s.Queue.Enqueue(jobs.JobMail, deliver) {
		return
	}
	if _, err := deliver(ctx); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
}
