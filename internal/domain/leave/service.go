package leave

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"leavedesk/internal/auth"
)

// SubmissionNotifier is told about new requests so HR can follow up.
type SubmissionNotifier interface {
	LeaveSubmitted(ctx context.Context, req Request) error
}

// DecisionNotifier tells the employee their request was approved or rejected.
type DecisionNotifier interface {
	LeaveDecided(ctx context.Context, req Request) error
}

type Service struct {
	Store      StoreAPI
	Notifier   SubmissionNotifier
	Decisions  DecisionNotifier
	Allowances map[Type]int
	Now        func() time.Time

	sanitizer *bluemonday.Policy
}

func NewService(store StoreAPI, sickAllowance, medicalAllowance int) *Service {
	return &Service{
		Store:      store,
		Allowances: map[Type]int{TypeSick: sickAllowance, TypeMedical: medicalAllowance},
		Now:        time.Now,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// MinReasonLength applies to the reason after markup is stripped.
const MinReasonLength = 10

// SanitizeReason strips markup from the free-text reason and keeps plain text unescaped;
// output escaping is left to the templates and encoders.
func (s *Service) SanitizeReason(reason string) string {
	if s.sanitizer == nil {
		s.sanitizer = bluemonday.StrictPolicy()
	}
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(reason)))
}

func (s *Service) Submit(ctx context.Context, user auth.UserContext, in SubmitInput) (Request, error) {
	if _, ok := ParseType(string(in.Type)); !ok {
		return Request{}, ErrInvalidType
	}
	today := CalendarDate(s.now())
	in.StartDate = CalendarDate(in.StartDate)
	in.EndDate = CalendarDate(in.EndDate)
	if in.StartDate.Before(today) {
		return Request{}, ErrStartInPast
	}
	days, err := CalculateDays(in.StartDate, in.EndDate)
	if err != nil {
		return Request{}, ErrInvalidRange
	}

	in.Reason = s.SanitizeReason(in.Reason)
	if utf8.RuneCountInString(in.Reason) < MinReasonLength {
		return Request{}, ErrReasonShort
	}

	overlap, err := s.Store.HasOverlap(ctx, user.UserID, in.StartDate, in.EndDate)
	if err != nil {
		return Request{}, fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return Request{}, ErrOverlap
	}

	if strings.TrimSpace(in.EmployeeName) == "" {
		in.EmployeeName = user.FirstName
	}
	if in.EmployeeName == "" {
		in.EmployeeName = "Employee"
	}
	if in.SubmittedDate.IsZero() {
		in.SubmittedDate = today
	} else {
		in.SubmittedDate = CalendarDate(in.SubmittedDate)
	}

	req, err := s.Store.CreateRequest(ctx, user.UserID, in, days)
	if err != nil {
		return Request{}, err
	}
	if s.Notifier != nil {
		if err := s.Notifier.LeaveSubmitted(ctx, req); err != nil {
			slog.Warn("leave submission notification failed", "err", err, "request", req.Reference())
		}
	}
	return req, nil
}

func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	history, err := s.Store.ListRequests(ctx, Filter{UserID: userID})
	if err != nil {
		return Overview{}, err
	}
	balances, err := s.Store.Balances(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	out := Overview{History: history.Items, Balances: balances}
	out.Pending, out.Approved = CountByStatus(history.Items)
	return out, nil
}

func (s *Service) List(ctx context.Context, filter Filter) (ListResult, error) {
	return s.Store.ListRequests(ctx, filter)
}

func (s *Service) Approve(ctx context.Context, id string, decider auth.UserContext) (Request, error) {
	return s.decide(ctx, id, StatusApproved, decider)
}

func (s *Service) Reject(ctx context.Context, id string, decider auth.UserContext) (Request, error) {
	return s.decide(ctx, id, StatusRejected, decider)
}

func (s *Service) decide(ctx context.Context, id string, status Status, decider auth.UserContext) (Request, error) {
	if decider.Role != auth.RoleAdmin {
		return Request{}, ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return Request{}, ErrNotFound
	}
	req, err := s.Store.Decide(ctx, id, status, decider.UserID, s.now())
	if err != nil {
		return Request{}, err
	}
	if s.Decisions != nil {
		if err := s.Decisions.LeaveDecided(ctx, req); err != nil {
			slog.Warn("leave decision notification failed", "err", err, "request", req.Reference())
		}
	}
	return req, nil
}

func (s *Service) Cancel(ctx context.Context, id string, user auth.UserContext) (Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Request{}, ErrNotFound
	}
	return s.Store.Cancel(ctx, id, user.UserID)
}

// Provision creates the yearly allowances for a new account.
func (s *Service) Provision(ctx context.Context, userID string) error {
	return s.Store.EnsureBalances(ctx, userID, s.Allowances)
}
