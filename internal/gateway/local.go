package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/domain/leave"
)

// Local serves the gateway from the in-process domain services.
type Local struct {
	Accounts *accounts.Service
	Leave    *leave.Service
	Tokens   auth.TokenIssuer
}

var _ Gateway = (*Local)(nil)

func (l *Local) session(u accounts.User) (Session, error) {
	token, err := l.Tokens.Generate(u.Context())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{UserID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName, Token: token}, nil
}

func (l *Local) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := l.Accounts.Login(ctx, email, password)
	if err != nil {
		return Session{}, describe(err)
	}
	return l.session(u)
}

func (l *Local) Signup(ctx context.Context, req SignupRequest) (Session, error) {
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		return Session{}, &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "Please select a valid role", Fields: []FieldError{{"role", "Please select a valid role"}}}
	}
	u, err := l.Accounts.Signup(ctx, accounts.SignupInput{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       role,
		Department: req.Department,
	})
	if err != nil {
		return Session{}, describe(err)
	}
	return l.session(u)
}

func (l *Local) RequestPasswordReset(ctx context.Context, email string) error {
	return describe(l.Accounts.RequestPasswordReset(ctx, email))
}

func (l *Local) ResetPassword(ctx context.Context, token, password string) error {
	return describe(l.Accounts.ResetPassword(ctx, token, password))
}

func (l *Local) SubmitSickLeave(ctx context.Context, caller Session, req SickLeaveRequest) (SickLeaveReceipt, error) {
	in, err := ParseSickLeave(req)
	if err != nil {
		return SickLeaveReceipt{}, err
	}
	user := auth.UserContext{UserID: caller.UserID, Email: caller.Email, Role: caller.Role, FirstName: caller.FirstName}
	created, err := l.Leave.Submit(ctx, user, in)
	if err != nil {
		return SickLeaveReceipt{}, describe(err)
	}
	return Receipt(created), nil
}

// ParseSickLeave turns the wire payload into a domain submission.
func ParseSickLeave(req SickLeaveRequest) (leave.SubmitInput, error) {
	t, ok := leave.ParseType(req.Type)
	if !ok {
		return leave.SubmitInput{}, describe(leave.ErrInvalidType)
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return leave.SubmitInput{}, &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "Start date is required", Fields: []FieldError{{"startDate", "Start date is required"}}}
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return leave.SubmitInput{}, &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "End date is required", Fields: []FieldError{{"endDate", "End date is required"}}}
	}
	in := leave.SubmitInput{Type: t, StartDate: start, EndDate: end, Reason: req.Reason, EmployeeName: req.EmployeeName}
	if req.SubmittedDate != "" {
		if d, err := time.Parse(time.DateOnly, req.SubmittedDate); err == nil {
			in.SubmittedDate = d
		}
	}
	return in, nil
}

func Receipt(r leave.Request) SickLeaveReceipt {
	return SickLeaveReceipt{ID: r.ID, Reference: r.Reference(), Status: string(r.Status), Days: r.Days}
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := Describe(err); ok {
		return e
	}
	return err
}
