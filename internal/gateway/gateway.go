// Package gateway is how the form pages reach the backend. Local calls the
// domain services in-process; Remote talks to a separate backend over HTTP.
// Neither invents a success when the backend cannot be reached.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/domain/leave"
)

// ErrUnavailable wraps transport failures: refused connections, timeouts,
// unreadable responses.
var ErrUnavailable = errors.New("backend unavailable")

type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	FirstName string    `json:"firstName"`
	Token     string    `json:"token"`
}

type SignupRequest struct {
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type SickLeaveRequest struct {
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Reason        string `json:"reason"`
	Type          string `json:"type"`
	EmployeeName  string `json:"employeeName"`
	SubmittedDate string `json:"submittedDate"`
}

type SickLeaveReceipt struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Days      int    `json:"days"`
}

type Gateway interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Signup(ctx context.Context, req SignupRequest) (Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	SubmitSickLeave(ctx context.Context, caller Session, req SickLeaveRequest) (SickLeaveReceipt, error)
}

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is a rejection the backend explained. Message is safe to show.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %d %s: %s", e.Status, e.Code, e.Message)
}

// Message returns the backend's explanation, or "" when err carries none.
func Message(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return ""
}

// Describe maps a domain error to the status and message shown to users. ok is
// false for unexpected errors, which callers report as internal failures.
func Describe(err error) (e *Error, ok bool) {
	switch {
	case errors.As(err, &e):
		return e, true
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return &Error{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "Invalid email or password"}, true
	case errors.Is(err, accounts.ErrEmailTaken):
		return &Error{Status: http.StatusConflict, Code: "email_taken", Message: "An account with this email already exists"}, true
	case errors.Is(err, accounts.ErrInvalidReset):
		return &Error{Status: http.StatusBadRequest, Code: "invalid_token", Message: "This reset link is invalid or has expired"}, true
	case errors.Is(err, leave.ErrInvalidType):
		return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "Please select a valid leave type", Fields: []FieldError{{"type", "Please select a valid leave type"}}}, true
	case errors.Is(err, leave.ErrStartInPast):
		return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "Start date cannot be in the past", Fields: []FieldError{{"startDate", "Start date cannot be in the past"}}}, true
	case errors.Is(err, leave.ErrInvalidRange):
		return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "End date must be after start date", Fields: []FieldError{{"endDate", "End date must be after start date"}}}, true
	case errors.Is(err, leave.ErrReasonShort):
		return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "Please provide more details (at least 10 characters)", Fields: []FieldError{{"reason", "Please provide more details (at least 10 characters)"}}}, true
	case errors.Is(err, leave.ErrOverlap):
		return &Error{Status: http.StatusConflict, Code: "overlap", Message: "You already have leave booked on these dates"}, true
	case errors.Is(err, leave.ErrNotFound), errors.Is(err, accounts.ErrNotFound):
		return &Error{Status: http.StatusNotFound, Code: "not_found", Message: "Not found"}, true
	case errors.Is(err, leave.ErrNotPending):
		return &Error{Status: http.StatusConflict, Code: "not_pending", Message: "Only pending requests can be changed"}, true
	case errors.Is(err, leave.ErrForbidden):
		return &Error{Status: http.StatusForbidden, Code: "forbidden", Message: "You are not allowed to change this request"}, true
	}
	return nil, false
}
