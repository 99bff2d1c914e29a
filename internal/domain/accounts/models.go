package accounts

import (
	"errors"
	"strings"
	"time"

	"leavedesk/internal/auth"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidReset       = errors.New("invalid or expired reset token")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	MiddleName   string    `json:"middleName,omitempty"`
	LastName     string    `json:"lastName"`
	Role         auth.Role `json:"role"`
	Department   string    `json:"department"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Name joins first, optional middle and last names with single spaces.
func (u User) Name() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (u User) Context() auth.UserContext {
	return auth.UserContext{UserID: u.ID, Email: u.Email, Role: u.Role, FirstName: u.FirstName}
}

type SignupInput struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Password   string
	Role       auth.Role
	Department string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
