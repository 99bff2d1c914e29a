package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"leavedesk/internal/auth"
)

// Provisioner prepares per-user state (leave balances) once an account exists.
type Provisioner interface {
	Provision(ctx context.Context, userID string) error
}

// ResetNotifier delivers a password reset link to the account owner.
type ResetNotifier interface {
	PasswordResetRequested(ctx context.Context, user User, link string) error
}

type Service struct {
	Store       StoreAPI
	Provisioner Provisioner
	Notifier    ResetNotifier
	BaseURL     string
	ResetTTL    time.Duration
	Now         func() time.Time
}

func NewService(store StoreAPI, baseURL string, resetTTL time.Duration) *Service {
	return &Service{Store: store, BaseURL: baseURL, ResetTTL: resetTTL, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	if !in.Role.Valid() {
		return User{}, fmt.Errorf("signup: invalid role %q", in.Role)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.Store.CreateUser(ctx, User{
		Email:        NormalizeEmail(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		MiddleName:   strings.TrimSpace(in.MiddleName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		Department:   strings.TrimSpace(in.Department),
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, err
	}
	if s.Provisioner != nil {
		if err := s.Provisioner.Provision(ctx, user.ID); err != nil {
			return User{}, fmt.Errorf("provision user: %w", err)
		}
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	user, err := s.Store.UserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) User(ctx context.Context, id string) (User, error) {
	return s.Store.UserByID(ctx, id)
}

// RequestPasswordReset never reports whether the address is registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Store.UserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := s.Store.CreatePasswordReset(ctx, user.ID, auth.HashToken(token), s.now().Add(s.ResetTTL)); err != nil {
		return fmt.Errorf("store reset: %w", err)
	}
	if s.Notifier == nil {
		slog.Warn("password reset requested without notifier", "user_id", user.ID)
		return nil
	}
	return s.Notifier.PasswordResetRequested(ctx, user, s.resetLink(token))
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidReset
	}
	userID, err := s.Store.ConsumePasswordReset(ctx, auth.HashToken(token), s.now())
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Store.UpdatePassword(ctx, userID, hash)
}

func (s *Service) PurgeExpiredResets(ctx context.Context) (int64, error) {
	return s.Store.DeleteExpiredResets(ctx, s.now())
}

func (s *Service) resetLink(token string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}
