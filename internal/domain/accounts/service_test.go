package accounts_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"leavedesk/internal/auth"
	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/testutil"
)

type recordingNotifier struct {
	links []string
}

func (n *recordingNotifier) PasswordResetRequested(_ context.Context, _ accounts.User, link string) error {
	n.links = append(n.links, link)
	return nil
}

type recordingProvisioner struct {
	userIDs []string
}

func (p *recordingProvisioner) Provision(_ context.Context, userID string) error {
	p.userIDs = append(p.userIDs, userID)
	return nil
}

func newService() (*accounts.Service, *testutil.AccountStore, *recordingNotifier, *recordingProvisioner) {
	store := testutil.NewAccountStore()
	svc := accounts.NewService(store, "http://localhost:8080/", time.Hour)
	notifier := &recordingNotifier{}
	provisioner := &recordingProvisioner{}
	svc.Notifier = notifier
	svc.Provisioner = provisioner
	return svc, store, notifier, provisioner
}

func signupInput() accounts.SignupInput {
	return accounts.SignupInput{
		FirstName:  "Neha",
		MiddleName: "K",
		LastName:   "Verma",
		Email:      " Neha@Example.com ",
		Password:   "Str0ng!pass",
		Role:       auth.RoleEmployee,
		Department: "Engineering",
	}
}

func TestSignupAndLogin(t *testing.T) {
	svc, _, _, provisioner := newService()
	ctx := context.Background()

	user, err := svc.Signup(ctx, signupInput())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "neha@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Name() != "Neha K Verma" {
		t.Fatalf("unexpected name %q", user.Name())
	}
	if len(provisioner.userIDs) != 1 || provisioner.userIDs[0] != user.ID {
		t.Fatalf("expected balances provisioned for new user, got %v", provisioner.userIDs)
	}

	got, err := svc.Login(ctx, "NEHA@example.com", "Str0ng!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID || got.Role != auth.RoleEmployee {
		t.Fatalf("unexpected login user %+v", got)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newService()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, signupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, signupInput()); !errors.Is(err, accounts.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	svc, _, _, _ := newService()
	in := signupInput()
	in.Role = auth.Role("manager")
	if _, err := svc.Signup(context.Background(), in); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _, _, _ := newService()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, signupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "Str0ng!pass"},
		{name: "wrong password", email: "neha@example.com", password: "wrong-password"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, accounts.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, store, notifier, _ := newService()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, signupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(notifier.links) != 0 || store.ResetCount() != 0 {
		t.Fatal("unknown email must not create a reset")
	}

	if err := svc.RequestPasswordReset(ctx, "neha@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(notifier.links) != 1 {
		t.Fatalf("expected one reset link, got %d", len(notifier.links))
	}
	link := notifier.links[0]
	if !strings.HasPrefix(link, "http://localhost:8080/reset-password?token=") {
		t.Fatalf("unexpected link %q", link)
	}
	token := strings.TrimPrefix(link, "http://localhost:8080/reset-password?token=")

	if err := svc.ResetPassword(ctx, token, "N3w!password"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Login(ctx, "neha@example.com", "N3w!password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := svc.ResetPassword(ctx, token, "An0ther!password"); !errors.Is(err, accounts.ErrInvalidReset) {
		t.Fatalf("expected reused token to fail, got %v", err)
	}
}

func TestPurgeExpiredResets(t *testing.T) {
	svc, store, _, _ := newService()
	ctx := context.Background()
	if _, err := svc.Signup(ctx, signupInput()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "neha@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	svc.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	n, err := svc.PurgeExpiredResets(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 || store.ResetCount() != 0 {
		t.Fatalf("expected one purged reset, got %d (remaining %d)", n, store.ResetCount())
	}
}
