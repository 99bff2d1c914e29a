package accounts

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateUser(ctx context.Context, user User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
	CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (string, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	DeleteExpiredResets(ctx context.Context, now time.Time) (int64, error)
}

var _ StoreAPI = (*Store)(nil)
