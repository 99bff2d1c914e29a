package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateRequest(ctx context.Context, userID string, in SubmitInput, days int) (Request, error)
	GetRequest(ctx context.Context, id string) (Request, error)
	ListRequests(ctx context.Context, filter Filter) (ListResult, error)
	HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error)
	Decide(ctx context.Context, id string, status Status, deciderID string, at time.Time) (Request, error)
	Cancel(ctx context.Context, id, userID string) (Request, error)
	Balances(ctx context.Context, userID string) ([]Balance, error)
	EnsureBalances(ctx context.Context, userID string, totals map[Type]int) error
}

var _ StoreAPI = (*Store)(nil)
