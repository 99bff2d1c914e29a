// Package testutil holds in-memory stores that satisfy the domain StoreAPI interfaces.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leavedesk/internal/domain/accounts"
	"leavedesk/internal/domain/leave"
)

type resetRecord struct {
	userID  string
	expires time.Time
	used    bool
}

type AccountStore struct {
	mu     sync.Mutex
	users  map[string]accounts.User
	resets map[string]*resetRecord
}

func NewAccountStore() *AccountStore {
	return &AccountStore{users: map[string]accounts.User{}, resets: map[string]*resetRecord{}}
}

var _ accounts.StoreAPI = (*AccountStore)(nil)

func (s *AccountStore) CreateUser(_ context.Context, user accounts.User) (accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return accounts.User{}, accounts.ErrEmailTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

func (s *AccountStore) UserByEmail(_ context.Context, email string) (accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return accounts.User{}, accounts.ErrNotFound
}

func (s *AccountStore) UserByID(_ context.Context, id string) (accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return accounts.User{}, accounts.ErrNotFound
	}
	return u, nil
}

func (s *AccountStore) CreatePasswordReset(_ context.Context, userID, tokenHash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[tokenHash] = &resetRecord{userID: userID, expires: expires}
	return nil
}

func (s *AccountStore) ConsumePasswordReset(_ context.Context, tokenHash string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.resets[tokenHash]
	if !ok || rec.used || !rec.expires.After(now) {
		return "", accounts.ErrInvalidReset
	}
	rec.used = true
	return rec.userID, nil
}

func (s *AccountStore) UpdatePassword(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return accounts.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[userID] = u
	return nil
}

func (s *AccountStore) DeleteExpiredResets(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for hash, rec := range s.resets {
		if rec.used || !rec.expires.After(now) {
			delete(s.resets, hash)
			n++
		}
	}
	return n, nil
}

// ResetCount reports stored reset tokens, used or not.
func (s *AccountStore) ResetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resets)
}

type LeaveStore struct {
	mu       sync.Mutex
	nextRef  int64
	requests map[string]leave.Request
	balances map[string]map[leave.Type]leave.Balance
}

func NewLeaveStore() *LeaveStore {
	return &LeaveStore{
		nextRef:  2001,
		requests: map[string]leave.Request{},
		balances: map[string]map[leave.Type]leave.Balance{},
	}
}

var _ leave.StoreAPI = (*LeaveStore)(nil)

func (s *LeaveStore) CreateRequest(_ context.Context, userID string, in leave.SubmitInput, days int) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := leave.Request{
		ID:            uuid.NewString(),
		RefNo:         s.nextRef,
		UserID:        userID,
		EmployeeName:  in.EmployeeName,
		Type:          in.Type,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Days:          days,
		Reason:        in.Reason,
		Status:        leave.StatusPending,
		SubmittedDate: in.SubmittedDate,
		CreatedAt:     time.Now(),
	}
	s.nextRef++
	s.requests[req.ID] = req
	return req, nil
}

// Put stores a request as-is, for seeding history with a chosen status.
func (s *LeaveStore) Put(req leave.Request) leave.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RefNo == 0 {
		req.RefNo = s.nextRef
		s.nextRef++
	}
	s.requests[req.ID] = req
	return req
}

func (s *LeaveStore) GetRequest(_ context.Context, id string) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrNotFound
	}
	return req, nil
}

func (s *LeaveStore) ListRequests(_ context.Context, filter leave.Filter) (leave.ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []leave.Request
	for _, r := range s.requests {
		if filter.Matches(r) {
			items = append(items, r)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartDate.Equal(items[j].StartDate) {
			return items[i].StartDate.After(items[j].StartDate)
		}
		return items[i].RefNo > items[j].RefNo
	})
	total := len(items)
	if filter.Limit > 0 {
		start := filter.Offset
		if start > total {
			start = total
		}
		end := start + filter.Limit
		if end > total {
			end = total
		}
		items = items[start:end]
	}
	return leave.ListResult{Items: items, Total: total}, nil
}

func (s *LeaveStore) HasOverlap(_ context.Context, userID string, start, end time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.UserID != userID || (r.Status != leave.StatusPending && r.Status != leave.StatusApproved) {
			continue
		}
		if leave.Overlaps(r.StartDate, r.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *LeaveStore) Decide(_ context.Context, id string, status leave.Status, deciderID string, at time.Time) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrNotFound
	}
	if req.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrNotPending
	}
	req.Status = status
	req.DecidedBy = deciderID
	req.DecidedAt = &at
	s.requests[id] = req
	if status == leave.StatusApproved {
		byType := s.userBalances(req.UserID)
		b := byType[req.Type]
		b.Type = req.Type
		b.Used += req.Days
		byType[req.Type] = b
	}
	return req, nil
}

func (s *LeaveStore) Cancel(_ context.Context, id, userID string) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrNotFound
	}
	if req.UserID != userID {
		return leave.Request{}, leave.ErrForbidden
	}
	if req.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrNotPending
	}
	req.Status = leave.StatusCancelled
	s.requests[id] = req
	return req, nil
}

func (s *LeaveStore) Balances(_ context.Context, userID string) ([]leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.Balance
	for _, t := range leave.Types {
		if b, ok := s.balances[userID][t]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *LeaveStore) EnsureBalances(_ context.Context, userID string, totals map[leave.Type]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byType := s.userBalances(userID)
	for _, t := range leave.Types {
		if _, ok := byType[t]; !ok {
			byType[t] = leave.Balance{Type: t, Total: totals[t]}
		}
	}
	return nil
}

// SetUsed overrides used days, for seeding a demo balance.
func (s *LeaveStore) SetUsed(userID string, t leave.Type, used int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byType := s.userBalances(userID)
	b := byType[t]
	b.Type = t
	b.Used = used
	byType[t] = b
}

func (s *LeaveStore) userBalances(userID string) map[leave.Type]leave.Balance {
	byType, ok := s.balances[userID]
	if !ok {
		byType = map[leave.Type]leave.Balance{}
		s.balances[userID] = byType
	}
	return byType
}
