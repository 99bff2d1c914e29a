package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `id, ref_no, user_id, employee_name, leave_type, start_date, end_date, days, reason,
    status, submitted_date, COALESCE(decided_by::text, ''), decided_at, created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.RefNo, &r.UserID, &r.EmployeeName, &r.Type, &r.StartDate, &r.EndDate, &r.Days, &r.Reason,
		&r.Status, &r.SubmittedDate, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

func (s *Store) CreateRequest(ctx context.Context, userID string, in SubmitInput, days int) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (user_id, employee_name, leave_type, start_date, end_date, days, reason, status, submitted_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING `+requestColumns,
		userID, in.EmployeeName, in.Type, in.StartDate, in.EndDate, days, in.Reason, StatusPending, in.SubmittedDate))
}

func (s *Store) GetRequest(ctx context.Context, id string) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = $1", id))
}

func (s *Store) ListRequests(ctx context.Context, filter Filter) (ListResult, error) {
	where, args := buildRequestFilter(filter)

	var result ListResult
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests"+where, args...).Scan(&result.Total); err != nil {
		return ListResult{}, err
	}

	query := "SELECT " + requestColumns + " FROM leave_requests" + where + " ORDER BY start_date DESC, ref_no DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return ListResult{}, err
		}
		result.Items = append(result.Items, r)
	}
	return result, rows.Err()
}

func buildRequestFilter(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND leave_type = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, DateOnly(*filter.From))
		where += fmt.Sprintf(" AND end_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, DateOnly(*filter.To))
		where += fmt.Sprintf(" AND start_date <= $%d", len(args))
	}
	return where, args
}

func (s *Store) HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE user_id = $1 AND status IN ('Pending', 'Approved') AND start_date <= $3 AND end_date >= $2
  `, userID, DateOnly(start), DateOnly(end)).Scan(&count)
	return count > 0, err
}

// Decide moves a pending request to its final status; approvals consume balance in the same transaction.
func (s *Store) Decide(ctx context.Context, id string, status Status, deciderID string, at time.Time) (Request, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	var userID string
	var leaveType Type
	var days int
	err = tx.QueryRow(ctx, "SELECT status, user_id, leave_type, days FROM leave_requests WHERE id = $1 FOR UPDATE", id).
		Scan(&current, &userID, &leaveType, &days)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	if current != StatusPending {
		return Request{}, ErrNotPending
	}

	if _, err := tx.Exec(ctx, `
    UPDATE leave_requests SET status = $2, decided_by = $3, decided_at = $4 WHERE id = $1
  `, id, status, deciderID, at); err != nil {
		return Request{}, err
	}

	if status == StatusApproved {
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_balances (user_id, leave_type, total_days, used_days)
      VALUES ($1, $2, 0, $3)
      ON CONFLICT (user_id, leave_type) DO UPDATE SET used_days = leave_balances.used_days + EXCLUDED.used_days
    `, userID, leaveType, days); err != nil {
			return Request{}, err
		}
	}

	updated, err := scanRequest(tx.QueryRow(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = $1", id))
	if err != nil {
		return Request{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return updated, nil
}

func (s *Store) Cancel(ctx context.Context, id, userID string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    UPDATE leave_requests SET status = $3
    WHERE id = $1 AND user_id = $2 AND status = $4
    RETURNING `+requestColumns, id, userID, StatusCancelled, StatusPending))
	if !errors.Is(err, ErrNotFound) {
		return req, err
	}
	existing, getErr := s.GetRequest(ctx, id)
	if getErr != nil {
		return Request{}, getErr
	}
	if existing.UserID != userID {
		return Request{}, ErrForbidden
	}
	return Request{}, ErrNotPending
}

func (s *Store) Balances(ctx context.Context, userID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT leave_type, total_days, used_days
    FROM leave_balances
    WHERE user_id = $1
    ORDER BY leave_type DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.Type, &b.Total, &b.Used); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) EnsureBalances(ctx context.Context, userID string, totals map[Type]int) error {
	for _, t := range Types {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO leave_balances (user_id, leave_type, total_days)
      VALUES ($1, $2, $3)
      ON CONFLICT (user_id, leave_type) DO NOTHING
    `, userID, t, totals[t]); err != nil {
			return err
		}
	}
	return nil
}
