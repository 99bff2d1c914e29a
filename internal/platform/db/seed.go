package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leavedesk/internal/auth"
	"leavedesk/internal/platform/config"
)

type seedUser struct {
	email      string
	password   string
	firstName  string
	lastName   string
	role       auth.Role
	department string
}

type seedRequest struct {
	refNo     int64
	leaveType string
	start     string
	end       string
	days      int
	status    string
	reason    string
}

// demoHistory is the employee's sample leave history.
var demoHistory = []seedRequest{
	{2001, "sick", "2025-07-15", "2025-07-16", 2, "Approved", "Fever and cold"},
	{2002, "medical", "2025-06-20", "2025-06-22", 3, "Approved", "Medical checkup"},
	{2003, "sick", "2025-08-10", "2025-08-10", 1, "Pending", "Stomach flu"},
}

// Seed creates the demo accounts, balances and history. Every step checks
// for existing rows first, so it is safe on every start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if !cfg.SeedDemoData {
		return nil
	}
	totals := map[string]int{"sick": cfg.SickLeaveAllowance, "medical": cfg.MedicalLeaveAllowance}

	adminID, err := ensureUser(ctx, pool, seedUser{
		email: cfg.SeedAdminEmail, password: cfg.SeedAdminPassword,
		firstName: "Meera", lastName: "Iyer", role: auth.RoleAdmin, department: "Human Resources",
	})
	if err != nil {
		return err
	}
	if adminID != "" {
		if err := ensureBalances(ctx, pool, adminID, totals, nil); err != nil {
			return err
		}
	}

	employeeID, err := ensureUser(ctx, pool, seedUser{
		email: cfg.SeedEmployeeEmail, password: cfg.SeedEmployeePassword,
		firstName: "Rohan", lastName: "Das", role: auth.RoleEmployee, department: "Engineering",
	})
	if err != nil || employeeID == "" {
		return err
	}
	if err := ensureBalances(ctx, pool, employeeID, totals, map[string]int{"sick": 5, "medical": 3}); err != nil {
		return err
	}
	return ensureHistory(ctx, pool, employeeID, "Rohan")
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, u seedUser) (string, error) {
	if strings.TrimSpace(u.email) == "" || strings.TrimSpace(u.password) == "" {
		return "", nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", u.email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hash, err := auth.HashPassword(u.password)
	if err != nil {
		return "", err
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, first_name, last_name, role, department, password_hash)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, u.email, u.firstName, u.lastName, string(u.role), u.department, hash).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureBalances(ctx context.Context, pool *pgxpool.Pool, userID string, totals, used map[string]int) error {
	for leaveType, total := range totals {
		_, err := pool.Exec(ctx, `
      INSERT INTO leave_balances (user_id, leave_type, total_days, used_days)
      VALUES ($1, $2, $3, $4)
      ON CONFLICT (user_id, leave_type) DO NOTHING
    `, userID, leaveType, total, used[leaveType])
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureHistory(ctx context.Context, pool *pgxpool.Pool, userID, employeeName string) error {
	for _, req := range demoHistory {
		start, _ := time.Parse(time.DateOnly, req.start)
		end, _ := time.Parse(time.DateOnly, req.end)
		_, err := pool.Exec(ctx, `
      INSERT INTO leave_requests (ref_no, user_id, employee_name, leave_type, start_date, end_date, days, reason, status, submitted_date)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $5)
      ON CONFLICT (ref_no) DO NOTHING
    `, req.refNo, userID, employeeName, req.leaveType, start, end, req.days, req.reason, req.status)
		if err != nil {
			return err
		}
	}
	// explicit ref_no values do not advance the identity sequence
	_, err := pool.Exec(ctx, `
    SELECT setval(pg_get_serial_sequence('leave_requests', 'ref_no'), GREATEST((SELECT max(ref_no) FROM leave_requests), 2003))
  `)
	return err
}
