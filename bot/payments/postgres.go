package payments

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository implements Repository on PostgreSQL via sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an open connection pool.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	upsertUserSQL = `
INSERT INTO users (user_id, username, joined_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO NOTHING`

	insertPaymentSQL = `
INSERT INTO payments (user_id, plan, amount, screenshot_reference, status, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, plan, amount, utr, screenshot_reference, status, submitted_at, verified_at`

	listPendingSQL = `
SELECT id, user_id, plan, amount, utr, screenshot_reference, status, submitted_at, verified_at
FROM payments
WHERE status = $1
ORDER BY submitted_at DESC, id DESC
LIMIT $2`
)

// CreatePending runs the user upsert and payment insert in one transaction.
func (r *PostgresRepository) CreatePending(ctx context.Context, s Submission) (Payment, error) {
	var p Payment
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return p, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var username sql.NullString
	if u := strings.TrimSpace(s.Username); u != "" {
		username = sql.NullString{String: u, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, upsertUserSQL, s.UserID, username, s.SubmittedAt); err != nil {
		return p, fmt.Errorf("upsert user: %w", err)
	}
	if err := tx.GetContext(ctx, &p, insertPaymentSQL,
		s.UserID, s.PlanID, s.Amount, s.ScreenshotRef, StatusPending, s.SubmittedAt,
	); err != nil {
		return p, fmt.Errorf("insert payment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Payment{}, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

// ListPending returns the newest pending payments first.
func (r *PostgresRepository) ListPending(ctx context.Context, limit int) ([]Payment, error) {
	var out []Payment
	if err := r.db.SelectContext(ctx, &out, listPendingSQL, StatusPending, limit); err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return out, nil
}
