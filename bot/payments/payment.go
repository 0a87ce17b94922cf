// Package payments records payment proofs awaiting manual verification.
package payments

import (
	"context"
	"errors"
	"time"
)

// Status is the verification state of a payment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// ErrInvalidSubmission is returned when a submission does not match the plan catalog.
var ErrInvalidSubmission = errors.New("payments: invalid submission")

// Payment is a persisted payment proof.
type Payment struct {
	ID            int64      `db:"id"`
	UserID        int64      `db:"user_id"`
	PlanID        string     `db:"plan"`
	Amount        int64      `db:"amount"`
	UTR           *string    `db:"utr"`
	ScreenshotRef string     `db:"screenshot_reference"`
	Status        Status     `db:"status"`
	SubmittedAt   time.Time  `db:"submitted_at"`
	VerifiedAt    *time.Time `db:"verified_at"`
}

// User is the persisted Telegram user.
type User struct {
	UserID   int64     `db:"user_id"`
	Username *string   `db:"username"`
	JoinedAt time.Time `db:"joined_at"`
}

// Submission is a payment proof sent by a user for a selected plan.
type Submission struct {
	UserID        int64
	Username      string
	PlanID        string
	Amount        int64
	ScreenshotRef string
	SubmittedAt   time.Time
}

// Repository persists users and payments.
type Repository interface {
	// CreatePending upserts the user and inserts a pending payment atomically.
	CreatePending(ctx context.Context, s Submission) (Payment, error)
	ListPending(ctx context.Context, limit int) ([]Payment, error)
}
