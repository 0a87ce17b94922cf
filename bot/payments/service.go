package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/paybot/bot/plans"
	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/metrics"
)

// DefaultListLimit bounds the admin pending listing.
const DefaultListLimit = 20

// Service validates submissions against the catalog before persisting them.
type Service struct {
	repo    Repository
	catalog *plans.Catalog
	now     func() time.Time
}

// NewService builds a Service.
func NewService(repo Repository, catalog *plans.Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// Submit records a pending payment for the user's selected plan.
// The amount must equal the catalog price of the plan.
func (s *Service) Submit(ctx context.Context, sub Submission) (Payment, error) {
	if sub.UserID == 0 || strings.TrimSpace(sub.ScreenshotRef) == "" {
		return Payment{}, fmt.Errorf("%w: user and screenshot are required", ErrInvalidSubmission)
	}
	plan, err := s.catalog.Get(sub.PlanID)
	if err != nil {
		return Payment{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	if sub.Amount != plan.Price {
		return Payment{}, fmt.Errorf("%w: amount %d does not match plan %s price %d",
			ErrInvalidSubmission, sub.Amount, plan.ID, plan.Price)
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.now().UTC()
	}

	start := time.Now()
	p, err := s.repo.CreatePending(ctx, sub)
	if err != nil {
		metrics.IncPaymentSubmitted("failed")
		logger.Error(ctx, "payments", "payment.submit",
			slog.Int64("user_id", sub.UserID),
			slog.String("plan_id", sub.PlanID),
			slog.String("status", logger.Status(err)),
			slog.String("err", err.Error()),
		)
		return Payment{}, fmt.Errorf("record payment: %w", err)
	}
	metrics.IncPaymentSubmitted("recorded")
	metrics.AddSubmittedAmount(p.PlanID, p.Amount)
	logger.Info(ctx, "payments", "payment.submit",
		slog.Int64("payment_id", p.ID),
		slog.Int64("user_id", p.UserID),
		slog.String("plan_id", p.PlanID),
		slog.Int64("amount", p.Amount),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return p, nil
}

// ListPending returns up to limit pending payments, newest first.
func (s *Service) ListPending(ctx context.Context, limit int) ([]Payment, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return s.repo.ListPending(ctx, limit)
}
