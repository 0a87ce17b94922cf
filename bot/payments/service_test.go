package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/paybot/bot/plans"
)

type memRepo struct {
	mu     sync.Mutex
	users  map[int64]string
	rows   []Payment
	failOn error
}

func newMemRepo() *memRepo { return &memRepo{users: map[int64]string{}} }

func (m *memRepo) CreatePending(_ context.Context, s Submission) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return Payment{}, m.failOn
	}
	if _, ok := m.users[s.UserID]; !ok {
		m.users[s.UserID] = s.Username
	}
	p := Payment{
		ID:            int64(len(m.rows) + 1),
		UserID:        s.UserID,
		PlanID:        s.PlanID,
		Amount:        s.Amount,
		ScreenshotRef: s.ScreenshotRef,
		Status:        StatusPending,
		SubmittedAt:   s.SubmittedAt,
	}
	m.rows = append(m.rows, p)
	return p, nil
}

func (m *memRepo) ListPending(_ context.Context, limit int) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].Status == StatusPending {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func TestSubmitRecordsPendingPayment(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, plans.Default())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p, err := svc.Submit(context.Background(), Submission{
		UserID: 7, Username: "alice", PlanID: "3_months", Amount: 249, ScreenshotRef: "file-1",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != StatusPending || p.PlanID != "3_months" || p.Amount != 249 {
		t.Fatalf("payment = %+v", p)
	}
	if !p.SubmittedAt.Equal(fixed) {
		t.Fatalf("submitted at = %v", p.SubmittedAt)
	}
	if len(repo.rows) != 1 || repo.users[7] != "alice" {
		t.Fatalf("repo state = %+v / %+v", repo.rows, repo.users)
	}
}

func TestSubmitRejectsCatalogMismatch(t *testing.T) {
	svc := NewService(newMemRepo(), plans.Default())
	cases := []struct {
		name string
		sub  Submission
	}{
		{"unknown plan", Submission{UserID: 1, PlanID: "12_months", Amount: 999, ScreenshotRef: "f"}},
		{"wrong amount", Submission{UserID: 1, PlanID: "1_month", Amount: 100, ScreenshotRef: "f"}},
		{"no screenshot", Submission{UserID: 1, PlanID: "1_month", Amount: 99}},
		{"no user", Submission{PlanID: "1_month", Amount: 99, ScreenshotRef: "f"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.sub)
			if !errors.Is(err, ErrInvalidSubmission) {
				t.Fatalf("err = %v, want ErrInvalidSubmission", err)
			}
		})
	}
	if _, err := svc.Submit(context.Background(), cases[0].sub); !errors.Is(err, plans.ErrUnknownPlan) {
		t.Fatalf("unknown plan should wrap ErrUnknownPlan: %v", err)
	}
}

func TestSubmitPropagatesRepositoryFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failOn = errors.New("connection reset")
	svc := NewService(repo, plans.Default())
	_, err := svc.Submit(context.Background(), Submission{UserID: 1, PlanID: "1_month", Amount: 99, ScreenshotRef: "f"})
	if err == nil || errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("err = %v", err)
	}
}

func TestListPendingClampsLimit(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, plans.Default())
	for i := 0; i < DefaultListLimit+5; i++ {
		if _, err := svc.Submit(context.Background(), Submission{UserID: int64(i + 1), PlanID: "1_month", Amount: 99, ScreenshotRef: "f"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := svc.ListPending(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != DefaultListLimit || got[0].ID != int64(DefaultListLimit+5) {
		t.Fatalf("listed %d, first id %d", len(got), got[0].ID)
	}
}
