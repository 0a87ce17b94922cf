package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if err := st.Put(ctx, Session{UserID: 7, PlanID: "1_month", SelectedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(ctx, Session{UserID: 7, PlanID: "6_months", SelectedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", st.Len())
	}
	got, ok, err := st.Get(ctx, 7)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.PlanID != "6_months" {
		t.Fatalf("plan = %q, want overwrite", got.PlanID)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	_ = st.Put(ctx, Session{UserID: 1, PlanID: "1_month"})

	if err := st.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, 1); ok {
		t.Fatal("session still present")
	}
}

func TestMemoryStoreConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	const users = 64

	var wg sync.WaitGroup
	for i := int64(1); i <= users; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = st.Put(ctx, Session{UserID: id, PlanID: "3_months"})
				_, _, _ = st.Get(ctx, id)
			}
		}(i)
	}
	wg.Wait()

	if st.Len() != users {
		t.Fatalf("sessions = %d, want %d", st.Len(), users)
	}
	for i := int64(1); i <= users; i++ {
		s, ok, _ := st.Get(ctx, i)
		if !ok || s.UserID != i {
			t.Fatalf("user %d: session %+v ok=%v", i, s, ok)
		}
	}
}
