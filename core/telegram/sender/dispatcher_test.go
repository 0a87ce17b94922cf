package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func fastOptions() Options {
	return Options{Workers: 1, QueueSize: 4, MaxRetries: 2, RetryBackoff: time.Millisecond, MaxDuration: time.Second}
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(fastOptions())
	var calls atomic.Int32
	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	d.Close()
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestDispatcherDoesNotRetryPermanentErrors(t *testing.T) {
	d := NewDispatcher(fastOptions())
	var calls atomic.Int32
	if err := d.Enqueue(context.Background(), "delete", "deleteMessage", func() error {
		calls.Add(1)
		return errors.New("telegram: message to delete not found (400)")
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("error count = %d, want 1", d.ErrorCount())
	}
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	d := NewDispatcher(fastOptions())
	var calls atomic.Int32
	if err := d.Enqueue(context.Background(), "send", "", func() error {
		calls.Add(1)
		return context.DeadlineExceeded
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestDispatcherEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(fastOptions())
	d.Close()
	d.Close()
	err := d.Enqueue(context.Background(), "send", "", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	block := func() error {
		close(started)
		<-release
		return nil
	}
	if err := d.Enqueue(context.Background(), "a", "", block); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	<-started
	if err := d.Enqueue(context.Background(), "b", "", func() error { return nil }); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	err := d.Enqueue(context.Background(), "c", "", func() error { return nil })
	close(release)
	d.Close()
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
}

func TestDispatcherRejectsNilRun(t *testing.T) {
	d := NewDispatcher(fastOptions())
	defer d.Close()
	if err := d.Enqueue(context.Background(), "send", "", nil); err == nil {
		t.Fatal("expected error for nil run")
	}
}
