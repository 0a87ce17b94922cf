package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled", context.Canceled, KindCanceled},
		{"dns", &net.DNSError{Name: "api.telegram.org"}, KindDNS},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindDial},
		{"flood", tele.FloodError{RetryAfter: 3}, KindFlood},
		{"bad request", fmt.Errorf("telegram: message to delete not found (400)"), KindHTTP4xx},
		{"server", fmt.Errorf("telegram: internal error (502)"), KindHTTP5xx},
		{"other", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("%s: Classify = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Fatal("dial errors are transient")
	}
	if !Retryable(tele.FloodError{RetryAfter: 1}) {
		t.Fatal("flood waits are retried")
	}
	if Retryable(errors.New("telegram: chat not found (400)")) {
		t.Fatal("4xx must not be retried")
	}
	if Retryable(nil) {
		t.Fatal("nil is not retryable")
	}
}

func TestRetryAfterAndRedact(t *testing.T) {
	if d := RetryAfter(tele.FloodError{RetryAfter: 4}); d != 4*time.Second {
		t.Fatalf("retry after = %v", d)
	}
	if d := RetryAfter(errors.New("x")); d != 0 {
		t.Fatalf("retry after = %v", d)
	}
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAH-secret_tok/sendPhoto": EOF`)
	if got := Redact(err); got != `Post "https://api.telegram.org/bot<redacted>/sendPhoto": EOF` {
		t.Fatalf("redact = %q", got)
	}
}
