package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type captured struct{ bytes.Buffer }

func (c *captured) Write(p []byte) error {
	_, err := c.Buffer.Write(p)
	return err
}

func newTestLogger(format logFormat, level slog.Level) (*slog.Logger, *captured) {
	out := &captured{}
	h := newStructuredHandler(handlerConfig{level: level, writer: out, format: format})
	return slog.New(h), out
}

func TestKVLineStartsWithStableKeys(t *testing.T) {
	log, out := newTestLogger(formatKV, slog.LevelInfo)
	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-123"), 42, 7, 9)

	LogEvent(ctx, log.With("component", "conversation"), slog.LevelInfo, "transition",
		slog.String("trigger", "plan_chosen"),
		slog.String("status", "OK"),
	)

	tokens := strings.Fields(out.String())
	want := []string{"ts=", "level=INFO", "component=conversation", "event=transition", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(want) {
		t.Fatalf("line too short: %s", out.String())
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, want prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestJSONLineKeepsFullRID(t *testing.T) {
	log, out := newTestLogger(formatJSON, slog.LevelInfo)
	rid := BuildRID(12, 34, 56)
	ctx := WithRID(context.Background(), rid)

	LogEvent(ctx, log.With("component", "payments"), slog.LevelError, "payment.submit",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)

	line := out.String()
	ordered := []string{`{"ts":`, `"level":"ERROR"`, `"component":"payments"`, `"event":"payment.submit"`, `"status":"fail"`, `"rid":"` + CompactRID(rid) + `"`, `"rid_full":"` + rid + `"`, `"ts_unix_nano":`}
	pos := -1
	for _, part := range ordered {
		idx := strings.Index(line, part)
		if idx <= pos {
			t.Fatalf("%s missing or out of order in %s", part, line)
		}
		pos = idx
	}
}

func TestKVOmitsFullRID(t *testing.T) {
	log, out := newTestLogger(formatKV, slog.LevelInfo)
	ctx := WithRID(context.Background(), "1:2:3")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test")

	if !strings.Contains(out.String(), "rid=1.2.3") || strings.Contains(out.String(), "rid_full") {
		t.Fatalf("unexpected rid rendering: %s", out.String())
	}
}

func TestDurationsAndGroups(t *testing.T) {
	log, out := newTestLogger(formatKV, slog.LevelInfo)
	log.WithGroup("db").LogAttrs(context.Background(), slog.LevelInfo, "connect",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Duration("latency_ms", 3*time.Millisecond),
		slog.Group("pool", slog.Int("open", 5)),
	)
	line := out.String()
	for _, want := range []string{"db.duration_ms=2", "db.latency_ms=3", "db.pool.open=5", "event=connect", "component=app"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %s", want, line)
		}
	}
}

func TestRecordAttrsWinOverContext(t *testing.T) {
	log, out := newTestLogger(formatKV, slog.LevelInfo)
	ctx := WithUpdateMeta(context.Background(), 1, 7, 7)
	LogEvent(ctx, log, slog.LevelInfo, "admin.notify",
		slog.Int64("user_id", 99),
		slog.String("outcome", "exploded"),
		slog.String("username", ""),
	)
	line := out.String()
	if !strings.Contains(line, "user_id=99") || strings.Contains(line, "user_id=7") {
		t.Fatalf("explicit user_id lost: %s", line)
	}
	if strings.Contains(line, "outcome=") || strings.Contains(line, "username=") {
		t.Fatalf("invalid or empty fields kept: %s", line)
	}
}

func TestLevelFilterAndQuoting(t *testing.T) {
	log, out := newTestLogger(formatKV, slog.LevelInfo)
	log.Debug("hidden")
	if out.Len() != 0 {
		t.Fatalf("debug record written: %s", out.String())
	}
	log.Info("shown", slog.String("err", `bad "plan" id`))
	if !strings.Contains(out.String(), `err="bad \"plan\" id"`) {
		t.Fatalf("value not quoted: %s", out.String())
	}
}

func TestAsyncWriterFansOut(t *testing.T) {
	var a, b bytes.Buffer
	w := newAsyncWriter([]io.Writer{&a, nil, &b}, 16)
	for _, line := range []string{"one\n", "two\n"} {
		if err := w.Write([]byte(line)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if a.String() != "one\ntwo\n" || b.String() != a.String() {
		t.Fatalf("sinks = %q / %q", a.String(), b.String())
	}
	if err := w.Write([]byte("late\n")); err != errWriterClosed {
		t.Fatalf("write after close = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close = %v", err)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, s.Allow())
	}
	want := []bool{true, false, false, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow sequence = %v", got)
		}
	}
	s.Set(0, 0)
	if !s.Allow() || !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/50":  {1, 50},
		" 2/5 ": {2, 5},
		"10":    {1, 10},
		"0":     {0, 0},
		"x/2":   {0, 0},
		"":      {0, 0},
	}
	for in, want := range cases {
		n, d := parseRatioSpec(in)
		if n != want[0] || d != want[1] {
			t.Fatalf("parseRatioSpec(%q) = %d/%d", in, n, d)
		}
	}
}

func TestRIDAndSanitize(t *testing.T) {
	if got := CompactRID("100:-200:36"); got != "2s.-5k.10" {
		t.Fatalf("compact = %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("passthrough = %q", got)
	}
	if got := Sanitize("a\x00b\tc\u200bd\n"); got != "ab\tcd\n" {
		t.Fatalf("sanitize = %q", got)
	}
	if got := SanitizeLimit("₹249 plan", 4); got != "₹249" {
		t.Fatalf("limit = %q", got)
	}
	ctx := WithHandler(WithRID(context.Background(), "r"), "callback.plan")
	if RIDFrom(ctx) != "r" || HandlerFrom(ctx) != "callback.plan" {
		t.Fatal("metadata lost across layers")
	}
}
