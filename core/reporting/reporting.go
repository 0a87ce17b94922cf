// Package reporting forwards unexpected errors to Sentry when configured.
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/m3rciful/paybot/core/buildinfo"
	coreconfig "github.com/m3rciful/paybot/core/config"
	"github.com/m3rciful/paybot/core/logger"
)

var enabled atomic.Bool

// Init configures the Sentry client. Without a DSN reporting stays disabled and
// Capture only logs.
func Init(cfg coreconfig.SentryConfig, profile string) error {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = profile
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     buildinfo.Release(),
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	enabled.Store(true)
	return nil
}

// Enabled reports whether a Sentry client is configured.
func Enabled() bool { return enabled.Load() }

// Capture reports err with the update correlation fields found in ctx.
func Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil || !enabled.Load() {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if rid := logger.RIDFrom(ctx); rid != "" {
			scope.SetTag("rid", rid)
		}
		if uid := logger.UserIDFrom(ctx); uid != 0 {
			scope.SetUser(sentry.User{ID: fmt.Sprint(uid)})
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value.
func CapturePanic(ctx context.Context, recovered any) {
	if recovered == nil {
		return
	}
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	Capture(ctx, err, map[string]string{"kind": "panic"})
}

// Flush waits up to timeout for buffered events.
func Flush(timeout time.Duration) {
	if !enabled.Load() {
		return
	}
	if !sentry.Flush(timeout) {
		logger.Warn(context.Background(), "reporting", "sentry.flush_timeout", slog.Duration("timeout", timeout))
	}
}
