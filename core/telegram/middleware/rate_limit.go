package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/paybot/core/logger"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures RateLimitMiddleware. Exclude holds update kinds
// ("message", "callback", "inline_query") that are never limited; photos and
// documents count as "message".
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

type lastSeen struct {
	mu    sync.Mutex
	users map[int64]time.Time
}

// allow records now for userID unless the previous update was within interval.
func (l *lastSeen) allow(userID int64, now time.Time, interval time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.users[userID]; ok && now.Sub(prev) < interval {
		return false
	}
	l.users[userID] = now
	return true
}

// RateLimitMiddleware drops updates arriving from the same user faster than
// opts.Interval.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	seen := &lastSeen{users: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			u := c.Sender()
			if u == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if kind == "photo" || kind == "document" {
				kind = "message"
			}
			if _, ok := opts.Exclude[kind]; ok || seen.allow(u.ID, time.Now(), opts.Interval) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit", slog.String("kind", kind))
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
