package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update ids for a short window so that an update
// passing through several logging branches is reported once.
type seenUpdates struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[int]time.Time
}

var receipts = &seenUpdates{ttl: 10 * time.Second, items: make(map[int]time.Time)}

func (s *seenUpdates) first(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, at := range s.items {
		if now.Sub(at) > s.ttl {
			delete(s.items, k)
		}
	}
	if _, dup := s.items[id]; dup {
		return false
	}
	s.items[id] = now
	return true
}

// LoggerMiddleware prepares the update's logging context and, when debug
// sampling allows, logs a single update.received line per update id.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()
		if logger.ShouldSampleDebug() && receipts.first(upd.ID, time.Now()) {
			logger.Debug(ctx, "tg", "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("kind", UpdateKind(c.Update()))}
	if ch := c.Chat(); ch != nil {
		attrs = append(attrs, slog.String("chat_type", string(ch.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	if cb := c.Callback(); cb != nil {
		key, payload := callbacks.ParseCallbackData(cb)
		attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	} else if t := c.Text(); t != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
	}
	return attrs
}
