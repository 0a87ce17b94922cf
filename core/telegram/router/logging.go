package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/paybot/core/logger"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"
	"github.com/m3rciful/paybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// run executes fn under handler name and emits one handler.handled event.
func run(c tele.Context, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	err := fn(c)

	msgs, kb := middleware.GetCounters(c)
	attrs := append([]slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("outcome", logger.Status(err)),
		slog.String("handler", name),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}, extras...)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Info(ctx, "tg", "handler.handled", attrs...)
	return err
}

// skip logs an update that no handler claimed.
func skip(c tele.Context, name string) error {
	logger.Info(tghelpers.WithHandler(c, name), "tg", "handler.handled",
		slog.String("status", "skip"),
		slog.String("outcome", "ok"),
		slog.String("handler", name),
	)
	return nil
}

func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

func handlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode prefers an explicit Code() on any error in the chain, then the
// concrete type name of err.
func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToUpper(strings.TrimLeft(name, "*"))
}
