package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/paybot/core/logger"
	"github.com/m3rciful/paybot/core/reporting"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers, logs and reports them, and
// keeps the bot running.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				ctx := tghelpers.BuildContext(c)
				logger.Error(ctx, "tg", "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
				reporting.CapturePanic(ctx, r)
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return next(c)
	}
}
