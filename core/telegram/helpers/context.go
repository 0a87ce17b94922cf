package helpers

import (
	"context"

	"github.com/m3rciful/paybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const ctxKey = "paybot.ctx"

// BuildContext returns the logging context of the current update: request
// id, update/user/chat ids and the "tg" logger. It is derived on first use
// and cached on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxKey).(context.Context); ok {
		return ctx
	}
	var chatID, userID int64
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	updateID := c.Update().ID

	ctx := logger.WithUpdateMeta(logger.Background(), updateID, userID, chatID)
	ctx = logger.WithRID(ctx, logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler tags the cached context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" && logger.HandlerFrom(ctx) != handler {
		ctx = logger.WithHandler(ctx, handler)
		c.Set(ctxKey, ctx)
	}
	return ctx
}
