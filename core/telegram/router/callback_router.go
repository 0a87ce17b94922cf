package router

import (
	"log/slog"

	tg "github.com/m3rciful/paybot/core/telegram"
	"github.com/m3rciful/paybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/paybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises callback routing.
type CallbackOptions struct {
	// NotFound handles keys with no registered handler. Defaults to an
	// "Unsupported action" toast.
	NotFound tele.HandlerFunc
}

func unsupported(c tele.Context) error {
	return tghelpers.RespondCallback(c, "Unsupported action")
}

// CallbackRoute dispatches every callback query by its key. The query is
// always answered: handlers may do it via helpers.RespondCallback, otherwise
// an empty answer is sent after they return.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	notFound := opts.NotFound
	if notFound == nil {
		notFound = unsupported
	}
	h := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer func() { _ = tghelpers.RespondCallback(c, "") }()

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + handlerName(key)
		if fn, ok := reg.GetCallback(key); ok {
			return run(c, name, fn, slog.String("cb_key", key))
		}
		return run(c, name, notFound, slog.String("cb_key", key), slog.String("reason", "not_found"))
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: wrap(h)}
}
