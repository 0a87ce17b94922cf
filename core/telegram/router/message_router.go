package router

import (
	tg "github.com/m3rciful/paybot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// Conversation owns free-form input while a user is mid-dialogue.
type Conversation interface {
	InProgress(c tele.Context) bool
	HandleMessage(c tele.Context) error
}

// TextOptions sets handlers for input arriving outside a conversation.
// Nil handlers skip the update.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
	UnknownPhoto    tele.HandlerFunc
}

// TextRoutes routes text, documents and photos. Text matching a registered
// command name runs that command; anything else goes to the conversation
// when one is active.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	active := func(c tele.Context) bool {
		return conv != nil && c.Sender() != nil && conv.InProgress(c)
	}
	input := func(kind string, unknown tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if kind == "text" && reg != nil {
				if key, cmd, ok := reg.LookupCommand(c.Text()); ok {
					return run(c, handlerName(key), cmd.Handler)
				}
			}
			if active(c) {
				return run(c, "conversation_"+kind, conv.HandleMessage)
			}
			if unknown != nil {
				return run(c, "unexpected_"+kind, unknown)
			}
			return skip(c, "unexpected_"+kind)
		}
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(input("text", opts.UnknownText))},
		{Endpoint: tele.OnDocument, Handler: wrap(input("document", opts.UnknownDocument))},
		{Endpoint: tele.OnPhoto, Handler: wrap(input("photo", opts.UnknownPhoto))},
	}
}
