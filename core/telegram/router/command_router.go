package router

import (
	tg "github.com/m3rciful/paybot/core/telegram"
	"github.com/m3rciful/paybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures admin gating for commands.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns every registered command into a route. Admin-only
// commands are gated by AdminID.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, cmd := range cmds {
		fn, label := cmd.Handler, handlerName(name)
		h := func(c tele.Context) error { return run(c, label, fn) }
		if cmd.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: wrap(h)})
	}
	return routes
}
