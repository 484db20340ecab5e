package router

import (
	"log/slog"

	"github.com/m3rciful/teambot/core/logger"
	tg "github.com/m3rciful/teambot/core/telegram"
	"github.com/m3rciful/teambot/core/telegram/guard"
	"github.com/m3rciful/teambot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	// Admin guards AdminOnly commands before any handler code runs.
	Admin guard.Guard
}

// CommandRoutes binds every registered command (and its aliases) as a telebot endpoint.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		inner := def.Handler
		if def.AdminOnly && opts.Admin != nil {
			inner = middleware.Guarded(opts.Admin)(inner)
		}
		summary := handlerName("cmd.", name)
		h := func(c tele.Context) error {
			return handleWithSummary(c, summary, func() error { return inner(c) })
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + alias, Handler: h})
		}
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "routes.commands"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
