package router

import (
	tg "github.com/m3rciful/teambot/core/telegram"
	tghelpers "github.com/m3rciful/teambot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM is the part of the conversation engine the router needs.
type FSM interface {
	InProgress(c tele.Context) bool
	Dispatch(c tele.Context) error
}

// TextOptions controls fallback behaviour for updates outside a conversation.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes sends plain text, media, locations and contacts to the active
// conversation when there is one. Flow handlers decide which message kinds
// they accept, so a photo sent during a text step reaches the flow and gets
// the proper notice.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		if fsm != nil && fsm.InProgress(c) {
			return handleWithSummary(c, "fsm", func() error { return fsm.Dispatch(c) })
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && !cmd.AdminOnly {
				return handleWithSummary(c, handlerName("cmd.", key), func() error { return cmd.Handler(c) })
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", func() error { return fb(c) })
			}
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", func() error { return opts.UnknownText(c) })
		}
		tghelpers.SetOutcome(c, "skip")
		return nil
	}

	other := func(c tele.Context) error {
		if fsm != nil && fsm.InProgress(c) {
			return handleWithSummary(c, "fsm", func() error { return fsm.Dispatch(c) })
		}
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unknown_media", func() error { return opts.UnknownMedia(c) })
		}
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnMedia, Handler: other},
		{Endpoint: tele.OnLocation, Handler: other},
		{Endpoint: tele.OnContact, Handler: other},
	}
}
