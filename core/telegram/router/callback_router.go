package router

import (
	"log/slog"

	"github.com/m3rciful/teambot/core/logger"
	tg "github.com/m3rciful/teambot/core/telegram"
	"github.com/m3rciful/teambot/core/telegram/callbacks"
	"github.com/m3rciful/teambot/core/telegram/guard"
	tghelpers "github.com/m3rciful/teambot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises callback routing.
type CallbackOptions struct {
	// Decode parses the payload of a known unique into a typed intent, which
	// handlers read with callbacks.IntentFrom. A decode error rejects the press.
	Decode func(unique, payload string) (any, error)
	// Admin guards callbacks registered as AdminOnly.
	Admin guard.Guard
	// Malformed is the notice shown for payloads that fail to decode.
	Malformed string
}

// CallbackRoute routes every inline button press through the registry.
// Data is parsed once here; handlers never split strings themselves.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, payload := callbacks.ParseCallbackData(c.Callback())
		extras := []slog.Attr{slog.String("cb_key", key)}
		name := handlerName("callback.", key)

		cb, ok := reg.GetCallback(key)
		if !ok {
			return handleWithSummary(c, name, func() error {
				tghelpers.SetOutcome(c, "not_found")
				return reg.CallbackNotFound()(c)
			}, extras...)
		}

		return handleWithSummary(c, name, func() error {
			if cb.AdminOnly && opts.Admin != nil {
				if d := opts.Admin(c); !d.Allow {
					tghelpers.SetOutcome(c, "denied")
					return guard.Reject(c, d)
				}
			}
			if opts.Decode != nil {
				intent, err := opts.Decode(key, payload)
				if err != nil {
					logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "callback.malformed",
						slog.String("cb_key", key),
						slog.String("payload", logger.SanitizeLimit(payload, 64)),
						slog.String("err", err.Error()),
					)
					tghelpers.SetOutcome(c, "malformed")
					return guard.Reject(c, guard.Deny("malformed", opts.Malformed))
				}
				callbacks.StoreIntent(c, intent)
			}
			err := cb.Handler(c)
			if !tghelpers.Answered(c) {
				_ = c.Respond()
			}
			return err
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
