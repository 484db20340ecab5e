package middleware

import (
	"log/slog"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/guard"
	tghelpers "github.com/m3rciful/teambot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Guarded runs guards before next. A denial is logged, reported to the user
// and ends handling without touching session state.
func Guarded(guards ...guard.Guard) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if d := guard.Check(c, guards...); !d.Allow {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelInfo, "guard.denied",
					slog.String("status", "denied"),
					slog.String("err_code", d.Code),
				)
				return guard.Reject(c, d)
			}
			return next(c)
		}
	}
}

// AdminOnlyMiddleware lets only allow-listed Telegram ids through.
func AdminOnlyMiddleware(admins []int64, notice string) tele.MiddlewareFunc {
	return Guarded(guard.Admins(admins, notice))
}
