package middleware

import (
	"github.com/m3rciful/teambot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// SessionLock handles the updates of one session one at a time, so a burst
// of messages cannot interleave read-validate-write sequences.
func SessionLock(store state.Store) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			k, ok := state.KeyFrom(c)
			if !ok {
				return next(c)
			}
			unlock := store.Lock(k)
			defer unlock()
			return next(c)
		}
	}
}
