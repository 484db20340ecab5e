// Package guard holds composable entry checks for handlers. A guard inspects
// the update and returns a Decision; handlers run the guards they need
// before touching any session state.
package guard

import (
	"slices"

	"github.com/m3rciful/teambot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Decision is the outcome of a guard.
type Decision struct {
	Allow bool
	// Code is a short machine readable reason used in logs, e.g. "not_admin".
	Code string
	// Notice is shown to the user when the decision denies.
	Notice string
}

// Guard inspects an update.
type Guard func(c tele.Context) Decision

// Allowed is the zero-cost positive decision.
var Allowed = Decision{Allow: true}

// Deny builds a negative decision.
func Deny(code, notice string) Decision {
	return Decision{Code: code, Notice: notice}
}

// Check runs guards in order and returns the first denial.
func Check(c tele.Context, guards ...Guard) Decision {
	for _, g := range guards {
		if g == nil {
			continue
		}
		if d := g(c); !d.Allow {
			return d
		}
	}
	return Allowed
}

// Admins allows only senders present in ids.
func Admins(ids []int64, notice string) Guard {
	allowed := slices.Clone(ids)
	return func(c tele.Context) Decision {
		if slices.Contains(allowed, helpers.SenderID(c)) {
			return Allowed
		}
		return Deny("not_admin", notice)
	}
}

// IsAdmin reports whether id is in the allow-list.
func IsAdmin(ids []int64, id int64) bool {
	return slices.Contains(ids, id)
}

// TextOnly denies messages without text, such as photos or stickers.
func TextOnly(notice string) Guard {
	return func(c tele.Context) Decision {
		if msg := c.Message(); msg != nil && msg.Text != "" {
			return Allowed
		}
		return Deny("not_text", notice)
	}
}

// PrivateChat denies updates that come from groups and channels.
func PrivateChat(notice string) Guard {
	return func(c tele.Context) Decision {
		if ch := c.Chat(); ch != nil && ch.Type == tele.ChatPrivate {
			return Allowed
		}
		return Deny("not_private", notice)
	}
}

// Reject tells the user why a guard denied: a popup for callback presses,
// a message otherwise. Silent denials have an empty Notice.
func Reject(c tele.Context, d Decision) error {
	if c.Callback() != nil {
		helpers.MarkAnswered(c)
		if d.Notice == "" {
			return c.Respond()
		}
		return c.Respond(&tele.CallbackResponse{Text: d.Notice, ShowAlert: true})
	}
	if d.Notice == "" {
		return nil
	}
	return helpers.SendText(c, d.Notice)
}
