package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits telebot's "\f<unique>|<payload>" encoding.
// Callbacks delivered through a unique-specific handler already carry Unique
// and a bare payload in Data; those are returned as is.
func ParseCallbackData(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackKey returns the unique part of the current callback.
func CallbackKey(c tele.Context) string {
	k, _ := ParseCallbackData(c.Callback())
	return k
}

// CallbackPayload returns the payload part of the current callback.
func CallbackPayload(c tele.Context) string {
	_, p := ParseCallbackData(c.Callback())
	return p
}

const intentKey = "cb_intent"

// StoreIntent keeps the decoded callback intent on the update context.
func StoreIntent(c tele.Context, intent any) {
	c.Set(intentKey, intent)
}

// IntentFrom returns the decoded intent if it has type T.
func IntentFrom[T any](c tele.Context) (T, bool) {
	v, ok := c.Get(intentKey).(T)
	return v, ok
}
