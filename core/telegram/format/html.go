package format

import (
	"html"
	"strconv"
	"strings"
)

// Escape makes user supplied text safe for HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Bold wraps escaped text in <b>.
func Bold(s string) string {
	return "<b>" + Escape(s) + "</b>"
}

// Italic wraps escaped text in <i>.
func Italic(s string) string {
	return "<i>" + Escape(s) + "</i>"
}

// Code wraps escaped text in <code>.
func Code(s string) string {
	return "<code>" + Escape(s) + "</code>"
}

// Mention links to a Telegram user by id.
func Mention(userID int64, label string) string {
	return `<a href="tg://user?id=` + strconv.FormatInt(userID, 10) + `">` + Escape(label) + "</a>"
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
