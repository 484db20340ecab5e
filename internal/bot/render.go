package bot

import (
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/teambot/core/telegram/helpers"
	"github.com/m3rciful/teambot/core/telegram/keyboard"
	"github.com/m3rciful/teambot/internal/convo"

	tele "gopkg.in/telebot.v4"
)

func send(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return helpers.SendHTML(c, text, markup...)
}

// replyMarkup converts the keyboard wish of a reply.
func replyMarkup(r convo.Reply) *tele.ReplyMarkup {
	switch {
	case len(r.Choices) > 0:
		return keyboard.ReplyButtons(r.Choices...)
	case r.RemoveKeyboard:
		return keyboard.RemoveKeyboard()
	}
	return nil
}

// reply sends every message of a conversation step and records its outcome.
func reply(c tele.Context, res convo.Result) error {
	if res.Outcome != "" {
		helpers.SetOutcome(c, string(res.Outcome))
	}
	for _, r := range res.Replies {
		if err := send(c, r.Text, replyMarkup(r)); err != nil {
			return err
		}
	}
	return nil
}

// Telegram cuts callback alerts at this length.
const alertLimit = 200

// answer shows a one-reply result of a button press as a popup. Formatted,
// long and multi-message results go to the chat.
func answer(c tele.Context, res convo.Result) error {
	if c.Callback() != nil && len(res.Replies) == 1 {
		text := res.Replies[0].Text
		if utf8.RuneCountInString(text) <= alertLimit && !strings.ContainsRune(text, '<') {
			helpers.SetOutcome(c, string(res.Outcome))
			return helpers.Alert(c, text)
		}
	}
	return reply(c, res)
}

// fail tells the user something went wrong. The error is returned so the
// router summary records it.
func fail(c tele.Context, err error) error {
	_ = send(c, textFailure)
	return err
}
