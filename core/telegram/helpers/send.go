package helpers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/teambot/core/logger"
	"github.com/m3rciful/teambot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync hands run to the dispatcher, or runs it inline when no
// dispatcher is wired or the queue refuses the job.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	return enqueue(BuildContext(c), action, endpoint, run)
}

func enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.LogEvent(ctx, logger.Sender, slog.LevelWarn, "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends plain text to the current chat.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var so *tele.SendOptions
	if len(opts) > 0 {
		so = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if so != nil {
			return c.Send(text, so)
		}
		return c.Send(text)
	})
}

// SendHTML sends an HTML formatted message with optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: first(markup)})
}

// EditOrSendHTML replaces the message a callback came from, or sends a new
// one for plain messages.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: first(markup)}
	return sendAsync(c, "send.edit", "editMessageText", func() error {
		return c.EditOrSend(text, opts)
	})
}

// Alert answers the pending callback query with a popup.
func Alert(c tele.Context, text string) error {
	if c.Callback() == nil {
		return SendText(c, text)
	}
	MarkAnswered(c)
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

// Notify sends an HTML message to another chat, for example an admin or
// an applicant, through the dispatcher.
func Notify(c tele.Context, chatID int64, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: first(markup)}
	return sendAsync(c, "notify", "sendMessage", func() error {
		_, err := c.Bot().Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

// Deliver sends an HTML message to chatID outside of an update handler's
// own chat, for broadcasts to many members.
func Deliver(ctx context.Context, b *tele.Bot, chatID int64, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: first(markup)}
	return enqueue(ctx, "deliver", "sendMessage", func() error {
		_, err := b.Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

// SendPhoto sends an in-memory image with an HTML caption.
func SendPhoto(c tele.Context, png []byte, caption string) error {
	photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(png)), Caption: caption}
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		return c.Send(photo, &tele.SendOptions{ParseMode: tele.ModeHTML})
	})
}

func first(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
