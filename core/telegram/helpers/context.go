package helpers

import (
	"context"

	"github.com/m3rciful/teambot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "logger_ctx"

// StoreContext attaches reusable context to tele.Context for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context stored by the logging middleware.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the stored context or derives one carrying the update
// correlation fields, so service code logs with the same rid as the router.
func BuildContext(c tele.Context) context.Context {
	if c == nil {
		return logger.WithLogger(context.Background(), logger.TG)
	}
	if cached, ok := ContextFrom(c); ok {
		return cached
	}
	userID, chatID := SenderID(c), ChatID(c)
	updateID := c.Update().ID

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}
	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler enriches stored context with handler metadata for downstream logs.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

const (
	outcomeKey  = "outcome"
	answeredKey = "cb_answered"
)

// SetOutcome records a domain outcome (e.g. "advanced", "invalid") for the
// handler summary line.
func SetOutcome(c tele.Context, outcome string) {
	c.Set(outcomeKey, outcome)
}

// Outcome returns the value stored by SetOutcome.
func Outcome(c tele.Context) string {
	s, _ := c.Get(outcomeKey).(string)
	return s
}

// MarkAnswered notes that the callback query was already answered, so the
// router does not answer it a second time.
func MarkAnswered(c tele.Context) {
	c.Set(answeredKey, true)
}

// Answered reports whether MarkAnswered was called for this update.
func Answered(c tele.Context) bool {
	b, _ := c.Get(answeredKey).(bool)
	return b
}
