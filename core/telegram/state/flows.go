package state

import (
	"log/slog"

	"github.com/m3rciful/teambot/core/logger"
	tghelpers "github.com/m3rciful/teambot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Flows routes updates of sessions in progress to the handler registered for
// the flow of their current state.
type Flows struct {
	store    Store
	handlers map[string]tele.HandlerFunc
}

// NewFlows binds a flow table to store.
func NewFlows(store Store) *Flows {
	return &Flows{store: store, handlers: make(map[string]tele.HandlerFunc)}
}

// Store exposes the underlying session store.
func (f *Flows) Store() Store { return f.store }

// Handle registers h for every state whose Flow equals flow.
func (f *Flows) Handle(flow string, h tele.HandlerFunc) {
	if h != nil && flow != "" {
		f.handlers[flow] = h
	}
}

// InProgress reports whether the sender has an active conversation.
func (f *Flows) InProgress(c tele.Context) bool {
	k, ok := KeyFrom(c)
	return ok && InProgress(f.store, k)
}

// Dispatch runs the handler of the current flow. A state without a handler is
// cleared so the session cannot get stuck.
func (f *Flows) Dispatch(c tele.Context) error {
	k, ok := KeyFrom(c)
	if !ok {
		return nil
	}
	current := f.store.State(k)
	ctx := tghelpers.BuildContext(c)
	if h, ok := f.handlers[current.Flow()]; ok {
		logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.dispatch",
			slog.String("event", "fsm.dispatch"),
			slog.String("state", string(current)),
		)
		return h(c)
	}
	logger.TG.LogAttrs(ctx, slog.LevelWarn, "fsm.orphan",
		slog.String("event", "fsm.orphan"),
		slog.String("state", string(current)),
	)
	f.store.Clear(k)
	return nil
}
