package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are hidden from the public menu and guarded by the admin allow-list.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Callback is a handler bound to one callback unique.
type Callback struct {
	Handler   tele.HandlerFunc
	AdminOnly bool
}
