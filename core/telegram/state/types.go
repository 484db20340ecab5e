package state

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// State identifies a conversation step such as "join.callsign".
type State string

// StateIdle indicates there is no active conversation.
const StateIdle State = ""

// Flow returns the part before the first dot; handlers are registered per flow.
func (s State) Flow() string {
	flow, _, _ := strings.Cut(string(s), ".")
	return flow
}

// Key addresses one conversation session.
type Key struct {
	ChatID int64
	UserID int64
}

// KeyFrom derives the session key of an update. ok is false for updates
// without a sender, such as channel posts.
func KeyFrom(c tele.Context) (Key, bool) {
	user := c.Sender()
	if user == nil {
		return Key{}, false
	}
	k := Key{ChatID: user.ID, UserID: user.ID}
	if chat := c.Chat(); chat != nil {
		k.ChatID = chat.ID
	}
	return k, true
}

// Data is the accumulated answer mapping of a session.
type Data map[string]string

// Store is the conversation state contract.
type Store interface {
	SetState(k Key, st State)
	State(k Key) State
	// UpdateData merges fields into the session data; later writes win.
	UpdateData(k Key, fields Data)
	// Data returns a copy of the session data, never nil.
	Data(k Key) Data
	// Delete removes the named fields and keeps the state marker.
	Delete(k Key, fields ...string)
	// Clear drops the state marker and all data.
	Clear(k Key)
	// Lock serialises handling of one session and returns the unlock func.
	Lock(k Key) func()
}

// InProgress reports whether the session sits in a non-idle state.
func InProgress(s Store, k Key) bool {
	return s.State(k) != StateIdle
}
