// Package state keeps per-session conversation state: a current step marker
// plus the answers accumulated so far. Sessions are keyed by chat and user so
// two conversations never see each other's data.
package state
