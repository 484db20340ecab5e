// Package convo holds the pieces shared by the step-by-step conversations:
// replies, outcomes and the message-part merge policy.
package convo

import (
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/teambot/core/telegram/state"
)

// PartThreshold is the length above which a message is treated as one part
// of a longer answer split by the Telegram message limit.
const PartThreshold = 4000

// CancelReminder closes every question prompt.
const CancelReminder = "<i>Чтобы прервать заполнение, отправь /cancel</i>"

// Outcome names what a conversation step did. It ends up in the handler
// summary log line.
type Outcome string

const (
	Started   Outcome = "started"
	Blocked   Outcome = "blocked"
	Waiting   Outcome = "waiting"
	Invalid   Outcome = "invalid"
	Duplicate Outcome = "duplicate"
	Advanced  Outcome = "advanced"
	Rejected  Outcome = "rejected"
	Declined  Outcome = "declined"
	Completed Outcome = "completed"
	NotFound  Outcome = "not_found"
	Cancelled Outcome = "cancelled"
)

// Reply is one outgoing HTML message. Choices renders a reply keyboard;
// RemoveKeyboard hides a previous one.
type Reply struct {
	Text           string
	Choices        [][]string
	RemoveKeyboard bool
}

// Result is the effect of one conversation step.
type Result struct {
	Outcome Outcome
	Replies []Reply
}

// Say builds a Result with a single reply.
func Say(o Outcome, r Reply) Result {
	return Result{Outcome: o, Replies: []Reply{r}}
}

// Prompt appends the cancel reminder to a question.
func Prompt(text string) string {
	return text + "\n\n" + CancelReminder
}

// Error formats a rejected answer followed by the repeated question.
func Error(reason, question string) string {
	return Prompt("Ошибка: " + reason + "\n\n" + question)
}

// MergeParts applies the split-message policy. A part longer than
// PartThreshold is appended to buffered and reported incomplete; otherwise
// the buffer and the part are joined into the answer.
func MergeParts(buffered, part string) (string, bool) {
	if utf8.RuneCountInString(part) > PartThreshold {
		if buffered == "" {
			return part, false
		}
		return buffered + " " + part, false
	}
	return strings.TrimSpace(buffered + " " + part), true
}

// Collect runs MergeParts against the session buffer stored under key.
// Incomplete parts are persisted; a complete answer is returned for
// validation and the buffer is left for the caller to overwrite.
func Collect(store state.Store, k state.Key, key, part string) (string, bool) {
	merged, done := MergeParts(store.Data(k)[key], part)
	if !done {
		store.UpdateData(k, state.Data{key: merged})
		return "", false
	}
	return merged, true
}
