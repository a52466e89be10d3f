// Package session holds the per-session conversation ledger: an append-only,
// ordered log of user/assistant turns that can be exported as a deterministic
// markdown document. A ledger is transient, process-scoped state owned by a
// single session; it is explicitly passed, never ambient.
package session

import (
	"errors"
	"fmt"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrOutOfOrder is returned when an append carries a timestamp earlier
	// than the previous entry's. This is a programming or clock error; the
	// ledger is left unchanged.
	ErrOutOfOrder = errors.New("message timestamp precedes previous entry")

	// ErrBadRole is returned for roles outside user/assistant.
	ErrBadRole = errors.New("unknown message role")
)

// ChatMessage is one turn in a conversation. RecipeRef, when set, is a weak
// reference: the catalog may or may not still hold that id at export time.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	RecipeRef string    `json:"recipe_ref,omitempty"`
}

// Ledger is the ordered session log. Not safe for concurrent use: a session
// resolves one query at a time, so the owner serializes access.
type Ledger struct {
	title    string
	started  time.Time
	messages []ChatMessage
}

// NewLedger creates an empty ledger. The start time is fixed at creation and
// embedded in every export, keeping repeated exports byte-identical.
func NewLedger(title string) *Ledger {
	return &Ledger{title: title, started: time.Now().UTC()}
}

// Append adds msg to the log. The timestamp must be greater than or equal to
// the previous entry's; otherwise ErrOutOfOrder is returned and the ledger is
// unchanged.
func (l *Ledger) Append(msg ChatMessage) error {
	switch msg.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("%w: %q", ErrBadRole, msg.Role)
	}
	if n := len(l.messages); n > 0 && msg.Timestamp.Before(l.messages[n-1].Timestamp) {
		return fmt.Errorf("%w: %s < %s", ErrOutOfOrder,
			msg.Timestamp.Format(time.RFC3339Nano),
			l.messages[len(l.messages)-1].Timestamp.Format(time.RFC3339Nano))
	}
	l.messages = append(l.messages, msg)
	return nil
}

// Len returns the number of recorded turns.
func (l *Ledger) Len() int { return len(l.messages) }

// Title returns the session title.
func (l *Ledger) Title() string { return l.title }

// Messages returns a defensive copy of the session log in order.
func (l *Ledger) Messages() []ChatMessage {
	out := make([]ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}
