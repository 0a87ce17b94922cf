package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Conversation is the per-user tracker record.
// LastPromptID is the message id of the latest bot-authored prompt in the chat, 0 if none.
type Conversation struct {
	State        State     `json:"state"`
	LastPromptID int       `json:"last_prompt_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tracker persists conversation records keyed by user id.
// Get returns an idle conversation for unknown users.
type Tracker interface {
	Get(ctx context.Context, userID int64) (Conversation, error)
	Set(ctx context.Context, userID int64, conv Conversation) error
	Clear(ctx context.Context, userID int64) error
}

func idle() Conversation {
	return Conversation{State: StateIdle}
}
