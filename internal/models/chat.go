package models

import (
	"time"
)

// TurnRole identifies the speaker of a conversation turn
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one append-only message in a chat
type ConversationTurn struct {
	Role          TurnRole  `json:"role" yaml:"role"`
	Content       string    `json:"content" yaml:"content"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	AttachmentRef string    `json:"attachment_ref,omitempty" yaml:"attachment_ref,omitempty"`
}

// Chat is an owner's conversation. Turns are only ever appended in
// user/assistant pairs.
type Chat struct {
	ID        string             `json:"id" yaml:"id"` // chat_{uuid}
	OwnerID   string             `json:"owner_id" yaml:"owner_id" badgerhold:"index"`
	Turns     []ConversationTurn `json:"turns" yaml:"turns"`
	CreatedAt time.Time          `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" yaml:"updated_at"`
}

// RecentTurns returns at most the last n turns, oldest first
func (c *Chat) RecentTurns(n int) []ConversationTurn {
	if n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
