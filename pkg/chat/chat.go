package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant" // Dungeon Master
	ChatRoleSystem = "system"
)

const (
	MessageTypeNarrative = "narrative" // DM prose
	MessageTypeAction    = "action"    // player free-text action
	MessageTypeRoll      = "roll"      // resolved dice roll fed back into the conversation
)

// ChatMessage is a single entry in a session's conversation log.
// Content of an in-flight assistant message is updated in place as
// stream chunks arrive; every other field is fixed at creation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user", "assistant", "system"
	Content   string    `json:"content"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTypedMessage creates a message with an explicit display type.
func NewTypedMessage(role, content, msgType string) ChatMessage {
	m := NewMessage(role, content)
	m.Type = msgType
	return m
}

// ChatRequest is a player action submitted to the api.
type ChatRequest struct {
	Message string `json:"message"`
}

func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}
