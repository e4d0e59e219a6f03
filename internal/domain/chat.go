package domain

import (
	"fmt"
	"time"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// IsValid checks if the role is one of the defined values.
func (r ChatRole) IsValid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatMessage is one entry in a session's conversation history.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessage creates a message with the given role.
func NewChatMessage(role ChatRole, content string, at time.Time) (ChatMessage, error) {
	if !role.IsValid() {
		return ChatMessage{}, fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidChatRole, role)
	}
	return ChatMessage{Role: role, Content: content, CreatedAt: at.UTC()}, nil
}

// ChatExchange is a user question and the assistant's answer to it.
type ChatExchange struct {
	Question ChatMessage `json:"question"`
	Answer   ChatMessage `json:"answer"`
}

// Messages returns the exchange as an ordered {user, assistant} pair.
func (e ChatExchange) Messages() []ChatMessage {
	return []ChatMessage{e.Question, e.Answer}
}
