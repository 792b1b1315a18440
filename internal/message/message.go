// Package message defines the chat message type.
package message

import (
	"fmt"

	"github.com/google/uuid"
)

// Role represents the role of a message sender.
type Role string

// Role constants.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known sender role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one entry of a conversation.
// Assistant content is markdown.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// New creates a message with a fresh time-ordered ID.
func New(role Role, content string) Message {
	return Message{
		ID:      NewID(),
		Role:    role,
		Content: content,
	}
}

// NewUser creates a user message.
func NewUser(content string) Message {
	return New(RoleUser, content)
}

// NewAssistant creates an assistant message.
func NewAssistant(content string) Message {
	return New(RoleAssistant, content)
}

// NewID returns a UUIDv7 string. Version 7 IDs sort by creation time,
// so IDs allocated within one process never collide and keep send order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Validate checks that the message can be persisted.
func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message has empty id")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("message %s has invalid role %q", m.ID, m.Role)
	}
	return nil
}
