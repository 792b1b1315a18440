// Package session provides the chat session model and its persisted store.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guilhermegouw/bioexplorer/internal/message"
)

// UntitledTitle is the title every session starts with.
const UntitledTitle = "New Chat"

// autoTitleDateLayout renders creation dates as MM/DD/YY.
const autoTitleDateLayout = "01/02/06"

// TitleState tracks how a session got its title.
//
//	Untitled -> AutoTitled  (first user message)
//	Untitled -> UserTitled  (rename)
//	AutoTitled -> UserTitled (rename)
//
// UserTitled is terminal for automatic titling.
type TitleState int

// Title states.
const (
	Untitled TitleState = iota
	AutoTitled
	UserTitled
)

func (s TitleState) String() string {
	switch s {
	case Untitled:
		return "untitled"
	case AutoTitled:
		return "auto"
	case UserTitled:
		return "user"
	default:
		return fmt.Sprintf("TitleState(%d)", int(s))
	}
}

// Session is one conversation thread.
type Session struct {
	ID         string
	Title      string
	TitleState TitleState
	Messages   []message.Message
	CreatedAt  time.Time
}

// New creates an empty untitled session.
func New(now time.Time) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Title:      UntitledTitle,
		TitleState: Untitled,
		Messages:   []message.Message{},
		CreatedAt:  now,
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]message.Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// IsEmpty reports whether the session has no stored messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Append adds a message to the end of the conversation.
func (s *Session) Append(msg message.Message) {
	s.Messages = append(s.Messages, msg)
}

// Rename sets an explicit title. Blank titles are ignored.
// It reports whether the title changed state.
func (s *Session) Rename(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	s.Title = title
	s.TitleState = UserTitled
	return true
}

// ApplyAutoTitle titles an untitled session as "<shortTitle> MM/DD/YY"
// using its creation date. It is a no-op unless the session is Untitled.
func (s *Session) ApplyAutoTitle(shortTitle string) bool {
	if s.TitleState != Untitled {
		return false
	}
	s.Title = AutoTitle(shortTitle, s.CreatedAt)
	s.TitleState = AutoTitled
	return true
}

// AutoTitle formats an automatic title.
func AutoTitle(shortTitle string, createdAt time.Time) string {
	return fmt.Sprintf("%s %s", shortTitle, createdAt.Format(autoTitleDateLayout))
}

// LastAssistantMessage returns the most recent assistant message.
func (s *Session) LastAssistantMessage() (message.Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == message.RoleAssistant {
			return s.Messages[i], true
		}
	}
	return message.Message{}, false
}

// Preview returns the first user message, used by session pickers.
func (s *Session) Preview() string {
	for _, m := range s.Messages {
		if m.IsUser() {
			return m.Content
		}
	}
	return ""
}
