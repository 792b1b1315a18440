package chat

import (
	"strings"

	"github.com/guilhermegouw/bioexplorer/internal/message"
	"github.com/guilhermegouw/bioexplorer/internal/role"
	"github.com/guilhermegouw/bioexplorer/internal/session"
)

// GreetingID is the id of the synthetic greeting message. It never appears
// in a stored session.
const GreetingID = "greeting"

// Greeting returns the synthetic greeting shown for an empty chat under r.
func Greeting(r role.Key) message.Message {
	return message.Message{
		ID:      GreetingID + "-" + string(role.MustGet(r).Key),
		Role:    message.RoleAssistant,
		Content: role.MustGet(r).Greeting,
	}
}

// IsGreeting reports whether m is a synthetic greeting.
func IsGreeting(m message.Message) bool {
	return strings.HasPrefix(m.ID, GreetingID+"-")
}

// DeriveView returns the messages to display for s under r: the stored
// messages, or exactly one greeting when there are none. s may be nil.
// The result never aliases s.
func DeriveView(s *session.Session, r role.Key) []message.Message {
	if s == nil || s.IsEmpty() {
		return []message.Message{Greeting(r)}
	}
	out := make([]message.Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// DerivePrompts returns the suggested prompts for s under r. Prompts are
// only offered before the first message.
func DerivePrompts(s *session.Session, r role.Key) []string {
	if s != nil && !s.IsEmpty() {
		return nil
	}
	return role.MustGet(r).Prompts()
}
