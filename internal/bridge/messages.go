// Package bridge connects the pub/sub brokers to Bubble Tea.
package bridge

import (
	"github.com/guilhermegouw/bioexplorer/internal/events"
	"github.com/guilhermegouw/bioexplorer/internal/pubsub"
)

// SessionEventMsg wraps a session event for the TUI.
type SessionEventMsg struct {
	Event pubsub.Event[events.SessionEvent]
}

// ExchangeEventMsg wraps an exchange event for the TUI.
type ExchangeEventMsg struct {
	Event pubsub.Event[events.ExchangeEvent]
}
