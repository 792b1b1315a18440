// Package events defines the domain event payloads carried by the pub/sub
// brokers.
package events

import "time"

// SessionEventType represents session-specific event types.
type SessionEventType string

// Session event type constants.
const (
	SessionEventCreated        SessionEventType = "created"
	SessionEventSwitched       SessionEventType = "switched"
	SessionEventRenamed        SessionEventType = "renamed"
	SessionEventDeleted        SessionEventType = "deleted"
	SessionEventMessageAdded   SessionEventType = "message_added"
	SessionEventExchangeFailed SessionEventType = "exchange_failed"
	SessionEventPersistFailed  SessionEventType = "persist_failed"
)

// SessionEvent represents a session lifecycle event.
type SessionEvent struct {
	SessionID string
	Title     string
	Type      SessionEventType
	Timestamp time.Time

	// Optional fields
	MessageRole string // For MessageAdded
	MessageText string // For MessageAdded
	Err         error  // For ExchangeFailed, PersistFailed
}

func newSessionEvent(typ SessionEventType, id, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Type:      typ,
		Timestamp: time.Now(),
	}
}

// NewSessionCreatedEvent creates a session created event.
func NewSessionCreatedEvent(id, title string) SessionEvent {
	return newSessionEvent(SessionEventCreated, id, title)
}

// NewSessionSwitchedEvent creates a session switched event.
func NewSessionSwitchedEvent(id, title string) SessionEvent {
	return newSessionEvent(SessionEventSwitched, id, title)
}

// NewSessionRenamedEvent creates a session renamed event. It is also
// published when a chat receives its automatic title.
func NewSessionRenamedEvent(id, title string) SessionEvent {
	return newSessionEvent(SessionEventRenamed, id, title)
}

// NewSessionDeletedEvent creates a session deleted event.
func NewSessionDeletedEvent(id string) SessionEvent {
	return newSessionEvent(SessionEventDeleted, id, "")
}

// NewSessionMessageAddedEvent creates a message added event.
func NewSessionMessageAddedEvent(sessionID, role, text string) SessionEvent {
	e := newSessionEvent(SessionEventMessageAdded, sessionID, "")
	e.MessageRole = role
	e.MessageText = text
	return e
}

// NewExchangeFailedEvent creates an event for a query that could not be
// answered. The session still receives the fixed error reply.
func NewExchangeFailedEvent(sessionID string, err error) SessionEvent {
	e := newSessionEvent(SessionEventExchangeFailed, sessionID, "")
	e.Err = err
	return e
}

// NewPersistFailedEvent creates an event for a failed load or save.
// sessionID is empty when the failure is not tied to one session.
func NewPersistFailedEvent(sessionID string, err error) SessionEvent {
	e := newSessionEvent(SessionEventPersistFailed, sessionID, "")
	e.Err = err
	return e
}
