package events

import "time"

// ExchangeEventType represents query exchange event types.
type ExchangeEventType string

// Exchange event type constants.
const (
	ExchangeEventStarted ExchangeEventType = "started"
	ExchangeEventSettled ExchangeEventType = "settled"
)

// ExchangeEvent tracks one query round trip. The UI uses it to show the
// typing indicator.
type ExchangeEvent struct { //nolint:govet // fieldalignment: preserving logical field order
	SessionID string
	Role      string
	Type      ExchangeEventType
	Timestamp time.Time

	// Set on Settled
	Duration time.Duration
	Err      error
}

// NewExchangeStartedEvent creates an event for a query that was just issued.
func NewExchangeStartedEvent(sessionID, role string) ExchangeEvent {
	return ExchangeEvent{
		SessionID: sessionID,
		Role:      role,
		Type:      ExchangeEventStarted,
		Timestamp: time.Now(),
	}
}

// NewExchangeSettledEvent creates an event for a query that finished,
// successfully or not.
func NewExchangeSettledEvent(sessionID, role string, d time.Duration, err error) ExchangeEvent {
	return ExchangeEvent{
		SessionID: sessionID,
		Role:      role,
		Type:      ExchangeEventSettled,
		Timestamp: time.Now(),
		Duration:  d,
		Err:       err,
	}
}

// Failed reports whether the exchange settled with an error.
func (e ExchangeEvent) Failed() bool {
	return e.Type == ExchangeEventSettled && e.Err != nil
}
