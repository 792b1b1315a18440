package pubsub

import (
	"github.com/guilhermegouw/bioexplorer/internal/events"
)

// Hub holds the application's brokers.
type Hub struct {
	Session  *Broker[events.SessionEvent]
	Exchange *Broker[events.ExchangeEvent]

	registry *Registry
}

// NewHub creates a Hub with every broker initialized and registered.
func NewHub() *Hub {
	h := &Hub{
		Session:  NewBroker[events.SessionEvent]("session"),
		Exchange: NewBroker[events.ExchangeEvent]("exchange"),
		registry: NewRegistry(),
	}

	h.registry.Register(h.Session)
	h.registry.Register(h.Exchange)

	return h
}

// Shutdown shuts down every broker.
func (h *Hub) Shutdown() {
	h.Session.Shutdown()
	h.Exchange.Shutdown()
}

// DebugString summarizes every broker for the debug log.
func (h *Hub) DebugString() string {
	return h.registry.DebugString()
}
