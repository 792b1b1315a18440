package bridge

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/bioexplorer/internal/debug"
	"github.com/guilhermegouw/bioexplorer/internal/events"
	"github.com/guilhermegouw/bioexplorer/internal/pubsub"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIBridge subscribes to the Hub brokers and forwards events to the
// program as Bubble Tea messages.
type TUIBridge struct { //nolint:govet // fieldalignment: preserving logical field order
	hub    *pubsub.Hub
	sender Sender

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTUIBridge creates a new TUI bridge.
func NewTUIBridge(hub *pubsub.Hub, sender Sender) *TUIBridge {
	return &TUIBridge{
		hub:    hub,
		sender: sender,
	}
}

// Start begins forwarding events. Call Stop to shut down.
func (b *TUIBridge) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)

	sessions := b.hub.Session.Subscribe(ctx)
	exchanges := b.hub.Exchange.Subscribe(ctx)

	b.wg.Add(2)
	go forward(&b.wg, sessions, b.sender, func(e pubsub.Event[events.SessionEvent]) tea.Msg {
		return SessionEventMsg{Event: e}
	})
	go forward(&b.wg, exchanges, b.sender, func(e pubsub.Event[events.ExchangeEvent]) tea.Msg {
		return ExchangeEventMsg{Event: e}
	})

	debug.Event("bridge", "start", "TUI bridge started")
}

// Stop shuts the bridge down and waits for the forwarders to exit.
func (b *TUIBridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	debug.Event("bridge", "stop", "TUI bridge stopped")
}

// forward drains ch into sender until ch is closed.
func forward[T any](wg *sync.WaitGroup, ch <-chan pubsub.Event[T], sender Sender, wrap func(pubsub.Event[T]) tea.Msg) {
	defer wg.Done()
	for event := range ch {
		sender.Send(wrap(event))
	}
}
