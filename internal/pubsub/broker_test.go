package pubsub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/guilhermegouw/bioexplorer/internal/events"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBrokerSubscribePublish(t *testing.T) {
	t.Run("single subscriber receives events", func(t *testing.T) {
		broker := NewBroker[string]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := broker.Subscribe(ctx)
		broker.Publish(EventCreated, "hello")

		select {
		case event := <-sub:
			if event.Type != EventCreated || event.Payload != "hello" {
				t.Errorf("unexpected event: %+v", event)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout waiting for event")
		}
	})

	t.Run("multiple subscribers receive same event", func(t *testing.T) {
		broker := NewBroker[int]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub1 := broker.Subscribe(ctx)
		sub2 := broker.Subscribe(ctx)
		broker.Publish(EventUpdated, 42)

		for i, sub := range []<-chan Event[int]{sub1, sub2} {
			select {
			case event := <-sub:
				if event.Payload != 42 {
					t.Errorf("subscriber %d: expected 42, got %d", i, event.Payload)
				}
			case <-time.After(100 * time.Millisecond):
				t.Errorf("subscriber %d: timeout", i)
			}
		}
	})

	t.Run("cancelled context unsubscribes", func(t *testing.T) {
		broker := NewBroker[string]("test")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		sub := broker.Subscribe(ctx)

		if broker.SubscriberCount() != 1 {
			t.Errorf("expected 1 subscriber, got %d", broker.SubscriberCount())
		}

		cancel()
		waitFor(t, func() bool { return broker.SubscriberCount() == 0 })

		if _, ok := <-sub; ok {
			t.Error("expected channel to be closed")
		}
	})

	t.Run("full subscriber drops instead of blocking", func(t *testing.T) {
		broker := NewBroker[int]("test", WithBufferSize[int](1))
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		broker.Subscribe(ctx)

		broker.Publish(EventUpdated, 1)
		broker.Publish(EventUpdated, 2)

		m := broker.Metrics()
		if m.PublishCount != 2 || m.DropCount != 1 {
			t.Errorf("expected published=2 dropped=1, got %+v", m)
		}
	})
}

func TestBrokerShutdown(t *testing.T) {
	broker := NewBroker[string]("test")
	sub := broker.Subscribe(context.Background())

	broker.Shutdown()
	broker.Shutdown()

	if !broker.IsShutdown() {
		t.Error("expected IsShutdown() to be true")
	}
	if _, ok := <-sub; ok {
		t.Error("expected subscriber channel to be closed")
	}

	late := broker.Subscribe(context.Background())
	if _, ok := <-late; ok {
		t.Error("subscribing after shutdown should return a closed channel")
	}

	broker.Publish(EventCreated, "ignored")
	if broker.Metrics().PublishCount != 0 {
		t.Error("publish after shutdown should be ignored")
	}
}

func TestHub(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := hub.Session.Subscribe(ctx)
	hub.Session.Publish(EventCreated, events.NewSessionCreatedEvent("s1", "New Chat"))

	select {
	case event := <-sub:
		if event.Payload.SessionID != "s1" {
			t.Errorf("unexpected payload: %+v", event.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for session event")
	}

	names := hub.registry.Names()
	if len(names) != 2 || names[0] != "exchange" || names[1] != "session" {
		t.Errorf("unexpected registry names: %v", names)
	}

	hub.Shutdown()
	out := hub.DebugString()
	for _, want := range []string{"brokers=2", "session: subs=0 published=1", "shutdown=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("DebugString() missing %q:\n%s", want, out)
		}
	}
}
