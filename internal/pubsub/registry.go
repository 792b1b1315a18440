package pubsub

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// BrokerInfo is the introspection surface shared by every Broker.
type BrokerInfo interface {
	Name() string
	IsShutdown() bool
	Metrics() BrokerMetrics
}

// Registry tracks brokers by name for introspection.
type Registry struct {
	brokers map[string]BrokerInfo
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		brokers: make(map[string]BrokerInfo),
	}
}

// Register adds a broker under its own name, replacing any previous entry.
func (r *Registry) Register(broker BrokerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.brokers[broker.Name()] = broker
}

// Get retrieves a broker by name.
func (r *Registry) Get(name string) (BrokerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.brokers[name]
	return b, ok
}

// Names returns the registered broker names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.brokers))
	for name := range r.brokers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DebugString returns one line of counters per broker.
func (r *Registry) DebugString() string {
	var sb strings.Builder
	names := r.Names()
	fmt.Fprintf(&sb, "brokers=%d", len(names))

	for _, name := range names {
		b, ok := r.Get(name)
		if !ok {
			continue
		}
		m := b.Metrics()
		fmt.Fprintf(&sb, "\n  %s: subs=%d published=%d dropped=%d shutdown=%v",
			name, m.SubscriberCount, m.PublishCount, m.DropCount, b.IsShutdown())
	}
	return sb.String()
}
