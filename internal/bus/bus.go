// internal/bus/bus.go

// Package bus is a fire-and-forget broadcast channel for record change
// notifications. Delivery is synchronous and at-most-once: a handler
// that panics is isolated, nothing is queued or retried, and no
// ordering is guaranteed across distinct topics.
package bus

import (
	"log/slog"
	"sync"
)

// Handler receives the payload published on a topic.
type Handler func(payload any)

// Bus routes published payloads to the handlers subscribed to a topic.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[int]Handler
	next int
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns a function that
// removes it. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers payload to every handler subscribed to topic. There
// is no acknowledgment; subscribers that are not registered at call
// time never see the payload.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		deliver(topic, h, payload)
	}
}

// deliver invokes a single handler, isolating panics so one bad
// subscriber cannot break the publisher or its siblings.
func deliver(topic string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("bus handler panicked", "topic", topic, "panic", r)
		}
	}()
	h(payload)
}
