// internal/host/memory.go
package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/freely-dev/freely/internal/types"
)

// InvokeHandler services one command on a MemoryBridge. Live events are
// emitted through emit; any events returned are treated as the tail of
// the sequence, per the Bridge contract.
type InvokeHandler func(ctx context.Context, payload InvokePayload, emit func(types.StreamEvent)) ([]types.StreamEvent, error)

// MemoryBridge is an in-process Bridge for hosts that embed the
// execution environment in the same process, and for tests.
type MemoryBridge struct {
	mu        sync.RWMutex
	handlers  map[string]InvokeHandler
	listeners map[string]map[int]func(types.StreamEvent)
	installed map[string]bool
	next      int
}

// NewMemoryBridge creates an empty in-process bridge.
func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{
		handlers:  make(map[string]InvokeHandler),
		listeners: make(map[string]map[int]func(types.StreamEvent)),
		installed: make(map[string]bool),
	}
}

// Handle registers the handler servicing a command.
func (m *MemoryBridge) Handle(command string, h InvokeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[command] = h
}

// SetInstalled marks a tool binary as present or absent for ProbeTool.
func (m *MemoryBridge) SetInstalled(binary string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[binary] = ok
}

func (m *MemoryBridge) Available() bool { return true }

func (m *MemoryBridge) ProbeTool(_ context.Context, binary string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installed[binary], nil
}

func (m *MemoryBridge) Invoke(ctx context.Context, command string, payload InvokePayload) ([]types.StreamEvent, error) {
	m.mu.RLock()
	h := m.handlers[command]
	m.mu.RUnlock()

	if h == nil {
		return nil, fmt.Errorf("no handler for command %q", command)
	}

	channel := StreamChannel(payload.SessionID)
	emit := func(ev types.StreamEvent) {
		m.mu.RLock()
		handlers := make([]func(types.StreamEvent), 0, len(m.listeners[channel]))
		for _, fn := range m.listeners[channel] {
			handlers = append(handlers, fn)
		}
		m.mu.RUnlock()
		for _, fn := range handlers {
			fn(ev)
		}
	}

	return h(ctx, payload, emit)
}

func (m *MemoryBridge) Listen(channel string, handler func(types.StreamEvent)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listeners[channel] == nil {
		m.listeners[channel] = make(map[int]func(types.StreamEvent))
	}
	id := m.next
	m.next++
	m.listeners[channel][id] = handler

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners[channel], id)
	}, nil
}

var _ Bridge = (*MemoryBridge)(nil)
