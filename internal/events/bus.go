package events

import (
	"sync"

	"github.com/charleschow/courtvision/internal/telemetry"
)

// Handler processes an event. An error is logged and counted; the remaining
// handlers still run.
type Handler func(Event) error

// Bus dispatches prediction and replay events synchronously, in
// subscription order, on the publisher's goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[EventType][]Handler)}
}

func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	b.handlers[t] = append(b.handlers[t], h)
	b.mu.Unlock()
}

// SubscribeTeam only delivers events that involve team. An empty team
// receives everything.
func (b *Bus) SubscribeTeam(t EventType, team string, h Handler) {
	b.Subscribe(t, func(e Event) error {
		if team != "" && !e.Involves(team) {
			return nil
		}
		return h(e)
	})
}

// Publish returns how many handlers failed.
func (b *Bus) Publish(e Event) int {
	b.mu.RLock()
	hs := b.handlers[e.Type]
	b.mu.RUnlock()

	failed := 0
	for _, h := range hs {
		if err := h(e); err != nil {
			failed++
			telemetry.L().Warn("event handler failed", "type", string(e.Type), "game", e.GameID, "err", err)
		}
	}
	return failed
}
