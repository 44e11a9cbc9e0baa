// Package statehub is an in-process broadcast of engine states.
//
// The hub is hot and non-replaying: a subscriber only sees states published
// after Subscribe returns. Slow subscribers lose their oldest buffered states,
// never the newest.
package statehub

import (
	"context"
	"sync"

	"verifybridge/internal/bridge/models"
)

const defaultBuffer = 16

type Hub struct {
	mu      sync.Mutex
	subs    map[uint64]chan models.EngineState
	nextID  uint64
	current models.EngineState
	buffer  int
}

type Option func(*Hub)

func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func New(opts ...Option) *Hub {
	h := &Hub{
		subs:    make(map[uint64]chan models.EngineState),
		current: models.Idle(),
		buffer:  defaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish delivers state to every live subscriber without blocking.
func (h *Hub) Publish(_ context.Context, state models.EngineState) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = state
	for _, ch := range h.subs {
		select {
		case ch <- state:
		default:
			// drop the oldest buffered state to make room
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
	return nil
}

// Subscribe registers a subscriber. The subscription ends when cancel is
// called or ctx is done; the channel is closed in both cases. It never fails.
func (h *Hub) Subscribe(ctx context.Context) (<-chan models.EngineState, func(), error) {
	ch := make(chan models.EngineState, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, release)
	cancel := func() {
		stop()
		release()
	}
	return ch, cancel, nil
}

// Current returns the most recently published state.
func (h *Hub) Current() models.EngineState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
