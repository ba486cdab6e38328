package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

const subscriberBuffer = 32

// Hub is an in-process game.Broadcaster with channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan domain.Event]struct{})}
}

func (h *Hub) Publish(_ context.Context, channel, event string, payload any) error {
	ev := domain.Event{Channel: channel, Name: event, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[channel] {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop its oldest event rather than block the room
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
	return nil
}

// Subscribe returns one stream carrying events of all given channels.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(_ context.Context, channels ...string) (<-chan domain.Event, func(), error) {
	ch := make(chan domain.Event, subscriberBuffer)

	h.mu.Lock()
	for _, c := range channels {
		subs, ok := h.subscribers[c]
		if !ok {
			subs = make(map[chan domain.Event]struct{})
			h.subscribers[c] = subs
		}
		subs[ch] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			for _, c := range channels {
				if subs, ok := h.subscribers[c]; ok {
					delete(subs, ch)
					if len(subs) == 0 {
						delete(h.subscribers, c)
					}
				}
			}
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// Subscribers reports how many streams listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}
