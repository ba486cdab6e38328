package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
)

const subscriberBuffer = 32

// Broadcaster fans events out through Redis pub/sub so every instance can serve any room.
type Broadcaster struct {
	client *redis.Client
}

func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{client: client}
}

type envelope struct {
	Channel string          `json:"channel"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

func (b *Broadcaster) Publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	data, err := json.Marshal(envelope{Channel: channel, Name: event, Payload: body})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.topic(channel), data).Err()
}

// Subscribe streams events of the given channels. Payloads arrive as json.RawMessage.
// The caller must invoke the returned cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(ctx context.Context, channels ...string) (<-chan domain.Event, func(), error) {
	topics := make([]string, len(channels))
	for i, c := range channels {
		topics[i] = b.topic(c)
	}
	ps := b.client.Subscribe(ctx, topics...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan domain.Event, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("pubsub %s: drop malformed message: %v", msg.Channel, err)
				continue
			}
			ev := domain.Event{Channel: env.Channel, Name: env.Name, Payload: env.Payload}
			select {
			case out <- ev:
			default:
				// slow subscriber: drop its oldest event
				select {
				case <-out:
				default:
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = ps.Close()
			<-done
			close(out)
		})
	}
	return out, cancel, nil
}

func (b *Broadcaster) topic(channel string) string {
	return "quiz:" + channel
}
