package memory

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestHubDeliversSubscribedChannels(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	ch, cancel, err := hub.Subscribe(ctx, domain.RoomChannel("123456"), domain.PlayerChannel("123456", "p1"))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	_ = hub.Publish(ctx, domain.PlayerChannel("123456", "p2"), domain.EventAnswerResult, "not mine")
	_ = hub.Publish(ctx, domain.PlayerChannel("123456", "p1"), domain.EventAnswerResult, "mine")
	_ = hub.Publish(ctx, domain.RoomChannel("123456"), domain.EventQuestionEnded, "room")

	for _, want := range []string{"mine", "room"} {
		select {
		case ev := <-ch:
			if ev.Payload != want {
				t.Fatalf("expected %q, got %+v", want, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestHubDropsOldestForSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	ch, cancel, _ := hub.Subscribe(ctx, "room:1")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		_ = hub.Publish(ctx, "room:1", "tick", i)
	}
	first := <-ch
	if first.Payload.(int) == 0 {
		t.Fatalf("expected oldest events dropped")
	}
}

func TestHubCancelUnsubscribes(t *testing.T) {
	hub := NewHub()
	ch, cancel, _ := hub.Subscribe(context.Background(), "room:1")
	cancel()
	cancel()

	if hub.Subscribers("room:1") != 0 {
		t.Fatalf("expected no subscribers after cancel")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
}
