package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestRoomStoreVersionCheck(t *testing.T) {
	ctx := context.Background()
	store := NewRoomStore(0, 0)

	if err := store.Create(ctx, domain.Room{Pin: "123456", Status: domain.StatusLobby}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, domain.Room{Pin: "123456"}); !errors.Is(err, domain.ErrPinTaken) {
		t.Fatalf("expected pin taken, got %v", err)
	}

	a, _ := store.Get(ctx, "123456")
	b, _ := store.Get(ctx, "123456")

	a.Status = domain.StatusQuestion
	if err := store.Save(ctx, &a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if a.Version != 1 {
		t.Fatalf("expected version 1, got %d", a.Version)
	}

	b.Status = domain.StatusEnded
	if err := store.Save(ctx, &b); !errors.Is(err, domain.ErrStoreConflict) {
		t.Fatalf("expected conflict for stale snapshot, got %v", err)
	}

	got, _ := store.Get(ctx, "123456")
	if got.Status != domain.StatusQuestion {
		t.Fatalf("stale save must not apply, status %s", got.Status)
	}
}

func TestRoomStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewRoomStore(0, 0)
	_ = store.Create(ctx, domain.Room{Pin: "111111", Players: []domain.Player{{ID: "p1", Score: 10}}})

	room, _ := store.Get(ctx, "111111")
	room.Players[0].Score = 999

	again, _ := store.Get(ctx, "111111")
	if again.Players[0].Score != 10 {
		t.Fatalf("store leaked mutable state, score %d", again.Players[0].Score)
	}
}

func TestRoomStoreGetMissing(t *testing.T) {
	if _, err := NewRoomStore(0, 0).Get(context.Background(), "000000"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRoomStoreSweepDropsExpiredEndedRooms(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	store := NewRoomStore(0, time.Hour)
	store.clock = func() time.Time { return now }

	_ = store.Create(ctx, domain.Room{Pin: "100001", Status: domain.StatusEnded, EndedAt: now.Add(-2 * time.Hour)})
	_ = store.Create(ctx, domain.Room{Pin: "100002", Status: domain.StatusEnded, EndedAt: now.Add(-10 * time.Minute)})
	_ = store.Create(ctx, domain.Room{Pin: "100003", Status: domain.StatusQuestion})

	if n := store.Sweep(); n != 1 {
		t.Fatalf("expected 1 room swept, got %d", n)
	}
	if _, err := store.Get(ctx, "100001"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected expired room gone, got %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 rooms left, got %d", store.Len())
	}
}

func TestRoomStoreSweepDropsIdleRooms(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	store := NewRoomStore(2*time.Hour, time.Hour)
	store.clock = func() time.Time { return now }

	_ = store.Create(ctx, domain.Room{Pin: "100001", Status: domain.StatusLobby})
	_ = store.Create(ctx, domain.Room{Pin: "100002", Status: domain.StatusQuestion})

	now = now.Add(90 * time.Minute)
	room, err := store.Get(ctx, "100002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := store.Save(ctx, &room); err != nil {
		t.Fatalf("save: %v", err)
	}

	now = now.Add(time.Hour)
	if n := store.Sweep(); n != 1 {
		t.Fatalf("expected only the abandoned lobby swept, got %d", n)
	}
	if _, err := store.Get(ctx, "100001"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected idle lobby gone, got %v", err)
	}
	if _, err := store.Get(ctx, "100002"); err != nil {
		t.Fatalf("recently saved room must survive: %v", err)
	}
}
