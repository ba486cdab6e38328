package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// RoomStore is an in-memory implementation of game.RoomStore. Rooms are copied on every read
// and write so callers never share mutable state with the store.
type RoomStore struct {
	ttl       time.Duration
	retention time.Duration
	clock     func() time.Time

	mu         sync.RWMutex
	rooms      map[string]domain.Room
	lastActive map[string]time.Time
}

// NewRoomStore drops rooms that saw no write for ttl, and ended rooms once retention has passed
// since they ended. A zero duration disables that rule.
func NewRoomStore(ttl, retention time.Duration) *RoomStore {
	return &RoomStore{
		ttl:        ttl,
		retention:  retention,
		clock:      time.Now,
		rooms:      make(map[string]domain.Room),
		lastActive: make(map[string]time.Time),
	}
}

func (s *RoomStore) Create(_ context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Pin]; ok {
		return domain.ErrPinTaken
	}
	s.rooms[room.Pin] = room.Clone()
	s.lastActive[room.Pin] = s.clock()
	return nil
}

func (s *RoomStore) Get(_ context.Context, pin string) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[pin]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room.Clone(), nil
}

// Save stores room if its version still matches, then bumps room.Version.
func (s *RoomStore) Save(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[room.Pin]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if current.Version != room.Version {
		return domain.ErrStoreConflict
	}
	room.Version++
	s.rooms[room.Pin] = room.Clone()
	s.lastActive[room.Pin] = s.clock()
	return nil
}

// Len reports how many rooms are stored.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Sweep removes expired rooms and returns how many it dropped: ended rooms past retention, and
// rooms in any other phase idle for longer than ttl.
func (s *RoomStore) Sweep() int {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for pin, room := range s.rooms {
		if s.expired(pin, room, now) {
			delete(s.rooms, pin)
			delete(s.lastActive, pin)
			removed++
		}
	}
	return removed
}

func (s *RoomStore) expired(pin string, room domain.Room, now time.Time) bool {
	if room.Status == domain.StatusEnded {
		return s.retention > 0 && room.EndedAt.Before(now.Add(-s.retention))
	}
	return s.ttl > 0 && s.lastActive[pin].Before(now.Add(-s.ttl))
}

// RunJanitor sweeps every interval until ctx is done.
func (s *RoomStore) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("janitor: removed %d ended rooms", n)
			}
		}
	}
}
