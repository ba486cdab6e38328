package game_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/game"
	"live-quiz-service/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualScheduler holds callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending map[string]scheduledCall
}

type scheduledCall struct {
	after time.Duration
	fn    func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{pending: make(map[string]scheduledCall)}
}

func (s *manualScheduler) Schedule(pin string, after time.Duration, fn func()) {
	s.mu.Lock()
	s.pending[pin] = scheduledCall{after: after, fn: fn}
	s.mu.Unlock()
}

func (s *manualScheduler) Cancel(pin string) {
	s.mu.Lock()
	delete(s.pending, pin)
	s.mu.Unlock()
}

func (s *manualScheduler) Pending(pin string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.pending[pin]
	return call.after, ok
}

func (s *manualScheduler) Fire(pin string) bool {
	s.mu.Lock()
	call, ok := s.pending[pin]
	delete(s.pending, pin)
	s.mu.Unlock()
	if ok {
		call.fn()
	}
	return ok
}

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Publish(_ context.Context, channel, event string, payload any) error {
	r.mu.Lock()
	r.events = append(r.events, domain.Event{Channel: channel, Name: event, Payload: payload})
	r.mu.Unlock()
	return nil
}

func (r *recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

func (r *recorder) Last(name string) (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return domain.Event{}, false
}

// flakyStore reports a conflict on the next failSaves saves without writing.
type flakyStore struct {
	*memory.RoomStore
	mu        sync.Mutex
	failSaves int
}

func (s *flakyStore) Save(ctx context.Context, room *domain.Room) error {
	s.mu.Lock()
	if s.failSaves > 0 {
		s.failSaves--
		s.mu.Unlock()
		return domain.ErrStoreConflict
	}
	s.mu.Unlock()
	return s.RoomStore.Save(ctx, room)
}

type harness struct {
	engine  *game.Engine
	store   game.RoomStore
	events  *recorder
	clock   *fakeClock
	sched   *manualScheduler
	archive *memory.ResultArchive
}

func newHarness(t *testing.T, opts game.Options) *harness {
	t.Helper()
	return newHarnessWithStore(t, memory.NewRoomStore(0, 0), opts)
}

func newHarnessWithStore(t *testing.T, store game.RoomStore, opts game.Options) *harness {
	t.Helper()
	h := &harness{
		store:   store,
		events:  &recorder{},
		clock:   &fakeClock{now: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)},
		sched:   newManualScheduler(),
		archive: memory.NewResultArchive(),
	}
	opts.Now = h.clock.Now
	opts.Rand = rand.New(rand.NewSource(42))
	opts.Scheduler = h.sched
	opts.Archive = h.archive
	h.engine = game.NewEngine(store, h.events, opts)
	return h
}

// room creates a room and joins players p1..pN named after their ids.
func (h *harness) room(t *testing.T, questions []domain.Question, teams *domain.TeamConfig, players ...string) string {
	t.Helper()
	ctx := context.Background()
	room, err := h.engine.CreateRoom(ctx, questions, teams)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for _, id := range players {
		if _, err := h.engine.Join(ctx, room.Pin, id, "nick-"+id, "🦄"); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return room.Pin
}

func (h *harness) get(t *testing.T, pin string) domain.Room {
	t.Helper()
	room, err := h.engine.GetRoom(context.Background(), pin)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	return room
}

func (h *harness) player(t *testing.T, pin, id string) domain.Player {
	t.Helper()
	room := h.get(t, pin)
	p := room.Player(id)
	if p == nil {
		t.Fatalf("player %s not in room", id)
	}
	return *p
}

func (h *harness) team(t *testing.T, pin, id string) domain.Team {
	t.Helper()
	room := h.get(t, pin)
	team := room.Team(id)
	if team == nil {
		t.Fatalf("team %s not in room", id)
	}
	return *team
}

func intPtr(v int) *int { return &v }

func choose(idx int) domain.AnswerSubmission {
	return domain.AnswerSubmission{SelectedIndex: intPtr(idx)}
}

func multipleChoice(id string) domain.Question {
	return domain.Question{
		ID:               id,
		Type:             domain.TypeMultiple,
		Text:             "Pick the third",
		Options:          []string{"a", "b", "c", "d"},
		CorrectOptions:   []int{2},
		TimeLimitSeconds: 20,
	}
}

func blitz(id string) domain.Question {
	return domain.Question{
		ID:               id,
		Type:             domain.TypeBlitz,
		Text:             "Quick",
		Options:          []string{"yes", "no"},
		CorrectOptions:   []int{0},
		TimeLimitSeconds: 5,
	}
}
