package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// RoomStore abstracts durable room snapshots (in-memory, Redis, etc).
// Save must fail with domain.ErrStoreConflict when room.Version no longer matches the stored
// version, and bump room.Version on success.
type RoomStore interface {
	Create(ctx context.Context, room domain.Room) error
	Get(ctx context.Context, pin string) (domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
}

// Broadcaster fans events out to subscribers of a channel. Delivery is fire-and-forget.
type Broadcaster interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// ResultArchive keeps the outcome of ended games.
type ResultArchive interface {
	Archive(ctx context.Context, result domain.GameResult) error
}

// QuestionSetRepository loads stored question sets (from cache/backing store).
type QuestionSetRepository interface {
	GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// Team score semantics when a combo fires.
const (
	ComboAwardPerMember = "per_member"
	ComboAwardFlat      = "flat"
)

// Options tunes the engine. Zero values fall back to defaults; a negative ConflictRetries
// disables retrying.
type Options struct {
	DefaultTimeLimit time.Duration
	BetweenPause     time.Duration
	ComboBonus       int
	ComboTeamAward   string
	HealthDamage     int
	ConflictRetries  int

	// Scheduler fires end-question and blitz auto-advance; nil leaves timing to the host.
	Scheduler    Scheduler
	Archive      ResultArchive
	QuestionSets QuestionSetRepository

	Now  func() time.Time
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.DefaultTimeLimit <= 0 {
		o.DefaultTimeLimit = 20 * time.Second
	}
	if o.BetweenPause <= 0 {
		o.BetweenPause = time.Second
	}
	if o.ComboBonus <= 0 {
		o.ComboBonus = 100
	}
	if o.ComboTeamAward != ComboAwardFlat {
		o.ComboTeamAward = ComboAwardPerMember
	}
	if o.HealthDamage <= 0 {
		o.HealthDamage = 10
	}
	switch {
	case o.ConflictRetries == 0:
		o.ConflictRetries = 1
	case o.ConflictRetries < 0:
		o.ConflictRetries = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Engine owns room lifecycle, answer admission and scoring. Commands for one pin are
// serialized in-process and committed with a version check against the store.
type Engine struct {
	store RoomStore
	bus   Broadcaster
	opts  Options
	locks *roomLocks

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewEngine(store RoomStore, bus Broadcaster, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		store: store,
		bus:   bus,
		opts:  opts,
		locks: newRoomLocks(),
		rnd:   opts.Rand,
	}
}

// effects collects what a mutation wants to happen once its snapshot is committed.
type effects struct {
	events []domain.Event
	after  []func()
}

func (f *effects) emit(channel, name string, payload any) {
	f.events = append(f.events, domain.Event{Channel: channel, Name: name, Payload: payload})
}

func (f *effects) then(fn func()) {
	f.after = append(f.after, fn)
}

type mutation func(room *domain.Room, now time.Time, fx *effects) error

// mutate runs fn against a fresh snapshot and saves it. A store conflict re-reads and re-applies
// fn up to ConflictRetries times; any other error leaves the stored room untouched.
func (e *Engine) mutate(ctx context.Context, pin string, fn mutation) (domain.Room, error) {
	unlock := e.locks.lock(pin)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt <= e.opts.ConflictRetries; attempt++ {
		room, err := e.store.Get(ctx, pin)
		if err != nil {
			return domain.Room{}, err
		}

		fx := &effects{}
		if err := fn(&room, e.opts.Now(), fx); err != nil {
			return domain.Room{}, err
		}

		if err := e.store.Save(ctx, &room); err != nil {
			if errors.Is(err, domain.ErrStoreConflict) {
				lastErr = err
				continue
			}
			return domain.Room{}, fmt.Errorf("save room %s: %w", pin, err)
		}

		e.publish(ctx, fx.events)
		for _, hook := range fx.after {
			hook()
		}
		return room, nil
	}
	return domain.Room{}, lastErr
}

func (e *Engine) publish(ctx context.Context, events []domain.Event) {
	for _, ev := range events {
		if err := e.bus.Publish(ctx, ev.Channel, ev.Name, ev.Payload); err != nil {
			log.Printf("publish %s on %s: %v", ev.Name, ev.Channel, err)
		}
	}
}

func (e *Engine) withRand(fn func(r *rand.Rand)) {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	fn(e.rnd)
}

// roomLocks hands out one mutex per pin and forgets it once nobody holds or waits on it.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*roomLock)}
}

func (l *roomLocks) lock(pin string) func() {
	l.mu.Lock()
	rl, ok := l.locks[pin]
	if !ok {
		rl = &roomLock{}
		l.locks[pin] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, pin)
		}
		l.mu.Unlock()
	}
}
