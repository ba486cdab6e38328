package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// Scheduler runs one pending callback per room; scheduling again replaces the previous one.
type Scheduler interface {
	Schedule(pin string, after time.Duration, fn func())
	Cancel(pin string)
}

// TimerScheduler is a Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

func (s *TimerScheduler) Schedule(pin string, after time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[pin]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(after, func() {
		s.mu.Lock()
		if s.timers[pin] == timer {
			delete(s.timers, pin)
		}
		s.mu.Unlock()
		fn()
	})
	s.timers[pin] = timer
}

func (s *TimerScheduler) Cancel(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[pin]; ok {
		t.Stop()
		delete(s.timers, pin)
	}
}

// Pending reports how many rooms have a callback waiting.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (e *Engine) scheduleEndQuestion(pin string, index int, after time.Duration) {
	if e.opts.Scheduler == nil {
		return
	}
	e.opts.Scheduler.Schedule(pin, after, func() {
		if _, err := e.EndQuestion(context.Background(), pin, index); err != nil {
			logTimerError(pin, "end question", err)
		}
	})
}

func (e *Engine) scheduleSkipBlitz(pin string, index int) {
	if e.opts.Scheduler == nil {
		return
	}
	e.opts.Scheduler.Schedule(pin, e.opts.BetweenPause, func() {
		if _, err := e.SkipBlitz(context.Background(), pin, index); err != nil {
			logTimerError(pin, "skip blitz", err)
		}
	})
}

func (e *Engine) cancelTimer(pin string) {
	if e.opts.Scheduler != nil {
		e.opts.Scheduler.Cancel(pin)
	}
}

func logTimerError(pin, op string, err error) {
	if domain.IsBenign(err) || errors.Is(err, domain.ErrRoomNotFound) {
		log.Printf("room %s: stale %s timer ignored", pin, op)
		return
	}
	log.Printf("room %s: %s timer: %v", pin, op, err)
}
