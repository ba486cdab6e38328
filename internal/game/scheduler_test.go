package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerSchedulerReplacesAndCancels(t *testing.T) {
	s := NewTimerScheduler()
	var first, second atomic.Int32
	done := make(chan struct{})

	s.Schedule("100000", time.Hour, func() { first.Add(1) })
	s.Schedule("100000", 10*time.Millisecond, func() {
		second.Add(1)
		close(done)
	})
	if s.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", s.Pending())
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("replacement timer never fired")
	}
	if first.Load() != 0 || second.Load() != 1 {
		t.Fatalf("expected only the replacement to fire, got %d/%d", first.Load(), second.Load())
	}
	if s.Pending() != 0 {
		t.Fatalf("fired timer must be forgotten, got %d", s.Pending())
	}

	var cancelled atomic.Int32
	s.Schedule("200000", 20*time.Millisecond, func() { cancelled.Add(1) })
	s.Cancel("200000")
	time.Sleep(60 * time.Millisecond)
	if cancelled.Load() != 0 {
		t.Fatalf("cancelled timer fired")
	}
}
