package memory

import (
	"context"
	"fmt"
	"sync"

	"live-quiz-service/internal/domain"
)

// ResultArchive keeps ended game results in memory.
type ResultArchive struct {
	mu      sync.RWMutex
	results map[string]domain.GameResult
}

func NewResultArchive() *ResultArchive {
	return &ResultArchive{results: make(map[string]domain.GameResult)}
}

func (a *ResultArchive) Archive(_ context.Context, result domain.GameResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[result.Pin] = result
	return nil
}

// LatestResult returns the last archived game for pin.
func (a *ResultArchive) LatestResult(_ context.Context, pin string) (domain.GameResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.results[pin]
	if !ok {
		return domain.GameResult{}, fmt.Errorf("%w: no archived result for %s", domain.ErrRoomNotFound, pin)
	}
	return r, nil
}
