package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"live-quiz-service/internal/domain"
)

// QuestionSetLoader fetches question sets from a backing store (e.g., Postgres).
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// QuestionSetRepository caches question sets with TTL to avoid repeated DB hits.
type QuestionSetRepository struct {
	loader QuestionSetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewQuestionSetRepository(loader QuestionSetLoader, ttl time.Duration) *QuestionSetRepository {
	return &QuestionSetRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *QuestionSetRepository) GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	if set, ok := r.cached(setID); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		if set, ok := r.cached(setID); ok {
			return set, nil
		}
		set, err := r.loader.LoadQuestionSet(ctx, setID)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		r.mu.Lock()
		r.cache[setID] = cachedSet{
			set:       set,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (r *QuestionSetRepository) cached(setID string) (domain.QuestionSet, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[setID]; ok && entry.expiresAt.After(now) {
		return entry.set, true
	}
	return domain.QuestionSet{}, false
}

func (r *QuestionSetRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionSetLoader serves sets from a map (useful for tests/demos).
type StaticQuestionSetLoader struct {
	sets map[string]domain.QuestionSet
}

func NewStaticQuestionSetLoader(sets map[string]domain.QuestionSet) *StaticQuestionSetLoader {
	return &StaticQuestionSetLoader{sets: sets}
}

func (l *StaticQuestionSetLoader) LoadQuestionSet(_ context.Context, setID string) (domain.QuestionSet, error) {
	if set, ok := l.sets[setID]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrQuestionSetNotFound
}

// SampleQuestionSets returns the demo set served when no database is configured.
func SampleQuestionSets() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		"demo": {
			ID:    "demo",
			Title: "Warm-up",
			Questions: []domain.Question{
				{ID: "q1", Type: domain.TypeMultiple, Text: "What is 2 + 2?", Options: []string{"3", "5", "4", "22"}, CorrectOptions: []int{2}, TimeLimitSeconds: 20},
				{ID: "q2", Type: domain.TypeTrueFalse, Text: "Go has generics.", Options: []string{"True", "False"}, CorrectOptions: []int{0}, TimeLimitSeconds: 10},
				{ID: "q3", Type: domain.TypeOrder, Text: "Order the planets from the sun.", Options: []string{"Mercury", "Venus", "Earth", "Mars"}, CorrectOptions: []int{0, 1, 2, 3}, TimeLimitSeconds: 30},
				{ID: "q4", Type: domain.TypeMatch, Text: "Match the capitals.", Pairs: []domain.Pair{{Term: "France", Definition: "Paris"}, {Term: "Japan", Definition: "Tokyo"}, {Term: "Peru", Definition: "Lima"}}, TimeLimitSeconds: 30},
				{ID: "q5", Type: domain.TypeAnagram, Text: "Unscramble the language.", Options: []string{"gopher"}, TimeLimitSeconds: 30},
				{ID: "q6", Type: domain.TypeBlitz, Text: "Quick: 3 x 3?", Options: []string{"6", "9"}, CorrectOptions: []int{1}, TimeLimitSeconds: 5},
				{ID: "q7", Type: domain.TypeBlitz, Text: "Quick: 10 / 2?", Options: []string{"5", "2"}, CorrectOptions: []int{0}, TimeLimitSeconds: 5},
			},
		},
	}
}
