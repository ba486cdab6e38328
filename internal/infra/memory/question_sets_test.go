package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestQuestionSetRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionSetLoader: NewStaticQuestionSetLoader(SampleQuestionSets())}
	repo := NewQuestionSetRepository(loader, time.Minute)

	set, err := repo.GetQuestionSet(context.Background(), "demo")
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if len(set.Questions) == 0 {
		t.Fatalf("expected questions in demo set")
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuestionSet(context.Background(), "demo"); err != nil {
		t.Fatalf("get set 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionSetRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{QuestionSetLoader: NewStaticQuestionSetLoader(SampleQuestionSets())}
	repo := NewQuestionSetRepository(loader, time.Minute)
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetQuestionSet(context.Background(), "demo"); err != nil {
		t.Fatalf("get set: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetQuestionSet(context.Background(), "demo"); err != nil {
		t.Fatalf("get set after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuestionSetRepositoryMissing(t *testing.T) {
	repo := NewQuestionSetRepository(NewStaticQuestionSetLoader(nil), time.Minute)
	_, err := repo.GetQuestionSet(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSampleQuestionSetsAreValid(t *testing.T) {
	for id, set := range SampleQuestionSets() {
		for i, q := range set.Questions {
			if err := q.Validate(); err != nil {
				t.Fatalf("set %s question %d: %v", id, i, err)
			}
		}
	}
}

type countingLoader struct {
	QuestionSetLoader
	calls int
}

func (l *countingLoader) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	l.calls++
	return l.QuestionSetLoader.LoadQuestionSet(ctx, setID)
}
