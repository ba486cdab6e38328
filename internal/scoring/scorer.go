package scoring

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"live-quiz-service/internal/domain"
)

// Context is the timing and streak state at the moment an answer is admitted.
type Context struct {
	ElapsedMs   int64
	RemainingMs int64
	TotalMs     int64
	// Streak is the player's streak before this answer.
	Streak int
}

// Result is the outcome of scoring one submission.
type Result struct {
	Correct         bool
	FractionCorrect float64
	Points          int
}

// Scorer scores submissions of one question type.
type Scorer interface {
	Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error)
}

var scorers = map[domain.QuestionType]Scorer{
	domain.TypeMultiple:  choiceScorer{},
	domain.TypeTrueFalse: choiceScorer{},
	domain.TypeOrder:     orderScorer{},
	domain.TypeMatch:     matchScorer{},
	domain.TypeBlitz:     blitzScorer{},
	domain.TypeAnagram:   anagramScorer{},
}

// For returns the scorer registered for t.
func For(t domain.QuestionType) (Scorer, bool) {
	s, ok := scorers[t]
	return s, ok
}

// Score dispatches to the scorer of q.Type.
func Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error) {
	s, ok := For(q.Type)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidQuestion, q.Type)
	}
	return s.Score(q, sub, c)
}

func streakAfter(correct bool, before int) int {
	if correct {
		return before + 1
	}
	return 0
}

func selectedCorrect(q domain.Question, sub domain.AnswerSubmission) (bool, error) {
	if sub.SelectedIndex == nil {
		return false, fmt.Errorf("%w: selectedIndex required", domain.ErrInvalidSubmission)
	}
	idx := *sub.SelectedIndex
	if idx < 0 || idx >= len(q.Options) {
		return false, fmt.Errorf("%w: option %d out of range", domain.ErrInvalidSubmission, idx)
	}
	for _, c := range q.CorrectOptions {
		if c == idx {
			return true, nil
		}
	}
	return false, nil
}

func fraction(correct bool) float64 {
	if correct {
		return 1
	}
	return 0
}

type choiceScorer struct{}

func (choiceScorer) Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error) {
	correct, err := selectedCorrect(q, sub)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Correct:         correct,
		FractionCorrect: fraction(correct),
		Points:          BasePoints(correct, c.RemainingMs, c.TotalMs, streakAfter(correct, c.Streak)),
	}, nil
}

type blitzScorer struct{}

func (blitzScorer) Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error) {
	correct, err := selectedCorrect(q, sub)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Correct:         correct,
		FractionCorrect: fraction(correct),
		Points:          BlitzPoints(correct, streakAfter(correct, c.Streak)),
	}, nil
}

type orderScorer struct{}

func (orderScorer) Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error) {
	if !domain.IsPermutation(sub.Order, len(q.CorrectOptions)) {
		return Result{}, fmt.Errorf("%w: order must be a permutation of %d items", domain.ErrInvalidSubmission, len(q.CorrectOptions))
	}
	matches := 0
	for i, v := range sub.Order {
		if q.CorrectOptions[i] == v {
			matches++
		}
	}
	frac := float64(matches) / float64(len(q.CorrectOptions))
	return Result{
		Correct:         matches == len(q.CorrectOptions),
		FractionCorrect: frac,
		Points:          OrderPoints(frac, c.RemainingMs, c.TotalMs),
	}, nil
}

// matchScorer re-validates the device-reported outcome: the reported points are kept when they
// fit under the bound recomputed from plausible inputs, and clamped to it otherwise.
type matchScorer struct{}

func (matchScorer) Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error) {
	r := sub.Match
	if r == nil {
		return Result{}, fmt.Errorf("%w: match report required", domain.ErrInvalidSubmission)
	}
	if r.TotalPairs < 0 || r.Mistakes < 0 || r.CompletedMs < 0 || r.Points < 0 {
		return Result{}, fmt.Errorf("%w: negative match report", domain.ErrInvalidSubmission)
	}

	pairs := r.TotalPairs
	if pairs > len(q.Pairs) {
		pairs = len(q.Pairs)
	}
	// the round cannot have finished before the server saw the answer
	completed := r.CompletedMs
	if c.ElapsedMs > completed {
		completed = c.ElapsedMs
	}
	if c.TotalMs > 0 && completed > c.TotalMs {
		completed = c.TotalMs
	}
	allPairs := pairs == len(q.Pairs)
	cleanSweep := r.CleanSweep && r.Mistakes == 0 && allPairs

	bound := MatchPoints(pairs, completed, c.TotalMs, cleanSweep)
	points := r.Points
	if points > bound {
		points = bound
	}
	return Result{
		Correct:         allPairs,
		FractionCorrect: float64(pairs) / float64(len(q.Pairs)),
		Points:          points,
	}, nil
}

type anagramScorer struct{}

func (anagramScorer) Score(q domain.Question, sub domain.AnswerSubmission, c Context) (Result, error) {
	if sub.HintsUsed < 0 || sub.HintsUsed > MaxAnagramHints {
		return Result{}, fmt.Errorf("%w: at most %d hints per question", domain.ErrInvalidSubmission, MaxAnagramHints)
	}
	target := q.Target()
	correct := strings.EqualFold(strings.TrimSpace(sub.Word), target)
	points := 0
	if correct {
		points = AnagramPoints(utf8.RuneCountInString(target), TimeFraction(c.RemainingMs, c.TotalMs), sub.HintsUsed)
	}
	return Result{
		Correct:         correct,
		FractionCorrect: fraction(correct),
		Points:          points,
	}, nil
}
