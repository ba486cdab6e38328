package domain

import (
	"fmt"
	"strings"
)

// QuestionType selects how a question is presented and scored.
type QuestionType string

const (
	TypeMultiple  QuestionType = "multiple"
	TypeTrueFalse QuestionType = "truefalse"
	TypeOrder     QuestionType = "order"
	TypeMatch     QuestionType = "match"
	TypeBlitz     QuestionType = "blitz"
	TypeAnagram   QuestionType = "anagram"
)

// Pair is one term/definition couple of a match question.
type Pair struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Question is one immutable quiz item. Options and CorrectOptions depend on Type:
//   - multiple, truefalse, blitz: CorrectOptions holds the accepted option indices.
//   - order: CorrectOptions is the correct permutation of option indices.
//   - match: Pairs carries the content, Options is unused.
//   - anagram: Options[0] is the hidden target word.
type Question struct {
	ID               string       `json:"id"`
	Type             QuestionType `json:"type"`
	Text             string       `json:"text"`
	Options          []string     `json:"options,omitempty"`
	Pairs            []Pair       `json:"pairs,omitempty"`
	CorrectOptions   []int        `json:"correctOptions,omitempty"`
	TimeLimitSeconds int          `json:"timeLimitSeconds"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
}

// TimeLimitMs returns the answer window in milliseconds.
func (q Question) TimeLimitMs() int64 {
	return int64(q.TimeLimitSeconds) * 1000
}

// Target returns the anagram word, or "" for other types.
func (q Question) Target() string {
	if q.Type != TypeAnagram || len(q.Options) == 0 {
		return ""
	}
	return strings.TrimSpace(q.Options[0])
}

// Validate checks that the question is internally consistent for its type.
func (q Question) Validate() error {
	switch q.Type {
	case TypeMultiple, TypeBlitz:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: %s needs at least two options", ErrInvalidQuestion, q.Type)
		}
		return q.validateCorrectIndices()
	case TypeTrueFalse:
		if len(q.Options) != 2 {
			return fmt.Errorf("%w: truefalse needs exactly two options", ErrInvalidQuestion)
		}
		return q.validateCorrectIndices()
	case TypeOrder:
		if len(q.Options) < 2 || len(q.CorrectOptions) != len(q.Options) {
			return fmt.Errorf("%w: order needs a full permutation of its options", ErrInvalidQuestion)
		}
		if !IsPermutation(q.CorrectOptions, len(q.Options)) {
			return fmt.Errorf("%w: order correctOptions is not a permutation", ErrInvalidQuestion)
		}
	case TypeMatch:
		if len(q.Pairs) == 0 {
			return fmt.Errorf("%w: match needs at least one pair", ErrInvalidQuestion)
		}
	case TypeAnagram:
		if q.Target() == "" {
			return fmt.Errorf("%w: anagram needs a target word", ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	return nil
}

func (q Question) validateCorrectIndices() error {
	if len(q.CorrectOptions) == 0 {
		return fmt.Errorf("%w: no correct option", ErrInvalidQuestion)
	}
	for _, idx := range q.CorrectOptions {
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: correct option %d out of range", ErrInvalidQuestion, idx)
		}
	}
	return nil
}

// IsPermutation reports whether seq contains every index in [0, n) exactly once.
func IsPermutation(seq []int, n int) bool {
	if len(seq) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range seq {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
