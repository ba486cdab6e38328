package game

import (
	"math/rand"
	"strings"

	"live-quiz-service/internal/domain"
)

const shuffleAttempts = 8

// presentationFor builds the randomized view of q: a display order for order and match
// questions, a scramble for anagrams. Both differ from the source whenever that is possible.
func (e *Engine) presentationFor(q domain.Question) *domain.Presentation {
	switch q.Type {
	case domain.TypeOrder:
		var order []int
		e.withRand(func(r *rand.Rand) { order = distinctPermutation(len(q.Options), r) })
		return &domain.Presentation{Order: order}
	case domain.TypeMatch:
		var order []int
		e.withRand(func(r *rand.Rand) { order = distinctPermutation(len(q.Pairs), r) })
		return &domain.Presentation{Order: order}
	case domain.TypeAnagram:
		var scramble string
		e.withRand(func(r *rand.Rand) { scramble = scrambleWord(q.Target(), r) })
		return &domain.Presentation{Scramble: scramble}
	}
	return nil
}

func distinctPermutation(n int, r *rand.Rand) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	if n < 2 {
		return perm
	}
	for attempt := 0; attempt < shuffleAttempts; attempt++ {
		r.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		if !isIdentity(perm) {
			return perm
		}
	}
	// a rotation of the identity is never the identity
	for i := range perm {
		perm[i] = (i + 1) % n
	}
	return perm
}

func isIdentity(perm []int) bool {
	for i, v := range perm {
		if i != v {
			return false
		}
	}
	return true
}

func scrambleWord(word string, r *rand.Rand) string {
	letters := []rune(strings.ToUpper(word))
	source := string(letters)
	if len(letters) < 2 {
		return source
	}
	for attempt := 0; attempt < shuffleAttempts; attempt++ {
		r.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
		if string(letters) != source {
			return string(letters)
		}
	}
	base := []rune(source)
	for shift := 1; shift < len(base); shift++ {
		rotated := string(append(append([]rune{}, base[shift:]...), base[:shift]...))
		if rotated != source {
			return rotated
		}
	}
	// every arrangement reads the same, e.g. "AAA"
	return source
}

func questionView(room *domain.Room) domain.QuestionView {
	q, _ := room.CurrentQuestion()
	view := domain.QuestionView{
		Index:            room.CurrentQuestionIndex,
		Total:            len(room.Questions),
		ID:               q.ID,
		Type:             q.Type,
		Text:             q.Text,
		TimeLimitSeconds: q.TimeLimitSeconds,
		ImageURL:         q.ImageURL,
		StartedAt:        room.QuestionStartTime,
	}
	p := room.Presentation
	switch q.Type {
	case domain.TypeMultiple, domain.TypeTrueFalse, domain.TypeBlitz:
		view.Options = q.Options
	case domain.TypeOrder:
		view.Options = q.Options
		if p != nil {
			view.Order = p.Order
		}
	case domain.TypeMatch:
		view.Terms = make([]string, len(q.Pairs))
		for i, pair := range q.Pairs {
			view.Terms[i] = pair.Term
		}
		view.Definitions = make([]string, len(q.Pairs))
		for i := range q.Pairs {
			src := i
			if p != nil && len(p.Order) == len(q.Pairs) {
				src = p.Order[i]
			}
			view.Definitions[i] = q.Pairs[src].Definition
		}
		if p != nil {
			view.Order = p.Order
		}
	case domain.TypeAnagram:
		view.WordLength = len([]rune(q.Target()))
		if p != nil {
			view.Scramble = p.Scramble
		}
	}
	return view
}

func revealFor(index int, q domain.Question) domain.Reveal {
	reveal := domain.Reveal{
		QuestionIndex: index,
		Type:          q.Type,
		Explanation:   q.Explanation,
	}
	switch q.Type {
	case domain.TypeMatch:
		reveal.Pairs = q.Pairs
	case domain.TypeAnagram:
		reveal.Word = q.Target()
	default:
		reveal.CorrectOptions = q.CorrectOptions
	}
	return reveal
}
