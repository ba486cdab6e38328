package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/scoring"
)

const pinAttempts = 10

// CreateRoom validates questions and stores a new lobby room under a fresh 6-digit pin.
func (e *Engine) CreateRoom(ctx context.Context, questions []domain.Question, teams *domain.TeamConfig) (domain.Room, error) {
	if len(questions) == 0 {
		return domain.Room{}, fmt.Errorf("%w: a room needs at least one question", domain.ErrInvalidQuestion)
	}
	defaultLimit := int(e.opts.DefaultTimeLimit / time.Second)
	if defaultLimit < 1 {
		defaultLimit = 1
	}
	qs := make([]domain.Question, len(questions))
	for i, q := range questions {
		if q.TimeLimitSeconds <= 0 {
			q.TimeLimitSeconds = defaultLimit
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if err := q.Validate(); err != nil {
			return domain.Room{}, fmt.Errorf("question %d: %w", i, err)
		}
		qs[i] = q
	}

	now := e.opts.Now()
	room := domain.Room{
		Status:            domain.StatusLobby,
		Questions:         qs,
		AnsweredPlayerIDs: []string{},
		Players:           []domain.Player{},
		CreatedAt:         now,
	}
	if teams != nil {
		built, err := buildTeams(*teams)
		if err != nil {
			return domain.Room{}, err
		}
		room.TeamMode = true
		room.Teams = built
	}

	for attempt := 0; attempt < pinAttempts; attempt++ {
		room.Pin = e.newPin()
		err := e.store.Create(ctx, room)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, domain.ErrPinTaken) {
			return domain.Room{}, fmt.Errorf("create room: %w", err)
		}
	}
	return domain.Room{}, fmt.Errorf("create room: %w", domain.ErrPinTaken)
}

// CreateRoomFromSet creates a room from a stored question set.
func (e *Engine) CreateRoomFromSet(ctx context.Context, setID string, teams *domain.TeamConfig) (domain.Room, error) {
	if e.opts.QuestionSets == nil {
		return domain.Room{}, fmt.Errorf("%w: no question set repository configured", domain.ErrQuestionSetNotFound)
	}
	set, err := e.opts.QuestionSets.GetQuestionSet(ctx, setID)
	if err != nil {
		return domain.Room{}, err
	}
	return e.CreateRoom(ctx, set.Questions, teams)
}

func (e *Engine) newPin() string {
	var n int
	e.withRand(func(r *rand.Rand) { n = 100000 + r.Intn(900000) })
	return fmt.Sprintf("%06d", n)
}

// Join adds a player in the lobby, or reconnects a known player id in any phase before the end.
func (e *Engine) Join(ctx context.Context, pin, playerID, nickname, avatar string) (domain.Player, error) {
	var joined domain.Player
	nickname = strings.TrimSpace(nickname)
	_, err := e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if room.Status == domain.StatusEnded {
			return fmt.Errorf("%w: game has ended", domain.ErrInvalidPhase)
		}
		if p := room.Player(playerID); playerID != "" && p != nil {
			if nickname != "" {
				p.Nickname = nickname
			}
			if avatar != "" {
				p.Avatar = avatar
			}
			joined = *p
		} else {
			if room.Status != domain.StatusLobby {
				return fmt.Errorf("%w: new players can only join in the lobby", domain.ErrInvalidPhase)
			}
			if nickname == "" {
				return fmt.Errorf("%w: nickname is required", domain.ErrInvalidPlayer)
			}
			if playerID == "" {
				playerID = uuid.NewString()
			}
			joined = domain.NewPlayer(playerID, nickname, avatar, now)
			room.Players = append(room.Players, joined)
		}
		fx.emit(domain.RoomChannel(pin), domain.EventPlayerJoined, domain.PlayerJoinedPayload{
			Pin:     pin,
			Player:  joined,
			Players: append([]domain.Player(nil), room.Players...),
		})
		return nil
	})
	return joined, err
}

// Start moves a lobby with at least one player to the first question.
func (e *Engine) Start(ctx context.Context, pin string) (domain.Room, error) {
	return e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if room.Status != domain.StatusLobby {
			return fmt.Errorf("%w: room already started", domain.ErrInvalidPhase)
		}
		if len(room.Players) == 0 {
			return domain.ErrInsufficientPlayers
		}
		if room.TeamMode {
			e.assignTeams(room)
			fx.emit(domain.RoomChannel(pin), domain.EventTeamsUpdated, teamsPayload(room))
		}
		e.beginQuestion(room, 0, now, fx)
		return nil
	})
}

// SubmitAnswer admits at most one answer per player per question and scores it.
func (e *Engine) SubmitAnswer(ctx context.Context, pin, playerID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	var result domain.AnswerResult
	_, err := e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if sub.QuestionIndex != nil && *sub.QuestionIndex != room.CurrentQuestionIndex {
			return domain.ErrAlreadyAdvanced
		}
		if room.Status != domain.StatusQuestion {
			return fmt.Errorf("%w: not accepting answers", domain.ErrInvalidPhase)
		}
		player := room.Player(playerID)
		if player == nil {
			return domain.ErrPlayerNotFound
		}
		if room.HasAnswered(playerID) {
			return domain.ErrDuplicateAnswer
		}

		q, _ := room.CurrentQuestion()
		total := q.TimeLimitMs()
		elapsed := now.Sub(room.QuestionStartTime).Milliseconds()
		if elapsed < 0 {
			elapsed = 0
		}
		remaining := total - elapsed
		if remaining < 0 {
			remaining = 0
		}

		scored, err := scoring.Score(q, sub, scoring.Context{
			ElapsedMs:   elapsed,
			RemainingMs: remaining,
			TotalMs:     total,
			Streak:      player.Streak,
		})
		if err != nil {
			return err
		}

		if scored.Correct {
			player.Streak++
			player.CorrectCount++
			if player.Streak > player.LongestStreak {
				player.LongestStreak = player.Streak
			}
		} else {
			player.Streak = 0
		}
		player.Score += scored.Points
		player.TotalAnswers++
		player.TotalResponseMs += elapsed
		if elapsed < player.FastestAnswerMs {
			player.FastestAnswerMs = elapsed
		}
		room.AnsweredPlayerIDs = append(room.AnsweredPlayerIDs, playerID)

		if room.TeamMode {
			e.applyTeamAnswer(room, player, scored.Correct, scored.Points, now, fx)
		}

		result = domain.AnswerResult{
			QuestionIndex:   room.CurrentQuestionIndex,
			Correct:         scored.Correct,
			FractionCorrect: scored.FractionCorrect,
			Points:          scored.Points,
			TotalScore:      player.Score,
			Streak:          player.Streak,
			ElapsedMs:       elapsed,
			Reveal:          revealFor(room.CurrentQuestionIndex, q),
		}
		fx.emit(domain.PlayerChannel(pin, playerID), domain.EventAnswerResult, result)
		fx.emit(domain.RoomChannel(pin), domain.EventAnswerCount, domain.AnswerCountPayload{
			Pin:           pin,
			QuestionIndex: room.CurrentQuestionIndex,
			Answered:      len(room.AnsweredPlayerIDs),
			Total:         len(room.Players),
		})
		if room.TeamMode {
			fx.emit(domain.RoomChannel(pin), domain.EventTeamsUpdated, teamsPayload(room))
		}

		if room.AllAnswered() {
			e.finishQuestion(room, now, fx)
		}
		return nil
	})
	return result, err
}

// EndQuestion closes the answer window of question expectedIndex. A negative index targets
// whatever question is current. Calls for a question the room already left are benign no-ops.
func (e *Engine) EndQuestion(ctx context.Context, pin string, expectedIndex int) (domain.Room, error) {
	return e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if expectedIndex >= 0 && expectedIndex != room.CurrentQuestionIndex {
			return domain.ErrAlreadyAdvanced
		}
		switch room.Status {
		case domain.StatusQuestion:
			e.finishQuestion(room, now, fx)
			return nil
		case domain.StatusLobby:
			return fmt.Errorf("%w: no question is running", domain.ErrInvalidPhase)
		default:
			return domain.ErrAlreadyAdvanced
		}
	})
}

// Advance moves from the leaderboard to the next question, or ends the game after the last one.
func (e *Engine) Advance(ctx context.Context, pin string, expectedIndex int) (domain.Room, error) {
	return e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if expectedIndex >= 0 && expectedIndex != room.CurrentQuestionIndex {
			return domain.ErrAlreadyAdvanced
		}
		if room.Status != domain.StatusLeaderboard {
			return fmt.Errorf("%w: advance requires the leaderboard, room is %s", domain.ErrInvalidPhase, room.Status)
		}
		e.nextQuestion(room, now, fx)
		return nil
	})
}

// SkipBlitz ends the pause after blitz question expectedIndex.
func (e *Engine) SkipBlitz(ctx context.Context, pin string, expectedIndex int) (domain.Room, error) {
	return e.mutate(ctx, pin, func(room *domain.Room, now time.Time, fx *effects) error {
		if expectedIndex >= 0 && expectedIndex != room.CurrentQuestionIndex {
			return domain.ErrAlreadyAdvanced
		}
		if room.Status != domain.StatusBetween {
			return fmt.Errorf("%w: no blitz pause is running", domain.ErrInvalidPhase)
		}
		e.nextQuestion(room, now, fx)
		return nil
	})
}

// GetRoom returns the current snapshot of pin.
func (e *Engine) GetRoom(ctx context.Context, pin string) (domain.Room, error) {
	return e.store.Get(ctx, pin)
}

// Leaderboard returns the current standings of pin.
func (e *Engine) Leaderboard(ctx context.Context, pin string) ([]domain.LeaderboardEntry, error) {
	room, err := e.store.Get(ctx, pin)
	if err != nil {
		return nil, err
	}
	return Leaderboard(room.Players), nil
}

func (e *Engine) nextQuestion(room *domain.Room, now time.Time, fx *effects) {
	next := room.CurrentQuestionIndex + 1
	if next >= len(room.Questions) {
		e.endGame(room, now, fx)
		return
	}
	e.beginQuestion(room, next, now, fx)
}

func (e *Engine) beginQuestion(room *domain.Room, index int, now time.Time, fx *effects) {
	room.Status = domain.StatusQuestion
	room.CurrentQuestionIndex = index
	room.QuestionStartTime = now
	room.AnsweredPlayerIDs = []string{}
	resetTeamCounters(room)

	q := room.Questions[index]
	room.Presentation = e.presentationFor(q)

	fx.emit(domain.RoomChannel(room.Pin), domain.EventQuestionStarted, questionView(room))
	pin, limit := room.Pin, time.Duration(q.TimeLimitMs())*time.Millisecond
	fx.then(func() { e.scheduleEndQuestion(pin, index, limit) })
}

// finishQuestion reveals the answer and moves to the leaderboard, or for blitz questions into the
// short pause before the next one.
func (e *Engine) finishQuestion(room *domain.Room, now time.Time, fx *effects) {
	q, _ := room.CurrentQuestion()
	index := room.CurrentQuestionIndex
	pin := room.Pin

	fx.emit(domain.RoomChannel(pin), domain.EventQuestionEnded, domain.QuestionEndedPayload{
		Pin:         pin,
		Reveal:      revealFor(index, q),
		Leaderboard: Leaderboard(room.Players),
		Teams:       append([]domain.Team(nil), room.Teams...),
	})

	if q.Type != domain.TypeBlitz {
		room.Status = domain.StatusLeaderboard
		fx.then(func() { e.cancelTimer(pin) })
		return
	}
	if room.IsLastQuestion() {
		e.endGame(room, now, fx)
		return
	}
	room.Status = domain.StatusBetween
	fx.emit(domain.RoomChannel(pin), domain.EventBetween, domain.BetweenPayload{
		Pin:       pin,
		NextIndex: index + 1,
		ResumesAt: now.Add(e.opts.BetweenPause),
	})
	fx.then(func() { e.scheduleSkipBlitz(pin, index) })
}

func (e *Engine) endGame(room *domain.Room, now time.Time, fx *effects) {
	room.Status = domain.StatusEnded
	room.CurrentQuestionIndex = len(room.Questions)
	room.EndedAt = now
	room.Presentation = nil

	result := domain.GameResult{
		Pin:         room.Pin,
		EndedAt:     now,
		Questions:   len(room.Questions),
		Leaderboard: Leaderboard(room.Players),
		Badges:      ComputeBadges(room.Players),
		Teams:       append([]domain.Team(nil), room.Teams...),
	}
	fx.emit(domain.RoomChannel(room.Pin), domain.EventGameEnded, domain.GameEndedPayload{
		Pin:         room.Pin,
		Leaderboard: result.Leaderboard,
		Badges:      result.Badges,
		Teams:       result.Teams,
	})
	fx.then(func() {
		e.cancelTimer(result.Pin)
		e.archive(result)
	})
}

func (e *Engine) archive(result domain.GameResult) {
	if e.opts.Archive == nil {
		return
	}
	if err := e.opts.Archive.Archive(context.Background(), result); err != nil {
		log.Printf("room %s: archive result: %v", result.Pin, err)
	}
}
