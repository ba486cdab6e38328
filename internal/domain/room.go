package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Status is the room's lifecycle phase.
type Status string

const (
	StatusLobby       Status = "lobby"
	StatusQuestion    Status = "question"
	StatusLeaderboard Status = "leaderboard"
	StatusBetween     Status = "between"
	StatusEnded       Status = "ended"
)

// NoAnswerMs is the fastest-answer value of a player who has not answered yet.
const NoAnswerMs int64 = math.MaxInt64

// Player is a participant and their running totals. Players are never removed mid-game.
type Player struct {
	ID              string    `json:"id"`
	Nickname        string    `json:"nickname"`
	Avatar          string    `json:"avatar"`
	Score           int       `json:"score"`
	Streak          int       `json:"streak"`
	LongestStreak   int       `json:"longestStreak"`
	TotalAnswers    int       `json:"totalAnswers"`
	TotalResponseMs int64     `json:"totalResponseMs"`
	FastestAnswerMs int64     `json:"fastestAnswerMs"`
	CorrectCount    int       `json:"correctCount"`
	TeamID          string    `json:"teamId,omitempty"`
	JoinedAt        time.Time `json:"joinedAt"`
}

// NewPlayer returns a player with zeroed stats.
func NewPlayer(id, nickname, avatar string, joinedAt time.Time) Player {
	return Player{
		ID:              id,
		Nickname:        nickname,
		Avatar:          avatar,
		FastestAnswerMs: NoAnswerMs,
		JoinedAt:        joinedAt,
	}
}

// playerFields has Player's layout without its JSON methods.
type playerFields Player

// MarshalJSON leaves fastestAnswerMs out until the player has answered.
func (p Player) MarshalJSON() ([]byte, error) {
	wire := struct {
		playerFields
		FastestAnswerMs *int64 `json:"fastestAnswerMs,omitempty"`
	}{playerFields: playerFields(p)}
	if p.FastestAnswerMs != NoAnswerMs {
		fastest := p.FastestAnswerMs
		wire.FastestAnswerMs = &fastest
	}
	return json.Marshal(wire)
}

// UnmarshalJSON restores NoAnswerMs when fastestAnswerMs is absent.
func (p *Player) UnmarshalJSON(data []byte) error {
	var wire struct {
		playerFields
		FastestAnswerMs *int64 `json:"fastestAnswerMs"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = Player(wire.playerFields)
	p.FastestAnswerMs = NoAnswerMs
	if wire.FastestAnswerMs != nil {
		p.FastestAnswerMs = *wire.FastestAnswerMs
	}
	return nil
}

// AverageResponseMs returns the mean response time, or false without answers.
func (p Player) AverageResponseMs() (float64, bool) {
	if p.TotalAnswers == 0 {
		return 0, false
	}
	return float64(p.TotalResponseMs) / float64(p.TotalAnswers), true
}

// Accuracy returns correct/total, or false without answers.
func (p Player) Accuracy() (float64, bool) {
	if p.TotalAnswers == 0 {
		return 0, false
	}
	return float64(p.CorrectCount) / float64(p.TotalAnswers), true
}

// Team is the shared state of a group of players in team mode.
type Team struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Emoji             string    `json:"emoji"`
	Color             string    `json:"color"`
	Score             int       `json:"score"`
	Health            int       `json:"health"`
	ComboCount        int       `json:"comboCount"`
	ComboAwarded      bool      `json:"comboAwarded"`
	ShieldActiveUntil time.Time `json:"shieldActiveUntil"`
	ShieldUsed        bool      `json:"shieldUsed"`
}

// MaxTeamHealth is the health every team starts with.
const MaxTeamHealth = 100

// ShieldActive reports whether the shield suppresses damage at now.
func (t Team) ShieldActive(now time.Time) bool {
	return t.ShieldActiveUntil.After(now)
}

// Presentation is the per-question randomized view shown to players.
type Presentation struct {
	Order    []int  `json:"order,omitempty"`
	Scramble string `json:"scramble,omitempty"`
}

// Room is the authoritative snapshot of one live game. Version increments on every save.
type Room struct {
	Pin                  string        `json:"pin"`
	Version              int64         `json:"version"`
	Status               Status        `json:"status"`
	Questions            []Question    `json:"questions"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	QuestionStartTime    time.Time     `json:"questionStartTime"`
	AnsweredPlayerIDs    []string      `json:"answeredPlayerIds"`
	Players              []Player      `json:"players"`
	TeamMode             bool          `json:"teamMode"`
	Teams                []Team        `json:"teams,omitempty"`
	Presentation         *Presentation `json:"presentation,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	EndedAt              time.Time     `json:"endedAt,omitempty"`
}

// CurrentQuestion returns the active question, or false when the index is out of range.
func (r *Room) CurrentQuestion() (Question, bool) {
	if r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex >= len(r.Questions) {
		return Question{}, false
	}
	return r.Questions[r.CurrentQuestionIndex], true
}

// IsLastQuestion reports whether the current question is the final one.
func (r *Room) IsLastQuestion() bool {
	return r.CurrentQuestionIndex >= len(r.Questions)-1
}

// Player returns a pointer into r.Players for id.
func (r *Room) Player(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// Team returns a pointer into r.Teams for id.
func (r *Room) Team(id string) *Team {
	for i := range r.Teams {
		if r.Teams[i].ID == id {
			return &r.Teams[i]
		}
	}
	return nil
}

// HasAnswered reports whether playerID already answered the current question.
func (r *Room) HasAnswered(playerID string) bool {
	for _, id := range r.AnsweredPlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// AllAnswered reports whether every player answered the current question.
func (r *Room) AllAnswered() bool {
	return len(r.Players) > 0 && len(r.AnsweredPlayerIDs) >= len(r.Players)
}

// TeamMemberCount counts players assigned to teamID.
func (r *Room) TeamMemberCount(teamID string) int {
	n := 0
	for _, p := range r.Players {
		if p.TeamID == teamID {
			n++
		}
	}
	return n
}

// Clone returns a deep copy. Questions are immutable and shared.
func (r Room) Clone() Room {
	out := r
	out.AnsweredPlayerIDs = append([]string(nil), r.AnsweredPlayerIDs...)
	out.Players = append([]Player(nil), r.Players...)
	out.Teams = append([]Team(nil), r.Teams...)
	if r.Presentation != nil {
		p := Presentation{
			Order:    append([]int(nil), r.Presentation.Order...),
			Scramble: r.Presentation.Scramble,
		}
		out.Presentation = &p
	}
	return out
}
