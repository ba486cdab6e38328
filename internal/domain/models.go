package domain

import "time"

// LeaderboardEntry is a ranked view of one player.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Score    int    `json:"score"`
	Streak   int    `json:"streak"`
	TeamID   string `json:"teamId,omitempty"`
}

// Badge is an end-of-game superlative award.
type Badge struct {
	PlayerID    string `json:"playerId"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	BadgeName   string `json:"badgeName"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// MatchReport is the outcome of a match round as resolved by the player's device.
type MatchReport struct {
	TotalPairs  int   `json:"totalPairs"`
	CompletedMs int64 `json:"completedMs"`
	Mistakes    int   `json:"mistakes"`
	CleanSweep  bool  `json:"cleanSweep"`
	Points      int   `json:"points"`
}

// AnswerSubmission carries one player's answer; which fields matter depends on the question type.
type AnswerSubmission struct {
	// QuestionIndex optionally pins the submission to the question it answers.
	QuestionIndex *int         `json:"questionIndex,omitempty"`
	SelectedIndex *int         `json:"selectedIndex,omitempty"`
	Order         []int        `json:"order,omitempty"`
	Word          string       `json:"word,omitempty"`
	HintsUsed     int          `json:"hintsUsed,omitempty"`
	Match         *MatchReport `json:"match,omitempty"`
}

// Reveal is the correct-answer data disclosed once a player answered or the question ended.
type Reveal struct {
	QuestionIndex  int          `json:"questionIndex"`
	Type           QuestionType `json:"type"`
	CorrectOptions []int        `json:"correctOptions,omitempty"`
	Word           string       `json:"word,omitempty"`
	Pairs          []Pair       `json:"pairs,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
}

// AnswerResult is the private outcome sent to the answering player.
type AnswerResult struct {
	QuestionIndex   int     `json:"questionIndex"`
	Correct         bool    `json:"correct"`
	FractionCorrect float64 `json:"fractionCorrect"`
	Points          int     `json:"points"`
	TotalScore      int     `json:"totalScore"`
	Streak          int     `json:"streak"`
	ElapsedMs       int64   `json:"elapsedMs"`
	Reveal          Reveal  `json:"reveal"`
}

// QuestionView is a question as shown to players, without answers.
type QuestionView struct {
	Index            int          `json:"index"`
	Total            int          `json:"total"`
	ID               string       `json:"id"`
	Type             QuestionType `json:"type"`
	Text             string       `json:"text"`
	Options          []string     `json:"options,omitempty"`
	Terms            []string     `json:"terms,omitempty"`
	Definitions      []string     `json:"definitions,omitempty"`
	Order            []int        `json:"order,omitempty"`
	Scramble         string       `json:"scramble,omitempty"`
	WordLength       int          `json:"wordLength,omitempty"`
	TimeLimitSeconds int          `json:"timeLimitSeconds"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	StartedAt        time.Time    `json:"startedAt"`
}

// TeamConfig requests team mode when creating or setting up a room.
type TeamConfig struct {
	TeamCount int      `json:"teamCount"`
	Names     []string `json:"names,omitempty"`
}

// GameResult is the archived outcome of an ended room.
type GameResult struct {
	Pin         string             `json:"pin"`
	EndedAt     time.Time          `json:"endedAt"`
	Questions   int                `json:"questions"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Badges      []Badge            `json:"badges"`
	Teams       []Team             `json:"teams,omitempty"`
}

// QuestionSet is a stored, reusable list of questions.
type QuestionSet struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// RoomView is the client-safe snapshot of a room: no correct answers, no hidden words.
type RoomView struct {
	Pin                  string             `json:"pin"`
	Status               Status             `json:"status"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	TotalQuestions       int                `json:"totalQuestions"`
	Question             *QuestionView      `json:"question,omitempty"`
	Answered             int                `json:"answered"`
	Players              []Player           `json:"players"`
	TeamMode             bool               `json:"teamMode"`
	Teams                []Team             `json:"teams,omitempty"`
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
	CreatedAt            time.Time          `json:"createdAt"`
	EndedAt              time.Time          `json:"endedAt,omitempty"`
}
