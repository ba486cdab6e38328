package domain

import "time"

// Event names published by the engine. Payloads are full snapshots, never deltas.
const (
	EventPlayerJoined    = "player_joined"
	EventTeamsUpdated    = "teams_updated"
	EventQuestionStarted = "question_started"
	EventAnswerCount     = "answer_count"
	EventAnswerResult    = "answer_result"
	EventQuestionEnded   = "question_ended"
	EventCombo           = "combo"
	EventShieldActivated = "shield_activated"
	EventBetween         = "between"
	EventGameEnded       = "game_ended"
)

// Event is one message on a broadcast channel.
type Event struct {
	Channel string `json:"channel"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// RoomChannel is the room-wide channel for pin.
func RoomChannel(pin string) string {
	return "room:" + pin
}

// PlayerChannel is the private channel of one player in pin.
func PlayerChannel(pin, playerID string) string {
	return "player:" + pin + ":" + playerID
}

type PlayerJoinedPayload struct {
	Pin     string   `json:"pin"`
	Player  Player   `json:"player"`
	Players []Player `json:"players"`
}

type TeamsPayload struct {
	Pin   string `json:"pin"`
	Teams []Team `json:"teams"`
}

type AnswerCountPayload struct {
	Pin           string `json:"pin"`
	QuestionIndex int    `json:"questionIndex"`
	Answered      int    `json:"answered"`
	Total         int    `json:"total"`
}

type QuestionEndedPayload struct {
	Pin         string             `json:"pin"`
	Reveal      Reveal             `json:"reveal"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Teams       []Team             `json:"teams,omitempty"`
}

type ComboPayload struct {
	Pin           string `json:"pin"`
	QuestionIndex int    `json:"questionIndex"`
	TeamID        string `json:"teamId"`
	TeamName      string `json:"teamName"`
	Bonus         int    `json:"bonus"`
	Members       int    `json:"members"`
}

type ShieldPayload struct {
	Pin         string    `json:"pin"`
	TeamID      string    `json:"teamId"`
	ActiveUntil time.Time `json:"activeUntil"`
}

type BetweenPayload struct {
	Pin       string    `json:"pin"`
	NextIndex int       `json:"nextIndex"`
	ResumesAt time.Time `json:"resumesAt"`
}

type GameEndedPayload struct {
	Pin         string             `json:"pin"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Badges      []Badge            `json:"badges"`
	Teams       []Team             `json:"teams,omitempty"`
}
