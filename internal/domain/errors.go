package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no room exists for a pin.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidPhase is returned when a command does not apply to the room's current status.
	ErrInvalidPhase = errors.New("command not allowed in current phase")
	// ErrDuplicateAnswer is returned when a player already answered the current question.
	ErrDuplicateAnswer = errors.New("player already answered this question")
	// ErrAlreadyAdvanced marks a command that references a question the room has already left.
	ErrAlreadyAdvanced = errors.New("room already advanced past this question")
	// ErrShieldUnavailable is returned when a team already spent its shield.
	ErrShieldUnavailable = errors.New("shield already used")
	// ErrInsufficientPlayers is returned when starting a room without players.
	ErrInsufficientPlayers = errors.New("at least one player is required")
	// ErrStoreConflict reports an optimistic-concurrency failure on save.
	ErrStoreConflict = errors.New("room was modified concurrently")

	ErrPlayerNotFound      = errors.New("player not found in room")
	ErrInvalidPlayer       = errors.New("invalid player")
	ErrTeamNotFound        = errors.New("team not found in room")
	ErrTeamModeDisabled    = errors.New("team mode is not enabled")
	ErrInvalidSubmission   = errors.New("invalid answer submission")
	ErrInvalidQuestion     = errors.New("invalid question")
	ErrInvalidTeamSetup    = errors.New("invalid team setup")
	ErrPinTaken            = errors.New("room pin already in use")
	ErrQuestionSetNotFound = errors.New("question set not found")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrRoomNotFound, "not_found"},
	{ErrInvalidPhase, "invalid_phase"},
	{ErrDuplicateAnswer, "duplicate_answer"},
	{ErrAlreadyAdvanced, "already_advanced"},
	{ErrShieldUnavailable, "shield_unavailable"},
	{ErrInsufficientPlayers, "insufficient_players"},
	{ErrStoreConflict, "store_conflict"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrInvalidPlayer, "invalid_player"},
	{ErrTeamNotFound, "team_not_found"},
	{ErrTeamModeDisabled, "team_mode_disabled"},
	{ErrInvalidSubmission, "invalid_submission"},
	{ErrInvalidQuestion, "invalid_question"},
	{ErrInvalidTeamSetup, "invalid_team_setup"},
	{ErrPinTaken, "pin_taken"},
	{ErrQuestionSetNotFound, "question_set_not_found"},
}

// Reason maps err to a stable, machine-checkable reason code.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal"
}

// IsBenign reports whether err is a stale or duplicate command that left the room untouched
// and should be answered as a no-op rather than a failure.
func IsBenign(err error) bool {
	return errors.Is(err, ErrAlreadyAdvanced)
}
