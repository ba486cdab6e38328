package game

import "live-quiz-service/internal/domain"

// View strips room down to what clients may see. The running question is included only while
// answers are open.
func View(room domain.Room) domain.RoomView {
	view := domain.RoomView{
		Pin:                  room.Pin,
		Status:               room.Status,
		CurrentQuestionIndex: room.CurrentQuestionIndex,
		TotalQuestions:       len(room.Questions),
		Answered:             len(room.AnsweredPlayerIDs),
		Players:              room.Players,
		TeamMode:             room.TeamMode,
		Teams:                room.Teams,
		Leaderboard:          Leaderboard(room.Players),
		CreatedAt:            room.CreatedAt,
		EndedAt:              room.EndedAt,
	}
	if room.Status == domain.StatusQuestion {
		q := questionView(&room)
		view.Question = &q
	}
	return view
}
