package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/game"
)

// RoomHandler exposes the engine commands as JSON endpoints keyed by room pin.
type RoomHandler struct {
	engine  *game.Engine
	results ResultReader
}

func NewRoomHandler(engine *game.Engine, results ResultReader) *RoomHandler {
	return &RoomHandler{engine: engine, results: results}
}

type createRoomRequest struct {
	Questions     []domain.Question  `json:"questions"`
	QuestionSetID string             `json:"questionSetId"`
	Teams         *domain.TeamConfig `json:"teams"`
}

type joinRequest struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type answerRequest struct {
	PlayerID string `json:"playerId"`
	domain.AnswerSubmission
}

// expectedIndexRequest pins a transition to the question the caller saw; omitted means current.
type expectedIndexRequest struct {
	ExpectedIndex *int `json:"expectedIndex"`
}

func (r expectedIndexRequest) index() int {
	if r.ExpectedIndex == nil {
		return -1
	}
	return *r.ExpectedIndex
}

type leaderboardResponse struct {
	Pin         string                    `json:"pin"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid room payload")
		return
	}
	var (
		room domain.Room
		err  error
	)
	if req.QuestionSetID != "" {
		room, err = h.engine.CreateRoomFromSet(r.Context(), req.QuestionSetID, req.Teams)
	} else {
		room, err = h.engine.CreateRoom(r.Context(), req.Questions, req.Teams)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game.View(room))
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.engine.GetRoom(r.Context(), mux.Vars(r)["pin"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.View(room))
}

func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	pin := mux.Vars(r)["pin"]
	lb, err := h.engine.Leaderboard(r.Context(), pin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Pin: pin, Leaderboard: lb})
}

func (h *RoomHandler) Result(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "result archive not configured", Reason: "not_found"})
		return
	}
	result, err := h.results.LatestResult(r.Context(), mux.Vars(r)["pin"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid join payload")
		return
	}
	player, err := h.engine.Join(r.Context(), mux.Vars(r)["pin"], req.PlayerID, req.Nickname, req.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	room, err := h.engine.Start(r.Context(), mux.Vars(r)["pin"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.View(room))
}

func (h *RoomHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeBadRequest(w, "invalid answer payload")
		return
	}
	result, err := h.engine.SubmitAnswer(r.Context(), mux.Vars(r)["pin"], req.PlayerID, req.AnswerSubmission)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RoomHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.Advance)
}

func (h *RoomHandler) EndQuestion(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.EndQuestion)
}

func (h *RoomHandler) SkipBlitz(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.SkipBlitz)
}

type transitionFunc func(ctx context.Context, pin string, expectedIndex int) (domain.Room, error)

func (h *RoomHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	var req expectedIndexRequest
	// an empty body means "current question"
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid transition payload")
			return
		}
	}
	room, err := fn(r.Context(), mux.Vars(r)["pin"], req.index())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.View(room))
}

func (h *RoomHandler) SetupTeams(w http.ResponseWriter, r *http.Request) {
	var cfg domain.TeamConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeBadRequest(w, "invalid team payload")
		return
	}
	room, err := h.engine.SetupTeams(r.Context(), mux.Vars(r)["pin"], cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.View(room))
}

func (h *RoomHandler) ActivateShield(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	team, err := h.engine.ActivateShield(r.Context(), vars["pin"], vars["teamId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}
