package http

import (
	"encoding/json"
	"log"
	"net/http"

	"live-quiz-service/internal/domain"
)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type noopBody struct {
	Noop   bool   `json:"noop"`
	Reason string `json:"reason"`
}

var reasonStatus = map[string]int{
	"not_found":              http.StatusNotFound,
	"player_not_found":       http.StatusNotFound,
	"team_not_found":         http.StatusNotFound,
	"question_set_not_found": http.StatusNotFound,
	"invalid_phase":          http.StatusConflict,
	"duplicate_answer":       http.StatusConflict,
	"shield_unavailable":     http.StatusConflict,
	"store_conflict":         http.StatusConflict,
	"pin_taken":              http.StatusConflict,
	"insufficient_players":   http.StatusUnprocessableEntity,
	"team_mode_disabled":     http.StatusUnprocessableEntity,
	"invalid_submission":     http.StatusBadRequest,
	"invalid_question":       http.StatusBadRequest,
	"invalid_team_setup":     http.StatusBadRequest,
	"invalid_player":         http.StatusBadRequest,
}

// writeError answers a failed command. Benign errors are reported as a successful no-op.
func writeError(w http.ResponseWriter, err error) {
	reason := domain.Reason(err)
	if domain.IsBenign(err) {
		writeJSON(w, http.StatusOK, noopBody{Noop: true, Reason: reason})
		return
	}
	status, ok := reasonStatus[reason]
	if !ok {
		status = http.StatusInternalServerError
		log.Printf("http: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Reason: reason})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Reason: "bad_request"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}
