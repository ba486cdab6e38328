package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"live-quiz-service/internal/domain"
)

func TestRoomLifecycleOverREST(t *testing.T) {
	srv := newTestServer(t)

	var view domain.RoomView
	if code := postJSON(t, srv.URL+"/rooms", map[string]any{"questions": sampleQuestions()}, &view); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if view.Pin == "" || view.Status != domain.StatusLobby || view.TotalQuestions != 1 {
		t.Fatalf("unexpected room %+v", view)
	}
	base := srv.URL + "/rooms/" + view.Pin

	var errBody errorBody
	if code := postJSON(t, base+"/start", nil, &errBody); code != http.StatusUnprocessableEntity || errBody.Reason != "insufficient_players" {
		t.Fatalf("expected insufficient_players, got %d %+v", code, errBody)
	}

	var player domain.Player
	if code := postJSON(t, base+"/players", joinRequest{PlayerID: "p1", Nickname: "Ana"}, &player); code != http.StatusOK || player.ID != "p1" {
		t.Fatalf("join: %d %+v", code, player)
	}
	if code := postJSON(t, base+"/start", nil, &view); code != http.StatusOK || view.Status != domain.StatusQuestion || view.Question == nil {
		t.Fatalf("start: %d %+v", code, view)
	}

	var result domain.AnswerResult
	answer := map[string]any{"playerId": "p1", "selectedIndex": 2}
	if code := postJSON(t, base+"/answers", answer, &result); code != http.StatusOK || !result.Correct || result.Points == 0 {
		t.Fatalf("answer: %d %+v", code, result)
	}
	errBody = errorBody{}
	if code := postJSON(t, base+"/answers", answer, &errBody); code != http.StatusConflict || errBody.Reason != "invalid_phase" {
		t.Fatalf("expected invalid_phase, got %d %+v", code, errBody)
	}

	var noop noopBody
	if code := postJSON(t, base+"/end-question", map[string]any{"expectedIndex": 0}, &noop); code != http.StatusOK || !noop.Noop {
		t.Fatalf("expected noop, got %d %+v", code, noop)
	}
	if code := postJSON(t, base+"/advance", nil, &view); code != http.StatusOK || view.Status != domain.StatusEnded {
		t.Fatalf("advance: %d %+v", code, view)
	}

	var archived domain.GameResult
	resp, err := http.Get(base + "/result")
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected archived result, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &archived)
	if archived.Pin != view.Pin || len(archived.Leaderboard) != 1 {
		t.Fatalf("unexpected archive %+v", archived)
	}
}

func TestCreateRoomFromQuestionSet(t *testing.T) {
	srv := newTestServer(t)

	var view domain.RoomView
	body := map[string]any{"questionSetId": "demo", "teams": map[string]any{"teamCount": 2}}
	if code := postJSON(t, srv.URL+"/rooms", body, &view); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if !view.TeamMode || len(view.Teams) != 2 || view.TotalQuestions != 7 {
		t.Fatalf("unexpected room %+v", view)
	}

	var errBody errorBody
	if code := postJSON(t, srv.URL+"/rooms", map[string]any{"questionSetId": "missing"}, &errBody); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %+v", code, errBody)
	}
	if code := postJSON(t, srv.URL+"/rooms", map[string]any{"questions": []any{}}, &errBody); code != http.StatusBadRequest || errBody.Reason != "invalid_question" {
		t.Fatalf("expected invalid_question, got %d %+v", code, errBody)
	}
}

func TestUnknownRoomIs404(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/rooms/424242")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body errorBody
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusNotFound || body.Reason != "not_found" {
		t.Fatalf("expected not_found, got %d %+v", resp.StatusCode, body)
	}
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}
