package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/game"
)

// Subscriber streams events of the given channels (memory hub or Redis pub/sub).
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan domain.Event, func(), error)
}

// ResultReader serves archived game results.
type ResultReader interface {
	LatestResult(ctx context.Context, pin string) (domain.GameResult, error)
}

// NewRouter wires the REST command routes and the websocket endpoint. results may be nil.
func NewRouter(engine *game.Engine, subscriber Subscriber, results ResultReader, allowedOrigins []string) http.Handler {
	rooms := NewRoomHandler(engine, results)
	ws := NewWSHandler(engine, subscriber, allowedOrigins)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ws", ws.ServeWS)

	api := router.PathPrefix("/rooms").Subrouter()
	api.HandleFunc("", rooms.Create).Methods(http.MethodPost)
	api.HandleFunc("/{pin}", rooms.Get).Methods(http.MethodGet)
	api.HandleFunc("/{pin}/leaderboard", rooms.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/{pin}/result", rooms.Result).Methods(http.MethodGet)
	api.HandleFunc("/{pin}/players", rooms.Join).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/start", rooms.Start).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/answers", rooms.SubmitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/advance", rooms.Advance).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/end-question", rooms.EndQuestion).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/skip-blitz", rooms.SkipBlitz).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/teams", rooms.SetupTeams).Methods(http.MethodPost)
	api.HandleFunc("/{pin}/teams/{teamId}/shield", rooms.ActivateShield).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}).Handler(router)
}
