package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/game"
)

type WSHandler struct {
	engine     *game.Engine
	subscriber Subscriber
	upgrader   websocket.Upgrader
}

func NewWSHandler(engine *game.Engine, subscriber Subscriber, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		engine:     engine,
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type shieldPayload struct {
	TeamID string `json:"teamId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// ServeWS upgrades the request, optionally joins the caller to the room and streams the room
// channel plus the caller's private channel. Inbound messages are engine commands.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pin := q.Get("pin")
	playerID := q.Get("playerId")
	nickname := q.Get("nickname")
	if pin == "" {
		http.Error(w, "missing pin", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var joined *domain.Player
	if playerID != "" || nickname != "" {
		player, err := h.engine.Join(ctx, pin, playerID, nickname, q.Get("avatar"))
		if err != nil {
			_ = conn.WriteJSON(errorMessage(err))
			return
		}
		joined = &player
		playerID = player.ID
	}

	channels := []string{domain.RoomChannel(pin)}
	if playerID != "" {
		channels = append(channels, domain.PlayerChannel(pin, playerID))
	}
	updates, cancel, err := h.subscriber.Subscribe(ctx, channels...)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	room, err := h.engine.GetRoom(ctx, pin)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblock the read loop
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: ev.Name, Payload: ev.Payload}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) bool { return enqueue(send, writerDone, msg) }

	ok := true
	if joined != nil {
		ok = push(outboundMessage[any]{Type: "joined", Payload: joined})
	}
	ok = ok && push(outboundMessage[any]{Type: "room", Payload: game.View(room)})

	for ok {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, pin, playerID, inbound); err != nil {
			if domain.IsBenign(err) {
				ok = push(outboundMessage[any]{Type: "noop", Payload: noopBody{Noop: true, Reason: domain.Reason(err)}})
				continue
			}
			ok = push(errorMessage(err))
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer and reports false once the writer has stopped.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

var (
	errBadPayload  = errors.New("invalid payload")
	errUnsupported = errors.New("unsupported message type")
)

// dispatch runs one inbound command. Results reach the client through the subscribed channels.
func (h *WSHandler) dispatch(r *http.Request, pin, playerID string, msg inboundMessage) error {
	ctx := r.Context()
	switch msg.Type {
	case "answer":
		if playerID == "" {
			return domain.ErrPlayerNotFound
		}
		var sub domain.AnswerSubmission
		if err := json.Unmarshal(msg.Payload, &sub); err != nil {
			return errBadPayload
		}
		_, err := h.engine.SubmitAnswer(ctx, pin, playerID, sub)
		return err
	case "start":
		_, err := h.engine.Start(ctx, pin)
		return err
	case "advance", "end_question", "skip_blitz":
		var req expectedIndexRequest
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return errBadPayload
			}
		}
		var err error
		switch msg.Type {
		case "advance":
			_, err = h.engine.Advance(ctx, pin, req.index())
		case "end_question":
			_, err = h.engine.EndQuestion(ctx, pin, req.index())
		default:
			_, err = h.engine.SkipBlitz(ctx, pin, req.index())
		}
		return err
	case "activate_shield":
		var p shieldPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errBadPayload
		}
		_, err := h.engine.ActivateShield(ctx, pin, p.TeamID)
		return err
	case "setup_teams":
		var cfg domain.TeamConfig
		if err := json.Unmarshal(msg.Payload, &cfg); err != nil {
			return errBadPayload
		}
		_, err := h.engine.SetupTeams(ctx, pin, cfg)
		return err
	default:
		return errUnsupported
	}
}

func errorMessage(err error) outboundMessage[any] {
	reason := domain.Reason(err)
	switch err {
	case errBadPayload, errUnsupported:
		reason = "bad_request"
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error(), Reason: reason}}
}
