package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// WSHandler drives one quiz attempt per websocket connection. The client
// sends select/advance/reset messages; the server answers with the next
// attempt state, plus the final result when the last answer lands.
type WSHandler struct {
	attempts *app.AttemptService
	auth     *app.AuthService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(attempts *app.AttemptService, auth *app.AuthService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		attempts: attempts,
		auth:     auth,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type scorePayload struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
}

type statePayload struct {
	QuizID         string       `json:"quizId"`
	Title          string       `json:"title"`
	QuestionIndex  int          `json:"questionIndex"`
	TotalQuestions int          `json:"totalQuestions"`
	Prompt         string       `json:"prompt,omitempty"`
	Options        []string     `json:"options,omitempty"`
	Selected       *int         `json:"selected,omitempty"`
	Score          scorePayload `json:"score"`
	Completed      bool         `json:"completed"`
}

// ServeWS upgrades the request and starts an attempt for the quiz in the
// query string. A credential in the "token" parameter attaches the
// attempt to a user; an invalid or absent token plays anonymously.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	userID := ""
	if token := r.URL.Query().Get("token"); token != "" {
		if user, err := h.auth.Identify(r.Context(), token); err == nil {
			userID = user.ID
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	attempt, err := h.attempts.Start(r.Context(), quizID, userID)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	defer h.attempts.End(r.Context(), quizID, userID)

	h.sendState(conn, attempt)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid select payload")
				continue
			}
			attempt, err = h.attempts.Select(r.Context(), quizID, userID, payload.Option)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.sendState(conn, attempt)

		case "advance":
			next, result, err := h.attempts.Advance(r.Context(), quizID, userID)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			attempt = next
			h.sendState(conn, attempt)
			if result != nil {
				_ = conn.WriteJSON(outboundMessage[domain.QuizResult]{Type: "completed", Payload: *result})
			}

		case "reset":
			attempt, err = h.attempts.Reset(r.Context(), quizID, userID)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.sendState(conn, attempt)

		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) sendState(conn *websocket.Conn, attempt app.Attempt) {
	correct, answered := attempt.ScoreSoFar()
	payload := statePayload{
		QuizID:         attempt.Quiz.ID,
		Title:          attempt.Quiz.Title,
		QuestionIndex:  attempt.CurrentIndex,
		TotalQuestions: len(attempt.Quiz.Questions),
		Score:          scorePayload{Correct: correct, Answered: answered},
		Completed:      attempt.Completed,
	}
	if !attempt.Completed {
		question := attempt.CurrentQuestion()
		payload.Prompt = question.Prompt
		payload.Options = question.Options
		if attempt.HasSelection() {
			selected := attempt.Selected
			payload.Selected = &selected
		}
	}
	if err := conn.WriteJSON(outboundMessage[statePayload]{Type: "state", Payload: payload}); err != nil {
		h.log.Warn("ws write failed", zap.Error(err))
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}}); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		h.log.Warn("ws write failed", zap.Error(err))
	}
}
