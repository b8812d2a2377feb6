package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	"quiz-attempt-service/internal/session"
	"quiz-attempt-service/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	store := storage.New(memory.NewKV(), nil)
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": sampleQuiz(),
	}), time.Minute)
	attempts := app.NewAttemptService(quizzes, store, nil)
	auth := app.NewAuthService(memory.NewUserRepository(), session.NewManager("test-secret", time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(attempts, auth, nil).ServeWS)
	NewAPIHandler(auth, attempts, quizzes, store, nil).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func readNext(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWSAttemptFlow(t *testing.T) {
	server, store := newTestServer(t)
	conn := dialWS(t, server, "quizId=quiz-1")

	initial := readNext(t, conn)
	if initial.Type != "state" {
		t.Fatalf("expected initial state, got %s", initial.Type)
	}
	if initial.Payload["questionIndex"].(float64) != 0 {
		t.Fatalf("expected question 0, got %v", initial.Payload["questionIndex"])
	}

	// answer correct, incorrect, correct
	picks := []int{1, 1, 2}
	var completed wsMessage
	for i, pick := range picks {
		send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": pick}})
		if msg := readNext(t, conn); msg.Type != "state" {
			t.Fatalf("expected state after select, got %s", msg.Type)
		}
		send(t, conn, map[string]any{"type": "advance"})
		state := readNext(t, conn)
		if state.Type != "state" {
			t.Fatalf("expected state after advance, got %s", state.Type)
		}
		if i == len(picks)-1 {
			completed = readNext(t, conn)
		}
	}

	if completed.Type != "completed" {
		t.Fatalf("expected completed message, got %s", completed.Type)
	}
	if completed.Payload["score"].(float64) != 2 {
		t.Fatalf("expected score 2, got %v", completed.Payload["score"])
	}
	if completed.Payload["percentage"].(float64) != 66.67 {
		t.Fatalf("expected percentage 66.67, got %v", completed.Payload["percentage"])
	}

	// anonymous partition received the result
	results := store.Results(context.Background(), "quiz-1", "")
	if len(results) != 1 {
		t.Fatalf("expected persisted result, got %d", len(results))
	}
}

func TestWSAdvanceWithoutSelection(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialWS(t, server, "quizId=quiz-1")
	_ = readNext(t, conn) // initial state

	send(t, conn, map[string]any{"type": "advance"})
	msg := readNext(t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error, got %s", msg.Type)
	}

	// state is unchanged: selecting then advancing still answers question 0
	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": 1}})
	state := readNext(t, conn)
	if state.Payload["questionIndex"].(float64) != 0 {
		t.Fatalf("expected still question 0, got %v", state.Payload["questionIndex"])
	}
}

func TestWSResetRestartsAttempt(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialWS(t, server, "quizId=quiz-1")
	_ = readNext(t, conn)

	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": 1}})
	_ = readNext(t, conn)
	send(t, conn, map[string]any{"type": "advance"})
	_ = readNext(t, conn)

	send(t, conn, map[string]any{"type": "reset"})
	state := readNext(t, conn)
	if state.Type != "state" {
		t.Fatalf("expected state, got %s", state.Type)
	}
	if state.Payload["questionIndex"].(float64) != 0 {
		t.Fatalf("expected question 0 after reset, got %v", state.Payload["questionIndex"])
	}
	score := state.Payload["score"].(map[string]any)
	if score["answered"].(float64) != 0 {
		t.Fatalf("expected 0 answered after reset, got %v", score["answered"])
	}
}

func TestWSUnknownQuiz(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialWS(t, server, "quizId=quiz-unknown")

	msg := readNext(t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error for unknown quiz, got %s", msg.Type)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Basics",
		Questions: []domain.Question{
			{ID: 1, Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1},
			{ID: 2, Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: 0},
			{ID: 3, Prompt: "Largest planet?", Options: []string{"Mars", "Venus", "Jupiter"}, CorrectAnswer: 2},
		},
	}
}
