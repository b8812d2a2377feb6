package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/scoring"
	"quiz-attempt-service/internal/storage"
)

// APIHandler serves the REST surface: auth, profiles, and result history.
type APIHandler struct {
	auth     *app.AuthService
	attempts *app.AttemptService
	quizzes  app.QuizRepository
	results  *storage.Store
	log      *zap.Logger
}

func NewAPIHandler(auth *app.AuthService, attempts *app.AttemptService, quizzes app.QuizRepository, results *storage.Store, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{auth: auth, attempts: attempts, quizzes: quizzes, results: results, log: log}
}

// Register wires all routes onto mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.signUp)
	mux.HandleFunc("POST /api/auth/login", h.logIn)
	mux.HandleFunc("GET /api/auth/session", h.sessionInfo)
	mux.HandleFunc("GET /api/profile", h.profile)
	mux.HandleFunc("PUT /api/profile", h.updateProfile)
	mux.HandleFunc("GET /api/quizzes/{quizID}/results", h.listResults)
	mux.HandleFunc("GET /api/quizzes/{quizID}/results/{resultID}", h.resultByID)
	mux.HandleFunc("DELETE /api/quizzes/{quizID}/results", h.clearResults)
	mux.HandleFunc("GET /api/quizzes/{quizID}/stats", h.quizStats)
	mux.HandleFunc("POST /api/quizzes/{quizID}/submit", h.submitAnswers)
}

type credentialsRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

type authResponse struct {
	User  domain.UserProfile `json:"user"`
	Token string             `json:"token"`
}

func (h *APIHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, username and password are required")
		return
	}

	user, token, err := h.auth.SignUp(r.Context(), req.Email, req.Username, req.DisplayName, req.Password)
	if errors.Is(err, domain.ErrUserExists) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.log.Error("signup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "signup failed")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *APIHandler) logIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.auth.LogIn(r.Context(), req.EmailOrUsername, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *APIHandler) sessionInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := h.identify(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.identify(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.identify(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var update app.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user.ID, update)
	if err != nil {
		h.log.Error("profile update failed", zap.String("userId", user.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// listResults serves the caller's history for a quiz: the authenticated
// user's partition, or the anonymous partition without a credential. A
// storage failure degrades to an empty history, never an error page.
func (h *APIHandler) listResults(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("quizID")
	results := h.results.Results(r.Context(), quizID, h.callerID(r))
	if results == nil {
		results = []domain.QuizResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *APIHandler) resultByID(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("quizID")
	resultID := r.PathValue("resultID")

	result, ok := h.results.ResultByID(r.Context(), quizID, resultID, h.callerID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) clearResults(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("quizID")
	h.results.Clear(r.Context(), quizID, h.callerID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) quizStats(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("quizID")

	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if errors.Is(err, domain.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error("quiz load failed", zap.String("quizId", quizID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "quiz unavailable")
		return
	}

	results := h.results.Results(r.Context(), quizID, h.callerID(r))
	writeJSON(w, http.StatusOK, scoring.ComputeStatistics(results, quiz.PassingScore))
}

type submitRequest struct {
	Answers   []app.AnswerPick `json:"answers"`
	TimeSpent int64            `json:"timeSpent"`
}

// submitAnswers grades a whole answer sheet at once, for clients that do
// not play over the websocket. The result lands in the caller's history
// the same way a completed live attempt does.
func (h *APIHandler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	quizID := r.PathValue("quizID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.attempts.SubmitAnswerSheet(r.Context(), quizID, h.callerID(r), req.Answers, req.TimeSpent)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("submit failed", zap.String("quizId", quizID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "submit failed")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// identify resolves the bearer token to a user. False means no valid
// credential was presented.
func (h *APIHandler) identify(r *http.Request) (domain.UserProfile, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return domain.UserProfile{}, false
	}
	user, err := h.auth.Identify(r.Context(), token)
	if err != nil {
		return domain.UserProfile{}, false
	}
	return user, true
}

// callerID is the identity for result partitioning: the authenticated
// user's ID or empty for anonymous callers.
func (h *APIHandler) callerID(r *http.Request) string {
	user, ok := h.identify(r)
	if !ok {
		return ""
	}
	return user.ID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
