package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/scoring"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultStore persists completed attempts. Save must not fail the quiz
// flow; a storage problem degrades to "result not saved".
type ResultStore interface {
	Save(ctx context.Context, result domain.QuizResult)
	Results(ctx context.Context, quizID, userID string) []domain.QuizResult
}

// AttemptService owns the live attempts. One attempt exists per
// (quizID, userID) pair at a time; completed attempts stay addressable
// until reset so the result screen can keep rendering them.
type AttemptService struct {
	quizzes QuizRepository
	results ResultStore
	log     *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	attempts map[string]Attempt
}

func NewAttemptService(quizzes QuizRepository, results ResultStore, log *zap.Logger) *AttemptService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttemptService{
		quizzes:  quizzes,
		results:  results,
		log:      log,
		now:      time.Now,
		attempts: make(map[string]Attempt),
	}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(quizzes QuizRepository, results ResultStore, log *zap.Logger, now func() time.Time) *AttemptService {
	s := NewAttemptService(quizzes, results, log)
	s.now = now
	return s
}

// Start loads the quiz and begins a fresh attempt, replacing any previous
// live attempt for the same quiz and user.
func (s *AttemptService) Start(ctx context.Context, quizID, userID string) (Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return Attempt{}, fmt.Errorf("load quiz %s: %w", quizID, err)
	}
	attempt, err := NewAttempt(quiz, userID, s.now())
	if err != nil {
		return Attempt{}, err
	}

	s.mu.Lock()
	s.attempts[attemptKey(quizID, userID)] = attempt
	s.mu.Unlock()
	return attempt, nil
}

// Get returns the live attempt for (quizID, userID).
func (s *AttemptService) Get(_ context.Context, quizID, userID string) (Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptKey(quizID, userID)]
	if !ok {
		return Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Select records a pending answer for the current question.
func (s *AttemptService) Select(_ context.Context, quizID, userID string, option int) (Attempt, error) {
	return s.transition(quizID, userID, func(a Attempt) (Attempt, error) {
		return a.SelectAnswer(option)
	})
}

// Advance commits the pending answer. Completing the last question
// generates the result and hands it to storage as a side effect; the
// returned result is non-nil exactly when the attempt completed.
func (s *AttemptService) Advance(ctx context.Context, quizID, userID string) (Attempt, *domain.QuizResult, error) {
	var result *domain.QuizResult
	attempt, err := s.transition(quizID, userID, func(a Attempt) (Attempt, error) {
		next, err := a.Advance()
		if err != nil {
			return a, err
		}
		if next.Completed {
			end := s.now()
			r := scoring.GenerateQuizResult(next.Quiz.ID, next.Answers, len(next.Quiz.Questions), next.StartedAt, end, next.UserID)
			result = &r
		}
		return next, nil
	})
	if err != nil {
		return attempt, nil, err
	}
	if result != nil {
		s.results.Save(ctx, *result)
		s.log.Info("attempt completed",
			zap.String("quizId", quizID),
			zap.String("userId", userID),
			zap.Int("score", result.Score),
			zap.Float64("percentage", result.Percentage))
	}
	return attempt, result, nil
}

// Reset discards the live attempt's progress and restarts it. History
// already persisted is untouched.
func (s *AttemptService) Reset(_ context.Context, quizID, userID string) (Attempt, error) {
	return s.transition(quizID, userID, func(a Attempt) (Attempt, error) {
		return a.Reset(s.now()), nil
	})
}

// End drops the live attempt without persisting anything. An unfinished
// attempt simply leaves no result.
func (s *AttemptService) End(_ context.Context, quizID, userID string) {
	s.mu.Lock()
	delete(s.attempts, attemptKey(quizID, userID))
	s.mu.Unlock()
}

// History returns the persisted results for this quiz and user, newest first.
func (s *AttemptService) History(ctx context.Context, quizID, userID string) []domain.QuizResult {
	return s.results.Results(ctx, quizID, userID)
}

// transition applies fn under the lock so the read-modify-write of the
// attempt map is atomic per key. The pre-transition state is returned on
// rejection.
func (s *AttemptService) transition(quizID, userID string, fn func(Attempt) (Attempt, error)) (Attempt, error) {
	key := attemptKey(quizID, userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[key]
	if !ok {
		return Attempt{}, domain.ErrAttemptNotFound
	}
	next, err := fn(attempt)
	if err != nil {
		return attempt, err
	}
	s.attempts[key] = next
	return next, nil
}

func attemptKey(quizID, userID string) string {
	if userID == "" {
		return quizID
	}
	return quizID + ":" + userID
}
