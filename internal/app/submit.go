package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/scoring"
)

// AnswerPick is one entry of a batch answer sheet.
type AnswerPick struct {
	QuestionID     int   `json:"questionId"`
	SelectedOption int   `json:"selectedOption"`
	TimeSpent      int64 `json:"timeSpent,omitempty"`
}

// SubmitAnswerSheet grades a complete answer sheet in one call, for
// clients that track progress themselves instead of playing over the
// websocket. Picks referencing unknown questions or out-of-range options
// are rejected before anything is persisted.
func (s *AttemptService) SubmitAnswerSheet(ctx context.Context, quizID, userID string, picks []AnswerPick, timeSpentMillis int64) (domain.QuizResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("load quiz %s: %w", quizID, err)
	}

	questions := make(map[int]domain.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions[q.ID] = q
	}

	answers := make([]domain.UserAnswer, 0, len(picks))
	for _, pick := range picks {
		question, ok := questions[pick.QuestionID]
		if !ok {
			return domain.QuizResult{}, fmt.Errorf("question %d: %w", pick.QuestionID, domain.ErrQuestionNotFound)
		}
		if pick.SelectedOption < 0 || pick.SelectedOption >= len(question.Options) {
			return domain.QuizResult{}, fmt.Errorf("question %d option %d: %w", pick.QuestionID, pick.SelectedOption, domain.ErrInvalidOption)
		}
		answers = append(answers, domain.UserAnswer{
			QuestionID:     pick.QuestionID,
			SelectedOption: pick.SelectedOption,
			IsCorrect:      pick.SelectedOption == question.CorrectAnswer,
			TimeSpent:      pick.TimeSpent,
		})
	}

	end := s.now()
	start := end.Add(-time.Duration(timeSpentMillis) * time.Millisecond)
	result := scoring.GenerateQuizResult(quiz.ID, answers, len(quiz.Questions), start, end, userID)
	s.results.Save(ctx, result)
	s.log.Info("answer sheet submitted",
		zap.String("quizId", quizID),
		zap.String("userId", userID),
		zap.Int("score", result.Score),
		zap.Float64("percentage", result.Percentage))
	return result, nil
}
