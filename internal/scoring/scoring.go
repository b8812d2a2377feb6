// Package scoring holds the pure functions that turn answered questions
// into scores and persisted result records. Nothing here touches storage
// or the clock; callers supply timestamps.
package scoring

import (
	"math"
	"time"

	"quiz-attempt-service/internal/domain"
)

// CalculateScore counts correct answers. Empty input yields 0.
func CalculateScore(answers []domain.UserAnswer) int {
	score := 0
	for _, answer := range answers {
		if answer.IsCorrect {
			score++
		}
	}
	return score
}

// CalculatePercentage returns correct/total as a percentage rounded to two
// decimal places. A zero total yields 0 rather than dividing by zero.
func CalculatePercentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

// GenerateQuizResult composes a QuizResult from a finished attempt.
// Deterministic given identical inputs; the caller guarantees endTime is
// not before startTime.
func GenerateQuizResult(quizID string, answers []domain.UserAnswer, totalQuestions int, startTime, endTime time.Time, userID string) domain.QuizResult {
	correct := CalculateScore(answers)
	return domain.QuizResult{
		QuizID:         quizID,
		UserID:         userID,
		Answers:        answers,
		Score:          correct,
		TotalQuestions: totalQuestions,
		CorrectAnswers: correct,
		Percentage:     CalculatePercentage(correct, totalQuestions),
		CompletedAt:    endTime,
		TimeSpent:      endTime.Sub(startTime).Milliseconds(),
	}
}
