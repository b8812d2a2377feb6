package domain

import (
	"strconv"
	"time"
)

// Question models an MCQ question identified within a quiz by an integer ID.
// CorrectAnswer is a zero-based index into Options.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Questions    []Question `json:"questions"`
	PassingScore float64    `json:"passingScore,omitempty"` // percentage threshold, defaults to 70 if zero
}

// UserAnswer captures one answered question. Correctness is fixed at the
// moment of answering and never recomputed.
type UserAnswer struct {
	QuestionID     int   `json:"questionId"`
	SelectedOption int   `json:"selectedOption"`
	IsCorrect      bool  `json:"isCorrect"`
	TimeSpent      int64 `json:"timeSpent,omitempty"` // milliseconds
}

// QuizResult is one completed attempt. Score duplicates CorrectAnswers
// because the persisted wire format carries both names.
type QuizResult struct {
	QuizID         string       `json:"quizId"`
	UserID         string       `json:"userId,omitempty"`
	Answers        []UserAnswer `json:"answers"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	CorrectAnswers int          `json:"correctAnswers"`
	Percentage     float64      `json:"percentage"`
	CompletedAt    time.Time    `json:"completedAt"`
	TimeSpent      int64        `json:"timeSpent"` // milliseconds
}

// ResultID is the lookup identity of a persisted result: the decimal string
// of its completion time in Unix milliseconds.
func (r QuizResult) ResultID() string {
	return strconv.FormatInt(r.CompletedAt.UnixMilli(), 10)
}

// UserProfile is the account record the auth service works with.
type UserProfile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
