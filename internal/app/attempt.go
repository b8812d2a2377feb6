package app

import (
	"fmt"
	"time"

	"quiz-attempt-service/internal/domain"
)

// noSelection marks that no option is pending for the current question.
const noSelection = -1

// Attempt is one traversal of a quiz. It is an immutable value: the
// transition methods return the next state and never mutate the receiver,
// so a rejected transition leaves the caller's state untouched.
type Attempt struct {
	Quiz         domain.Quiz
	UserID       string
	CurrentIndex int
	Selected     int // noSelection when nothing is pending
	Answers      []domain.UserAnswer
	StartedAt    time.Time
	Completed    bool
}

// NewAttempt starts at question 0 with no selection and no answers.
func NewAttempt(quiz domain.Quiz, userID string, now time.Time) (Attempt, error) {
	if len(quiz.Questions) == 0 {
		return Attempt{}, fmt.Errorf("start attempt for quiz %s: %w", quiz.ID, domain.ErrNoQuestions)
	}
	return Attempt{
		Quiz:      quiz,
		UserID:    userID,
		Selected:  noSelection,
		StartedAt: now,
	}, nil
}

// CurrentQuestion returns the question awaiting an answer.
func (a Attempt) CurrentQuestion() domain.Question {
	return a.Quiz.Questions[a.CurrentIndex]
}

// HasSelection reports whether an option is pending for the current question.
func (a Attempt) HasSelection() bool {
	return a.Selected != noSelection
}

// SelectAnswer records a pending pick for the current question. It does
// not advance; re-selecting overwrites the previous pick. Selecting after
// completion or out of range is rejected.
func (a Attempt) SelectAnswer(option int) (Attempt, error) {
	if a.Completed {
		return a, domain.ErrAttemptCompleted
	}
	question := a.CurrentQuestion()
	if option < 0 || option >= len(question.Options) {
		return a, fmt.Errorf("question %d has %d options: %w", question.ID, len(question.Options), domain.ErrInvalidOption)
	}
	a.Selected = option
	return a, nil
}

// Advance commits the pending selection as a UserAnswer and moves on.
// Without a selection the call is rejected, which is how "must answer
// before proceeding" is enforced. Answering the last question completes
// the attempt; the caller is responsible for result generation and
// persistence at that point.
func (a Attempt) Advance() (Attempt, error) {
	if a.Completed {
		return a, domain.ErrAttemptCompleted
	}
	if !a.HasSelection() {
		return a, domain.ErrNoSelection
	}

	question := a.CurrentQuestion()
	answer := domain.UserAnswer{
		QuestionID:     question.ID,
		SelectedOption: a.Selected,
		IsCorrect:      a.Selected == question.CorrectAnswer,
	}

	answers := make([]domain.UserAnswer, len(a.Answers), len(a.Answers)+1)
	copy(answers, a.Answers)
	a.Answers = append(answers, answer)
	a.Selected = noSelection

	if a.CurrentIndex == len(a.Quiz.Questions)-1 {
		a.Completed = true
	} else {
		a.CurrentIndex++
	}
	return a, nil
}

// Reset returns to the initial state with a fresh start timestamp. Valid
// from any state; results already persisted from prior completions stay
// in storage.
func (a Attempt) Reset(now time.Time) Attempt {
	a.CurrentIndex = 0
	a.Selected = noSelection
	a.Answers = nil
	a.StartedAt = now
	a.Completed = false
	return a
}

// ScoreSoFar reports correct answers over answered questions. The pending
// selection does not count until Advance commits it, so a fresh attempt
// reads 0/0 and the first advance moves it to at most 1/1.
func (a Attempt) ScoreSoFar() (correct, answered int) {
	for _, answer := range a.Answers {
		if answer.IsCorrect {
			correct++
		}
	}
	return correct, len(a.Answers)
}
