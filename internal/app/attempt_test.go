package app_test

import (
	"errors"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

func threeQuestionQuiz() domain.Quiz {
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

func TestNewAttemptRequiresQuestions(t *testing.T) {
	if _, err := app.NewAttempt(domain.Quiz{ID: "empty"}, "", time.Now()); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestSelectAnswerValidatesOption(t *testing.T) {
	attempt, err := app.NewAttempt(threeQuestionQuiz(), "", time.Now())
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	if _, err := attempt.SelectAnswer(3); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if _, err := attempt.SelectAnswer(-1); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption for negative index, got %v", err)
	}

	next, err := attempt.SelectAnswer(1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !next.HasSelection() || next.Selected != 1 {
		t.Fatalf("expected selection 1, got %+v", next)
	}
	// re-selecting overwrites the pending pick without appending
	next, _ = next.SelectAnswer(0)
	if next.Selected != 0 || len(next.Answers) != 0 {
		t.Fatalf("expected overwrite with no append, got %+v", next)
	}
}

func TestAdvanceWithoutSelectionRejected(t *testing.T) {
	attempt, _ := app.NewAttempt(threeQuestionQuiz(), "", time.Now())

	same, err := attempt.Advance()
	if !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if same.CurrentIndex != 0 || len(same.Answers) != 0 {
		t.Fatalf("rejected advance must not change state: %+v", same)
	}
}

func TestFullTraversalAllCorrect(t *testing.T) {
	attempt, _ := app.NewAttempt(threeQuestionQuiz(), "", time.Now())
	picks := []int{1, 0, 2}

	for i, pick := range picks {
		var err error
		attempt, err = attempt.SelectAnswer(pick)
		if err != nil {
			t.Fatalf("select q%d: %v", i+1, err)
		}
		attempt, err = attempt.Advance()
		if err != nil {
			t.Fatalf("advance q%d: %v", i+1, err)
		}
	}

	if !attempt.Completed {
		t.Fatalf("expected completed attempt")
	}
	correct, answered := attempt.ScoreSoFar()
	if correct != 3 || answered != 3 {
		t.Fatalf("expected 3/3, got %d/%d", correct, answered)
	}
}

func TestScoreSoFarProgression(t *testing.T) {
	attempt, _ := app.NewAttempt(threeQuestionQuiz(), "", time.Now())

	if c, n := attempt.ScoreSoFar(); c != 0 || n != 0 {
		t.Fatalf("expected 0/0 at start, got %d/%d", c, n)
	}

	// a pending selection does not count yet
	attempt, _ = attempt.SelectAnswer(1)
	if c, n := attempt.ScoreSoFar(); c != 0 || n != 0 {
		t.Fatalf("expected 0/0 before advance, got %d/%d", c, n)
	}

	attempt, _ = attempt.Advance()
	if c, n := attempt.ScoreSoFar(); c != 1 || n != 1 {
		t.Fatalf("expected 1/1 after first advance, got %d/%d", c, n)
	}

	attempt, _ = attempt.SelectAnswer(1) // wrong: correct is 0
	attempt, _ = attempt.Advance()
	if c, n := attempt.ScoreSoFar(); c != 1 || n != 2 {
		t.Fatalf("expected 1/2, got %d/%d", c, n)
	}
}

func TestAnswerCorrectnessFixedAtAnswerTime(t *testing.T) {
	attempt, _ := app.NewAttempt(threeQuestionQuiz(), "", time.Now())

	attempt, _ = attempt.SelectAnswer(2) // wrong
	attempt, _ = attempt.Advance()

	if len(attempt.Answers) != 1 {
		t.Fatalf("expected 1 answer, got %d", len(attempt.Answers))
	}
	answer := attempt.Answers[0]
	if answer.QuestionID != 1 || answer.SelectedOption != 2 || answer.IsCorrect {
		t.Fatalf("unexpected answer: %+v", answer)
	}
	if attempt.HasSelection() {
		t.Fatalf("advance must clear the selection")
	}
	if attempt.CurrentIndex != 1 {
		t.Fatalf("expected index 1, got %d", attempt.CurrentIndex)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	attempt, _ := app.NewAttempt(threeQuestionQuiz(), "u1", start)

	attempt, _ = attempt.SelectAnswer(1)
	attempt, _ = attempt.Advance()
	attempt, _ = attempt.SelectAnswer(0)

	restarted := attempt.Reset(start.Add(time.Hour))
	if restarted.CurrentIndex != 0 || len(restarted.Answers) != 0 || restarted.HasSelection() || restarted.Completed {
		t.Fatalf("expected initial state, got %+v", restarted)
	}
	if !restarted.StartedAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected fresh start timestamp")
	}
}

func TestCompletedAttemptRejectsFurtherPlay(t *testing.T) {
	quiz := domain.Quiz{
		ID:        "quiz-1",
		Questions: []domain.Question{{ID: 1, Prompt: "?", Options: []string{"a", "b"}, CorrectAnswer: 0}},
	}
	attempt, _ := app.NewAttempt(quiz, "", time.Now())
	attempt, _ = attempt.SelectAnswer(0)
	attempt, _ = attempt.Advance()

	if !attempt.Completed {
		t.Fatalf("expected completion on last question")
	}
	if _, err := attempt.SelectAnswer(0); !errors.Is(err, domain.ErrAttemptCompleted) {
		t.Fatalf("expected ErrAttemptCompleted, got %v", err)
	}
	if _, err := attempt.Advance(); !errors.Is(err, domain.ErrAttemptCompleted) {
		t.Fatalf("expected ErrAttemptCompleted, got %v", err)
	}
	// reset is the only way out
	if restarted := attempt.Reset(time.Now()); restarted.Completed {
		t.Fatalf("reset must leave Completed false")
	}
}
