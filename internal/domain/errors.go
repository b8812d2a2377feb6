package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates an answer referenced an unknown question.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNoQuestions is returned when an attempt starts on an empty quiz.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrInvalidOption indicates a selected option index is out of range.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrNoSelection is returned when advancing without a pending selection.
	ErrNoSelection = errors.New("no answer selected")
	// ErrAttemptNotFound is returned when acting on a quiz not yet started.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptCompleted rejects transitions other than reset after completion.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrUnauthenticated covers invalid, malformed or expired credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound is returned when a profile lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists rejects signups reusing an email or username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials rejects logins with a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
