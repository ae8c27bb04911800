package interview

import "errors"

var (
	// ErrSessionInProgress is returned by Start while a session is running.
	ErrSessionInProgress = errors.New("interview session already in progress")
	// ErrNotListening is returned by SubmitCurrentAnswerNow outside of the
	// listening phase.
	ErrNotListening = errors.New("interview session is not listening for an answer")
	// ErrNoQuestions is returned by Start when no questions are configured.
	ErrNoQuestions = errors.New("interview session has no questions")
)
