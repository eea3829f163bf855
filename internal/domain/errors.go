package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptyQuiz is returned when a quiz has no questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrInvalidQuiz marks malformed quiz content (zero total weight, bad correct flags).
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("persistence failed")
	// ErrSessionNotFound is returned when the learner has no active session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionSubmitted rejects mutations once submission has begun.
	ErrSessionSubmitted = errors.New("quiz session already submitted")
	// ErrSessionClosed rejects calls on a session that was abandoned.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrInvalidIndex indicates a question or option index out of range.
	ErrInvalidIndex = errors.New("index out of range")
	// ErrUnauthenticated is returned when no learner identity is available.
	ErrUnauthenticated = errors.New("learner identity missing")
)

// PersistenceError wraps a failed Attempt or AnswerRecord write.
type PersistenceError struct {
	Op        string
	AttemptID string
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.AttemptID != "" {
		return fmt.Sprintf("%s (attempt %s): %v", e.Op, e.AttemptID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
