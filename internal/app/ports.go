package app

import (
	"context"

	"quiz-assessment-service/internal/domain"
)

// ContentStore reads quiz content. Implementations return domain.ErrQuizNotFound
// for unknown quizzes and own any retry of transient failures.
type ContentStore interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// ListQuestions returns the quiz's questions in display order.
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	// ListOptions returns the question's options in display order.
	ListOptions(ctx context.Context, questionID string) ([]domain.Option, error)
}

// AttemptStore persists finished attempts.
type AttemptStore interface {
	// CreateAttempt stores the attempt and returns its generated id.
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (string, error)
	// CreateAnswerRecord must be idempotent on (attempt id, question id).
	CreateAnswerRecord(ctx context.Context, record domain.AnswerRecord) error
	// MarkAttemptIncomplete clears the completed flag after a failed answer write.
	MarkAttemptIncomplete(ctx context.Context, attemptID string) error
}

// SessionRepository abstracts where active sessions live (in-memory, Redis, etc).
// Each learner has at most one active session.
type SessionRepository interface {
	// Put stores the session and returns the one it replaced, if any.
	Put(learnerID string, session *Session) *Session
	Get(learnerID string) (*Session, bool)
	// Delete removes the learner's session only if it is still session.
	Delete(learnerID string, session *Session)
}

// EventPublisher announces finished attempts to other services.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// SubmittedEvent is published once per finished submission.
type SubmittedEvent struct {
	AttemptID string             `json:"attemptId,omitempty"`
	LearnerID string             `json:"learnerId"`
	QuizID    string             `json:"quizId"`
	Trigger   domain.Trigger     `json:"trigger"`
	Status    domain.Status      `json:"status"`
	Result    domain.ScoreResult `json:"result"`
	Error     string             `json:"error,omitempty"`
}

// EventAttemptSubmitted is the routing key of SubmittedEvent.
const EventAttemptSubmitted = "attempt.submitted"
