package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quiz-assessment-service/internal/domain"
)

type attemptModel struct {
	bun.BaseModel `bun:"table:attempts"`

	ID            string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	LearnerID     string    `bun:"learner_id,notnull"`
	QuizID        string    `bun:"quiz_id,notnull"`
	TotalScore    int       `bun:"total_score,notnull"`
	TotalPossible int       `bun:"total_possible,notnull"`
	Percentage    int       `bun:"percentage,notnull"`
	Completed     bool      `bun:"completed,notnull"`
	Trigger       string    `bun:"trigger,notnull"`
	AnsweredCount int       `bun:"answered_count,notnull"`
	StartedAt     time.Time `bun:"started_at,notnull"`
	CompletedAt   time.Time `bun:"completed_at,notnull"`
}

type answerRecordModel struct {
	bun.BaseModel `bun:"table:answer_records"`

	AttemptID        string `bun:"attempt_id,pk,type:uuid"`
	QuestionID       string `bun:"question_id,pk"`
	SelectedOptionID string `bun:"selected_option_id,notnull"`
	IsCorrect        bool   `bun:"is_correct,notnull"`
}

// AttemptStore writes attempts and answer records through bun.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) (string, error) {
	model := attemptModel{
		LearnerID:     attempt.LearnerID,
		QuizID:        attempt.QuizID,
		TotalScore:    attempt.TotalScore,
		TotalPossible: attempt.TotalPossible,
		Percentage:    attempt.Percentage,
		Completed:     attempt.Completed,
		Trigger:       string(attempt.Trigger),
		AnsweredCount: attempt.AnsweredCount,
		StartedAt:     attempt.StartedAt,
		CompletedAt:   attempt.CompletedAt,
	}
	_, err := s.db.NewInsert().
		Model(&model).
		ExcludeColumn("id").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("insert attempt: %w", err)
	}
	return model.ID, nil
}

// CreateAnswerRecord ignores a row that already exists, so retries are safe.
func (s *AttemptStore) CreateAnswerRecord(ctx context.Context, record domain.AnswerRecord) error {
	model := answerRecordModel{
		AttemptID:        record.AttemptID,
		QuestionID:       record.QuestionID,
		SelectedOptionID: record.SelectedOptionID,
		IsCorrect:        record.IsCorrect,
	}
	_, err := s.db.NewInsert().
		Model(&model).
		On("CONFLICT (attempt_id, question_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert answer record: %w", err)
	}
	return nil
}

func (s *AttemptStore) MarkAttemptIncomplete(ctx context.Context, attemptID string) error {
	_, err := s.db.NewUpdate().
		Model((*attemptModel)(nil)).
		Set("completed = ?", false).
		Where("id = ?", attemptID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark attempt incomplete: %w", err)
	}
	return nil
}
