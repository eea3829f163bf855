package memory

import (
	"context"
	"testing"

	"quiz-assessment-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()

	id, err := store.CreateAttempt(ctx, domain.Attempt{LearnerID: "u1", QuizID: "quiz-1", Completed: true})
	if err != nil || id == "" {
		t.Fatalf("create attempt: id=%q err=%v", id, err)
	}

	record := domain.AnswerRecord{AttemptID: id, QuestionID: "q1", SelectedOptionID: "o2", IsCorrect: true}
	if err := store.CreateAnswerRecord(ctx, record); err != nil {
		t.Fatalf("create record: %v", err)
	}
	// retried write is ignored
	if err := store.CreateAnswerRecord(ctx, record); err != nil {
		t.Fatalf("repeat record: %v", err)
	}
	if got := store.Records(id); len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}

	if err := store.CreateAnswerRecord(ctx, domain.AnswerRecord{AttemptID: "missing", QuestionID: "q1"}); err == nil {
		t.Fatalf("expected error for unknown attempt")
	}

	if err := store.MarkAttemptIncomplete(ctx, id); err != nil {
		t.Fatalf("mark incomplete: %v", err)
	}
	attempts := store.Attempts()
	if len(attempts) != 1 || attempts[0].Completed {
		t.Fatalf("expected one incomplete attempt, got %+v", attempts)
	}
}
