package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"quiz-assessment-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
	order    []string
	records  map[string]map[string]domain.AnswerRecord
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
		records:  make(map[string]map[string]domain.AnswerRecord),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = uuid.NewString()
	s.attempts[attempt.ID] = attempt
	s.order = append(s.order, attempt.ID)
	return attempt.ID, nil
}

// CreateAnswerRecord ignores a repeated (attempt, question) pair.
func (s *AttemptStore) CreateAnswerRecord(_ context.Context, record domain.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[record.AttemptID]; !ok {
		return fmt.Errorf("attempt %s does not exist", record.AttemptID)
	}
	byQuestion, ok := s.records[record.AttemptID]
	if !ok {
		byQuestion = make(map[string]domain.AnswerRecord)
		s.records[record.AttemptID] = byQuestion
	}
	if _, exists := byQuestion[record.QuestionID]; !exists {
		byQuestion[record.QuestionID] = record
	}
	return nil
}

func (s *AttemptStore) MarkAttemptIncomplete(_ context.Context, attemptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return fmt.Errorf("attempt %s does not exist", attemptID)
	}
	attempt.Completed = false
	s.attempts[attemptID] = attempt
	return nil
}

// Attempts returns every stored attempt in creation order.
func (s *AttemptStore) Attempts() []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.attempts[id])
	}
	return out
}

// Records returns the answer records of an attempt sorted by question id.
func (s *AttemptStore) Records(attemptID string) []domain.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AnswerRecord, 0, len(s.records[attemptID]))
	for _, record := range s.records[attemptID] {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
