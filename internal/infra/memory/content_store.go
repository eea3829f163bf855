package memory

import (
	"context"
	"sync"

	"quiz-assessment-service/internal/domain"
)

// SeedQuestion is a question together with its options, used to populate a StaticContentStore.
type SeedQuestion struct {
	domain.Question
	Options []domain.Option
}

// StaticContentStore is a simple content store backed by in-memory maps (useful for tests/demos).
type StaticContentStore struct {
	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	questions map[string][]domain.Question
	options   map[string][]domain.Option
}

func NewStaticContentStore() *StaticContentStore {
	return &StaticContentStore{
		quizzes:   make(map[string]domain.Quiz),
		questions: make(map[string][]domain.Question),
		options:   make(map[string][]domain.Option),
	}
}

// AddQuiz stores a quiz with its questions in the given order. Foreign keys and
// positions are filled in from the nesting.
func (s *StaticContentStore) AddQuiz(quiz domain.Quiz, questions ...SeedQuestion) *StaticContentStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quizzes[quiz.ID] = quiz
	list := make([]domain.Question, 0, len(questions))
	for i, seed := range questions {
		q := seed.Question
		q.QuizID = quiz.ID
		q.Position = i + 1
		list = append(list, q)

		opts := make([]domain.Option, 0, len(seed.Options))
		for j, opt := range seed.Options {
			opt.QuestionID = q.ID
			opt.Position = j + 1
			opts = append(opts, opt)
		}
		s.options[q.ID] = opts
	}
	s.questions[quiz.ID] = list
	return s
}

func (s *StaticContentStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if quiz, ok := s.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *StaticContentStore) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return nil, domain.ErrQuizNotFound
	}
	return append([]domain.Question(nil), s.questions[quizID]...), nil
}

func (s *StaticContentStore) ListOptions(_ context.Context, questionID string) ([]domain.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Option(nil), s.options[questionID]...), nil
}
