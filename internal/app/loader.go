package app

import (
	"context"
	"fmt"

	"quiz-assessment-service/internal/domain"
)

// Loader fetches quiz content step by step and resolves it into a LoadedQuiz.
type Loader struct {
	content  ContentStore
	defaults domain.Defaults
}

func NewLoader(content ContentStore, defaults domain.Defaults) *Loader {
	return &Loader{content: content, defaults: defaults}
}

// Load fetches the quiz, then its questions, then each question's options.
// Defaults are applied here and nowhere else.
func (l *Loader) Load(ctx context.Context, quizID string) (*domain.LoadedQuiz, error) {
	quiz, err := l.content.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := l.content.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}

	loaded := &domain.LoadedQuiz{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		TimeLimit:   l.defaults.ResolveTimeLimit(quiz),
		Questions:   make([]domain.LoadedQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		options, err := l.content.ListOptions(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("list options for %s: %w", q.ID, err)
		}
		loaded.Questions = append(loaded.Questions, domain.LoadedQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Marks:   l.defaults.ResolveMarks(q),
			Options: options,
		})
	}

	if err := domain.ValidateQuiz(loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}
