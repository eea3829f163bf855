package app

import "quiz-assessment-service/internal/domain"

// SetAnswer records the selected option for a question, replacing any earlier choice.
func (s *Session) SetAnswer(questionIndex, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return err
	}
	if questionIndex < 0 || questionIndex >= len(s.quiz.Questions) {
		return domain.ErrInvalidIndex
	}
	if optionIndex < 0 || optionIndex >= len(s.quiz.Questions[questionIndex].Options) {
		return domain.ErrInvalidIndex
	}
	s.answers[questionIndex] = optionIndex
	s.broadcastLocked()
	return nil
}

// Answer returns the selected option index for a question.
func (s *Session) Answer(questionIndex int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	option, ok := s.answers[questionIndex]
	return option, ok
}

// Unanswered counts questions with no selection. Informational only.
func (s *Session) Unanswered() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quiz.Questions) - len(s.answers)
}

// Answers returns a copy of the question-index to option-index map.
func (s *Session) Answers() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyAnswersLocked()
}

func (s *Session) copyAnswersLocked() map[int]int {
	out := make(map[int]int, len(s.answers))
	for q, o := range s.answers {
		out[q] = o
	}
	return out
}
