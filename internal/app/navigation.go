package app

import "quiz-assessment-service/internal/domain"

// CurrentIndex is the zero-based index of the question on screen.
func (s *Session) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Next advances one question unless already at the last. It reports whether the index moved.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeLocked() != nil || s.index >= len(s.quiz.Questions)-1 {
		return false
	}
	s.index++
	s.broadcastLocked()
	return true
}

// Previous retreats one question unless already at the first.
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeLocked() != nil || s.index == 0 {
		return false
	}
	s.index--
	s.broadcastLocked()
	return true
}

// JumpTo moves to any question, answered or not.
func (s *Session) JumpTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.quiz.Questions) {
		return domain.ErrInvalidIndex
	}
	if index != s.index {
		s.index = index
		s.broadcastLocked()
	}
	return nil
}
