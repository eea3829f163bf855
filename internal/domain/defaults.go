package domain

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeLimit applies when a quiz carries neither time-limit field.
	DefaultTimeLimit = 900 * time.Second
	// DefaultMarks applies when a question carries no marks.
	DefaultMarks = 1
)

// Defaults holds the fallbacks used while resolving quiz content.
type Defaults struct {
	TimeLimit time.Duration
	Marks     int
}

// StandardDefaults returns the built-in fallbacks.
func StandardDefaults() Defaults {
	return Defaults{TimeLimit: DefaultTimeLimit, Marks: DefaultMarks}
}

// ResolveTimeLimit resolves the limit in seconds: seconds field, then minutes field, then the default.
// Non-positive values count as absent.
func (d Defaults) ResolveTimeLimit(q Quiz) int {
	switch {
	case q.TimeLimitSeconds != nil && *q.TimeLimitSeconds > 0:
		return *q.TimeLimitSeconds
	case q.TimeLimitMinutes != nil && *q.TimeLimitMinutes > 0:
		return *q.TimeLimitMinutes * 60
	}
	limit := int(d.TimeLimit / time.Second)
	if limit <= 0 {
		return int(DefaultTimeLimit / time.Second)
	}
	return limit
}

// ResolveMarks resolves the weight of a question.
func (d Defaults) ResolveMarks(q Question) int {
	if q.Marks != nil {
		return *q.Marks
	}
	if d.Marks <= 0 {
		return DefaultMarks
	}
	return d.Marks
}

// ValidateQuiz checks the invariants scoring relies on: every question has options,
// exactly one of them correct, and non-negative marks, and the quiz carries some weight.
func ValidateQuiz(q *LoadedQuiz) error {
	if len(q.Questions) == 0 {
		return ErrEmptyQuiz
	}
	for i, question := range q.Questions {
		if question.Marks < 0 {
			return fmt.Errorf("%w: question %d (%s) has negative marks %d", ErrInvalidQuiz, i+1, question.ID, question.Marks)
		}
		if len(question.Options) == 0 {
			return fmt.Errorf("%w: question %d (%s) has no options", ErrInvalidQuiz, i+1, question.ID)
		}
		correct := 0
		for _, opt := range question.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %d (%s) has %d correct options, want exactly 1", ErrInvalidQuiz, i+1, question.ID, correct)
		}
	}
	if q.TotalMarks() == 0 {
		return fmt.Errorf("%w: total marks is zero", ErrInvalidQuiz)
	}
	return nil
}
