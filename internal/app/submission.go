package app

import (
	"context"

	"github.com/rs/zerolog"
	"quiz-assessment-service/internal/domain"
)

// Submit scores and persists the session on learner request. Once any submission
// has started, further calls persist nothing; they wait for that submission and
// return its outcome.
func (s *Session) Submit(ctx context.Context) (domain.ScoreResult, error) {
	return s.submit(ctx, domain.TriggerManual)
}

func (s *Session) autoSubmit() {
	s.log.Info().Msg("time limit reached, auto-submitting")
	if _, err := s.submit(s.ctx, domain.TriggerTimer); err != nil {
		s.log.Warn().Err(err).Msg("auto-submit finished with error")
	}
}

func (s *Session) submit(ctx context.Context, trigger domain.Trigger) (domain.ScoreResult, error) {
	s.mu.Lock()
	if s.status == domain.StatusInProgress && s.closed {
		s.mu.Unlock()
		return domain.ScoreResult{}, domain.ErrSessionClosed
	}
	if s.status != domain.StatusInProgress {
		s.mu.Unlock()
		select {
		case <-s.done:
		case <-ctx.Done():
			return domain.ScoreResult{}, ctx.Err()
		}
		return s.outcome()
	}
	// remaining is frozen from here on
	s.countdown.Stop()
	remaining := s.countdown.Remaining()
	s.status = domain.StatusSubmitting
	s.trigger = trigger
	answers := s.copyAnswersLocked()
	s.broadcastLocked()
	s.mu.Unlock()

	result, err := Score(s.quiz, answers, remaining)
	if err != nil {
		s.finish(domain.StatusErrored, nil, "", err)
		return domain.ScoreResult{}, err
	}

	attempt := domain.Attempt{
		LearnerID:     s.learnerID,
		QuizID:        s.quiz.ID,
		TotalScore:    result.TotalScore,
		TotalPossible: result.TotalPossible,
		Percentage:    result.ScorePercentage,
		Completed:     true,
		Trigger:       trigger,
		AnsweredCount: len(answers),
		StartedAt:     s.startedAt,
		CompletedAt:   s.deps.clock.Now(),
	}

	// a learner disconnecting mid-write must not cut the attempt in half
	pctx, cancel := s.persistContext(ctx)
	defer cancel()
	attemptID, err := s.deps.recorder.Record(pctx, attempt, gradeAnswers(s.quiz, answers))
	if err != nil {
		s.finish(domain.StatusErrored, &result, attemptID, err)
		return result, err
	}
	s.finish(domain.StatusSubmitted, &result, attemptID, nil)
	return result, nil
}

func (s *Session) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if s.deps.persistTimeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, s.deps.persistTimeout)
}

func (s *Session) finish(status domain.Status, result *domain.ScoreResult, attemptID string, err error) {
	s.mu.Lock()
	s.status = status
	s.result = result
	s.attemptID = attemptID
	s.err = err
	trigger := s.trigger
	s.broadcastLocked()
	close(s.done)
	s.mu.Unlock()

	percentage := 0
	if result != nil {
		percentage = result.ScorePercentage
	}
	s.deps.metrics.ObserveSubmission(string(trigger), string(status), percentage)
	s.deps.metrics.SessionEnded()

	var event *zerolog.Event
	if err != nil {
		event = s.log.Error().Err(err)
	} else {
		event = s.log.Info()
	}
	event.Str("status", string(status)).
		Str("trigger", string(trigger)).
		Str("attempt_id", attemptID).
		Int("score_percentage", percentage).
		Msg("submission finished")

	s.publish(trigger, status, result, attemptID, err)
}

func (s *Session) publish(trigger domain.Trigger, status domain.Status, result *domain.ScoreResult, attemptID string, err error) {
	if s.deps.events == nil {
		return
	}
	payload := SubmittedEvent{
		AttemptID: attemptID,
		LearnerID: s.learnerID,
		QuizID:    s.quiz.ID,
		Trigger:   trigger,
		Status:    status,
	}
	if result != nil {
		payload.Result = *result
	}
	if err != nil {
		payload.Error = err.Error()
	}
	if perr := s.deps.events.Publish(EventAttemptSubmitted, payload); perr != nil {
		s.log.Warn().Err(perr).Msg("publish submission event failed")
	}
}

func (s *Session) outcome() (domain.ScoreResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.ScoreResult{}, s.err
	}
	return *s.result, s.err
}

// Wait blocks until submission finishes or ctx is done.
func (s *Session) Wait(ctx context.Context) (domain.ScoreResult, error) {
	select {
	case <-s.done:
		return s.outcome()
	case <-ctx.Done():
		return domain.ScoreResult{}, ctx.Err()
	}
}
