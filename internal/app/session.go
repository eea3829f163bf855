package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"quiz-assessment-service/internal/clock"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/metrics"
)

// sessionDeps are the collaborators a session borrows from the service.
type sessionDeps struct {
	clock          clock.Clock
	recorder       *Recorder
	events         EventPublisher
	metrics        *metrics.Metrics
	log            zerolog.Logger
	persistTimeout time.Duration
}

// Session is the in-memory state of one learner's run through a quiz.
// All mutations are serialized by mu; the countdown is the only autonomous actor.
type Session struct {
	id        string
	learnerID string
	quiz      *domain.LoadedQuiz
	startedAt time.Time
	// ctx carries request-scoped values for timer-driven submission; it is never cancelled.
	ctx       context.Context
	deps      sessionDeps
	log       zerolog.Logger
	countdown *Countdown
	done      chan struct{}

	mu          sync.RWMutex
	index       int
	answers     map[int]int
	status      domain.Status
	closed      bool
	trigger     domain.Trigger
	attemptID   string
	result      *domain.ScoreResult
	err         error
	subscribers map[chan domain.SessionView]struct{}
}

func newSession(ctx context.Context, learnerID string, quiz *domain.LoadedQuiz, deps sessionDeps) *Session {
	s := &Session{
		id:          uuid.NewString(),
		learnerID:   learnerID,
		quiz:        quiz,
		startedAt:   deps.clock.Now(),
		ctx:         context.WithoutCancel(ctx),
		deps:        deps,
		done:        make(chan struct{}),
		answers:     make(map[int]int),
		status:      domain.StatusLoading,
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
	s.log = deps.log.With().
		Str("session_id", s.id).
		Str("learner_id", learnerID).
		Str("quiz_id", quiz.ID).
		Logger()
	s.countdown = NewCountdown(deps.clock, quiz.TimeLimit, s.onTick, s.autoSubmit)
	return s
}

// start moves the session to InProgress and starts the countdown.
func (s *Session) start() {
	s.mu.Lock()
	s.status = domain.StatusInProgress
	s.mu.Unlock()

	s.countdown.Start()
	s.deps.metrics.SessionStarted()
	s.log.Info().Int("time_limit", s.quiz.TimeLimit).Int("questions", len(s.quiz.Questions)).Msg("session started")
}

func (s *Session) ID() string        { return s.id }
func (s *Session) LearnerID() string { return s.learnerID }
func (s *Session) QuizID() string    { return s.quiz.ID }

// Quiz returns the loaded content the session runs against.
func (s *Session) Quiz() *domain.LoadedQuiz { return s.quiz }

// Remaining reports the seconds left on the countdown.
func (s *Session) Remaining() int { return s.countdown.Remaining() }

func (s *Session) Status() domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Result returns the locally computed score once submission finished, even
// when persisting it failed.
func (s *Session) Result() (domain.ScoreResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.ScoreResult{}, false
	}
	return *s.result, true
}

// Err returns the error that moved the session to Errored, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// AttemptID is the id assigned by the attempt store, empty until the attempt is written.
func (s *Session) AttemptID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attemptID
}

// Done is closed when submission finishes, successfully or not.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close tears the session down. An unsubmitted session is abandoned without
// persisting anything; a submission already under way is left to finish.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.status == domain.StatusInProgress || s.status == domain.StatusLoading {
		s.countdown.Stop()
		s.deps.metrics.SessionEnded()
		s.log.Info().Int("remaining", s.countdown.Remaining()).Msg("session abandoned")
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// View snapshots the session for presentation.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Subscribe returns a channel receiving a view after every change and tick.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// activeLocked reports whether learner input may still change the session.
func (s *Session) activeLocked() error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.status != domain.StatusInProgress {
		return domain.ErrSessionSubmitted
	}
	return nil
}

func (s *Session) onTick(int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.broadcastLocked()
}

func (s *Session) broadcastLocked() {
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// drop the stale view so a slow reader never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (s *Session) viewLocked() domain.SessionView {
	question := s.quiz.Questions[s.index]
	options := make([]domain.OptionView, 0, len(question.Options))
	for _, opt := range question.Options {
		options = append(options, domain.OptionView{ID: opt.ID, Text: opt.Text})
	}

	view := domain.SessionView{
		QuizID: s.quiz.ID,
		Title:  s.quiz.Title,
		Index:  s.index,
		Total:  len(s.quiz.Questions),
		Question: domain.QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Marks:   question.Marks,
			Options: options,
		},
		Unanswered:       len(s.quiz.Questions) - len(s.answers),
		RemainingSeconds: s.countdown.Remaining(),
		Status:           s.status,
		UpdatedAt:        s.deps.clock.Now(),
	}
	if selected, ok := s.answers[s.index]; ok {
		view.Selected = &selected
	}
	if s.result != nil {
		result := *s.result
		view.Result = &result
	}
	if s.err != nil {
		view.Error = s.err.Error()
	}
	return view
}
