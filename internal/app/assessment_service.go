package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"quiz-assessment-service/internal/clock"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/metrics"
)

// AssessmentService contains the quiz-taking use cases.
type AssessmentService struct {
	loader   *Loader
	sessions SessionRepository
	identity IdentityProvider
	recorder *Recorder

	clock          clock.Clock
	events         EventPublisher
	metrics        *metrics.Metrics
	log            zerolog.Logger
	persistTimeout time.Duration
}

// Option customizes an AssessmentService.
type Option func(*AssessmentService)

// WithClock swaps the wall clock, e.g. for a clock.Fake in tests.
func WithClock(c clock.Clock) Option {
	return func(s *AssessmentService) { s.clock = c }
}

func WithEvents(p EventPublisher) Option {
	return func(s *AssessmentService) { s.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *AssessmentService) { s.metrics = m }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *AssessmentService) { s.log = log }
}

// WithPersistTimeout bounds the attempt and answer writes of one submission.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *AssessmentService) { s.persistTimeout = d }
}

func NewAssessmentService(loader *Loader, sessions SessionRepository, identity IdentityProvider, recorder *Recorder, opts ...Option) *AssessmentService {
	s := &AssessmentService{
		loader:   loader,
		sessions: sessions,
		identity: identity,
		recorder: recorder,
		clock:    clock.New(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "assessment").Logger()
	return s
}

// Start loads the quiz and begins a timed session for the current learner.
// A session the learner already had is abandoned. Load errors leave no session behind.
func (s *AssessmentService) Start(ctx context.Context, quizID string) (*Session, error) {
	learnerID, err := s.identity.CurrentLearner(ctx)
	if err != nil {
		return nil, err
	}

	quiz, err := s.loader.Load(ctx, quizID)
	if err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID).Str("learner_id", learnerID).Msg("quiz load failed")
		return nil, err
	}

	session := newSession(ctx, learnerID, quiz, sessionDeps{
		clock:          s.clock,
		recorder:       s.recorder,
		events:         s.events,
		metrics:        s.metrics,
		log:            s.log,
		persistTimeout: s.persistTimeout,
	})
	if previous := s.sessions.Put(learnerID, session); previous != nil {
		previous.Close()
	}
	session.start()
	return session, nil
}

// Current returns the learner's active session.
func (s *AssessmentService) Current(ctx context.Context) (*Session, error) {
	learnerID, err := s.identity.CurrentLearner(ctx)
	if err != nil {
		return nil, err
	}
	session, ok := s.sessions.Get(learnerID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Submit submits the learner's active session.
func (s *AssessmentService) Submit(ctx context.Context) (domain.ScoreResult, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return session.Submit(ctx)
}

// Leave tears the session down and drops it from the registry. Nothing is
// persisted for a session that was never submitted.
func (s *AssessmentService) Leave(_ context.Context, session *Session) {
	if session == nil {
		return
	}
	session.Close()
	s.sessions.Delete(session.LearnerID(), session)
}
