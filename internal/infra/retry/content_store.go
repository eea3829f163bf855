package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// Policy controls how transient content-store failures are retried.
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// ContentStore retries transient failures of the wrapped store with
// exponential backoff. Unknown quizzes fail immediately.
type ContentStore struct {
	next   app.ContentStore
	policy Policy
	log    zerolog.Logger
}

func NewContentStore(next app.ContentStore, policy Policy, log zerolog.Logger) *ContentStore {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 100 * time.Millisecond
	}
	return &ContentStore{
		next:   next,
		policy: policy,
		log:    log.With().Str("component", "content-retry").Logger(),
	}
}

func (s *ContentStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.do(ctx, "get quiz", func() (err error) {
		quiz, err = s.next.GetQuiz(ctx, quizID)
		return err
	})
	return quiz, err
}

func (s *ContentStore) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var questions []domain.Question
	err := s.do(ctx, "list questions", func() (err error) {
		questions, err = s.next.ListQuestions(ctx, quizID)
		return err
	})
	return questions, err
}

func (s *ContentStore) ListOptions(ctx context.Context, questionID string) ([]domain.Option, error) {
	var options []domain.Option
	err := s.do(ctx, "list options", func() (err error) {
		options, err = s.next.ListOptions(ctx, questionID)
		return err
	})
	return options, err
}

func (s *ContentStore) do(ctx context.Context, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.policy.InitialInterval
	if s.policy.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = s.policy.MaxElapsedTime
	}

	try := 0
	err := backoff.Retry(func() error {
		try++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrQuizNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		s.log.Warn().Err(err).Str("op", op).Int("try", try).Msg("content read failed")
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, s.policy.MaxRetries), ctx))

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
