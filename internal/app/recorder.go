package app

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/metrics"
)

// RecorderConfig tunes the answer-record phase of persistence.
type RecorderConfig struct {
	// Concurrency bounds parallel answer writes.
	Concurrency int
	// MaxRetries is the number of retries per answer write after the first try.
	MaxRetries      uint64
	InitialInterval time.Duration
	// CompensationTimeout bounds the write that marks a partial attempt incomplete.
	// It runs detached from the persist context, which may already be done.
	CompensationTimeout time.Duration
}

// DefaultRecorderConfig is used for zero-valued fields.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{Concurrency: 4, MaxRetries: 3, InitialInterval: 100 * time.Millisecond, CompensationTimeout: 5 * time.Second}
}

// Recorder performs the two-phase write of a finished attempt: the Attempt row
// first, then its answer records in parallel.
type Recorder struct {
	store   AttemptStore
	cfg     RecorderConfig
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(store AttemptStore, cfg RecorderConfig, log zerolog.Logger, m *metrics.Metrics) *Recorder {
	def := DefaultRecorderConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.CompensationTimeout <= 0 {
		cfg.CompensationTimeout = def.CompensationTimeout
	}
	return &Recorder{
		store:   store,
		cfg:     cfg,
		log:     log.With().Str("component", "recorder").Logger(),
		metrics: m,
	}
}

// Record writes the attempt and its answers and returns the attempt id. If the
// answer phase still fails after retries, the attempt is marked incomplete and
// the id is returned together with the error.
func (r *Recorder) Record(ctx context.Context, attempt domain.Attempt, records []domain.AnswerRecord) (string, error) {
	attemptID, err := r.store.CreateAttempt(ctx, attempt)
	if err != nil {
		r.metrics.PersistenceFailed("attempt")
		return "", &domain.PersistenceError{Op: "create attempt", Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, record := range records {
		record := record
		record.AttemptID = attemptID
		g.Go(func() error {
			return r.writeAnswer(gctx, record)
		})
	}
	if err := g.Wait(); err != nil {
		r.metrics.PersistenceFailed("answers")
		r.log.Error().Err(err).Str("attempt_id", attemptID).Msg("answer records not fully written, marking attempt incomplete")
		if cerr := r.markIncomplete(ctx, attemptID); cerr != nil {
			r.metrics.PersistenceFailed("compensation")
			r.log.Error().Err(cerr).Str("attempt_id", attemptID).Msg("mark attempt incomplete failed")
		}
		return attemptID, &domain.PersistenceError{Op: "create answer records", AttemptID: attemptID, Err: err}
	}
	return attemptID, nil
}

func (r *Recorder) markIncomplete(ctx context.Context, attemptID string) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.CompensationTimeout)
	defer cancel()
	return r.store.MarkAttemptIncomplete(cctx, attemptID)
}

func (r *Recorder) writeAnswer(ctx context.Context, record domain.AnswerRecord) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.InitialInterval

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := r.store.CreateAnswerRecord(ctx, record)
		if err != nil {
			r.log.Warn().Err(err).
				Str("attempt_id", record.AttemptID).
				Str("question_id", record.QuestionID).
				Int("try", attempt).
				Msg("answer write failed")
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, r.cfg.MaxRetries), ctx))
}
