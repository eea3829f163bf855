package app

import (
	"context"

	"quiz-assessment-service/internal/domain"
)

// IdentityProvider supplies the current learner's identifier.
type IdentityProvider interface {
	CurrentLearner(ctx context.Context) (string, error)
}

type learnerKey struct{}

// WithLearnerID attaches an authenticated learner id to ctx.
func WithLearnerID(ctx context.Context, learnerID string) context.Context {
	return context.WithValue(ctx, learnerKey{}, learnerID)
}

// ContextIdentity reads the learner set by WithLearnerID.
type ContextIdentity struct{}

func (ContextIdentity) CurrentLearner(ctx context.Context) (string, error) {
	id, _ := ctx.Value(learnerKey{}).(string)
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}
