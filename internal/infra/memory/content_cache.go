package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// ContentCache caches quiz content with TTL to avoid repeated DB hits.
// Errors are never cached.
type ContentCache struct {
	store app.ContentStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedEntry
}

type cachedEntry struct {
	value     any
	expiresAt time.Time
}

func NewContentCache(store app.ContentStore, ttl time.Duration) *ContentCache {
	return &ContentCache{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedEntry),
	}
}

func (c *ContentCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return cached(ctx, c, "quiz:"+quizID, func(ctx context.Context) (domain.Quiz, error) {
		return c.store.GetQuiz(ctx, quizID)
	})
}

func (c *ContentCache) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return cached(ctx, c, "questions:"+quizID, func(ctx context.Context) ([]domain.Question, error) {
		return c.store.ListQuestions(ctx, quizID)
	})
}

func (c *ContentCache) ListOptions(ctx context.Context, questionID string) ([]domain.Option, error) {
	return cached(ctx, c, "options:"+questionID, func(ctx context.Context) ([]domain.Option, error) {
		return c.store.ListOptions(ctx, questionID)
	})
}

func cached[T any](ctx context.Context, c *ContentCache, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		return v.(T), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		// the flight is shared, so one caller's cancellation must not fail the others
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedEntry{value: v, expiresAt: c.clock().Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (c *ContentCache) lookup(key string) (any, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		return entry.value, true
	}
	return nil, false
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
