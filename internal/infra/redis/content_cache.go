package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// ContentCache caches quiz content in Redis as JSON and falls back to the store on a miss.
// Keys:
//
//	quiz:{quizID}                 quiz row
//	quiz:{quizID}:questions       ordered questions
//	question:{questionID}:options ordered options
//
// Redis failures degrade to reading the store directly.
type ContentCache struct {
	client *redis.Client
	store  app.ContentStore
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewContentCache(client *redis.Client, store app.ContentStore, ttl time.Duration) *ContentCache {
	return &ContentCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ContentCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return cached(ctx, c, "quiz:"+quizID, func(ctx context.Context) (domain.Quiz, error) {
		return c.store.GetQuiz(ctx, quizID)
	})
}

func (c *ContentCache) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return cached(ctx, c, "quiz:"+quizID+":questions", func(ctx context.Context) ([]domain.Question, error) {
		return c.store.ListQuestions(ctx, quizID)
	})
}

func (c *ContentCache) ListOptions(ctx context.Context, questionID string) ([]domain.Option, error) {
	return cached(ctx, c, "question:"+questionID+":options", func(ctx context.Context) ([]domain.Option, error) {
		return c.store.ListOptions(ctx, questionID)
	})
}

func cached[T any](ctx context.Context, c *ContentCache, key string, load func(context.Context) (T, error)) (T, error) {
	var value T
	if c.lookup(ctx, key, &value) {
		return value, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// the flight is shared, so one caller's cancellation must not fail the others
		fctx := context.WithoutCancel(ctx)

		// Re-check cache in case another goroutine filled it.
		var fresh T
		if c.lookup(fctx, key, &fresh) {
			return fresh, nil
		}

		loaded, err := load(fctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(loaded); err == nil {
			_ = c.client.Set(fctx, key, raw, c.ttlWithJitter()).Err()
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

func (c *ContentCache) lookup(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
