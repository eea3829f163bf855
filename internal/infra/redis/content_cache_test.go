package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/infra/memory"
)

func TestContentCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := &countingStore{ContentStore: sampleStore()}
	cache := NewContentCache(newClient(mr), store, time.Minute)
	ctx := context.Background()

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.TimeLimitSeconds == nil || *quiz.TimeLimitSeconds != 60 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if _, err := cache.ListOptions(ctx, "q1"); err != nil {
		t.Fatalf("list options: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected store called twice, got %d", store.calls)
	}
	if !mr.Exists("quiz:quiz-1") || !mr.Exists("question:q1:options") {
		t.Fatalf("expected redis keys to be set")
	}

	// Second round should hit cache, store not incremented.
	cached, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil || *cached.TimeLimitSeconds != 60 {
		t.Fatalf("cached quiz: %+v err=%v", cached, err)
	}
	options, err := cache.ListOptions(ctx, "q1")
	if err != nil || len(options) != 2 || !options[1].IsCorrect {
		t.Fatalf("cached options: %+v err=%v", options, err)
	}
	if store.calls != 2 {
		t.Fatalf("expected cache hit, store calls=%d", store.calls)
	}
}

func TestContentCacheFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	cache := NewContentCache(client, sampleStore(), time.Minute)
	questions, err := cache.ListQuestions(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if _, err := cache.GetQuiz(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestContentCacheLoadsDetachedFromCaller(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewContentCache(newClient(mr), strictStore{sampleStore()}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("shared load must not inherit caller cancellation: %v", err)
	}
	if quiz.ID != "quiz-1" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if !mr.Exists("quiz:quiz-1") {
		t.Fatalf("expected loaded quiz to be cached")
	}
}

// strictStore fails every read made with a finished context.
type strictStore struct {
	app.ContentStore
}

func (s strictStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quiz{}, err
	}
	return s.ContentStore.GetQuiz(ctx, quizID)
}

type countingStore struct {
	app.ContentStore
	calls int
}

func (s *countingStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.calls++
	return s.ContentStore.GetQuiz(ctx, quizID)
}

func (s *countingStore) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	s.calls++
	return s.ContentStore.ListQuestions(ctx, quizID)
}

func (s *countingStore) ListOptions(ctx context.Context, questionID string) ([]domain.Option, error) {
	s.calls++
	return s.ContentStore.ListOptions(ctx, questionID)
}

func sampleStore() *memory.StaticContentStore {
	limit := 60
	return memory.NewStaticContentStore().AddQuiz(
		domain.Quiz{ID: "quiz-1", Title: "Arithmetic", TimeLimitSeconds: &limit},
		memory.SeedQuestion{
			Question: domain.Question{ID: "q1", Text: "What is 2 + 2?"},
			Options: []domain.Option{
				{ID: "o1", Text: "3", IsCorrect: false},
				{ID: "o2", Text: "4", IsCorrect: true},
			},
		},
	)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
