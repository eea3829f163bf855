package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/infra/postgres"
	pgmigrations "quiz-assessment-service/internal/infra/postgres/migrations"
	infraredis "quiz-assessment-service/internal/infra/redis"
	"quiz-assessment-service/internal/infra/retry"
)

func TestSubmitPersistsAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateAndSeed(t, ctx, pgURL)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	content := infraredis.NewContentCache(
		redisClient,
		retry.NewContentStore(postgres.NewContentStore(pool), retry.Policy{MaxRetries: 2, InitialInterval: 50 * time.Millisecond}, zerolog.Nop()),
		5*time.Minute,
	)
	sessions := infraredis.NewSessionStore(redisClient, time.Minute)
	recorder := app.NewRecorder(postgres.NewAttemptStore(db), app.RecorderConfig{}, zerolog.Nop(), nil)
	service := app.NewAssessmentService(app.NewLoader(content, domain.StandardDefaults()), sessions, app.ContextIdentity{}, recorder)

	learnerCtx := app.WithLearnerID(ctx, "u1")
	session, err := service.Start(learnerCtx, "quiz-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer service.Leave(learnerCtx, session)

	if session.Remaining() != 120 {
		t.Fatalf("expected minutes-based limit of 120s, got %d", session.Remaining())
	}
	if err := session.SetAnswer(0, 1); err != nil {
		t.Fatalf("answer q1: %v", err)
	}
	if err := session.SetAnswer(1, 0); err != nil {
		t.Fatalf("answer q2: %v", err)
	}

	result, err := session.Submit(learnerCtx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TotalScore != 1 || result.TotalPossible != 3 || result.ScorePercentage != 33 {
		t.Fatalf("unexpected result %+v", result)
	}

	var completed bool
	var answered int
	if err := db.NewSelect().
		Table("attempts").
		Column("completed", "answered_count").
		Where("id = ?", session.AttemptID()).
		Scan(ctx, &completed, &answered); err != nil {
		t.Fatalf("read attempt: %v", err)
	}
	if !completed || answered != 2 {
		t.Fatalf("unexpected attempt completed=%v answered=%d", completed, answered)
	}

	records, err := db.NewSelect().Table("answer_records").Where("attempt_id = ?", session.AttemptID()).Count(ctx)
	if err != nil {
		t.Fatalf("count records: %v", err)
	}
	if records != 2 {
		t.Fatalf("expected 2 answer records, got %d", records)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	statements := []string{
		`INSERT INTO quizzes (id, title, time_limit_minutes) VALUES ('quiz-1', 'Arithmetic', 2)`,
		`INSERT INTO questions (id, quiz_id, text, marks, position) VALUES
			('q1', 'quiz-1', 'What is 2 + 2?', NULL, 1),
			('q2', 'quiz-1', 'What is 3 * 3?', 2, 2)`,
		`INSERT INTO options (id, question_id, text, is_correct, position) VALUES
			('o1', 'q1', '3', FALSE, 1),
			('o2', 'q1', '4', TRUE, 2),
			('o3', 'q2', '6', FALSE, 1),
			('o4', 'q2', '9', TRUE, 2)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
