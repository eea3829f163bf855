package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/domain"
	amqppub "quiz-assessment-service/internal/infra/amqp"
	"quiz-assessment-service/internal/infra/memory"
	"quiz-assessment-service/internal/infra/postgres"
	rediscache "quiz-assessment-service/internal/infra/redis"
	"quiz-assessment-service/internal/infra/retry"
	"quiz-assessment-service/internal/logger"
	"quiz-assessment-service/internal/metrics"
	transport "quiz-assessment-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	retryPolicy := retry.Policy{
		MaxRetries:      3,
		InitialInterval: config.TTLDuration(cfg.Retry.InitialInterval, 100*time.Millisecond),
	}
	if cfg.Retry.MaxAttempts > 0 {
		retryPolicy.MaxRetries = uint64(cfg.Retry.MaxAttempts - 1)
	}

	var content app.ContentStore = sampleContent()
	var attempts app.AttemptStore = memory.NewAttemptStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		content = retry.NewContentStore(postgres.NewContentStore(pool), retryPolicy, log)

		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()
		attempts = postgres.NewAttemptStore(db)
	} else {
		log.Warn().Msg("postgres not configured, serving sample quizzes and keeping attempts in memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var store app.SessionRepository
	if redisClient != nil {
		content = rediscache.NewContentCache(redisClient, content, quizTTL)
		store = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		content = memory.NewContentCache(content, quizTTL)
		store = memory.NewSessionStore()
	}

	defaults := domain.StandardDefaults()
	defaults.TimeLimit = config.TTLDuration(cfg.Quiz.DefaultTimeLimit, domain.DefaultTimeLimit)
	if cfg.Quiz.DefaultMarks > 0 {
		defaults.Marks = cfg.Quiz.DefaultMarks
	}

	recorder := app.NewRecorder(attempts, app.RecorderConfig{
		Concurrency:     cfg.Engine.AnswerWriteConcurrency,
		MaxRetries:      retryPolicy.MaxRetries,
		InitialInterval: retryPolicy.InitialInterval,
	}, log, m)

	opts := []app.Option{
		app.WithMetrics(m),
		app.WithLogger(log),
		app.WithPersistTimeout(config.TTLDuration(cfg.Engine.PersistTimeout, 30*time.Second)),
	}
	if cfg.AMQP.URL != "" {
		publisher, err := amqppub.NewEventPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		opts = append(opts, app.WithEvents(publisher))
	}

	service := app.NewAssessmentService(app.NewLoader(content, defaults), store, app.ContextIdentity{}, recorder, opts...)
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting assessment service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleContent is served when no database is configured.
func sampleContent() *memory.StaticContentStore {
	limit := 5
	return memory.NewStaticContentStore().AddQuiz(
		domain.Quiz{ID: "quiz-1", Title: "Arithmetic warm-up", TimeLimitMinutes: &limit},
		memory.SeedQuestion{
			Question: domain.Question{ID: "q1", Text: "What is 2 + 2?"},
			Options: []domain.Option{
				{ID: "o1", Text: "3", IsCorrect: false},
				{ID: "o2", Text: "4", IsCorrect: true},
				{ID: "o3", Text: "5", IsCorrect: false},
			},
		},
		memory.SeedQuestion{
			Question: domain.Question{ID: "q2", Text: "What is 6 / 3?"},
			Options: []domain.Option{
				{ID: "o4", Text: "2", IsCorrect: true},
				{ID: "o5", Text: "3", IsCorrect: false},
			},
		},
	)
}
