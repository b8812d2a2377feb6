package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	pgloader "quiz-attempt-service/internal/infra/postgres"
	redisinfra "quiz-attempt-service/internal/infra/redis"
	"quiz-attempt-service/internal/session"
	"quiz-attempt-service/internal/storage"
	transport "quiz-attempt-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
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

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	quizzes := memory.NewQuizRepository(loader, quizTTL)

	var kv storage.KV = memory.NewKV()
	if redisClient != nil {
		resultTTL := config.TTLDuration(cfg.Redis.TTL, 0)
		kv = redisinfra.NewKV(redisClient, resultTTL)
	}
	var storeOpts []storage.Option
	if cfg.Storage.MaxResults > 0 {
		storeOpts = append(storeOpts, storage.WithMaxResults(cfg.Storage.MaxResults))
	}
	results := storage.New(kv, logger, storeOpts...)

	secret := cfg.Session.Secret
	if secret == "" {
		secret = "default-secret-key"
		logger.Warn("session secret not configured, using insecure default")
	}
	sessions := session.NewManager(secret, config.TTLDuration(cfg.Session.TTL, 24*time.Hour))

	attempts := app.NewAttemptService(quizzes, results, logger)
	auth := app.NewAuthService(memory.NewUserRepository(), sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(attempts, auth, logger).ServeWS)
	transport.NewAPIHandler(auth, attempts, quizzes, results, logger).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz attempt service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides demo content when no Postgres is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "General Knowledge",
			Questions: []domain.Question{
				{
					ID:            1,
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4", "5"},
					CorrectAnswer: 1,
				},
				{
					ID:            2,
					Prompt:        "What is the capital of France?",
					Options:       []string{"London", "Paris", "Berlin"},
					CorrectAnswer: 1,
				},
				{
					ID:            3,
					Prompt:        "Which planet is largest?",
					Options:       []string{"Earth", "Mars", "Jupiter"},
					CorrectAnswer: 2,
				},
			},
		},
	}
}
