package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	stdlog "github.com/rs/zerolog/log"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/database"
	"github.com/stemsi/coursemart-backend/internal/handler"
	"github.com/stemsi/coursemart-backend/internal/logger"
	"github.com/stemsi/coursemart-backend/internal/middleware"
	"github.com/stemsi/coursemart-backend/internal/repository"
	"github.com/stemsi/coursemart-backend/internal/router"
	"github.com/stemsi/coursemart-backend/internal/service"
	"github.com/stemsi/coursemart-backend/internal/validator"
	"github.com/stemsi/coursemart-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("cascade_attempts", cfg.CascadeAttempts).
		Msg("Starting CourseMart quiz service")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	quizRepo := repository.NewQuizRepository(pool)
	attemptRepo := repository.NewQuizAttemptRepository(pool)
	resultRepo := repository.NewQuizResultRepository(pool)
	paperCache := repository.NewQuizPaperCache(rdb, cfg.QuizCacheTTL)
	eventBus := repository.NewAttemptEventBus(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	quizService := service.NewQuizService(quizRepo, attemptRepo, resultRepo, paperCache, cfg.CascadeAttempts, log)
	attemptService := service.NewAttemptService(quizRepo, attemptRepo, paperCache, eventBus, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Quiz:     handler.NewQuizHandler(quizService, log),
		Question: handler.NewQuestionHandler(quizService, log),
		Attempt:  handler.NewAttemptHandler(attemptService, log),
		Live:     handler.NewLiveHandler(quizService, eventBus, log, cfg.AllowedOrigins),
	}
	submitLimiter := middleware.NewSubmitLimiter(rdb, cfg.SubmitRateLimit, time.Minute, log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	resultsWorker := worker.NewResultsWorker(rdb, resultRepo, cfg.ResultsBatchSize, cfg.ResultsBatchTimeout, log)
	go func() {
		defer close(workerDone)
		resultsWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, submitLimiter, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the results worker and let it flush its last batch.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Results worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
