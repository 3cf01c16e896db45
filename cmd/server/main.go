package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/database"
	"github.com/dwiyanr/examflow/internal/handler"
	"github.com/dwiyanr/examflow/internal/logger"
	"github.com/dwiyanr/examflow/internal/record"
	"github.com/dwiyanr/examflow/internal/router"
	"github.com/dwiyanr/examflow/internal/service"
	"github.com/dwiyanr/examflow/internal/store"
	"github.com/dwiyanr/examflow/internal/validator"
	"github.com/dwiyanr/examflow/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Examflow")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	examService := service.NewExamService(rdb, log)
	attemptStore := store.NewRedisAttemptStore(rdb, cfg.AttemptTTL, log)
	recorder := record.NewRedisQueueRecorder(rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exam: handler.NewExamHandler(examService, attemptStore),
		WS:   handler.NewWSHandler(examService, attemptStore, recorder, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	resultWorker := worker.NewResultWorker(rdb, log)
	go resultWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	// 2. Stop the result worker and let the queue drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
