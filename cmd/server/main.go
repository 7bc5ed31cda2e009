package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/database"
	"github.com/neuronalfit/assessment-backend/internal/handler"
	"github.com/neuronalfit/assessment-backend/internal/logger"
	"github.com/neuronalfit/assessment-backend/internal/monitor"
	"github.com/neuronalfit/assessment-backend/internal/questionnaire"
	"github.com/neuronalfit/assessment-backend/internal/repository"
	"github.com/neuronalfit/assessment-backend/internal/router"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/validator"
	"github.com/neuronalfit/assessment-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting NeuronalFit assessment backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Questionnaire ────────────────────────────────────────────
	catalog, err := questionnaire.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load questionnaire catalog")
	}

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
	studentRepo := repository.NewStudentRepository(pool)
	evaluatorRepo := repository.NewEvaluatorRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	evaluationRepo := repository.NewEvaluationRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	// Responses reference questions by id; keep the table in step with the catalog.
	synced, err := questionRepo.Sync(ctx, catalog.Rows())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sync questionnaire")
	}
	log.Info().Int64("questions", synced).Msg("Questionnaire synced")

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	evaluatorService := service.NewEvaluatorService(evaluatorRepo, authService, log)
	studentService := service.NewStudentService(studentRepo)
	sessionService := service.NewSessionService(sessionRepo, studentRepo, responseRepo, catalog, rdb, log)
	analysisService := service.NewAnalysisService(sessionRepo, studentRepo, responseRepo, evaluationRepo, catalog, rdb, cfg.ReportCacheTTL, log)

	// ─── System Monitor ───────────────────────────────────────────────
	mon := monitor.New(cfg.MonitorInterval, log,
		[]monitor.Probe{monitor.NewPostgresProbe(pool), monitor.NewRedisProbe(rdb)},
		monitor.WithTables(statsRepo, repository.MonitoredTables...),
		monitor.WithSlowThreshold(cfg.MonitorSlowThreshold),
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(evaluatorService),
		Student:       handler.NewStudentHandler(studentService, sessionService),
		Session:       handler.NewSessionHandler(sessionService),
		Analysis:      handler.NewAnalysisHandler(analysisService),
		Questionnaire: handler.NewQuestionnaireHandler(catalog),
		System:        handler.NewSystemHandler(mon),
		WS:            handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	autosaveWorker := worker.NewAutosaveWorker(responseRepo, rdb, log)
	scoringWorker := worker.NewScoringWorker(analysisService, evaluationRepo, rdb, log)

	workers.Go(func() { autosaveWorker.Start(workerCtx) })
	workers.Go(func() { scoringWorker.Start(workerCtx) })
	workers.Go(func() { mon.Run(workerCtx) })

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
