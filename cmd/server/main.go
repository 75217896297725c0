package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/database"
	"github.com/learnhub/proctor-backend/internal/facematch"
	"github.com/learnhub/proctor-backend/internal/handler"
	"github.com/learnhub/proctor-backend/internal/logger"
	"github.com/learnhub/proctor-backend/internal/mailer"
	"github.com/learnhub/proctor-backend/internal/repository"
	"github.com/learnhub/proctor-backend/internal/router"
	"github.com/learnhub/proctor-backend/internal/service"
	"github.com/learnhub/proctor-backend/internal/validator"
	"github.com/learnhub/proctor-backend/internal/worker"
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
		Msg("Starting Proctor Backend")

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
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	requestRepo := repository.NewExamRequestRepository(pool)
	setRepo := repository.NewExamSetRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	notifier := service.NewRedisOutbox(rdb, log)
	sink := service.NewRedisSessionSink(rdb, log)
	comparator := facematch.NewHTTPComparator(cfg.FaceAPIURL, cfg.FaceAPITimeout)

	authService := service.NewAuthService(userRepo, cfg)
	requestService := service.NewExamRequestService(requestRepo, courseRepo, userRepo, notifier, cfg, log)
	setService := service.NewExamSetService(setRepo, questionRepo, courseRepo, cfg, log)
	questionService := service.NewQuestionService(questionRepo, setService, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, requestRepo, setService, courseRepo, cfg, log)
	sessionService := service.NewExamSessionService(sessionRepo, requestRepo, assignmentRepo, courseRepo, comparator, sink, cfg, log)

	mediaService, err := service.NewMediaService(cfg.UploadDir, cfg.MaxUploadBytes, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload directory")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		ExamRequest: handler.NewExamRequestHandler(requestService),
		ExamSet:     handler.NewExamSetHandler(setService),
		Question:    handler.NewQuestionHandler(questionService, mediaService),
		Assignment:  handler.NewAssignmentHandler(assignmentService),
		ExamSession: handler.NewExamSessionHandler(sessionService, mediaService),
		Monitor:     handler.NewMonitorHandler(rdb, courseRepo, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	var outMailer mailer.Mailer
	if cfg.SendgridAPIKey != "" {
		outMailer = mailer.NewSendgridMailer(cfg)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, mail goes to the log")
		outMailer = mailer.NewConsoleMailer(log)
	}

	mailWorker := worker.NewMailWorker(rdb, outMailer, log)
	go mailWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop the mail worker and wait for the outbox to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
