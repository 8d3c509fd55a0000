package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadlens-ai/leadlens/cmd/mainconfig"
	"github.com/leadlens-ai/leadlens/internal/api/router"
	"github.com/leadlens-ai/leadlens/internal/app/bootstrap"
	"github.com/leadlens-ai/leadlens/internal/archive"
	"github.com/leadlens-ai/leadlens/internal/catalog"
	appconfig "github.com/leadlens-ai/leadlens/internal/config"
	"github.com/leadlens-ai/leadlens/internal/http/handlers"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/internal/webchat"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadlens API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"deep_interview", cfg.DeepInterview,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	mx := metrics.NewInterviewMetrics(nil)
	cat := catalog.Default()

	llmClient, model, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}
	questionRouter := bootstrap.BuildQuestionRouter(cfg, cat, llmClient, model, mx, logger)

	var archiveStore *archive.PostgresStore
	var dashboardRepo *handlers.DashboardRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		archiveStore = archive.NewPostgresStore(pool)
		dashboardRepo = handlers.NewDashboardRepository(pool)
	}

	hooks := bootstrap.BuildFinishHooks(cfg, awsCfg, archiveStore, logger)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, false)

	processor, sessions, err := bootstrap.BuildProcessor(cfg, questionRouter, cat, llmClient, model, redisClient, mx, hooks, logger)
	if err != nil {
		logger.Error("failed to build interview processor", "error", err)
		os.Exit(1)
	}

	// With a queue configured, turns serialize through the dispatcher and
	// job status becomes pollable; otherwise requests hit the processor
	// directly.
	service := processor
	var jobs interview.JobRecorder
	var dispatcher *interview.Dispatcher
	if cfg.UseMemoryQueue {
		dispatcher = interview.NewDispatcher(processor, interview.NewMemoryQueue(64), logger,
			interview.WithWorkerCount(cfg.WorkerCount))
		service = dispatcher
	} else if cfg.InterviewQueueURL != "" {
		jobStore := interview.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.InterviewJobsTable, logger)
		dispatcher = interview.NewDispatcher(processor, interview.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.InterviewQueueURL), logger,
			interview.WithWorkerCount(cfg.WorkerCount),
			interview.WithJobLifecycle(jobStore))
		service = dispatcher
		jobs = jobStore
	}

	interviewHandler := interview.NewHandler(service, sessions, jobs, logger)
	webchatHandler := webchat.NewHandler(service, webchat.WidgetJS, logger)

	routerCfg := &router.Config{
		Logger:           logger,
		InterviewHandler: interviewHandler,
		WebchatHandler:   webchatHandler,
		AdminAuthSecret:  cfg.AdminJWTSecret,
		AdminCatalog:     handlers.NewAdminCatalogHandler(cat, logger),
		MetricsHandler:   promhttp.Handler(),
		StartRatePerSec:  2,
		StartRateBurst:   5,
	}
	if dashboardRepo != nil {
		routerCfg.AdminDashboard = handlers.NewAdminDashboardHandler(dashboardRepo, prometheus.DefaultGatherer, 0, logger)
	}
	if archiveStore != nil {
		routerCfg.AdminSessions = handlers.NewAdminSessionsHandler(archiveStore, logger)
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if dispatcher != nil {
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			logger.Error("dispatcher forced to shutdown", "error", err)
		}
	}

	logger.Info("server stopped")
}
