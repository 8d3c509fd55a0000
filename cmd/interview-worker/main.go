// Command interview-worker drains the interview job queue without serving
// HTTP. Deploy it alongside the API when turn processing should scale
// independently; results land in the DynamoDB job store for polling clients.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/leadlens-ai/leadlens/cmd/mainconfig"
	"github.com/leadlens-ai/leadlens/internal/app/bootstrap"
	"github.com/leadlens-ai/leadlens/internal/archive"
	"github.com/leadlens-ai/leadlens/internal/catalog"
	appconfig "github.com/leadlens-ai/leadlens/internal/config"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.InterviewQueueURL == "" {
		logger.Error("INTERVIEW_QUEUE_URL is required for the worker")
		os.Exit(1)
	}

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
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		archiveStore = archive.NewPostgresStore(pool)
	}
	hooks := bootstrap.BuildFinishHooks(cfg, awsCfg, archiveStore, logger)

	// The worker shares session state with the API through Redis; a memory
	// store here would strand sessions on one process.
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for the worker; sessions must be shared with the API")
		os.Exit(1)
	}

	processor, _, err := bootstrap.BuildProcessor(cfg, questionRouter, cat, llmClient, model, redisClient, mx, hooks, logger)
	if err != nil {
		logger.Error("failed to build interview processor", "error", err)
		os.Exit(1)
	}

	jobStore := interview.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.InterviewJobsTable, logger)
	dispatcher := interview.NewDispatcher(processor, interview.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.InterviewQueueURL), logger,
		interview.WithWorkerCount(cfg.WorkerCount),
		interview.WithReceiveWaitSeconds(10),
		interview.WithJobLifecycle(jobStore))

	logger.Info("interview worker started",
		"queue", cfg.InterviewQueueURL,
		"workers", cfg.WorkerCount,
		"deep_interview", cfg.DeepInterview,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down interview worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("interview worker shutdown timed out", "error", err)
		os.Exit(1)
	}

	logger.Info("interview worker stopped")
}
