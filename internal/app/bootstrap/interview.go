package bootstrap

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	"github.com/leadlens-ai/leadlens/internal/archive"
	"github.com/leadlens-ai/leadlens/internal/catalog"
	appconfig "github.com/leadlens-ai/leadlens/internal/config"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/internal/llm"
	"github.com/leadlens-ai/leadlens/internal/notify"
	"github.com/leadlens-ai/leadlens/internal/observability/metrics"
	"github.com/leadlens-ai/leadlens/internal/orchestrator"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// BuildQuestionRouter assembles the completeness scorer and adaptive router
// from the config policy knobs. A nil llmClient disables model delegation.
func BuildQuestionRouter(cfg *appconfig.Config, cat *catalog.Catalog, llmClient llm.Client, model string, mx *metrics.InterviewMetrics, logger *logging.Logger) *interview.Router {
	scorer := interview.NewScorer(interview.DefaultInventory(), interview.FinishPolicy{
		MaxQuestions:             cfg.MaxQuestions,
		ScoreThreshold:           cfg.ScoreThreshold,
		MinQuestionsAtThreshold:  cfg.MinQuestionsAtThreshold,
		MinQuestionsAllEssential: cfg.MinQuestionsAllEssential,
	})

	opts := []interview.RouterOption{
		interview.WithRouterLogger(logger),
		interview.WithRouterMetrics(mx),
		interview.WithSelectionTimeout(cfg.LLMTimeout),
	}
	if llmClient != nil {
		opts = append(opts, interview.WithSelector(interview.NewLLMSelector(llmClient, model)))
	}
	return interview.NewRouter(cat, scorer, opts...)
}

// BuildProcessor wires the interview service: the deeper state machine when
// INTERVIEW_DEEP_MODE is on, the base adaptive engine otherwise. Sessions
// live in Redis when available, in memory otherwise.
func BuildProcessor(
	cfg *appconfig.Config,
	questionRouter *interview.Router,
	cat *catalog.Catalog,
	llmClient llm.Client,
	model string,
	redisClient *redis.Client,
	mx *metrics.InterviewMetrics,
	hooks []interview.FinishHook,
	logger *logging.Logger,
) (interview.Service, interview.SessionReader, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if questionRouter == nil {
		return nil, nil, fmt.Errorf("bootstrap: question router is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.DeepInterview {
		var store interview.SessionStore
		if redisClient != nil {
			store = interview.NewRedisSessionStore(redisClient, 0, nil)
		} else {
			logger.Warn("redis not configured; using in-memory session store")
			store = interview.NewMemorySessionStore(24 * time.Hour)
		}
		engine := interview.NewEngine(store, questionRouter, cat,
			interview.WithEngineLogger(logger),
			interview.WithEngineMetrics(mx),
			interview.WithFinishHooks(hooks...),
		)
		return engine, engine, nil
	}

	machineOpts := []orchestrator.MachineOption{
		orchestrator.WithMachineLogger(logger),
		orchestrator.WithMachineMetrics(mx),
		orchestrator.WithFollowUpPolicy(orchestrator.FollowUpPolicy{
			MaxPerQuestion:   cfg.FollowUpsPerQuestion,
			ShortAnswerChars: orchestrator.DefaultFollowUpPolicy().ShortAnswerChars,
		}),
		orchestrator.WithEndPolicy(orchestrator.EndPolicy{
			MinPriorityAreas:  cfg.MinPriorityAreas,
			MinAnswersPerArea: cfg.MinAnswersPerArea,
		}),
	}
	if llmClient != nil && cfg.TaggingEnabled {
		machineOpts = append(machineOpts, orchestrator.WithTagger(orchestrator.NewTagger(llmClient, model,
			orchestrator.WithTaggerTimeout(cfg.TaggingTimeout),
			orchestrator.WithTaggerLogger(logger),
			orchestrator.WithTaggerMetrics(mx),
		)))
	}
	machine := orchestrator.NewMachine(questionRouter, machineOpts...)

	var store orchestrator.StateStore
	if redisClient != nil {
		store = orchestrator.NewRedisStateStore(redisClient, 0, nil)
	} else {
		logger.Warn("redis not configured; using in-memory state store")
		store = orchestrator.NewMemoryStateStore(24 * time.Hour)
	}

	svc := orchestrator.NewService(store, machine,
		orchestrator.WithServiceLogger(logger),
		orchestrator.WithServiceHooks(hooks...),
	)
	return svc, svc, nil
}

// BuildFinishHooks assembles the best-effort terminal-session pipeline:
// Postgres archival, S3 export, and the report-ready email. Pass a nil
// archiveStore when the database is not configured.
func BuildFinishHooks(cfg *appconfig.Config, awsCfg aws.Config, archiveStore *archive.PostgresStore, logger *logging.Logger) []interview.FinishHook {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	var hooks []interview.FinishHook
	if archiveStore != nil {
		hooks = append(hooks, archive.NewPostgresHook(archiveStore))
	}
	if cfg.ArchiveBucket != "" {
		exporter := archive.NewExporter(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, logger.Logger)
		hooks = append(hooks, archive.NewExportHook(exporter))
	}
	if hook := buildNotifyHook(cfg, awsCfg, logger); hook != nil {
		hooks = append(hooks, hook)
	}
	return hooks
}

// buildNotifyHook assembles the report-ready email hook, or nil when
// notifications are disabled or no sender is configured.
func buildNotifyHook(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) interview.FinishHook {
	if !cfg.NotifyEnabled || len(cfg.NotifyRecipients) == 0 {
		return nil
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if sg := newSendGridSender(cfg, logger); sg != nil {
			sender = sg
		}
	case "ses":
		if ses := newSESSender(cfg, awsCfg, logger); ses != nil {
			sender = ses
		}
	case "stub":
		sender = notify.NewStubEmailSender(logger)
	default: // auto
		if sg := newSendGridSender(cfg, logger); sg != nil {
			sender = sg
		} else if ses := newSESSender(cfg, awsCfg, logger); ses != nil {
			sender = ses
		}
	}
	if sender == nil {
		logger.Warn("notifications enabled but no email sender configured")
		return nil
	}

	svc := notify.NewService(sender, notify.Config{
		Enabled:    true,
		Recipients: cfg.NotifyRecipients,
		MinScore:   cfg.NotifyMinScore,
	}, logger)
	return notify.NewHook(svc)
}

func newSendGridSender(cfg *appconfig.Config, logger *logging.Logger) *notify.SendGridSender {
	return notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
}

func newSESSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) *notify.SESSender {
	if cfg.SESFromEmail == "" {
		return nil
	}
	return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.SESFromEmail,
		FromName:  cfg.SESFromName,
	}, logger)
}
