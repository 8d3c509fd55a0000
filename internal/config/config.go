package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	PublicBaseURL  string
	LogLevel       string
	UseMemoryQueue bool
	WorkerCount    int
	DatabaseURL    string

	AdminJWTSecret string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	InterviewQueueURL  string
	InterviewJobsTable string

	// LLM routing: which provider answers selection and tagging calls.
	LLMProvider      string
	LLMTimeout       time.Duration
	BedrockModelID   string
	GeminiAPIKey     string
	GeminiModelID    string
	TaggingEnabled   bool
	TaggingTimeout   time.Duration

	// DeepInterview enables the richer state machine (phrasing variants,
	// follow-up probes, answer tagging, priority-area termination) instead
	// of the base adaptive engine.
	DeepInterview bool

	// Interview policy knobs. Zero values fall back to the engine defaults.
	MaxQuestions             int
	ScoreThreshold           int
	MinQuestionsAtThreshold  int
	MinQuestionsAllEssential int
	FollowUpsPerQuestion     int
	MinPriorityAreas         int
	MinAnswersPerArea        int

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	ArchiveBucket string

	// Report-ready notification settings.
	NotifyEnabled    bool
	NotifyRecipients []string
	NotifyMinScore   int
	EmailProvider    string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	SESFromEmail string
	SESFromName  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		InterviewQueueURL:  getEnv("INTERVIEW_QUEUE_URL", ""),
		InterviewJobsTable: getEnv("INTERVIEW_JOBS_TABLE", "interview_jobs"),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "auto"))),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 10*time.Second),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		TaggingEnabled: getEnvAsBool("TAGGING_ENABLED", true),
		TaggingTimeout: getEnvAsDuration("TAGGING_TIMEOUT", 8*time.Second),

		DeepInterview: getEnvAsBool("INTERVIEW_DEEP_MODE", true),

		MaxQuestions:             getEnvAsInt("INTERVIEW_MAX_QUESTIONS", 18),
		ScoreThreshold:           getEnvAsInt("INTERVIEW_SCORE_THRESHOLD", 80),
		MinQuestionsAtThreshold:  getEnvAsInt("INTERVIEW_MIN_QUESTIONS_AT_THRESHOLD", 8),
		MinQuestionsAllEssential: getEnvAsInt("INTERVIEW_MIN_QUESTIONS_ALL_ESSENTIAL", 10),
		FollowUpsPerQuestion:     getEnvAsInt("INTERVIEW_FOLLOWUPS_PER_QUESTION", 2),
		MinPriorityAreas:         getEnvAsInt("INTERVIEW_MIN_PRIORITY_AREAS", 2),
		MinAnswersPerArea:        getEnvAsInt("INTERVIEW_MIN_ANSWERS_PER_AREA", 3),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		NotifyEnabled:    getEnvAsBool("NOTIFY_ENABLED", false),
		NotifyRecipients: splitCSV(getEnv("NOTIFY_RECIPIENTS", "")),
		NotifyMinScore:   getEnvAsInt("NOTIFY_MIN_SCORE", 0),
		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "LeadLens"),

		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "LeadLens"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
