package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/leadlens-ai/leadlens/internal/config"
	"github.com/leadlens-ai/leadlens/internal/llm"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// BuildLLMClient picks the provider for question selection and answer
// tagging per LLM_PROVIDER. "auto" prefers Bedrock with Gemini as fallback,
// using whichever is configured; a nil client means deterministic routing
// only. The returned model id is what selection requests should carry.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (llm.Client, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var bedrock llm.Client
	if cfg.BedrockModelID != "" {
		bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	var gemini llm.Client
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to init gemini client", "error", err)
		} else {
			gemini = client
		}
	}

	switch cfg.LLMProvider {
	case "bedrock":
		if bedrock == nil {
			logger.Warn("LLM_PROVIDER=bedrock but BEDROCK_MODEL_ID unset; routing deterministically")
			return nil, "", nil
		}
		return bedrock, cfg.BedrockModelID, nil
	case "gemini":
		if gemini == nil {
			logger.Warn("LLM_PROVIDER=gemini but GEMINI_API_KEY unset; routing deterministically")
			return nil, "", nil
		}
		return gemini, cfg.GeminiModelID, nil
	case "none":
		return nil, "", nil
	default: // auto
		switch {
		case bedrock != nil && gemini != nil:
			return llm.NewFallbackClient(bedrock, gemini, logger.Logger), cfg.BedrockModelID, nil
		case bedrock != nil:
			return bedrock, cfg.BedrockModelID, nil
		case gemini != nil:
			return gemini, cfg.GeminiModelID, nil
		default:
			logger.Info("no LLM provider configured; routing deterministically")
			return nil, "", nil
		}
	}
}
