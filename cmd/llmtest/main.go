// Command llmtest exercises the configured LLM providers with a sample
// question-selection prompt, outside the interview loop. Useful for checking
// credentials and fallback wiring before a deploy.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/leadlens-ai/leadlens/cmd/mainconfig"
	appconfig "github.com/leadlens-ai/leadlens/internal/config"
	"github.com/leadlens-ai/leadlens/internal/llm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := appconfig.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := llm.Request{
		System: []string{
			"You pick the next interview question for a lead-qualification chat.",
			"Reply with JSON: {\"question_id\": \"...\", \"reasoning\": \"...\"}",
		},
		Messages: []llm.ChatMessage{
			{Role: llm.ChatRoleUser, Content: strings.TrimSpace(`
Asked so far:
- q_industry: "We run three outpatient imaging clinics."
- q_pain_primary: "Scheduling is chaos, front desk is drowning."

Candidates:
- q_team_size: How large is the team handling scheduling?
- q_budget: What budget range do you have in mind?
- q_urgency: How soon do you want this solved?

Pick the single best next question.`)},
		},
		MaxTokens:   200,
		Temperature: 0.2,
	}

	divider := strings.Repeat("=", 60)
	fmt.Println(divider)
	fmt.Println("LeadLens LLM provider check")
	fmt.Println(divider)

	if cfg.GeminiAPIKey != "" {
		fmt.Println("\n[1] Gemini...")
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			fmt.Printf("    FAILED to create client: %v\n", err)
		} else {
			runProbe(ctx, client, req)
		}
	} else {
		fmt.Println("\n[1] Skipping Gemini (GEMINI_API_KEY not set)")
	}

	if cfg.BedrockModelID != "" {
		fmt.Println("\n[2] Bedrock...")
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("    FAILED to load AWS config: %v\n", err)
			os.Exit(1)
		}
		bedrockReq := req
		bedrockReq.Model = cfg.BedrockModelID
		runProbe(ctx, llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg)), bedrockReq)
	} else {
		fmt.Println("\n[2] Skipping Bedrock (BEDROCK_MODEL_ID not set)")
	}

	fmt.Println("\n" + divider)
	fmt.Println("A JSON question_id response above means adaptive routing will")
	fmt.Println("delegate to that provider; anything else falls back to rules.")
}

func runProbe(ctx context.Context, client llm.Client, req llm.Request) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    error after %v: %v\n", elapsed.Round(time.Millisecond), err)
		return
	}
	fmt.Printf("    ok (%v): %s\n", elapsed.Round(time.Millisecond), strings.TrimSpace(resp.Text))
	fmt.Printf("    tokens: in=%d out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
}
