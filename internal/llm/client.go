package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
	// JSONOnly asks the provider for a bare JSON reply. The selection and
	// tagging callers parse strictly and fall back on anything else, so
	// providers with a response-format switch should use it; others rely
	// on the prompt alone.
	JSONOnly bool
}

type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
	// Provider names the backend that actually served the call, which
	// matters once the fallback chain is in play.
	Provider string
}

// Client is the boundary to a language-model provider. Implementations must
// honor ctx cancellation; callers wrap calls in a bounded timeout.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
