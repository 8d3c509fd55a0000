package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON indicates the model output contained no JSON object.
var ErrNoJSON = errors.New("llm: no JSON object in response")

// ExtractJSON parses the single JSON object embedded in a model response
// into v. Surrounding prose and markdown fences are tolerated; anything else
// malformed is an error. There is no partial recovery: callers treat any
// failure as "take the deterministic path".
func ExtractJSON(text string, v any) error {
	cleaned := strings.TrimSpace(text)
	if fenced := stripFence(cleaned); fenced != "" {
		cleaned = fenced
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return fmt.Errorf("llm: malformed JSON in response: %w", err)
	}
	return nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return ""
	}
	body := strings.TrimPrefix(text, "```")
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}
