package catalog

import (
	"strconv"
	"strings"
)

// Shared extractor builders. Every builder coerces across answer kinds: a
// choice answered as free text still extracts, a scale answered as text is
// parsed from its digits, and an empty answer extracts nothing.

func textField(path string, topics ...string) ExtractFunc {
	return func(a Answer) Extraction {
		value := strings.TrimSpace(a.Raw())
		if value == "" {
			return Extraction{}
		}
		return Extraction{
			Fields: map[string]any{path: value},
			Topics: topics,
		}
	}
}

func choiceField(path string, topics ...string) ExtractFunc {
	return func(a Answer) Extraction {
		value := strings.TrimSpace(a.Choice)
		if value == "" {
			value = strings.TrimSpace(a.Raw())
		}
		if value == "" {
			return Extraction{}
		}
		return Extraction{
			Fields: map[string]any{path: value},
			Topics: topics,
		}
	}
}

func multiChoiceField(path string, topics ...string) ExtractFunc {
	return func(a Answer) Extraction {
		values := a.Choices
		if len(values) == 0 {
			// Coerce comma-separated free text.
			for _, part := range strings.Split(a.Raw(), ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					values = append(values, trimmed)
				}
			}
		}
		cleaned := make([]string, 0, len(values))
		for _, v := range values {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) == 0 {
			return Extraction{}
		}
		return Extraction{
			Fields: map[string]any{path: cleaned},
			Topics: topics,
		}
	}
}

func scaleField(path, metric string, topics ...string) ExtractFunc {
	return func(a Answer) Extraction {
		value := a.Scale
		if a.Kind != AnswerKindScale || value == 0 {
			if parsed, ok := firstNumber(a.Raw()); ok {
				value = parsed
			}
		}
		if value <= 0 {
			return Extraction{}
		}
		ext := Extraction{
			Fields: map[string]any{path: value},
			Topics: topics,
		}
		if metric != "" {
			ext.Metrics = []string{metric}
		}
		return ext
	}
}

// quantifiedText extracts free text and additionally records a named metric
// when the answer actually contains a number.
func quantifiedText(path, metric string, topics ...string) ExtractFunc {
	base := textField(path, topics...)
	return func(a Answer) Extraction {
		ext := base(a)
		if ext.IsEmpty() || metric == "" {
			return ext
		}
		if ContainsDigit(a.Raw()) {
			ext.Metrics = []string{metric}
		}
		return ext
	}
}

// ContainsDigit reports whether s has at least one ASCII digit.
func ContainsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func firstNumber(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}
