package assistant

import (
	"context"
	"strings"

	"aria/internal/llm"
	"aria/internal/parse"
)

// extract is the shared parse-or-fallback combinator: render template with
// payload, decode the model's answer, and degrade to fallback() on any
// failure. valid may be nil. No error ever escapes an extraction.
func extract[T any](ctx context.Context, gateway *llm.Gateway, template string, payload map[string]string, valid func(T) bool, fallback func() T) T {
	raw := gateway.Generate(ctx, template, payload)
	if raw == "" {
		return fallback()
	}

	var value T
	if err := parse.Decode(raw, &value); err != nil {
		return fallback()
	}
	if valid != nil && !valid(value) {
		return fallback()
	}
	return value
}

// truncateTitle derives a fallback title from raw text.
func truncateTitle(text string, max int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// lowerTags normalizes and dedupes a tag list.
func lowerTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
