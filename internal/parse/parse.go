package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"aria/internal/jsonx"
)

// Generative models wrap JSON answers in markdown fences, <JSON> tags, or
// both. Everything here is about peeling that noise off before decoding;
// parse failures stay local to the caller, which is expected to degrade to
// its own deterministic fallback.

var (
	fencePattern   = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]+)?\\s*(.*?)\\s*```")
	jsonTagPattern = regexp.MustCompile(`(?s)<JSON>\s*(.*?)\s*</JSON>`)
)

// ExtractJSONString strips markdown code fences and <JSON> wrapper tags from
// text and returns the trimmed remainder. Idempotent on already-clean JSON.
func ExtractJSONString(text string) string {
	cleaned := strings.TrimSpace(text)

	for {
		if match := fencePattern.FindStringSubmatch(cleaned); match != nil {
			cleaned = strings.TrimSpace(match[1])
			continue
		}
		if match := jsonTagPattern.FindStringSubmatch(cleaned); match != nil {
			cleaned = strings.TrimSpace(match[1])
			continue
		}
		return cleaned
	}
}

// Decode extracts the JSON payload of text and unmarshals it into v.
// Malformed output goes through a repair pass before giving up.
func Decode(text string, v any) error {
	cleaned := ExtractJSONString(text)
	if cleaned == "" {
		return fmt.Errorf("empty response")
	}

	if err := jsonx.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return fmt.Errorf("unparseable response: %w", err)
	}
	if err := jsonx.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("decode repaired response: %w", err)
	}
	return nil
}

// DecodeMap decodes text into a generic object and drops null values, so a
// literal null behaves exactly like an absent field.
func DecodeMap(text string) (map[string]any, error) {
	var raw map[string]any
	if err := Decode(text, &raw); err != nil {
		return nil, err
	}
	return stripNulls(raw), nil
}

func stripNulls(obj map[string]any) map[string]any {
	for key, value := range obj {
		switch typed := value.(type) {
		case nil:
			delete(obj, key)
		case map[string]any:
			obj[key] = stripNulls(typed)
		case []any:
			obj[key] = stripNullsSlice(typed)
		}
	}
	return obj
}

func stripNullsSlice(values []any) []any {
	out := values[:0]
	for _, value := range values {
		switch typed := value.(type) {
		case nil:
			continue
		case map[string]any:
			out = append(out, stripNulls(typed))
		case []any:
			out = append(out, stripNullsSlice(typed))
		default:
			out = append(out, value)
		}
	}
	return out
}
