package intent

import (
	"context"

	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/parse"
)

// Classifier labels utterances via the gateway with a deterministic keyword
// fallback. It is stateless and safe for concurrent use.
type Classifier struct {
	gateway *llm.Gateway
	log     logging.Logger
}

// NewClassifier builds a classifier on top of the gateway.
func NewClassifier(gateway *llm.Gateway, log logging.Logger) *Classifier {
	return &Classifier{gateway: gateway, log: logging.OrNop(log)}
}

// Classify returns the intent classification for text. It never fails: any
// model problem degrades to ClassifyByKeywords.
func (c *Classifier) Classify(ctx context.Context, userID, text string) Classification {
	raw := c.gateway.Generate(ctx, "classify_intent", map[string]string{"text": text})
	if raw == "" {
		return c.fallback(userID, text, "no model output")
	}

	var result Classification
	if err := parse.Decode(raw, &result); err != nil {
		return c.fallback(userID, text, err.Error())
	}
	if !knownIntents[result.Intent] || !knownSubIntents[result.SubIntent] {
		return c.fallback(userID, text, "unknown intent "+string(result.Intent))
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	// A todo without a sub-intent is treated as a creation request.
	if result.Intent == IntentTodo && result.SubIntent == SubIntentNone {
		result.SubIntent = SubIntentCreate
	}
	return result
}

func (c *Classifier) fallback(userID, text, reason string) Classification {
	result := ClassifyByKeywords(text)
	c.log.Debug("[%s] keyword fallback (%s) -> %s/%s for %q",
		logging.UserTag(userID), reason, result.Intent, result.SubIntent, logging.Preview(text, 40))
	return result
}
