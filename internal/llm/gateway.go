package llm

import (
	"context"
	"time"

	"aria/internal/logging"
	"aria/internal/prompts"
)

const defaultGenerateTimeout = 30 * time.Second

// Gateway renders a named prompt template and asks the model for text.
//
// The empty string is the designed "no information" signal: it is returned
// when the client is unconfigured, the call fails, or the model answers
// nothing. Callers must treat it as an expected outcome, never an error.
// No retries happen here.
type Gateway struct {
	client   Client
	registry *prompts.Registry
	timeout  time.Duration
	log      logging.Logger
}

// NewGateway wires a chat client to the template registry. A nil client is
// valid and yields an always-empty gateway.
func NewGateway(client Client, registry *prompts.Registry, timeout time.Duration, log logging.Logger) *Gateway {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &Gateway{
		client:   client,
		registry: registry,
		timeout:  timeout,
		log:      logging.OrNop(log),
	}
}

// Configured reports whether a chat client is attached.
func (g *Gateway) Configured() bool {
	return g != nil && g.client != nil
}

// Generate renders template name with payload and returns the model's raw
// text, or "" when no answer is available.
func (g *Gateway) Generate(ctx context.Context, name string, payload map[string]string) string {
	if !g.Configured() {
		return ""
	}

	system, user, err := g.registry.Render(name, payload)
	if err != nil {
		// Unknown template is a programming error; surface it loudly in logs
		// but keep the caller on its fallback path.
		g.log.Error("render template %s: %v", name, err)
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat(callCtx, &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		g.log.Warn("generate %s failed: %v", name, err)
		return ""
	}
	return resp.Text()
}
