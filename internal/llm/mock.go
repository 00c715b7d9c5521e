package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient implements Client for tests. Responses are scripted per marker
// substring matched against the rendered user prompt, in registration order.
type MockClient struct {
	mu        sync.Mutex
	scripts   []mockScript
	fallback  string
	failAll   bool
	callCount int
}

type mockScript struct {
	marker   string
	response string
	err      error
}

// NewMockClient creates a mock with an optional default response.
func NewMockClient(fallback string) *MockClient {
	return &MockClient{fallback: fallback}
}

// Respond registers a response returned when the user prompt contains marker.
func (m *MockClient) Respond(marker, response string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, mockScript{marker: marker, response: response})
	return m
}

// FailWith registers an error returned when the user prompt contains marker.
func (m *MockClient) FailWith(marker string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, mockScript{marker: marker, err: err})
	return m
}

// FailAll makes every call return an error, simulating a provider outage.
func (m *MockClient) FailAll() *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = true
	return m
}

// Calls returns how many chat calls were made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Chat returns the first scripted response whose marker matches the prompt.
func (m *MockClient) Chat(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.failAll {
		return nil, fmt.Errorf("mock provider unavailable")
	}

	prompt := ""
	for _, msg := range req.Messages {
		prompt += msg.Content + "\n"
	}

	for _, script := range m.scripts {
		if strings.Contains(prompt, script.marker) {
			if script.err != nil {
				return nil, script.err
			}
			return mockResponse(script.response), nil
		}
	}
	return mockResponse(m.fallback), nil
}

func mockResponse(content string) *ChatResponse {
	return &ChatResponse{
		ID:     "mock-response",
		Object: "chat.completion",
		Model:  "mock",
		Choices: []Choice{{
			Message:      Message{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
	}
}
