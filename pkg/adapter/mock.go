package adapter

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
// Scripted steps are consumed in order; once exhausted, prompt-keyed
// responses and then the default response are used.
type MockAdapter struct {
	mu              sync.Mutex
	responses       map[string]string
	script          []MockStep
	defaultResponse string
	requests        []Request
	Usage           *Usage
}

// MockStep is one scripted reply.
type MockStep struct {
	Content string
	Err     error
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined responses.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	if responses == nil {
		responses = make(map[string]string)
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// NewScriptedMockAdapter replies with contents in order, one per call.
func NewScriptedMockAdapter(contents ...string) *MockAdapter {
	a := NewMockAdapter()
	for _, c := range contents {
		a.script = append(a.script, MockStep{Content: c})
	}
	return a
}

// Enqueue appends scripted steps.
func (a *MockAdapter) Enqueue(steps ...MockStep) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, steps...)
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Calls returns how many times Generate ran.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

// Requests returns a copy of every request received.
func (a *MockAdapter) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

// Generate returns the next scripted or canned response.
func (a *MockAdapter) Generate(_ context.Context, req Request) (*Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, req)
	model := req.Model
	if model == "" {
		model = "mock-1"
	}

	if len(a.script) > 0 {
		step := a.script[0]
		a.script = a.script[1:]
		if step.Err != nil {
			return nil, step.Err
		}
		return &Response{Content: step.Content, Adapter: a.Name(), Model: model, Usage: a.Usage}, nil
	}

	if response, ok := a.responses[req.Prompt]; ok {
		return &Response{Content: response, Adapter: a.Name(), Model: model, Usage: a.Usage}, nil
	}
	content := fmt.Sprintf("%s\n%s", a.defaultResponse, req.Prompt)
	return &Response{Content: content, Adapter: a.Name(), Model: model, Usage: a.Usage}, nil
}
