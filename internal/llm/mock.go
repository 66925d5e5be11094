package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a scripted provider for tests. Responses are consumed in
// FIFO order; when the script is empty, Respond is consulted, and if that is
// nil the provider fails the call.
type MockProvider struct {
	mu        sync.Mutex
	script    []mockReply
	calls     []*CompletionRequest
	// Respond computes a reply from the request when the script is empty.
	Respond func(req *CompletionRequest) (string, error)
}

type mockReply struct {
	content string
	err     error
}

// NewMock creates an empty mock provider.
func NewMock() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Kind() string { return "mock" }

// Enqueue schedules a successful reply.
func (m *MockProvider) Enqueue(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockReply{content: content})
	return m
}

// EnqueueError schedules a failing call.
func (m *MockProvider) EnqueueError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockReply{err: err})
	return m
}

// Calls returns every request the provider has seen.
func (m *MockProvider) Calls() []*CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete pops the next scripted reply.
func (m *MockProvider) Complete(_ context.Context, req *CompletionRequest) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.script) > 0 {
		reply := m.script[0]
		m.script = m.script[1:]
		if reply.err != nil {
			return nil, reply.err
		}
		return &Completion{Content: reply.content, InputTokens: 10, OutputTokens: 20}, nil
	}

	if m.Respond != nil {
		content, err := m.Respond(req)
		if err != nil {
			return nil, err
		}
		return &Completion{Content: content, InputTokens: 10, OutputTokens: 20}, nil
	}

	return nil, fmt.Errorf("mock: no scripted reply")
}
