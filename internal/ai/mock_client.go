package ai

import (
	"context"
	"sync/atomic"
)

// MockClient implements Client for tests. CompleteFn controls the response;
// Calls counts invocations so tests can assert whether the model was
// consulted at all.
type MockClient struct {
	CompleteFn func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Calls      atomic.Int64
}

// NewMockClient creates a mock that returns the given content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		CompleteFn: func(context.Context, CompletionRequest) (*CompletionResponse, error) {
			return &CompletionResponse{Content: content, Model: "mock"}, nil
		},
	}
}

// Complete records the call and delegates to CompleteFn.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.Calls.Add(1)
	return m.CompleteFn(ctx, req)
}
