// Package ai generates the structured performance analysis: a hosted
// completion API in JSON mode with a deterministic metrics-driven fallback
// of identical shape.
package ai

import (
	"context"
	"time"
)

// Client is the interface to a hosted text-completion API.
type Client interface {
	// Complete sends one completion request and returns the raw response
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest represents a single completion call.
type CompletionRequest struct {
	SystemMessage string  `json:"system_message,omitempty"`
	Prompt        string  `json:"prompt"`
	Model         string  `json:"model,omitempty"`
	MaxTokens     int     `json:"max_tokens,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	// JSONMode constrains the model to emit a single JSON object
	JSONMode bool `json:"json_mode,omitempty"`
}

// CompletionResponse represents the model's reply.
type CompletionResponse struct {
	Content      string        `json:"content"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Usage        TokenUsage    `json:"usage"`
	Latency      time.Duration `json:"latency"`
}

// TokenUsage represents token consumption for one call.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}
