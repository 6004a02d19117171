package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.OpenAIConfig
		wantErr bool
	}{
		{
			name:    "valid configuration",
			cfg:     config.OpenAIConfig{APIKey: "test-key"},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.OpenAIConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewOpenAIClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, client)
				assert.Equal(t, "https://api.openai.com/v1/chat/completions", client.baseURL)
				assert.Equal(t, "gpt-4o-mini", client.model)
			}
		})
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotReq openaiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := openaiResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o-mini",
			Choices: []openaiChoice{
				{Message: openaiMessage{Role: "assistant", Content: `{"ok":true}`}, FinishReason: "stop"},
			},
			Usage: openaiUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(config.OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
	})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), CompletionRequest{
		SystemMessage: "Eres un consultor",
		Prompt:        "Analiza",
		JSONMode:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 150, resp.Usage.Total)

	// Request carried the JSON-mode constraint and both messages
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.InDelta(t, 0.3, gotReq.Temperature, 0.001)
	assert.False(t, gotReq.Stream)
}

func TestOpenAIClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_exceeded","message":"slow down"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(config.OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "Analiza"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(config.OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "Analiza"})
	assert.Error(t, err)
}
