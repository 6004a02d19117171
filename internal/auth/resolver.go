// Package auth verifies bearer tokens against the platform's auth service.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// HTTPResolver resolves session tokens by calling the auth service's user
// endpoint (Supabase-style: GET with the token as Bearer plus an apikey
// header). It implements middleware.SessionResolver.
type HTTPResolver struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// userResponse is the subset of the auth service's user document we need
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewHTTPResolver creates a resolver for the configured auth service.
func NewHTTPResolver(cfg config.AuthConfig) (*HTTPResolver, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("auth base URL is required")
	}
	return &HTTPResolver{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Resolve verifies the token. An invalid or expired token returns
// (nil, nil); only transport and service failures are errors.
func (r *HTTPResolver) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		var user userResponse
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode auth response: %w", err)
		}
		if user.ID == "" {
			return nil, fmt.Errorf("auth response carried no user ID")
		}
		return &types.Identity{ID: user.ID, Email: user.Email}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth service returned status %d: %s", resp.StatusCode, string(body))
	}
}
