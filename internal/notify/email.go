// Package notify delivers email notifications: meeting reminders and
// insight summary reports.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
)

// EmailSender sends one email. Implementations must be safe for concurrent
// use.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// ResendClient sends email through the Resend HTTP API.
type ResendClient struct {
	apiKey     string
	baseURL    string
	from       string
	httpClient *http.Client
}

// resendRequest is the provider wire format
type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewResendClient creates an email client for the configured provider.
func NewResendClient(cfg config.EmailConfig) (*ResendClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("email API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com/emails"
	}
	return &ResendClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		from:       cfg.FromAddress,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Send delivers one email, one attempt.
func (c *ResendClient) Send(ctx context.Context, msg EmailMessage) error {
	payload, err := json.Marshal(resendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// NoopSender discards email. Used when delivery is disabled and in tests.
type NoopSender struct{}

// Send does nothing.
func (NoopSender) Send(context.Context, EmailMessage) error { return nil }
