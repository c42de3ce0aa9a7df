package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fixam/fixam-site/pkg/logging"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendSender posts emails to the Resend REST API.
type ResendSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// ResendConfig holds configuration for Resend.
type ResendConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// NewResendSender returns nil without an API key.
func NewResendSender(cfg ResendConfig, logger *logging.Logger) *ResendSender {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultResendBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &ResendSender{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.HTTPClient,
		logger:  logger,
	}
}

// Send posts msg to /emails. Deadlines come from ctx.
func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) error {
	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: resend send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return statusError("resend", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	s.logger.Info("email sent via resend", "recipients", len(msg.To), "subject", msg.Subject)
	return nil
}

var _ EmailSender = (*ResendSender)(nil)
