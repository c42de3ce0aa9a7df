package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WebhookSender posts {"text": ...} to a chat webhook (Slack compatible).
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender returns nil when url is blank.
func NewWebhookSender(url string, client *http.Client) *WebhookSender {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSender{url: url, client: client}
}

// Post delivers text. Any non-2xx response is an error.
func (w *WebhookSender) Post(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("notify: marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return statusError("webhook", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
