package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// discordMaxContent is the longest message a Discord webhook accepts.
const discordMaxContent = 2000

// WebhookPayload is the body accepted by Discord-compatible incoming webhooks.
type WebhookPayload struct {
	Content string `json:"content"`
}

// WebhookClient posts operational notifications to a chat webhook.
// An empty URL disables it: Enviar becomes a no-op.
type WebhookClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WebhookClient) Enabled() bool { return c != nil && c.url != "" }

// Enviar sends content as a single message, truncated to the webhook limit.
func (c *WebhookClient) Enviar(ctx context.Context, content string) error {
	if !c.Enabled() {
		return nil
	}
	if r := []rune(content); len(r) > discordMaxContent {
		content = string(r[:discordMaxContent-1]) + "…"
	}

	body, err := json.Marshal(WebhookPayload{Content: content})
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: returned %d", resp.StatusCode)
	}
	return nil
}
