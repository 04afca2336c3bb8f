package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts JSON payloads to a single configured endpoint
type Client struct {
	URL        string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates a new webhook client. A zero timeout falls back to 10s.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		URL:        url,
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Post marshals payload and sends it. Any non-2xx response is an error.
func (c *Client) Post(ctx context.Context, event string, payload interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"event":  event,
		"sentAt": time.Now().UTC(),
		"data":   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook failed with status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
