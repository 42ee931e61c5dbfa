// Package webhook posts JSON payloads to outbound automation endpoints
// (task creation, email drafting). The automations own the real side
// effects; this layer only forwards and surfaces failure.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client forwards payloads to webhook URLs.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a webhook Client. A nil httpClient gets a default with a
// request timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// Post sends payload as JSON to url. A non-2xx response is an error carrying
// the status code.
func (c *Client) Post(ctx context.Context, url string, payload any) error {
	if url == "" {
		return fmt.Errorf("webhook: URL not configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: status %d", resp.StatusCode)
	}
	return nil
}
