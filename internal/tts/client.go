// Package tts proxies text-to-speech synthesis so the upstream API key never
// reaches the browser.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModelID = "eleven_multilingual_v2"

	// Rachel: calm, natural voice; the default when no voice is configured.
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("tts: API key not configured")

// UpstreamError carries a non-2xx synthesis response status so the HTTP
// layer can proxy it through.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tts: upstream status %d", e.Status)
}

// Client synthesizes speech via the ElevenLabs HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voiceID    string
}

// New creates a tts Client. voiceID falls back to DefaultVoiceID.
func New(apiKey, voiceID string) *Client {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		voiceID:    voiceID,
	}
}

// WithBaseURL redirects the client at another endpoint. Test hook.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Synthesize converts text to MPEG audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if text == "" {
		return nil, errors.New("tts: text is empty")
	}

	payload := map[string]any{
		"text":     text,
		"model_id": defaultModelID,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
