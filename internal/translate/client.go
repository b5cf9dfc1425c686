package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"nyayabot/internal/config"
	"nyayabot/internal/domain"
)

// Client talks to a LibreTranslate-compatible translation service hosting
// the opus-mt language pairs. One retry on transient failure; the caller
// decides what a hard failure means for the request.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient builds a translation client from the translator config.
func NewClient(cfg config.TranslatorConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  os.Getenv(cfg.APIKeyEnv),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Translate converts text from source to target. Transient failures
// (network errors, 429, 5xx) are retried once before surfacing a
// *domain.TranslationError.
func (c *Client) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &domain.TranslationError{Source: source, Target: target, Err: ctx.Err()}
			case <-time.After(200 * time.Millisecond):
			}
		}
		out, retryable, err := c.translateOnce(ctx, text, source, target)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", &domain.TranslationError{Source: source, Target: target, Err: lastErr}
}

func (c *Client) translateOnce(ctx context.Context, text string, source, target domain.Language) (out string, retryable bool, err error) {
	body := map[string]string{
		"q":      text,
		"source": string(source),
		"target": string(target),
		"format": "text",
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(data))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return "", true, fmt.Errorf("translation service returned %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", false, fmt.Errorf("translation service returned %s", resp.Status)
	}
	var payload struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false, fmt.Errorf("decode translation response: %w", err)
	}
	if payload.TranslatedText == "" {
		return "", false, fmt.Errorf("translation service returned empty text")
	}
	return payload.TranslatedText, false, nil
}
