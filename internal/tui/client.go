package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AskResponse mirrors the API's /ask response body.
type AskResponse struct {
	Answer        string      `json:"answer"`
	Language      string      `json:"language"`
	OriginalQuery string      `json:"original_query"`
	EnglishQuery  string      `json:"english_query"`
	Sources       []SourceDTO `json:"sources"`
	Degraded      string      `json:"degraded"`
	Success       bool        `json:"success"`
	Error         string      `json:"error"`
}

type SourceDTO struct {
	Text     string  `json:"text"`
	Document string  `json:"document"`
	Score    float32 `json:"score"`
}

// Client is the chat client's view of the running API server.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Client{baseURL: baseURL, httpc: &http.Client{Timeout: timeout}}
}

// Ask sends one question to POST /ask.
func (c *Client) Ask(ctx context.Context, query, language string, topK int) (*AskResponse, error) {
	body := map[string]any{"query": query, "top_k": topK, "include_sources": true}
	if language != "" && language != "auto" {
		body["language"] = language
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
