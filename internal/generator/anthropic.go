package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// AnthropicGenerator calls the Anthropic Messages API to draft buyer texts.
type AnthropicGenerator struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicGenerator creates a generator backed by the Anthropic API.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicGenerator{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate drafts one buyer message from the numeric context.
func (g *AnthropicGenerator) Generate(ctx context.Context, nc NumericContext) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("anthropic API key not configured")
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":      g.model,
		"max_tokens": 200,
		"messages": []map[string]string{
			{"role": "user", "content": prompt(nc)},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", anthropicEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var anthropicResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &anthropicResp); err != nil {
		return "", fmt.Errorf("parsing anthropic response: %w", err)
	}
	if len(anthropicResp.Content) == 0 {
		return "", fmt.Errorf("empty response from anthropic")
	}

	return strings.TrimSpace(anthropicResp.Content[0].Text), nil
}
