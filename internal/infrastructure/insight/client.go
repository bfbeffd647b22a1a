package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"filevault-api/config"
)

var ErrNotConfigured = errors.New("insight provider not configured")

// Client calls an OpenAI-compatible text-generation endpoint for a one-line
// file description. It performs exactly one attempt; callers substitute their
// own fallback text on any error.
type Client struct {
	logger *zap.Logger
	cfg    config.AI
	http   *http.Client
}

func New(logger *zap.Logger, cfg config.AI) *Client {
	return &Client{
		logger: logger,
		cfg:    cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	chatRequest struct {
		Model     string        `json:"model"`
		Messages  []chatMessage `json:"messages"`
		MaxTokens int           `json:"max_tokens"`
	}
	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

func (c *Client) Describe(ctx context.Context, fileName, mimeType, snippet string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", ErrNotConfigured
	}

	prompt := fmt.Sprintf(
		"Describe the file %q (type %s) in one short sentence for a personal file vault.",
		fileName, mimeType,
	)
	if snippet != "" {
		prompt += fmt.Sprintf(" It begins with: %q", snippet)
	}

	body, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 80,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("insight provider returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("insight provider returned no choices")
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("insight provider returned empty text")
	}

	return text, nil
}
