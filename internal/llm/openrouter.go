package llm

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

// openRouterTimeout bounds interactive chat-completion calls.
const openRouterTimeout = 60 * time.Second

// OpenRouter talks to an OpenAI-compatible chat-completions endpoint.
type OpenRouter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenRouter builds the chat-completions provider.
func NewOpenRouter(baseURL, apiKey, model string) *OpenRouter {
	return &OpenRouter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: openRouterTimeout},
	}
}

// Name implements Client.
func (o *OpenRouter) Name() string { return "openrouter" }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements Client using the structured message-list wire shape.
func (o *OpenRouter) Generate(ctx context.Context, messages []Message) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("no API key configured (set OPENROUTER_API_KEY or OPENAI_API_KEY)")
	}
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("bad status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("malformed response body: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
