package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini talks to Google Gemini through the official SDK. It is an optional
// last link in the auto chain, enabled when an API key is configured.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini provider.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Name implements Client.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Client. The SDK has its own chat shape but the role
// vocabulary differs, so the conversation is flattened the same way as for
// other single-prompt providers.
func (g *Gemini) Generate(ctx context.Context, messages []Message) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.4)
	model.StopSequences = []string{"\nUSER:", "\nSYSTEM:"}

	resp, err := model.GenerateContent(ctx, genai.Text(flattenMessages(messages)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the underlying client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// extractTextFromResponse pulls the text parts out of a Gemini response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.TrimSpace(strings.Join(parts, "")), nil
}
